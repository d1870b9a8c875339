package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	pmath "github.com/myronyliu/Rainbow-Cow/pkg/math"
)

// DefaultNormal is the normal of a vertex that has never had a face.
var DefaultNormal = mgl64.Vec3{0, 0, 1}

// Store holds the per-vertex and per-face arrays of a mesh. The arrays are
// sized once for the full-detail mesh and never shrink; faces eliminated by
// a collapse are flagged Degenerate and keep their last corners.
type Store struct {
	Positions   []mgl64.Vec3
	Normals     []mgl64.Vec3
	Faces       [][3]int
	FaceNormals []mgl64.Vec3
	FaceAreas   []float64
	Degenerate  []bool
}

// NewStore copies positions and faces into a new store and computes face
// normals and areas. Vertex normals start at DefaultNormal.
func NewStore(positions []mgl64.Vec3, faces [][3]int) (*Store, error) {
	n := len(positions)
	for f, c := range faces {
		for _, v := range c {
			if v < 0 || v >= n {
				return nil, fmt.Errorf("%w: face %d references vertex %d of %d", ErrInvalidFace, f, v, n)
			}
		}
		if c[0] == c[1] || c[1] == c[2] || c[0] == c[2] {
			return nil, fmt.Errorf("%w: face %d repeats a corner %v", ErrInvalidFace, f, c)
		}
	}

	s := &Store{
		Positions:   make([]mgl64.Vec3, n),
		Normals:     make([]mgl64.Vec3, n),
		Faces:       make([][3]int, len(faces)),
		FaceNormals: make([]mgl64.Vec3, len(faces)),
		FaceAreas:   make([]float64, len(faces)),
		Degenerate:  make([]bool, len(faces)),
	}
	copy(s.Positions, positions)
	copy(s.Faces, faces)
	for v := range s.Normals {
		s.Normals[v] = DefaultNormal
	}
	for f := range s.Faces {
		s.UpdateFace(f)
	}
	return s, nil
}

// VertexCount returns the full-detail vertex count.
func (s *Store) VertexCount() int { return len(s.Positions) }

// FaceCount returns the full-detail face count.
func (s *Store) FaceCount() int { return len(s.Faces) }

// Corners returns the corner positions of face f.
func (s *Store) Corners(f int) (p0, p1, p2 mgl64.Vec3) {
	c := s.Faces[f]
	return s.Positions[c[0]], s.Positions[c[1]], s.Positions[c[2]]
}

// UpdateFace recomputes the unit normal and area of face f.
func (s *Store) UpdateFace(f int) {
	s.FaceNormals[f], s.FaceAreas[f] = pmath.TriangleNormal(s.Corners(f))
}

// UpdateVertexNormal sets the normal of v to the normalized sum of the
// normals of faces, visited in ascending order. A vertex without faces keeps
// its previous normal.
func (s *Store) UpdateVertexNormal(v int, faces FaceSet) {
	if len(faces) == 0 {
		return
	}
	var sum mgl64.Vec3
	for _, f := range faces {
		sum = sum.Add(s.FaceNormals[f])
	}
	s.Normals[v] = pmath.Normalize(sum)
}

// UpdateVertexNormals recomputes the normal of every live vertex of a.
func (s *Store) UpdateVertexNormals(a *Adjacency) {
	for _, v := range a.Vertices() {
		s.UpdateVertexNormal(v, a.IncidentFaces(v))
	}
}

// ReplaceCorner relabels corner from of face f to to.
func (s *Store) ReplaceCorner(f, from, to int) {
	for c := range s.Faces[f] {
		if s.Faces[f][c] == from {
			s.Faces[f][c] = to
		}
	}
}

// HasCorner reports whether v is a corner of face f.
func (s *Store) HasCorner(f, v int) bool {
	c := s.Faces[f]
	return c[0] == v || c[1] == v || c[2] == v
}

// LiveFaceCount returns the number of faces not flagged degenerate.
func (s *Store) LiveFaceCount() int {
	n := 0
	for _, d := range s.Degenerate {
		if !d {
			n++
		}
	}
	return n
}

// LiveFaces returns the ids of faces not flagged degenerate, ascending.
func (s *Store) LiveFaces() []int {
	out := make([]int, 0, len(s.Faces))
	for f, d := range s.Degenerate {
		if !d {
			out = append(out, f)
		}
	}
	return out
}
