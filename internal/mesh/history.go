package mesh

import (
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// VertexState is a snapshot of one vertex around a collapse.
type VertexState struct {
	ID       int
	Position mgl64.Vec3
	Normal   mgl64.Vec3
	Faces    FaceSet
}

// SharedFace is a face eliminated by a collapse with its original corners.
type SharedFace struct {
	ID      int
	Corners [3]int
}

// Record describes one collapse: v1 (Removed) merged into v0 (Retained),
// the state of v0 afterwards (Merged) and the faces both endpoints shared.
type Record struct {
	Removed  VertexState
	Retained VertexState
	Merged   VertexState
	Shared   []SharedFace
}

func (s *Store) snapshot(a *Adjacency, v int) VertexState {
	return VertexState{
		ID:       v,
		Position: s.Positions[v],
		Normal:   s.Normals[v],
		Faces:    a.IncidentFaces(v).Clone(),
	}
}

// thirdCorners returns the corners of the shared faces other than the two
// collapse endpoints, in face order without repeats.
func (r *Record) thirdCorners() []int {
	var out []int
	for _, sf := range r.Shared {
		for _, c := range sf.Corners {
			if c != r.Retained.ID && c != r.Removed.ID && !slices.Contains(out, c) {
				out = append(out, c)
			}
		}
	}
	return out
}

// ApplyCollapse replays r on a store and adjacency that are in the state r
// was recorded from. Face and vertex normals around the retained vertex are
// recomputed the same way the collapse engine computes them.
func ApplyCollapse(s *Store, a *Adjacency, r *Record) {
	v0, v1 := r.Retained.ID, r.Removed.ID

	s.Positions[v0] = r.Merged.Position
	for _, sf := range r.Shared {
		s.Degenerate[sf.ID] = true
		for _, c := range sf.Corners {
			a.Detach(c, sf.ID)
		}
	}
	for _, f := range r.Removed.Faces {
		if s.Degenerate[f] {
			continue
		}
		s.ReplaceCorner(f, v1, v0)
		a.Attach(v0, f)
	}
	a.Remove(v1)

	refreshAround(s, a, []int{v0}, r.thirdCorners())
	s.Normals[v0] = r.Merged.Normal
}

// ApplySplit undoes r on a store and adjacency that are in the state r
// produced, restoring both endpoints and the shared faces exactly.
func ApplySplit(s *Store, a *Adjacency, r *Record) {
	v0, v1 := r.Retained.ID, r.Removed.ID

	shared := make(map[int]bool, len(r.Shared))
	for _, sf := range r.Shared {
		shared[sf.ID] = true
	}
	for _, f := range r.Removed.Faces {
		if !shared[f] {
			s.ReplaceCorner(f, v0, v1)
			a.Detach(v0, f)
		}
	}
	for _, sf := range r.Shared {
		s.Faces[sf.ID] = sf.Corners
		s.Degenerate[sf.ID] = false
		for _, c := range sf.Corners {
			if c != v1 {
				a.Attach(c, sf.ID)
			}
		}
	}
	a.Set(v1, r.Removed.Faces)
	a.Set(v0, r.Retained.Faces)

	s.Positions[v0] = r.Retained.Position
	s.Positions[v1] = r.Removed.Position
	refreshAround(s, a, []int{v0, v1}, nil)
	s.Normals[v0] = r.Retained.Normal
	s.Normals[v1] = r.Removed.Normal
}

// refreshAround recomputes the faces of every center, then the normals of
// the centers, the corners of their faces and extra. All faces are updated
// before any vertex normal reads them.
func refreshAround(s *Store, a *Adjacency, centers []int, extra []int) {
	verts := append(slices.Clone(centers), extra...)
	for _, v := range centers {
		for _, f := range a.IncidentFaces(v) {
			s.UpdateFace(f)
			verts = append(verts, s.Faces[f][:]...)
		}
	}
	slices.Sort(verts)
	for _, u := range slices.Compact(verts) {
		if a.IsLive(u) {
			s.UpdateVertexNormal(u, a.IncidentFaces(u))
		}
	}
}
