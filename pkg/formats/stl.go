package formats

import (
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hschendel/stl"

	pmath "github.com/myronyliu/Rainbow-Cow/pkg/math"
)

// STL stores each triangle with its own three corners, so shared vertices
// are recovered by welding corners with identical coordinates. STL stores
// single precision floats; positions lose precision on export.

// ReadSTL reads an ASCII or binary STL stream as an indexed mesh. The
// reader must seek because the ASCII and binary encodings are told apart by
// reading ahead.
func ReadSTL(r io.ReadSeeker) (*OFF, error) {
	solid, err := stl.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading STL: %w", err)
	}
	return weldSTL(solid), nil
}

// ParseSTLFile reads an STL file from disk as an indexed mesh.
func ParseSTLFile(path string) (*OFF, error) {
	solid, err := stl.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading STL file %s: %w", path, err)
	}
	return weldSTL(solid), nil
}

func weldSTL(solid *stl.Solid) *OFF {
	m := &OFF{Faces: make([][3]int, 0, len(solid.Triangles))}
	index := make(map[stl.Vec3]int, len(solid.Triangles)/2)
	for _, t := range solid.Triangles {
		var face [3]int
		for c, v := range t.Vertices {
			id, ok := index[v]
			if !ok {
				id = len(m.Vertices)
				index[v] = id
				m.Vertices = append(m.Vertices, mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])})
			}
			face[c] = id
		}
		m.Faces = append(m.Faces, face)
	}
	return m
}

// NewSTLSolid converts an indexed mesh to an STL solid with per-face normals.
func NewSTLSolid(name string, m *OFF) *stl.Solid {
	solid := &stl.Solid{
		Name:      name,
		Triangles: make([]stl.Triangle, 0, len(m.Faces)),
	}
	for _, f := range m.Faces {
		p0, p1, p2 := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		n, _ := pmath.TriangleNormal(p0, p1, p2)
		solid.Triangles = append(solid.Triangles, stl.Triangle{
			Normal:   toSTLVec(n),
			Vertices: [3]stl.Vec3{toSTLVec(p0), toSTLVec(p1), toSTLVec(p2)},
		})
	}
	return solid
}

// WriteSTL writes m as a binary STL stream.
func WriteSTL(w io.Writer, name string, m *OFF) error {
	return NewSTLSolid(name, m).WriteAll(w)
}

// WriteSTLFile writes m to path as binary STL, atomically.
func WriteSTLFile(path, name string, m *OFF) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		return WriteSTL(w, name, m)
	})
}

func toSTLVec(v mgl64.Vec3) stl.Vec3 {
	return stl.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}
