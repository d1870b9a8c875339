package formats

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const testSquareSTL = `solid square
facet normal 0 0 1
  outer loop
    vertex 0 0 0
    vertex 1 0 0
    vertex 1 1 0
  endloop
endfacet
facet normal 0 0 1
  outer loop
    vertex 0 0 0
    vertex 1 1 0
    vertex 0 1 0
  endloop
endfacet
endsolid square
`

func TestReadSTL_WeldsSharedCorners(t *testing.T) {
	m, err := ReadSTL(strings.NewReader(testSquareSTL))
	if err != nil {
		t.Fatalf("ReadSTL failed: %v", err)
	}
	if len(m.Vertices) != 4 {
		t.Errorf("expected 4 welded vertices, got %d", len(m.Vertices))
	}
	if len(m.Faces) != 2 {
		t.Fatalf("expected 2 faces, got %d", len(m.Faces))
	}
	if m.Faces[1] != [3]int{0, 2, 3} {
		t.Errorf("expected second face [0 2 3], got %v", m.Faces[1])
	}
}

func TestWriteSTL_RoundTrip(t *testing.T) {
	m, err := ParseOFF([]byte(testTetraOFF))
	if err != nil {
		t.Fatalf("ParseOFF failed: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteSTL(&buf, "tetra", m); err != nil {
		t.Fatalf("WriteSTL failed: %v", err)
	}
	got, err := ReadSTL(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadSTL failed: %v", err)
	}
	if len(got.Vertices) != 4 || len(got.Faces) != 4 {
		t.Errorf("expected 4 vertices and 4 faces, got %d and %d", len(got.Vertices), len(got.Faces))
	}
}

func TestNewSTLSolid_Normals(t *testing.T) {
	m := &OFF{
		Vertices: []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Faces:    [][3]int{{0, 1, 2}},
	}
	solid := NewSTLSolid("tri", m)
	if len(solid.Triangles) != 1 {
		t.Fatalf("expected 1 triangle, got %d", len(solid.Triangles))
	}
	if n := solid.Triangles[0].Normal; n[2] != 1 {
		t.Errorf("expected +z normal, got %v", n)
	}
}

func TestWriteSTLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "square.stl")
	m, _ := ReadSTL(strings.NewReader(testSquareSTL))
	if err := WriteSTLFile(path, "square", m); err != nil {
		t.Fatalf("WriteSTLFile failed: %v", err)
	}
	got, err := ParseSTLFile(path)
	if err != nil {
		t.Fatalf("ParseSTLFile failed: %v", err)
	}
	if len(got.Faces) != 2 {
		t.Errorf("expected 2 faces, got %d", len(got.Faces))
	}
}
