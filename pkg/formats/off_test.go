package formats

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const testTetraOFF = `OFF
# a tetrahedron
4 4 6
0 0 0
1 0 0
0 1 0

0 0 1
3 0 2 1
3 0 1 3
3 1 2 3
3 0 3 2
`

func TestParseOFF_ValidFile(t *testing.T) {
	m, err := ParseOFF([]byte(testTetraOFF))
	if err != nil {
		t.Fatalf("ParseOFF failed: %v", err)
	}

	if len(m.Vertices) != 4 {
		t.Errorf("expected 4 vertices, got %d", len(m.Vertices))
	}
	if len(m.Faces) != 4 {
		t.Errorf("expected 4 faces, got %d", len(m.Faces))
	}
	if m.Vertices[3] != (mgl64.Vec3{0, 0, 1}) {
		t.Errorf("expected vertex 3 at (0, 0, 1), got %v", m.Vertices[3])
	}
	if m.Faces[1] != [3]int{0, 1, 3} {
		t.Errorf("expected face 1 = [0 1 3], got %v", m.Faces[1])
	}
}

func TestParseOFF_CountsOnHeaderLine(t *testing.T) {
	data := "OFF 3 1 0\n0 0 0\n1 0 0\n0 1 0\n3 0 1 2\n"
	m, err := ParseOFF([]byte(data))
	if err != nil {
		t.Fatalf("ParseOFF failed: %v", err)
	}
	if len(m.Vertices) != 3 || len(m.Faces) != 1 {
		t.Errorf("expected 3 vertices and 1 face, got %d and %d", len(m.Vertices), len(m.Faces))
	}
}

func TestParseOFF_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"empty", "", ErrTruncatedOFFData},
		{"bad magic", "PLY\n3 1\n", ErrInvalidOFFMagic},
		{"missing counts", "OFF\n", ErrTruncatedOFFData},
		{"short vertex list", "OFF\n3 1\n0 0 0\n1 0 0\n", ErrTruncatedOFFData},
		{"bad coordinate", "OFF\n1 0\n0 x 0\n", ErrMalformedLine},
		{"quad face", "OFF\n4 1\n0 0 0\n1 0 0\n1 1 0\n0 1 0\n4 0 1 2 3\n", ErrInvalidOFFData},
		{"index out of range", "OFF\n3 1\n0 0 0\n1 0 0\n0 1 0\n3 0 1 3\n", ErrInvalidOFFData},
		{"missing face", "OFF\n3 2\n0 0 0\n1 0 0\n0 1 0\n3 0 1 2\n", ErrTruncatedOFFData},
		{"huge vertex count", "OFF\n999999999999999 0\n", ErrTruncatedOFFData},
		{"huge face count", "OFF\n3 999999999999999\n0 0 0\n1 0 0\n0 1 0\n", ErrTruncatedOFFData},
		{"count overflows int", "OFF\n99999999999999999999 0\n", ErrMalformedLine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOFF([]byte(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestWriteOFF_RoundTrip(t *testing.T) {
	m := &OFF{
		Vertices: []mgl64.Vec3{{0.1, 0.2, 0.3}, {1e-17, -4.5, 1.0 / 3.0}, {7, 8, 9}},
		Faces:    [][3]int{{0, 1, 2}},
	}

	var buf bytes.Buffer
	if err := WriteOFF(&buf, m); err != nil {
		t.Fatalf("WriteOFF failed: %v", err)
	}
	got, err := ParseOFF(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseOFF failed: %v", err)
	}
	for i := range m.Vertices {
		if got.Vertices[i] != m.Vertices[i] {
			t.Errorf("vertex %d: expected %v, got %v", i, m.Vertices[i], got.Vertices[i])
		}
	}
	if got.Faces[0] != m.Faces[0] {
		t.Errorf("expected face %v, got %v", m.Faces[0], got.Faces[0])
	}
}

func TestWriteOFFFile_ReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mesh.off")
	if err := os.WriteFile(path, []byte("stale"), 0644); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}

	m, _ := ParseOFF([]byte(testTetraOFF))
	if err := WriteOFFFile(path, m); err != nil {
		t.Fatalf("WriteOFFFile failed: %v", err)
	}
	got, err := ParseOFFFile(path)
	if err != nil {
		t.Fatalf("ParseOFFFile failed: %v", err)
	}
	if len(got.Faces) != 4 {
		t.Errorf("expected 4 faces, got %d", len(got.Faces))
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the target file in %s, found %d entries", dir, len(entries))
	}
}
