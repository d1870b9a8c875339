package formats

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl64"
)

// OFF format errors.
var (
	ErrInvalidOFFMagic  = errors.New("invalid OFF magic: expected 'OFF'")
	ErrTruncatedOFFData = errors.New("truncated OFF data")
	ErrInvalidOFFData   = errors.New("invalid OFF data")
)

// OFF is a triangle mesh in Object File Format.
type OFF struct {
	Vertices []mgl64.Vec3
	Faces    [][3]int
}

// ParseOFF parses an OFF file from raw bytes.
func ParseOFF(data []byte) (*OFF, error) {
	return ReadOFF(bytes.NewReader(data))
}

// ParseOFFFile parses an OFF file from disk.
func ParseOFFFile(path string) (*OFF, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OFF file: %w", err)
	}
	m, err := ParseOFF(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ReadOFF reads an OFF mesh. Only triangular faces are accepted.
func ReadOFF(r io.Reader) (*OFF, error) {
	lr := newLineReader(r)

	f, err := lr.fields()
	if err != nil {
		return nil, truncated(err, ErrTruncatedOFFData, lr)
	}
	if f[0] != "OFF" {
		return nil, ErrInvalidOFFMagic
	}

	// Counts usually sit on their own line but may follow the keyword.
	counts := f[1:]
	if len(counts) == 0 {
		if counts, err = lr.fields(); err != nil {
			return nil, truncated(err, ErrTruncatedOFFData, lr)
		}
	}
	if len(counts) < 2 {
		return nil, lr.errorf(ErrMalformedLine, "expected vertex and face counts")
	}
	n, err := parseInts(counts[:2])
	if err != nil {
		return nil, lr.errorf(err, "counts")
	}
	nv, nf := n[0], n[1]
	if nv < 0 || nf < 0 {
		return nil, lr.errorf(ErrInvalidOFFData, "negative counts %d %d", nv, nf)
	}

	m := &OFF{
		Vertices: make([]mgl64.Vec3, 0, capHint(nv)),
		Faces:    make([][3]int, 0, capHint(nf)),
	}

	for i := 0; i < nv; i++ {
		f, err := lr.fields()
		if err != nil {
			return nil, truncated(err, ErrTruncatedOFFData, lr)
		}
		if len(f) < 3 {
			return nil, lr.errorf(ErrMalformedLine, "vertex %d: expected 3 coordinates", i)
		}
		xyz, err := parseFloats(f[:3])
		if err != nil {
			return nil, lr.errorf(err, "vertex %d", i)
		}
		m.Vertices = append(m.Vertices, mgl64.Vec3{xyz[0], xyz[1], xyz[2]})
	}

	for i := 0; i < nf; i++ {
		f, err := lr.fields()
		if err != nil {
			return nil, truncated(err, ErrTruncatedOFFData, lr)
		}
		idx, err := parseInts(f[:min(len(f), 4)])
		if err != nil {
			return nil, lr.errorf(err, "face %d", i)
		}
		if idx[0] != 3 {
			return nil, lr.errorf(ErrInvalidOFFData, "face %d has %d corners, only triangles are supported", i, idx[0])
		}
		if len(idx) < 4 {
			return nil, lr.errorf(ErrMalformedLine, "face %d: expected 3 indices", i)
		}
		var face [3]int
		for c := 0; c < 3; c++ {
			v := idx[c+1]
			if v < 0 || v >= nv {
				return nil, lr.errorf(ErrInvalidOFFData, "face %d: vertex index %d out of range", i, v)
			}
			face[c] = v
		}
		m.Faces = append(m.Faces, face)
	}

	return m, nil
}

// WriteOFF writes m in OFF format.
func WriteOFF(w io.Writer, m *OFF) error {
	if _, err := fmt.Fprintf(w, "OFF\n%d %d 0\n", len(m.Vertices), len(m.Faces)); err != nil {
		return err
	}
	for _, v := range m.Vertices {
		if _, err := fmt.Fprintf(w, "%s %s %s\n", formatFloat(v[0]), formatFloat(v[1]), formatFloat(v[2])); err != nil {
			return err
		}
	}
	for _, f := range m.Faces {
		if _, err := fmt.Fprintf(w, "3 %d %d %d\n", f[0], f[1], f[2]); err != nil {
			return err
		}
	}
	return nil
}

// WriteOFFFile writes m to path, replacing any existing file atomically.
func WriteOFFFile(path string, m *OFF) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		return WriteOFF(w, m)
	})
}

// truncated maps end of input to the format's truncation sentinel.
func truncated(err, sentinel error, lr *lineReader) error {
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected end of input after line %d", sentinel, lr.line)
	}
	return err
}
