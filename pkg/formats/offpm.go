package formats

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	pmath "github.com/myronyliu/Rainbow-Cow/pkg/math"
)

// Progressive mesh errors, shared by the text and binary encodings.
var (
	ErrInvalidPMMagic  = errors.New("invalid progressive mesh magic: expected 'OFFPM'")
	ErrTruncatedPMData = errors.New("truncated progressive mesh data")
	ErrInvalidPMData   = errors.New("invalid progressive mesh data")
)

// PMVertex is a live vertex of the coarse base mesh.
type PMVertex struct {
	ID       int
	Position mgl64.Vec3
	Normal   mgl64.Vec3
}

// PMFace is a face id with its corner vertex ids.
type PMFace struct {
	ID      int
	Corners [3]int
}

// PMSnapshot captures one vertex around a collapse: its position, normal and
// sorted incident face ids.
type PMSnapshot struct {
	ID       int
	Position mgl64.Vec3
	Normal   mgl64.Vec3
	Faces    []int
}

// PMRecord describes a single edge collapse. Removed and Retained hold the
// pre-collapse state of both endpoints, Merged the retained vertex after the
// collapse, and Shared the faces that became degenerate with their original
// corners.
type PMRecord struct {
	Removed  PMSnapshot
	Retained PMSnapshot
	Merged   PMSnapshot
	Shared   []PMFace
}

// PM is a progressive mesh: a coarse base mesh plus the collapse log that
// produced it, oldest collapse first.
type PM struct {
	FullVertices int
	FullFaces    int
	Bounds       pmath.Bounds
	Vertices     []PMVertex
	Faces        []PMFace
	Records      []PMRecord
}

// Validate checks the structural consistency of the progressive mesh. Every
// collapse removes exactly one vertex and eliminates only its shared faces,
// so the base counts plus the log must add up to the full counts.
func (pm *PM) Validate() error {
	if pm.FullVertices < 0 || pm.FullFaces < 0 {
		return fmt.Errorf("%w: negative full counts", ErrInvalidPMData)
	}
	if got := len(pm.Vertices) + len(pm.Records); got != pm.FullVertices {
		return fmt.Errorf("%w: %d base vertices + %d records != %d full vertices",
			ErrInvalidPMData, len(pm.Vertices), len(pm.Records), pm.FullVertices)
	}
	shared := 0
	for _, r := range pm.Records {
		shared += len(r.Shared)
	}
	if got := len(pm.Faces) + shared; got != pm.FullFaces {
		return fmt.Errorf("%w: %d base faces + %d shared faces != %d full faces",
			ErrInvalidPMData, len(pm.Faces), shared, pm.FullFaces)
	}

	vertexID := func(id int) error {
		if id < 0 || id >= pm.FullVertices {
			return fmt.Errorf("%w: vertex id %d out of range", ErrInvalidPMData, id)
		}
		return nil
	}
	faceID := func(id int) error {
		if id < 0 || id >= pm.FullFaces {
			return fmt.Errorf("%w: face id %d out of range", ErrInvalidPMData, id)
		}
		return nil
	}
	face := func(f PMFace) error {
		if err := faceID(f.ID); err != nil {
			return err
		}
		for _, c := range f.Corners {
			if err := vertexID(c); err != nil {
				return err
			}
		}
		return nil
	}
	snapshot := func(s PMSnapshot) error {
		if err := vertexID(s.ID); err != nil {
			return err
		}
		for _, f := range s.Faces {
			if err := faceID(f); err != nil {
				return err
			}
		}
		return nil
	}

	live := make(map[int]bool, len(pm.Vertices))
	for _, v := range pm.Vertices {
		if err := vertexID(v.ID); err != nil {
			return err
		}
		if live[v.ID] {
			return fmt.Errorf("%w: duplicate vertex id %d", ErrInvalidPMData, v.ID)
		}
		live[v.ID] = true
	}
	seenFace := make(map[int]bool, len(pm.Faces))
	for _, f := range pm.Faces {
		if err := face(f); err != nil {
			return err
		}
		if seenFace[f.ID] {
			return fmt.Errorf("%w: duplicate face id %d", ErrInvalidPMData, f.ID)
		}
		seenFace[f.ID] = true
		for _, c := range f.Corners {
			if !live[c] {
				return fmt.Errorf("%w: face %d references vertex %d missing from the base mesh", ErrInvalidPMData, f.ID, c)
			}
		}
	}

	removed := make(map[int]bool, len(pm.Records))
	for i, r := range pm.Records {
		for _, s := range []PMSnapshot{r.Removed, r.Retained, r.Merged} {
			if err := snapshot(s); err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
		}
		if r.Removed.ID == r.Retained.ID || r.Merged.ID != r.Retained.ID {
			return fmt.Errorf("%w: record %d has inconsistent vertex ids", ErrInvalidPMData, i)
		}
		if live[r.Removed.ID] {
			return fmt.Errorf("%w: record %d removes vertex %d still in the base mesh", ErrInvalidPMData, i, r.Removed.ID)
		}
		if removed[r.Removed.ID] {
			return fmt.Errorf("%w: record %d removes vertex %d twice", ErrInvalidPMData, i, r.Removed.ID)
		}
		removed[r.Removed.ID] = true
		for _, f := range r.Shared {
			if err := face(f); err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
			if seenFace[f.ID] {
				return fmt.Errorf("%w: record %d eliminates face %d twice", ErrInvalidPMData, i, f.ID)
			}
			seenFace[f.ID] = true
		}
	}
	return nil
}

// ParsePM parses a text progressive mesh from raw bytes.
func ParsePM(data []byte) (*PM, error) {
	return ReadPM(bytes.NewReader(data))
}

// ParsePMFile parses a text progressive mesh from disk.
func ParsePMFile(path string) (*PM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OFFPM file: %w", err)
	}
	pm, err := ParsePM(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pm, nil
}

// ReadPM reads a text progressive mesh and validates it.
func ReadPM(r io.Reader) (*PM, error) {
	lr := newLineReader(r)

	f, err := lr.fields()
	if err != nil {
		return nil, truncated(err, ErrTruncatedPMData, lr)
	}
	if f[0] != "OFFPM" {
		return nil, ErrInvalidPMMagic
	}

	full, err := readInts(lr, 2)
	if err != nil {
		return nil, err
	}
	counts, err := readInts(lr, 3)
	if err != nil {
		return nil, err
	}
	for _, c := range counts {
		if c < 0 {
			return nil, lr.errorf(ErrInvalidPMData, "negative count %d", c)
		}
	}

	box, err := readFloats(lr, 6)
	if err != nil {
		return nil, err
	}

	pm := &PM{
		FullVertices: full[0],
		FullFaces:    full[1],
		Bounds: pmath.Bounds{
			Min: mgl64.Vec3{box[0], box[2], box[4]},
			Max: mgl64.Vec3{box[1], box[3], box[5]},
		},
		Vertices: make([]PMVertex, 0, capHint(counts[0])),
		Faces:    make([]PMFace, 0, capHint(counts[1])),
		Records:  make([]PMRecord, 0, capHint(counts[2])),
	}

	for i := 0; i < counts[0]; i++ {
		s, err := readSnapshot(lr)
		if err != nil {
			return nil, err
		}
		if len(s.Faces) != 0 {
			return nil, lr.errorf(ErrMalformedLine, "vertex line has %d extra fields", len(s.Faces))
		}
		pm.Vertices = append(pm.Vertices, PMVertex{ID: s.ID, Position: s.Position, Normal: s.Normal})
	}

	for i := 0; i < counts[1]; i++ {
		v, err := readInts(lr, 4)
		if err != nil {
			return nil, err
		}
		pm.Faces = append(pm.Faces, PMFace{ID: v[0], Corners: [3]int{v[1], v[2], v[3]}})
	}

	for i := 0; i < counts[2]; i++ {
		var rec PMRecord
		for _, s := range []*PMSnapshot{&rec.Removed, &rec.Retained, &rec.Merged} {
			if *s, err = readSnapshot(lr); err != nil {
				return nil, err
			}
		}
		if rec.Shared, err = readShared(lr); err != nil {
			return nil, err
		}
		pm.Records = append(pm.Records, rec)
	}

	if err := pm.Validate(); err != nil {
		return nil, err
	}
	return pm, nil
}

func readInts(lr *lineReader, n int) ([]int, error) {
	f, err := lr.fields()
	if err != nil {
		return nil, truncated(err, ErrTruncatedPMData, lr)
	}
	if len(f) != n {
		return nil, lr.errorf(ErrMalformedLine, "expected %d integers, got %d fields", n, len(f))
	}
	v, err := parseInts(f)
	if err != nil {
		return nil, lr.errorf(err, "")
	}
	return v, nil
}

func readFloats(lr *lineReader, n int) ([]float64, error) {
	f, err := lr.fields()
	if err != nil {
		return nil, truncated(err, ErrTruncatedPMData, lr)
	}
	if len(f) != n {
		return nil, lr.errorf(ErrMalformedLine, "expected %d numbers, got %d fields", n, len(f))
	}
	v, err := parseFloats(f)
	if err != nil {
		return nil, lr.errorf(err, "")
	}
	return v, nil
}

// readSnapshot reads "id x y z nx ny nz f...".
func readSnapshot(lr *lineReader) (PMSnapshot, error) {
	f, err := lr.fields()
	if err != nil {
		return PMSnapshot{}, truncated(err, ErrTruncatedPMData, lr)
	}
	if len(f) < 7 {
		return PMSnapshot{}, lr.errorf(ErrMalformedLine, "snapshot needs at least 7 fields, got %d", len(f))
	}
	id, err := strconv.Atoi(f[0])
	if err != nil {
		return PMSnapshot{}, lr.errorf(ErrMalformedLine, "snapshot id %q", f[0])
	}
	v, err := parseFloats(f[1:7])
	if err != nil {
		return PMSnapshot{}, lr.errorf(err, "snapshot %d", id)
	}
	faces, err := parseInts(f[7:])
	if err != nil {
		return PMSnapshot{}, lr.errorf(err, "snapshot %d faces", id)
	}
	return PMSnapshot{
		ID:       id,
		Position: mgl64.Vec3{v[0], v[1], v[2]},
		Normal:   mgl64.Vec3{v[3], v[4], v[5]},
		Faces:    faces,
	}, nil
}

// readShared reads the shared-face line "f v0 v1 v2 ...", which is empty
// when the collapsed pair shared no face.
func readShared(lr *lineReader) ([]PMFace, error) {
	line, err := lr.raw()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	v, err := parseInts(strings.Fields(line))
	if err != nil {
		return nil, lr.errorf(err, "shared faces")
	}
	if len(v)%4 != 0 {
		return nil, lr.errorf(ErrMalformedLine, "shared faces need groups of 4 integers, got %d", len(v))
	}
	var out []PMFace
	for i := 0; i < len(v); i += 4 {
		out = append(out, PMFace{ID: v[i], Corners: [3]int{v[i+1], v[i+2], v[i+3]}})
	}
	return out, nil
}

// WritePM writes pm in the text OFFPM encoding.
func WritePM(w io.Writer, pm *PM) error {
	ew := &errWriter{w: w}

	ew.printf("OFFPM\n")
	ew.printf("%d %d\n", pm.FullVertices, pm.FullFaces)
	ew.printf("%d %d %d\n", len(pm.Vertices), len(pm.Faces), len(pm.Records))
	b := pm.Bounds
	ew.printf("%s %s %s %s %s %s\n",
		formatFloat(b.Min[0]), formatFloat(b.Max[0]),
		formatFloat(b.Min[1]), formatFloat(b.Max[1]),
		formatFloat(b.Min[2]), formatFloat(b.Max[2]))

	for _, v := range pm.Vertices {
		ew.printf("%d %s %s\n", v.ID, formatVec3(v.Position), formatVec3(v.Normal))
	}
	for _, f := range pm.Faces {
		ew.printf("%d %d %d %d\n", f.ID, f.Corners[0], f.Corners[1], f.Corners[2])
	}
	for _, r := range pm.Records {
		for _, s := range []PMSnapshot{r.Removed, r.Retained, r.Merged} {
			ew.printf("%d %s %s", s.ID, formatVec3(s.Position), formatVec3(s.Normal))
			for _, f := range s.Faces {
				ew.printf(" %d", f)
			}
			ew.printf("\n")
		}
		for i, f := range r.Shared {
			if i > 0 {
				ew.printf(" ")
			}
			ew.printf("%d %d %d %d", f.ID, f.Corners[0], f.Corners[1], f.Corners[2])
		}
		ew.printf("\n")
	}
	return ew.err
}

// WritePMFile writes pm to path in the text encoding, atomically.
func WritePMFile(path string, pm *PM) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		return WritePM(w, pm)
	})
}

func formatVec3(v mgl64.Vec3) string {
	return formatFloat(v[0]) + " " + formatFloat(v[1]) + " " + formatFloat(v[2])
}

// errWriter remembers the first write error so long emit sequences need a
// single check.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
