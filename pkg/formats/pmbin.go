package formats

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"google.golang.org/protobuf/encoding/protowire"
)

// PMB is the binary progressive mesh encoding: the 4-byte magic "PMB\x01"
// followed by a single message in protobuf wire format.
//
//	PM       1 full_vertices varint    2 full_faces varint
//	         3 bounds packed fixed64 (xMin yMin zMin xMax yMax zMax)
//	         4 vertex Vertex (repeated)  5 face Face (repeated)
//	         6 record Record (repeated)
//	Vertex   1 id varint  2 position packed fixed64  3 normal packed fixed64
//	Face     1 id varint  2 corners packed varint
//	Snapshot 1 id varint  2 position  3 normal  4 faces packed varint
//	Record   1 removed Snapshot  2 retained Snapshot  3 merged Snapshot
//	         4 shared Face (repeated)
//
// Floats are IEEE-754 bit patterns, so values survive a round trip exactly.
const pmbMagic = "PMB\x01"

// ErrInvalidPMBMagic is returned when binary data lacks the PMB magic.
var ErrInvalidPMBMagic = errors.New("invalid PMB magic: expected 'PMB\\x01'")

// MarshalPMB encodes pm in the binary encoding.
func MarshalPMB(pm *PM) []byte {
	b := []byte(pmbMagic)
	b = appendVarintField(b, 1, uint64(pm.FullVertices))
	b = appendVarintField(b, 2, uint64(pm.FullFaces))
	b = appendFloats(b, 3, []float64{
		pm.Bounds.Min[0], pm.Bounds.Min[1], pm.Bounds.Min[2],
		pm.Bounds.Max[0], pm.Bounds.Max[1], pm.Bounds.Max[2],
	})
	for _, v := range pm.Vertices {
		var sub []byte
		sub = appendVarintField(sub, 1, uint64(v.ID))
		sub = appendFloats(sub, 2, v.Position[:])
		sub = appendFloats(sub, 3, v.Normal[:])
		b = appendMessage(b, 4, sub)
	}
	for _, f := range pm.Faces {
		b = appendMessage(b, 5, marshalFace(f))
	}
	for _, r := range pm.Records {
		var sub []byte
		sub = appendMessage(sub, 1, marshalSnapshot(r.Removed))
		sub = appendMessage(sub, 2, marshalSnapshot(r.Retained))
		sub = appendMessage(sub, 3, marshalSnapshot(r.Merged))
		for _, f := range r.Shared {
			sub = appendMessage(sub, 4, marshalFace(f))
		}
		b = appendMessage(b, 6, sub)
	}
	return b
}

// WritePMB writes the binary encoding of pm to w.
func WritePMB(w io.Writer, pm *PM) error {
	_, err := w.Write(MarshalPMB(pm))
	return err
}

// WritePMBFile writes pm to path in the binary encoding, atomically.
func WritePMBFile(path string, pm *PM) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		return WritePMB(w, pm)
	})
}

// ParsePMB decodes and validates a binary progressive mesh.
func ParsePMB(data []byte) (*PM, error) {
	if len(data) < len(pmbMagic) {
		return nil, ErrTruncatedPMData
	}
	if string(data[:len(pmbMagic)]) != pmbMagic {
		return nil, ErrInvalidPMBMagic
	}

	pm := &PM{}
	err := decodeFields(data[len(pmbMagic):], func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n := consumeVarint(typ, b)
			pm.FullVertices = int(v)
			return n, nil
		case 2:
			v, n := consumeVarint(typ, b)
			pm.FullFaces = int(v)
			return n, nil
		case 3:
			vals, n, err := consumeFloats(typ, b, 6)
			if err != nil {
				return n, err
			}
			pm.Bounds.Min = mgl64.Vec3{vals[0], vals[1], vals[2]}
			pm.Bounds.Max = mgl64.Vec3{vals[3], vals[4], vals[5]}
			return n, nil
		case 4:
			sub, n := consumeMessage(typ, b)
			if n < 0 {
				return n, nil
			}
			s, err := unmarshalSnapshot(sub)
			if err != nil {
				return n, fmt.Errorf("vertex: %w", err)
			}
			pm.Vertices = append(pm.Vertices, PMVertex{ID: s.ID, Position: s.Position, Normal: s.Normal})
			return n, nil
		case 5:
			sub, n := consumeMessage(typ, b)
			if n < 0 {
				return n, nil
			}
			f, err := unmarshalFace(sub)
			if err != nil {
				return n, fmt.Errorf("face: %w", err)
			}
			pm.Faces = append(pm.Faces, f)
			return n, nil
		case 6:
			sub, n := consumeMessage(typ, b)
			if n < 0 {
				return n, nil
			}
			r, err := unmarshalRecord(sub)
			if err != nil {
				return n, fmt.Errorf("record %d: %w", len(pm.Records), err)
			}
			pm.Records = append(pm.Records, r)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	if err != nil {
		return nil, err
	}
	if err := pm.Validate(); err != nil {
		return nil, err
	}
	return pm, nil
}

// ParsePMBFile reads and decodes a binary progressive mesh from disk.
func ParsePMBFile(path string) (*PM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading PMB file: %w", err)
	}
	pm, err := ParsePMB(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pm, nil
}

func marshalFace(f PMFace) []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(f.ID))
	b = appendInts(b, 2, f.Corners[:])
	return b
}

func marshalSnapshot(s PMSnapshot) []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(s.ID))
	b = appendFloats(b, 2, s.Position[:])
	b = appendFloats(b, 3, s.Normal[:])
	b = appendInts(b, 4, s.Faces)
	return b
}

func unmarshalFace(data []byte) (PMFace, error) {
	var f PMFace
	err := decodeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n := consumeVarint(typ, b)
			f.ID = int(v)
			return n, nil
		case 2:
			vals, n, err := consumeInts(typ, b)
			if err != nil || n < 0 {
				return n, err
			}
			if len(vals) != 3 {
				return n, fmt.Errorf("%w: face %d has %d corners", ErrInvalidPMData, f.ID, len(vals))
			}
			copy(f.Corners[:], vals)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	return f, err
}

func unmarshalSnapshot(data []byte) (PMSnapshot, error) {
	var s PMSnapshot
	err := decodeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n := consumeVarint(typ, b)
			s.ID = int(v)
			return n, nil
		case 2, 3:
			vals, n, err := consumeFloats(typ, b, 3)
			if err != nil || n < 0 {
				return n, err
			}
			v := mgl64.Vec3{vals[0], vals[1], vals[2]}
			if num == 2 {
				s.Position = v
			} else {
				s.Normal = v
			}
			return n, nil
		case 4:
			vals, n, err := consumeInts(typ, b)
			s.Faces = vals
			return n, err
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	return s, err
}

func unmarshalRecord(data []byte) (PMRecord, error) {
	var r PMRecord
	err := decodeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1, 2, 3:
			sub, n := consumeMessage(typ, b)
			if n < 0 {
				return n, nil
			}
			s, err := unmarshalSnapshot(sub)
			if err != nil {
				return n, err
			}
			switch num {
			case 1:
				r.Removed = s
			case 2:
				r.Retained = s
			default:
				r.Merged = s
			}
			return n, nil
		case 4:
			sub, n := consumeMessage(typ, b)
			if n < 0 {
				return n, nil
			}
			f, err := unmarshalFace(sub)
			if err != nil {
				return n, err
			}
			r.Shared = append(r.Shared, f)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	return r, err
}

// decodeFields walks the fields of one message. The callback consumes the
// value of each field and returns the number of bytes used, or a negative
// protowire error code.
func decodeFields(b []byte, field func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return wireError(n)
		}
		b = b[n:]
		n, err := field(num, typ, b)
		if err != nil {
			return err
		}
		if n < 0 {
			return wireError(n)
		}
		b = b[n:]
	}
	return nil
}

func wireError(n int) error {
	return fmt.Errorf("%w: %v", ErrTruncatedPMData, protowire.ParseError(n))
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendFloats(b []byte, num protowire.Number, vals []float64) []byte {
	var packed []byte
	for _, v := range vals {
		packed = protowire.AppendFixed64(packed, math.Float64bits(v))
	}
	return appendMessage(b, num, packed)
}

func appendInts(b []byte, num protowire.Number, vals []int) []byte {
	if len(vals) == 0 {
		return b
	}
	var packed []byte
	for _, v := range vals {
		packed = protowire.AppendVarint(packed, uint64(v))
	}
	return appendMessage(b, num, packed)
}

func consumeVarint(typ protowire.Type, b []byte) (uint64, int) {
	if typ != protowire.VarintType {
		return 0, protowire.ConsumeFieldValue(0, typ, b)
	}
	return protowire.ConsumeVarint(b)
}

func consumeMessage(typ protowire.Type, b []byte) ([]byte, int) {
	if typ != protowire.BytesType {
		return nil, -1
	}
	return protowire.ConsumeBytes(b)
}

func consumeFloats(typ protowire.Type, b []byte, want int) ([]float64, int, error) {
	packed, n := consumeMessage(typ, b)
	if n < 0 {
		return nil, n, nil
	}
	if len(packed) != want*8 {
		return nil, n, fmt.Errorf("%w: expected %d packed doubles, got %d bytes", ErrInvalidPMData, want, len(packed))
	}
	vals := make([]float64, 0, want)
	for len(packed) > 0 {
		v, m := protowire.ConsumeFixed64(packed)
		if m < 0 {
			return nil, m, nil
		}
		vals = append(vals, math.Float64frombits(v))
		packed = packed[m:]
	}
	return vals, n, nil
}

func consumeInts(typ protowire.Type, b []byte) ([]int, int, error) {
	packed, n := consumeMessage(typ, b)
	if n < 0 {
		return nil, n, nil
	}
	var vals []int
	for len(packed) > 0 {
		v, m := protowire.ConsumeVarint(packed)
		if m < 0 {
			return nil, m, nil
		}
		if v > math.MaxInt32 {
			return nil, n, fmt.Errorf("%w: index %d out of range", ErrInvalidPMData, v)
		}
		vals = append(vals, int(v))
		packed = packed[m:]
	}
	return vals, n, nil
}
