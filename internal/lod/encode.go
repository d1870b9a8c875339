// Package lod turns collapse histories into progressive meshes and navigates
// a progressive mesh between its coarse base and full detail.
package lod

import (
	"errors"
	"fmt"
	"slices"

	"github.com/myronyliu/Rainbow-Cow/internal/mesh"
	"github.com/myronyliu/Rainbow-Cow/pkg/formats"
)

// ErrIncompleteHistory is returned when a mesh was simplified without
// recording every collapse.
var ErrIncompleteHistory = errors.New("collapse history is incomplete")

// Encode captures the current live mesh as the coarse base and the collapse
// records of m as the log. m must have recorded every collapse since load.
func Encode(m *mesh.Mesh) (*formats.PM, error) {
	recs := m.Records()
	if removed := m.VertexCount() - m.LiveVertexCount(); removed != len(recs) {
		return nil, fmt.Errorf("%w: %d vertices removed, %d collapses recorded",
			ErrIncompleteHistory, removed, len(recs))
	}

	pm := &formats.PM{
		FullVertices: m.VertexCount(),
		FullFaces:    m.FaceCount(),
		Bounds:       m.Bounds(),
		Vertices:     make([]formats.PMVertex, 0, m.LiveVertexCount()),
		Faces:        make([]formats.PMFace, 0, m.LiveFaceCount()),
		Records:      make([]formats.PMRecord, 0, len(recs)),
	}
	for _, v := range m.Adjacency().Vertices() {
		pm.Vertices = append(pm.Vertices, formats.PMVertex{
			ID:       v,
			Position: m.Position(v),
			Normal:   m.Normal(v),
		})
	}
	s := m.Store()
	for _, f := range s.LiveFaces() {
		pm.Faces = append(pm.Faces, formats.PMFace{ID: f, Corners: s.Faces[f]})
	}
	for _, r := range recs {
		pm.Records = append(pm.Records, toPMRecord(r))
	}
	return pm, nil
}

func toPMRecord(r mesh.Record) formats.PMRecord {
	out := formats.PMRecord{
		Removed:  toPMSnapshot(r.Removed),
		Retained: toPMSnapshot(r.Retained),
		Merged:   toPMSnapshot(r.Merged),
	}
	for _, sf := range r.Shared {
		out.Shared = append(out.Shared, formats.PMFace{ID: sf.ID, Corners: sf.Corners})
	}
	return out
}

func toPMSnapshot(s mesh.VertexState) formats.PMSnapshot {
	return formats.PMSnapshot{
		ID:       s.ID,
		Position: s.Position,
		Normal:   s.Normal,
		Faces:    slices.Clone(s.Faces),
	}
}

// fromPMRecord converts a decoded record back to engine form. Face lists
// from files are sorted since the engine relies on sorted face sets.
func fromPMRecord(r formats.PMRecord) mesh.Record {
	out := mesh.Record{
		Removed:  fromPMSnapshot(r.Removed),
		Retained: fromPMSnapshot(r.Retained),
		Merged:   fromPMSnapshot(r.Merged),
	}
	for _, f := range r.Shared {
		out.Shared = append(out.Shared, mesh.SharedFace{ID: f.ID, Corners: f.Corners})
	}
	return out
}

func fromPMSnapshot(s formats.PMSnapshot) mesh.VertexState {
	faces := mesh.FaceSet(slices.Clone(s.Faces))
	slices.Sort(faces)
	return mesh.VertexState{
		ID:       s.ID,
		Position: s.Position,
		Normal:   s.Normal,
		Faces:    slices.Compact(faces).Clone(),
	}
}
