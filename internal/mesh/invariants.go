package mesh

import (
	"fmt"
	"math"
)

// Validate checks the mesh for internal consistency: live faces and the
// adjacency index agree, no live face references a removed vertex or
// repeats a corner, the live face counter is right and every ranked pair
// joins two live vertices. It returns an *InvariantError describing the
// first problem found.
func (m *Mesh) Validate() error {
	fail := func(format string, args ...any) error {
		return &InvariantError{Op: "validate", Detail: fmt.Sprintf(format, args...)}
	}
	s := m.store

	for _, v := range m.adj.Vertices() {
		for _, f := range m.adj.IncidentFaces(v) {
			if f < 0 || f >= len(s.Faces) {
				return fail("vertex %d lists unknown face %d", v, f)
			}
			if s.Degenerate[f] {
				return fail("vertex %d lists degenerate face %d", v, f)
			}
			if !s.HasCorner(f, v) {
				return fail("vertex %d lists face %d %v that does not use it", v, f, s.Faces[f])
			}
		}
	}

	live := 0
	for f, c := range s.Faces {
		if s.Degenerate[f] {
			continue
		}
		live++
		if c[0] == c[1] || c[1] == c[2] || c[0] == c[2] {
			return fail("face %d repeats a corner %v", f, c)
		}
		for _, v := range c {
			if !m.adj.IsLive(v) {
				return fail("face %d uses removed vertex %d", f, v)
			}
			if !m.adj.IncidentFaces(v).Contains(f) {
				return fail("face %d missing from vertex %d", f, v)
			}
		}
	}
	if live != m.liveFaces {
		return fail("live face counter is %d, counted %d", m.liveFaces, live)
	}

	r := m.ranking
	if len(r.byPair) != len(r.heap) {
		return fail("ranking indexes %d pairs but heap holds %d", len(r.byPair), len(r.heap))
	}
	for i, c := range r.heap {
		if c.Index != i {
			return fail("candidate %v has heap index %d, want %d", c.Pair, c.Index, i)
		}
		if c.Pair.V0 >= c.Pair.V1 {
			return fail("candidate %v is not canonical", c.Pair)
		}
		if !m.adj.IsLive(c.Pair.V0) || !m.adj.IsLive(c.Pair.V1) {
			return fail("candidate %v has a removed endpoint", c.Pair)
		}
		if math.IsNaN(c.Cost) {
			return fail("candidate %v has NaN cost", c.Pair)
		}
	}
	return nil
}
