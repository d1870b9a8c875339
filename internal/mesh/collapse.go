package mesh

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/myronyliu/Rainbow-Cow/internal/logger"
)

// finCollapse is a queued collapse that removes a fin.
type finCollapse struct {
	keep, drop int
}

// Collapse merges v1 into v0 using method to place the survivor. Unless fins
// are allowed, fins created by the collapse are removed with further
// collapses before Collapse returns. A rejected collapse returns a
// *TopologyError and leaves the mesh unchanged.
func (m *Mesh) Collapse(v0, v1 int, method Method) error {
	return m.collapse("collapse", v0, v1, method)
}

func (m *Mesh) collapse(op string, v0, v1 int, method Method) error {
	if err := m.checkCollapse(op, v0, v1); err != nil {
		logger.Warn("collapse rejected", zap.Error(err))
		return err
	}

	before := m.adj.Len()
	queue := m.collapseOne(v0, v1, method, false)
	performed := 1

	// Fin collapses run only after the primary collapse is fully applied.
	for len(queue) > 0 {
		fc := queue[0]
		queue = queue[1:]
		if err := m.checkCollapse("fin", fc.keep, fc.drop); err != nil {
			logger.Debug("skipping fin collapse", zap.Error(err))
			continue
		}
		logger.Debug("removing fin", zap.Int("keep", fc.keep), zap.Int("drop", fc.drop))
		queue = append(queue, m.collapseOne(fc.keep, fc.drop, method, true)...)
		performed++
	}

	return m.checkLiveCount(op, before, performed)
}

func (m *Mesh) checkCollapse(op string, v0, v1 int) error {
	var err error
	switch {
	case v0 == v1:
		err = ErrSameVertex
	case !m.adj.IsLive(v0) || !m.adj.IsLive(v1):
		err = ErrNotLive
	case m.adj.Len() < 3:
		err = ErrTooFewVertices
	case m.opts.StrictEdges && !m.IsEdge(v0, v1):
		err = ErrNotEdge
	}
	if err != nil {
		return &TopologyError{Op: op, V0: v0, V1: v1, Err: err}
	}
	return nil
}

// collapseOne merges v1 into v0 and returns the fin collapses it calls for.
func (m *Mesh) collapseOne(v0, v1 int, method Method, cascade bool) []finCollapse {
	s := m.store
	var rec Record
	if m.opts.Record {
		rec.Removed = s.snapshot(m.adj, v1)
		rec.Retained = s.snapshot(m.adj, v0)
	}

	pos := m.mergePosition(v0, v1, method, cascade)
	s.Positions[v0] = pos

	// Faces using both endpoints collapse to a line.
	shared := m.adj.IncidentFaces(v0).Intersect(m.adj.IncidentFaces(v1))
	var thirds []int
	for _, f := range shared {
		if m.opts.Record {
			rec.Shared = append(rec.Shared, SharedFace{ID: f, Corners: s.Faces[f]})
		}
		s.Degenerate[f] = true
		m.liveFaces--
		for _, c := range s.Faces[f] {
			m.adj.Detach(c, f)
			if c != v0 && c != v1 && !slices.Contains(thirds, c) {
				thirds = append(thirds, c)
			}
		}
	}

	for _, f := range m.adj.IncidentFaces(v1).Clone() {
		s.ReplaceCorner(f, v1, v0)
		m.adj.Attach(v0, f)
	}
	m.adj.Remove(v1)

	refreshAround(s, m.adj, []int{v0}, thirds)

	m.spatial.Remove(v1)
	m.spatial.Move(v0, pos)
	m.ranking.RemoveAllContaining(v1)

	sortedThirds := slices.Clone(thirds)
	slices.Sort(sortedThirds)
	affected := mergeSorted(m.ring(v0), sortedThirds)
	for _, v := range affected {
		m.quadrics[v] = m.vertexQuadric(v)
	}
	for _, v := range affected {
		m.rescore(v)
	}

	if m.opts.Record {
		rec.Merged = s.snapshot(m.adj, v0)
		m.records = append(m.records, rec)
	}

	logger.Debug("collapsed",
		zap.Int("keep", v0),
		zap.Int("drop", v1),
		zap.Stringer("method", method),
		zap.Int("shared", len(shared)))

	if m.opts.AllowFins {
		return nil
	}
	return m.findFins(v0, thirds)
}

// findFins looks, for each third corner a, for two faces of v0 that also
// share a remaining corner u. Such a pair of faces is a fin; it is removed
// by collapsing a into u and then u into v0.
func (m *Mesh) findFins(v0 int, thirds []int) []finCollapse {
	var out []finCollapse
	for _, a := range thirds {
		if !m.adj.IsLive(a) {
			continue
		}
		count := make(map[int]int)
		var order []int
		for _, f := range m.adj.IncidentFaces(v0) {
			if !m.store.HasCorner(f, a) {
				continue
			}
			for _, u := range m.store.Faces[f] {
				if u == v0 || u == a {
					continue
				}
				if count[u] == 0 {
					order = append(order, u)
				}
				count[u]++
			}
		}
		for _, u := range order {
			if count[u] >= 2 {
				out = append(out, finCollapse{keep: u, drop: a}, finCollapse{keep: v0, drop: u})
				break
			}
		}
	}
	return out
}

// checkLiveCount verifies that each performed collapse removed exactly one
// live vertex.
func (m *Mesh) checkLiveCount(op string, before, performed int) error {
	after := m.adj.Len()
	if after == before-performed {
		if m.opts.Debug {
			if err := m.Validate(); err != nil {
				return err
			}
		}
		return nil
	}

	err := &InvariantError{
		Op:     op,
		Detail: fmt.Sprintf("live vertices went from %d to %d after %d collapses", before, after, performed),
	}
	if m.opts.Debug {
		return err
	}
	logger.Error("invariant violated", zap.Error(err))
	return nil
}
