package mesh

import (
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/myronyliu/Rainbow-Cow/internal/logger"
)

// SetDistanceThreshold changes the pair distance threshold and rebuilds the
// ranking. Pairs are tracked when they share an edge or lie within t of each
// other; t <= 0 tracks edges only.
func (m *Mesh) SetDistanceThreshold(t float64) {
	if math.IsNaN(t) {
		t = 0
	}
	m.threshold = t
	m.ranking.Clear()
	for _, v := range m.adj.Vertices() {
		m.rescore(v)
	}
	logger.Info("distance threshold set",
		zap.Float64("threshold", t),
		zap.Int("pairs", m.ranking.Len()))
}

// QuadricSimplify collapses the cheapest ranked pair. When even the cheapest
// pair has no quadric optimum, aggressive meshes collapse that pair toward
// the boundary and other meshes collapse a random edge at its midpoint.
func (m *Mesh) QuadricSimplify() error {
	c, ok := m.ranking.Cheapest()
	if !ok {
		logger.Warn("no vertex pairs satisfy the distance threshold, consider increasing it")
		return ErrNoCandidates
	}
	if !math.IsInf(c.Cost, 1) {
		return m.collapse("quadric", c.Pair.V0, c.Pair.V1, Quadric)
	}

	if !m.opts.Aggressive {
		return m.CollapseRandomEdge(Midpoint)
	}
	keep, drop, method := m.boundaryCollapse(c.Pair)
	return m.collapse("quadric", keep, drop, method)
}

// boundaryCollapse decides how to collapse a pair without a quadric optimum:
// a boundary endpoint stays put, otherwise both meet at the midpoint.
func (m *Mesh) boundaryCollapse(p Pair) (keep, drop int, method Method) {
	b0, b1 := m.AtBoundary(p.V0), m.AtBoundary(p.V1)
	switch {
	case b0 && !b1:
		return p.V0, p.V1, Binary
	case b1 && !b0:
		return p.V1, p.V0, Binary
	case b0 && b1:
		return p.V0, p.V1, Binary
	default:
		return p.V0, p.V1, Midpoint
	}
}

// RandomEdge picks a uniformly random live vertex that has faces, a random
// face around it and a random other corner of that face. The pair is
// returned with the smaller id first.
func (m *Mesh) RandomEdge() (Pair, error) {
	if m.liveFaces == 0 {
		return Pair{}, ErrNoCandidates
	}
	for {
		v0 := m.adj.At(m.rng.Intn(m.adj.Len()))
		faces := m.adj.IncidentFaces(v0)
		if len(faces) == 0 {
			continue
		}
		f := faces[m.rng.Intn(len(faces))]
		var others [2]int
		n := 0
		for _, c := range m.store.Faces[f] {
			if c != v0 {
				others[n] = c
				n++
			}
		}
		return MakePair(v0, others[m.rng.Intn(2)]), nil
	}
}

// CollapseRandomEdge collapses a random edge with the given method.
func (m *Mesh) CollapseRandomEdge(method Method) error {
	if m.adj.Len() < 3 {
		err := &TopologyError{Op: "random", V0: -1, V1: -1, Err: ErrTooFewVertices}
		logger.Warn("collapse rejected", zap.Error(err))
		return err
	}
	p, err := m.RandomEdge()
	if err != nil {
		logger.Warn("no edge left to collapse", zap.Error(err))
		return err
	}
	return m.collapse("random", p.V0, p.V1, method)
}

// SimplifyN runs QuadricSimplify n times, stopping at the first error. It
// returns the number of steps performed.
func (m *Mesh) SimplifyN(n int) (int, error) {
	for i := 0; i < n; i++ {
		if err := m.QuadricSimplify(); err != nil {
			return i, err
		}
	}
	return n, nil
}

// SimplifyTo runs QuadricSimplify until at most target vertices are live.
func (m *Mesh) SimplifyTo(target int) (int, error) {
	steps := 0
	for m.adj.Len() > target {
		if err := m.QuadricSimplify(); err != nil {
			return steps, err
		}
		steps++
	}
	return steps, nil
}

// SimplifyAll keeps simplifying while fewer steps than ranked pairs have
// been taken, the way a full reduction for a progressive mesh file is run.
// Running out of vertices or candidates ends the reduction without error.
func (m *Mesh) SimplifyAll() (int, error) {
	steps := 0
	for steps < m.ranking.Len() {
		err := m.QuadricSimplify()
		if errors.Is(err, ErrTooFewVertices) || errors.Is(err, ErrNoCandidates) {
			break
		}
		if err != nil {
			return steps, err
		}
		steps++
	}
	logger.Info("simplification finished",
		zap.Int("steps", steps),
		zap.Int("live_vertices", m.adj.Len()),
		zap.Int("live_faces", m.liveFaces))
	return steps, nil
}

// QuadricBatchSize is the number of quadric steps one interactive batch
// performs: half the square root of the candidate count.
func (m *Mesh) QuadricBatchSize() int {
	pairs := m.ranking.Len()
	n := int(math.Sqrt(float64(pairs)) / 2)
	if n == 0 {
		n = min(pairs, 1)
	}
	return n
}

// RandomBatchSize is the number of random collapses one interactive batch
// performs: one percent of the live vertices, at least one.
func (m *Mesh) RandomBatchSize() int {
	return max(1, m.adj.Len()/100)
}
