package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	pmath "github.com/myronyliu/Rainbow-Cow/pkg/math"
)

// vertexQuadric sums the plane quadrics of the live faces around v. Each
// plane passes through the first corner of its face.
func (m *Mesh) vertexQuadric(v int) pmath.Quadric {
	var q pmath.Quadric
	for _, f := range m.adj.IncidentFaces(v) {
		p0 := m.store.Positions[m.store.Faces[f][0]]
		q = q.Add(pmath.PlaneQuadric(m.store.FaceNormals[f], p0))
	}
	return q
}

// pairCost returns the quadric collapse cost of (v0, v1) and the position
// it was evaluated at. A singular system costs +Inf and merges at the
// midpoint.
func (m *Mesh) pairCost(v0, v1 int) (float64, mgl64.Vec3, bool) {
	q := m.quadrics[v0].Add(m.quadrics[v1])
	if pos, cost, ok := q.Optimum(); ok {
		return cost, pos, true
	}
	return math.Inf(1), pmath.Midpoint(m.store.Positions[v0], m.store.Positions[v1]), false
}

// PairCost exposes the cost model for a single pair.
func (m *Mesh) PairCost(v0, v1 int) (cost float64, pos mgl64.Vec3) {
	cost, pos, _ = m.pairCost(v0, v1)
	return cost, pos
}

// mergePosition places the survivor of collapsing v1 into v0. Inside a fin
// cascade a singular quadric keeps the retained endpoint rather than
// drifting to the midpoint.
func (m *Mesh) mergePosition(v0, v1 int, method Method, cascade bool) mgl64.Vec3 {
	p0, p1 := m.store.Positions[v0], m.store.Positions[v1]
	switch method {
	case Binary:
		return p0
	case Midpoint:
		return pmath.Midpoint(p0, p1)
	}
	_, pos, ok := m.pairCost(v0, v1)
	if !ok && cascade {
		return p0
	}
	return pos
}

// rescore recomputes every tracked pair of v: its edge neighbours plus the
// live vertices within the distance threshold. Pairs of v no longer in that
// set are dropped.
func (m *Mesh) rescore(v int) {
	partners := m.neighbours(v)
	if m.threshold > 0 && !m.opts.StrictEdges {
		partners = mergeSorted(partners, m.spatial.Within(m.store.Positions[v], m.threshold))
	}

	keep := make(map[Pair]bool, len(partners))
	for _, u := range partners {
		if u == v || !m.adj.IsLive(u) {
			continue
		}
		p := MakePair(v, u)
		cost, pos, _ := m.pairCost(p.V0, p.V1)
		m.ranking.Upsert(p, cost, pos)
		keep[p] = true
	}
	for _, p := range m.ranking.PairsOf(v) {
		if !keep[p] {
			m.ranking.Remove(p)
		}
	}
}

// mergeSorted returns the sorted union of two sorted slices.
func mergeSorted(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j == len(b) || (i < len(a) && a[i] < b[j]):
			out = append(out, a[i])
			i++
		case i == len(a) || b[j] < a[i]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}
