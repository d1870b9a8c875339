package mesh

import (
	"container/heap"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Candidate is a tracked vertex pair with its collapse cost and the merge
// position that cost was computed for.
type Candidate struct {
	Pair     Pair
	Cost     float64
	Position mgl64.Vec3
	Index    int // position in the heap
}

// candidateHeap orders candidates by cost, then by pair for determinism.
type candidateHeap []*Candidate

func (h candidateHeap) Len() int { return len(h) }
func (h candidateHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.Cost != b.Cost {
		return a.Cost < b.Cost
	}
	if a.Pair.V0 != b.Pair.V0 {
		return a.Pair.V0 < b.Pair.V0
	}
	return a.Pair.V1 < b.Pair.V1
}
func (h candidateHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].Index = i
	h[j].Index = j
}

func (h *candidateHeap) Push(x interface{}) {
	c := x.(*Candidate)
	c.Index = len(*h)
	*h = append(*h, c)
}

func (h *candidateHeap) Pop() interface{} {
	old := *h
	n := len(old)
	c := old[n-1]
	old[n-1] = nil
	c.Index = -1
	*h = old[:n-1]
	return c
}

// Ranking keeps collapse candidates ordered by cost. Every operation is
// O(log N) in the number of candidates, except RemoveAllContaining which is
// proportional to the pairs of the vertex.
type Ranking struct {
	heap     candidateHeap
	byPair   map[Pair]*Candidate
	byVertex map[int]map[Pair]struct{}
}

// NewRanking returns an empty ranking.
func NewRanking() *Ranking {
	return &Ranking{
		byPair:   make(map[Pair]*Candidate),
		byVertex: make(map[int]map[Pair]struct{}),
	}
}

// Len returns the number of tracked pairs.
func (r *Ranking) Len() int { return len(r.heap) }

// Cheapest returns the lowest-cost candidate without removing it.
func (r *Ranking) Cheapest() (Candidate, bool) {
	if len(r.heap) == 0 {
		return Candidate{}, false
	}
	return *r.heap[0], true
}

// Get returns the candidate for p.
func (r *Ranking) Get(p Pair) (Candidate, bool) {
	c, ok := r.byPair[p]
	if !ok {
		return Candidate{}, false
	}
	return *c, true
}

// Upsert inserts p or updates its cost and position. NaN costs are stored
// as +Inf so they sort last.
func (r *Ranking) Upsert(p Pair, cost float64, pos mgl64.Vec3) {
	if math.IsNaN(cost) {
		cost = math.Inf(1)
	}
	if c, ok := r.byPair[p]; ok {
		c.Position = pos
		if c.Cost != cost {
			c.Cost = cost
			heap.Fix(&r.heap, c.Index)
		}
		return
	}
	c := &Candidate{Pair: p, Cost: cost, Position: pos}
	heap.Push(&r.heap, c)
	r.byPair[p] = c
	r.link(p.V0, p)
	r.link(p.V1, p)
}

// Remove drops p if tracked.
func (r *Ranking) Remove(p Pair) {
	c, ok := r.byPair[p]
	if !ok {
		return
	}
	heap.Remove(&r.heap, c.Index)
	delete(r.byPair, p)
	r.unlink(p.V0, p)
	r.unlink(p.V1, p)
}

// RemoveAllContaining drops every pair with v as an endpoint.
func (r *Ranking) RemoveAllContaining(v int) {
	for p := range r.byVertex[v] {
		r.Remove(p)
	}
}

// PairsOf returns the tracked pairs that contain v, in no particular order.
func (r *Ranking) PairsOf(v int) []Pair {
	set := r.byVertex[v]
	out := make([]Pair, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	return out
}

// Clear drops every candidate.
func (r *Ranking) Clear() {
	r.heap = nil
	r.byPair = make(map[Pair]*Candidate)
	r.byVertex = make(map[int]map[Pair]struct{})
}

func (r *Ranking) link(v int, p Pair) {
	set, ok := r.byVertex[v]
	if !ok {
		set = make(map[Pair]struct{})
		r.byVertex[v] = set
	}
	set[p] = struct{}{}
}

func (r *Ranking) unlink(v int, p Pair) {
	set := r.byVertex[v]
	delete(set, p)
	if len(set) == 0 {
		delete(r.byVertex, v)
	}
}
