package mesh

import (
	"slices"
)

// FaceSet is a sorted set of face ids.
type FaceSet []int

// Contains reports whether f is in the set.
func (s FaceSet) Contains(f int) bool {
	_, ok := slices.BinarySearch(s, f)
	return ok
}

// Clone returns a copy of the set; nil when empty.
func (s FaceSet) Clone() FaceSet {
	if len(s) == 0 {
		return nil
	}
	return slices.Clone(s)
}

// Intersect returns the faces present in both sets.
func (s FaceSet) Intersect(o FaceSet) FaceSet {
	var out FaceSet
	i, j := 0, 0
	for i < len(s) && j < len(o) {
		switch {
		case s[i] < o[j]:
			i++
		case s[i] > o[j]:
			j++
		default:
			out = append(out, s[i])
			i++
			j++
		}
	}
	return out
}

func (s FaceSet) insert(f int) FaceSet {
	i, ok := slices.BinarySearch(s, f)
	if ok {
		return s
	}
	return slices.Insert(s, i, f)
}

func (s FaceSet) remove(f int) FaceSet {
	i, ok := slices.BinarySearch(s, f)
	if !ok {
		return s
	}
	return slices.Delete(s, i, i+1)
}

// Adjacency maps each live vertex to the sorted set of live faces that use
// it as a corner. A vertex is live exactly while it has an entry; removal
// happens only when the vertex is merged away.
type Adjacency struct {
	faces map[int]FaceSet
	order []int       // live ids in arbitrary order, for uniform picks
	pos   map[int]int // id -> index in order
}

// NewAdjacency returns an index with vertices 0..n-1 live and isolated.
func NewAdjacency(n int) *Adjacency {
	a := &Adjacency{
		faces: make(map[int]FaceSet, n),
		order: make([]int, 0, n),
		pos:   make(map[int]int, n),
	}
	for v := 0; v < n; v++ {
		a.add(v)
	}
	return a
}

func (a *Adjacency) add(v int) {
	if _, ok := a.faces[v]; ok {
		return
	}
	a.faces[v] = nil
	a.pos[v] = len(a.order)
	a.order = append(a.order, v)
}

// IsLive reports whether v has not been merged away.
func (a *Adjacency) IsLive(v int) bool {
	_, ok := a.faces[v]
	return ok
}

// IncidentFaces returns the faces of v. The slice is owned by the index and
// must not be modified; it may change on the next mutation.
func (a *Adjacency) IncidentFaces(v int) FaceSet {
	return a.faces[v]
}

// Degree returns the number of faces incident to v.
func (a *Adjacency) Degree(v int) int {
	return len(a.faces[v])
}

// Attach records that live face f uses v as a corner.
func (a *Adjacency) Attach(v, f int) {
	a.faces[v] = a.faces[v].insert(f)
}

// Detach removes f from the faces of v. The vertex stays live even when its
// last face goes.
func (a *Adjacency) Detach(v, f int) {
	if s, ok := a.faces[v]; ok {
		a.faces[v] = s.remove(f)
	}
}

// Remove ends the life of v.
func (a *Adjacency) Remove(v int) {
	i, ok := a.pos[v]
	if !ok {
		return
	}
	last := a.order[len(a.order)-1]
	a.order[i] = last
	a.pos[last] = i
	a.order = a.order[:len(a.order)-1]
	delete(a.pos, v)
	delete(a.faces, v)
}

// Set makes v live with exactly the given faces.
func (a *Adjacency) Set(v int, faces FaceSet) {
	a.add(v)
	a.faces[v] = faces.Clone()
}

// Len returns the number of live vertices.
func (a *Adjacency) Len() int {
	return len(a.order)
}

// At returns the i-th live vertex in the index's internal order.
func (a *Adjacency) At(i int) int {
	return a.order[i]
}

// Vertices returns the live vertex ids in ascending order.
func (a *Adjacency) Vertices() []int {
	out := slices.Clone(a.order)
	slices.Sort(out)
	return out
}

// BuildAdjacency indexes every non-degenerate face of s. All vertices of s
// start live.
func BuildAdjacency(s *Store) *Adjacency {
	a := NewAdjacency(s.VertexCount())
	for f, c := range s.Faces {
		if s.Degenerate[f] {
			continue
		}
		for _, v := range c {
			a.Attach(v, f)
		}
	}
	return a
}
