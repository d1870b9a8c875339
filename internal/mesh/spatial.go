package mesh

import (
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/kdtree"
)

var _ kdtree.Interface = vertexPoints{}

// vertexPoint is a vertex position stored in the kd-tree.
type vertexPoint struct {
	id int
	p  mgl64.Vec3
}

func (a vertexPoint) Compare(b kdtree.Comparable, d kdtree.Dim) float64 {
	return a.p[d] - b.(vertexPoint).p[d]
}

func (a vertexPoint) Dims() int { return 3 }

// Distance returns the squared euclidean distance.
func (a vertexPoint) Distance(b kdtree.Comparable) float64 {
	d := a.p.Sub(b.(vertexPoint).p)
	return d.Dot(d)
}

type vertexPoints []vertexPoint

func (k vertexPoints) Index(i int) kdtree.Comparable { return k[i] }

func (k vertexPoints) Len() int { return len(k) }

func (k vertexPoints) Pivot(d kdtree.Dim) int {
	p := kdPlane{dim: d, points: k}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

func (k vertexPoints) Slice(start, end int) kdtree.Interface { return k[start:end] }

type kdPlane struct {
	dim    kdtree.Dim
	points vertexPoints
}

func (p kdPlane) Less(i, j int) bool {
	return p.points[i].Compare(p.points[j], p.dim) < 0
}
func (p kdPlane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}
func (p kdPlane) Len() int {
	return len(p.points)
}
func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}

// spatialIndex answers "which live vertices lie within distance t of p".
// The gonum tree cannot delete, so moved and removed vertices leave stale
// entries behind that are filtered on query; the tree is rebuilt once stale
// entries outnumber live ones.
type spatialIndex struct {
	tree    *kdtree.Tree
	current map[int]mgl64.Vec3
	stale   int
}

func newSpatialIndex(ids []int, positions []mgl64.Vec3) *spatialIndex {
	s := &spatialIndex{current: make(map[int]mgl64.Vec3, len(ids))}
	for _, id := range ids {
		s.current[id] = positions[id]
	}
	s.rebuild()
	return s
}

func (s *spatialIndex) rebuild() {
	pts := make(vertexPoints, 0, len(s.current))
	for id, p := range s.current {
		pts = append(pts, vertexPoint{id: id, p: p})
	}
	// Map order is random; sort so the tree shape is reproducible.
	slices.SortFunc(pts, func(a, b vertexPoint) int { return a.id - b.id })
	s.tree = kdtree.New(pts, false)
	s.stale = 0
}

// Move records a new position for id.
func (s *spatialIndex) Move(id int, p mgl64.Vec3) {
	if old, ok := s.current[id]; ok {
		if old == p {
			return
		}
		s.stale++
	}
	s.current[id] = p
	s.tree.Insert(vertexPoint{id: id, p: p}, false)
	s.compact()
}

// Remove forgets id.
func (s *spatialIndex) Remove(id int) {
	if _, ok := s.current[id]; !ok {
		return
	}
	delete(s.current, id)
	s.stale++
	s.compact()
}

func (s *spatialIndex) compact() {
	if s.stale > len(s.current) {
		s.rebuild()
	}
}

// Within returns the ids whose current position is within t of p, sorted.
func (s *spatialIndex) Within(p mgl64.Vec3, t float64) []int {
	if t <= 0 || s.tree.Root == nil {
		return nil
	}
	keep := kdtree.NewDistKeeper(t * t)
	s.tree.NearestSet(keep, vertexPoint{id: -1, p: p})

	var out []int
	for _, c := range keep.Heap {
		if c.Comparable == nil {
			continue // keeper sentinel
		}
		vp := c.Comparable.(vertexPoint)
		cur, ok := s.current[vp.id]
		if !ok || cur != vp.p || cur.Sub(p).Len() > t {
			continue
		}
		out = append(out, vp.id)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
