package lod

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/myronyliu/Rainbow-Cow/internal/logger"
	"github.com/myronyliu/Rainbow-Cow/internal/mesh"
	"github.com/myronyliu/Rainbow-Cow/pkg/formats"
	pmath "github.com/myronyliu/Rainbow-Cow/pkg/math"
)

// Navigator moves a progressive mesh between its coarse base and full
// detail. Complexity is a live vertex count that may be fractional: at
// n+alpha the topology of level n+1 is shown with the endpoints of the last
// split record placed alpha of the way from their merged state back to
// their pre-collapse state.
type Navigator struct {
	store   *mesh.Store
	adj     *mesh.Adjacency
	records []mesh.Record
	bounds  pmath.Bounds

	base      int     // live vertices at the coarse level
	level     int     // records currently split, newest first
	alpha     float64 // interpolation of the top split record; 0 when exact
	liveFaces int

	splits, collapses int
}

// NewNavigator loads pm into arrays sized for full detail and positions the
// navigator at the coarse level.
func NewNavigator(pm *formats.PM) (*Navigator, error) {
	if err := pm.Validate(); err != nil {
		return nil, err
	}

	positions := make([]mgl64.Vec3, pm.FullVertices)
	normals := make([]mgl64.Vec3, pm.FullVertices)
	faces := make([][3]int, pm.FullFaces)
	for _, v := range pm.Vertices {
		positions[v.ID] = v.Position
		normals[v.ID] = v.Normal
	}
	for _, f := range pm.Faces {
		faces[f.ID] = f.Corners
	}
	records := make([]mesh.Record, len(pm.Records))
	for i, r := range pm.Records {
		records[i] = fromPMRecord(r)
		positions[r.Removed.ID] = r.Removed.Position
		normals[r.Removed.ID] = r.Removed.Normal
		for _, sf := range r.Shared {
			faces[sf.ID] = sf.Corners
		}
	}

	store, err := mesh.NewStore(positions, faces)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", formats.ErrInvalidPMData, err)
	}
	copy(store.Normals, normals)
	for _, r := range records {
		for _, sf := range r.Shared {
			store.Degenerate[sf.ID] = true
		}
	}

	adj := mesh.NewAdjacency(0)
	for _, v := range pm.Vertices {
		adj.Set(v.ID, nil)
	}
	for _, f := range pm.Faces {
		for _, c := range f.Corners {
			adj.Attach(c, f.ID)
		}
	}

	nav := &Navigator{
		store:     store,
		adj:       adj,
		records:   records,
		bounds:    pm.Bounds,
		base:      len(pm.Vertices),
		liveFaces: len(pm.Faces),
	}
	logger.Info("progressive mesh loaded",
		zap.Int("base_vertices", nav.base),
		zap.Int("base_faces", nav.liveFaces),
		zap.Int("records", len(records)))
	return nav, nil
}

// MinComplexity is the vertex count of the coarse base.
func (n *Navigator) MinComplexity() float64 { return float64(n.base) }

// MaxComplexity is the vertex count at full detail.
func (n *Navigator) MaxComplexity() float64 { return float64(n.base + len(n.records)) }

// Complexity returns the current, possibly fractional, vertex count.
func (n *Navigator) Complexity() float64 {
	if n.alpha == 0 {
		return float64(n.base + n.level)
	}
	return float64(n.base+n.level-1) + n.alpha
}

// SetComplexity moves to complexity x, clamped to the available range. A
// higher target only splits records and a lower one only collapses them.
func (n *Navigator) SetComplexity(x float64) {
	if math.IsNaN(x) {
		return
	}
	x = math.Max(n.MinComplexity(), math.Min(n.MaxComplexity(), x))
	k := x - float64(n.base)
	level := int(math.Ceil(k))
	alpha := k - math.Floor(k)
	if level == n.level && alpha == n.alpha {
		return
	}

	if n.alpha != 0 {
		n.restore(n.top())
		n.alpha = 0
	}
	for n.level < level {
		n.level++
		r := n.top()
		mesh.ApplySplit(n.store, n.adj, r)
		n.liveFaces += len(r.Shared)
		n.splits++
	}
	for n.level > level {
		r := n.top()
		mesh.ApplyCollapse(n.store, n.adj, r)
		n.liveFaces -= len(r.Shared)
		n.level--
		n.collapses++
	}
	if alpha != 0 {
		n.alpha = alpha
		n.interpolate(n.top(), alpha)
	}

	logger.Debug("complexity set",
		zap.Float64("complexity", n.Complexity()),
		zap.Int("live_vertices", n.adj.Len()),
		zap.Int("live_faces", n.liveFaces))
}

// Grow raises the complexity by the fraction mult of its current value.
func (n *Navigator) Grow(mult float64) { n.SetComplexity(n.Complexity() * (1 + mult)) }

// Shrink lowers the complexity by the fraction mult of its current value.
func (n *Navigator) Shrink(mult float64) { n.SetComplexity(n.Complexity() * (1 - mult)) }

// Step moves the complexity by delta vertices.
func (n *Navigator) Step(delta float64) { n.SetComplexity(n.Complexity() + delta) }

// top returns the most recently split record.
func (n *Navigator) top() *mesh.Record {
	return &n.records[len(n.records)-n.level]
}

// interpolate places the endpoints of the split record r alpha of the way
// from the merged vertex back to their pre-collapse state.
func (n *Navigator) interpolate(r *mesh.Record, alpha float64) {
	v0, v1 := r.Retained.ID, r.Removed.ID
	s := n.store
	s.Positions[v0] = pmath.Lerp(r.Merged.Position, r.Retained.Position, alpha)
	s.Positions[v1] = pmath.Lerp(r.Merged.Position, r.Removed.Position, alpha)
	n.updateFaces(v0, v1)
	s.Normals[v0] = pmath.Normalize(pmath.Lerp(r.Merged.Normal, r.Retained.Normal, alpha))
	s.Normals[v1] = pmath.Normalize(pmath.Lerp(r.Merged.Normal, r.Removed.Normal, alpha))
}

// restore undoes interpolate, leaving the exact state ApplySplit produced.
func (n *Navigator) restore(r *mesh.Record) {
	v0, v1 := r.Retained.ID, r.Removed.ID
	s := n.store
	s.Positions[v0] = r.Retained.Position
	s.Positions[v1] = r.Removed.Position
	n.updateFaces(v0, v1)
	s.Normals[v0] = r.Retained.Normal
	s.Normals[v1] = r.Removed.Normal
}

func (n *Navigator) updateFaces(vs ...int) {
	for _, v := range vs {
		for _, f := range n.adj.IncidentFaces(v) {
			n.store.UpdateFace(f)
		}
	}
}

// Level returns the number of records currently split, counting a
// partially split record.
func (n *Navigator) Level() int { return n.level }

// Records returns the number of collapse records.
func (n *Navigator) Records() int { return len(n.records) }

// Bounds returns the bounding box of the full-detail mesh.
func (n *Navigator) Bounds() pmath.Bounds { return n.bounds }

// VertexCount returns the full-detail vertex count.
func (n *Navigator) VertexCount() int { return n.store.VertexCount() }

// FaceCount returns the full-detail face count.
func (n *Navigator) FaceCount() int { return n.store.FaceCount() }

// LiveVertexCount returns the number of vertices of the current topology.
func (n *Navigator) LiveVertexCount() int { return n.adj.Len() }

// LiveFaceCount returns the number of faces of the current topology.
func (n *Navigator) LiveFaceCount() int { return n.liveFaces }

// IsLive reports whether v is part of the current topology.
func (n *Navigator) IsLive(v int) bool { return n.adj.IsLive(v) }

// Position returns the position of v.
func (n *Navigator) Position(v int) mgl64.Vec3 { return n.store.Positions[v] }

// Normal returns the normal of v.
func (n *Navigator) Normal(v int) mgl64.Vec3 { return n.store.Normals[v] }

// Vertices returns the live vertex ids in ascending order.
func (n *Navigator) Vertices() []int { return n.adj.Vertices() }

// Triangles returns the corners of every live face, ordered by face id.
func (n *Navigator) Triangles() [][3]int {
	out := make([][3]int, 0, n.liveFaces)
	for f, c := range n.store.Faces {
		if !n.store.Degenerate[f] {
			out = append(out, c)
		}
	}
	return out
}

// OFF returns the current level with vertices renumbered densely.
func (n *Navigator) OFF() *formats.OFF {
	live := n.adj.Vertices()
	remap := make(map[int]int, len(live))
	out := &formats.OFF{Vertices: make([]mgl64.Vec3, 0, len(live))}
	for i, v := range live {
		remap[v] = i
		out.Vertices = append(out.Vertices, n.store.Positions[v])
	}
	for _, t := range n.Triangles() {
		out.Faces = append(out.Faces, [3]int{remap[t[0]], remap[t[1]], remap[t[2]]})
	}
	return out
}
