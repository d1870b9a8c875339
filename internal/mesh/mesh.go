package mesh

import (
	"math/rand"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/myronyliu/Rainbow-Cow/internal/logger"
	"github.com/myronyliu/Rainbow-Cow/pkg/formats"
	pmath "github.com/myronyliu/Rainbow-Cow/pkg/math"
)

// DefaultThresholdScale multiplies the average edge length to obtain the
// automatic pair distance threshold.
const DefaultThresholdScale = 5.0

// Options configures a Mesh.
type Options struct {
	// AllowFins disables fin removal after each collapse.
	AllowFins bool
	// Aggressive replaces the random fallback for infinite-cost pairs with
	// a boundary-aware collapse of the cheapest pair itself.
	Aggressive bool
	// StrictEdges rejects collapses of pairs that share no face. Only mesh
	// edges are ranked in this mode.
	StrictEdges bool
	// Debug returns invariant violations as errors instead of logging them.
	Debug bool
	// Threshold is the pair distance threshold. Zero selects
	// ThresholdScale times the average edge length; a negative value
	// tracks mesh edges only.
	Threshold      float64
	ThresholdScale float64
	// Seed seeds the random edge picker.
	Seed int64
	// Record keeps a collapse record for every collapse performed.
	Record bool
}

// DefaultOptions returns the options used by the command line tools.
func DefaultOptions() Options {
	return Options{
		ThresholdScale: DefaultThresholdScale,
		Seed:           1,
		Record:         true,
	}
}

// Mesh is a triangle mesh under simplification. It is not safe for
// concurrent use.
type Mesh struct {
	store     *Store
	adj       *Adjacency
	quadrics  []pmath.Quadric
	ranking   *Ranking
	spatial   *spatialIndex
	threshold float64
	liveFaces int
	bounds    pmath.Bounds
	records   []Record
	rng       *rand.Rand
	opts      Options
}

// New builds a mesh from vertex positions and triangles. Face normals,
// vertex normals, quadrics and the candidate ranking are computed up front.
func New(positions []mgl64.Vec3, faces [][3]int, opts Options) (*Mesh, error) {
	store, err := NewStore(positions, faces)
	if err != nil {
		return nil, err
	}
	if opts.ThresholdScale == 0 {
		opts.ThresholdScale = DefaultThresholdScale
	}

	m := &Mesh{
		store:     store,
		adj:       BuildAdjacency(store),
		quadrics:  make([]pmath.Quadric, len(positions)),
		ranking:   NewRanking(),
		liveFaces: len(faces),
		bounds:    pmath.BoundsOf(positions),
		rng:       rand.New(rand.NewSource(opts.Seed)),
		opts:      opts,
	}
	store.UpdateVertexNormals(m.adj)
	for v := range positions {
		m.quadrics[v] = m.vertexQuadric(v)
	}
	m.spatial = newSpatialIndex(m.adj.Vertices(), store.Positions)

	t := opts.Threshold
	if t == 0 {
		t = opts.ThresholdScale * m.AverageEdgeLength()
	}
	m.SetDistanceThreshold(t)

	logger.Info("mesh loaded",
		zap.Int("vertices", len(positions)),
		zap.Int("faces", len(faces)),
		zap.Float64("threshold", m.threshold),
		zap.Int("pairs", m.ranking.Len()))
	return m, nil
}

// FromOFF builds a mesh from a parsed OFF file.
func FromOFF(off *formats.OFF, opts Options) (*Mesh, error) {
	return New(off.Vertices, off.Faces, opts)
}

// Options returns the options the mesh was built with.
func (m *Mesh) Options() Options { return m.opts }

// SetAllowFins toggles fin removal for subsequent collapses.
func (m *Mesh) SetAllowFins(allow bool) { m.opts.AllowFins = allow }

// Store exposes the geometry arrays. Callers must not modify them.
func (m *Mesh) Store() *Store { return m.store }

// Adjacency exposes the adjacency index. Callers must not modify it.
func (m *Mesh) Adjacency() *Adjacency { return m.adj }

// Ranking exposes the candidate ranking. Callers must not modify it.
func (m *Mesh) Ranking() *Ranking { return m.ranking }

// Records returns the collapse records in the order they were performed.
func (m *Mesh) Records() []Record { return m.records }

// Bounds returns the bounding box of the full-detail mesh.
func (m *Mesh) Bounds() pmath.Bounds { return m.bounds }

// Threshold returns the current pair distance threshold.
func (m *Mesh) Threshold() float64 { return m.threshold }

// VertexCount returns the full-detail vertex count.
func (m *Mesh) VertexCount() int { return m.store.VertexCount() }

// FaceCount returns the full-detail face count.
func (m *Mesh) FaceCount() int { return m.store.FaceCount() }

// LiveVertexCount returns the number of vertices not merged away.
func (m *Mesh) LiveVertexCount() int { return m.adj.Len() }

// LiveFaceCount returns the number of faces not eliminated.
func (m *Mesh) LiveFaceCount() int { return m.liveFaces }

// CandidateCount returns the number of ranked vertex pairs.
func (m *Mesh) CandidateCount() int { return m.ranking.Len() }

// IsLive reports whether v has not been merged away.
func (m *Mesh) IsLive(v int) bool { return m.adj.IsLive(v) }

// Position returns the position of v.
func (m *Mesh) Position(v int) mgl64.Vec3 { return m.store.Positions[v] }

// Normal returns the normal of v.
func (m *Mesh) Normal(v int) mgl64.Vec3 { return m.store.Normals[v] }

// Vertices returns the live vertex ids in ascending order.
func (m *Mesh) Vertices() []int { return m.adj.Vertices() }

// IncidentFaces returns a copy of the live faces around v.
func (m *Mesh) IncidentFaces(v int) FaceSet { return m.adj.IncidentFaces(v).Clone() }

// Triangles returns the corners of every live face, ordered by face id.
func (m *Mesh) Triangles() [][3]int {
	out := make([][3]int, 0, m.liveFaces)
	for f, c := range m.store.Faces {
		if !m.store.Degenerate[f] {
			out = append(out, c)
		}
	}
	return out
}

// OFF returns the live part of the mesh with vertices renumbered densely in
// ascending id order.
func (m *Mesh) OFF() *formats.OFF {
	live := m.adj.Vertices()
	remap := make(map[int]int, len(live))
	out := &formats.OFF{Vertices: make([]mgl64.Vec3, 0, len(live))}
	for i, v := range live {
		remap[v] = i
		out.Vertices = append(out.Vertices, m.store.Positions[v])
	}
	for _, t := range m.Triangles() {
		out.Faces = append(out.Faces, [3]int{remap[t[0]], remap[t[1]], remap[t[2]]})
	}
	return out
}

// AverageEdgeLength estimates the mean edge length as the sum of all face
// perimeters over three times the face count.
func (m *Mesh) AverageEdgeLength() float64 {
	if m.liveFaces == 0 {
		return 0
	}
	sum := 0.0
	for f := range m.store.Faces {
		if m.store.Degenerate[f] {
			continue
		}
		p0, p1, p2 := m.store.Corners(f)
		sum += pmath.Distance(p0, p1) + pmath.Distance(p1, p2) + pmath.Distance(p2, p0)
	}
	return sum / float64(3*m.liveFaces)
}

// IsEdge reports whether some live face has both v0 and v1 as corners.
func (m *Mesh) IsEdge(v0, v1 int) bool {
	if v0 == v1 {
		return false
	}
	for _, f := range m.adj.IncidentFaces(v0) {
		if m.store.HasCorner(f, v1) {
			return true
		}
	}
	return false
}

// AtBoundary reports whether v has an edge used by exactly one live face.
func (m *Mesh) AtBoundary(v int) bool {
	count := make(map[int]int)
	for _, f := range m.adj.IncidentFaces(v) {
		for _, u := range m.store.Faces[f] {
			if u != v {
				count[u]++
			}
		}
	}
	for _, n := range count {
		if n == 1 {
			return true
		}
	}
	return false
}

// neighbours returns the sorted vertices sharing a live face with v.
func (m *Mesh) neighbours(v int) []int {
	out := m.ring(v)
	i, _ := slices.BinarySearch(out, v)
	return slices.Delete(out, i, i+1)
}

// ring returns v and every corner of its live faces, sorted.
func (m *Mesh) ring(v int) []int {
	out := []int{v}
	for _, f := range m.adj.IncidentFaces(v) {
		out = append(out, m.store.Faces[f][:]...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
