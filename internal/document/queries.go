package document

import (
	"github.com/go-gl/mathgl/mgl64"

	pmath "github.com/myronyliu/Rainbow-Cow/pkg/math"
)

// LiveVertexCount returns the number of visible vertices.
func (d *Document) LiveVertexCount() int {
	if g := d.geometry(); g != nil {
		return g.LiveVertexCount()
	}
	return 0
}

// LiveFaceCount returns the number of visible faces.
func (d *Document) LiveFaceCount() int {
	if g := d.geometry(); g != nil {
		return g.LiveFaceCount()
	}
	return 0
}

// VertexCount returns the full-detail vertex count.
func (d *Document) VertexCount() int {
	if g := d.geometry(); g != nil {
		return g.VertexCount()
	}
	return 0
}

// FaceCount returns the full-detail face count.
func (d *Document) FaceCount() int {
	if g := d.geometry(); g != nil {
		return g.FaceCount()
	}
	return 0
}

// CandidateCount returns the number of collapsible pairs. Progressive
// meshes have none.
func (d *Document) CandidateCount() int {
	if d.mesh != nil {
		return d.mesh.CandidateCount()
	}
	return 0
}

// Complexity is the navigator complexity of a progressive mesh and the live
// vertex count of an editable one.
func (d *Document) Complexity() float64 {
	if d.nav != nil {
		return d.nav.Complexity()
	}
	return float64(d.LiveVertexCount())
}

// ComplexityRange returns the lowest and highest reachable complexity.
func (d *Document) ComplexityRange() (lo, hi float64) {
	if d.nav != nil {
		return d.nav.MinComplexity(), d.nav.MaxComplexity()
	}
	c := d.Complexity()
	return c, c
}

// Vertices returns the live vertex ids in ascending order.
func (d *Document) Vertices() []int {
	if g := d.geometry(); g != nil {
		return g.Vertices()
	}
	return nil
}

// Triangles returns the corners of every live face.
func (d *Document) Triangles() [][3]int {
	if g := d.geometry(); g != nil {
		return g.Triangles()
	}
	return nil
}

// Positions returns a position per vertex id, including vertices that are
// not live.
func (d *Document) Positions() []mgl64.Vec3 {
	g := d.geometry()
	if g == nil {
		return nil
	}
	out := make([]mgl64.Vec3, g.VertexCount())
	for v := range out {
		out[v] = g.Position(v)
	}
	return out
}

// Normals returns a normal per vertex id.
func (d *Document) Normals() []mgl64.Vec3 {
	g := d.geometry()
	if g == nil {
		return nil
	}
	out := make([]mgl64.Vec3, g.VertexCount())
	for v := range out {
		out[v] = g.Normal(v)
	}
	return out
}

// Bounds returns the bounding box of the full-detail mesh.
func (d *Document) Bounds() pmath.Bounds {
	if g := d.geometry(); g != nil {
		return g.Bounds()
	}
	return pmath.EmptyBounds()
}
