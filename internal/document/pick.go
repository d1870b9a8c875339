package document

import (
	"github.com/go-gl/mathgl/mgl64"

	pmath "github.com/myronyliu/Rainbow-Cow/pkg/math"
)

// Hit is the nearest live triangle along a ray.
type Hit struct {
	Corners  [3]int
	Vertex   int // corner closest to the hit point
	Distance float64
	Point    mgl64.Vec3
}

// Pick casts r against the live triangles and returns the nearest hit.
func (d *Document) Pick(r pmath.Ray) (Hit, bool) {
	g := d.geometry()
	if g == nil {
		return Hit{}, false
	}

	live := g.Vertices()
	points := make([]mgl64.Vec3, len(live))
	for i, v := range live {
		points[i] = g.Position(v)
	}
	if _, ok := r.IntersectBounds(pmath.BoundsOf(points)); !ok {
		return Hit{}, false
	}

	var best Hit
	found := false
	for _, c := range g.Triangles() {
		t, u, v, ok := r.IntersectTriangle(g.Position(c[0]), g.Position(c[1]), g.Position(c[2]))
		if !ok || (found && t >= best.Distance) {
			continue
		}
		w := [3]float64{1 - u - v, u, v}
		k := 0
		for i := 1; i < 3; i++ {
			if w[i] > w[k] {
				k = i
			}
		}
		best = Hit{Corners: c, Vertex: c[k], Distance: t, Point: r.At(t)}
		found = true
	}
	return best, found
}
