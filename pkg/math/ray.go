package math

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ray is a half line with a unit direction.
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

// NewRay returns a ray from origin toward dir. The direction is normalized;
// a zero direction yields a ray that hits nothing.
func NewRay(origin, dir mgl64.Vec3) Ray {
	return Ray{Origin: origin, Direction: Normalize(dir)}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// IntersectBounds tests the ray against an axis-aligned box with the slab
// method. It returns the entry distance, or the exit distance when the
// origin lies inside the box.
func (r Ray) IntersectBounds(b Bounds) (t float64, hit bool) {
	if b.IsEmpty() || r.Direction == (mgl64.Vec3{}) {
		return 0, false
	}
	tmin, tmax := gomath.Inf(-1), gomath.Inf(1)
	for axis := 0; axis < 3; axis++ {
		o, d := r.Origin[axis], r.Direction[axis]
		if d == 0 {
			if o < b.Min[axis] || o > b.Max[axis] {
				return 0, false
			}
			continue
		}
		t1 := (b.Min[axis] - o) / d
		t2 := (b.Max[axis] - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = gomath.Max(tmin, t1)
		tmax = gomath.Min(tmax, t2)
	}
	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// triangleEpsilon rejects rays nearly parallel to a triangle.
const triangleEpsilon = 1e-12

// IntersectTriangle tests the ray against triangle p0 p1 p2 from either
// side (Möller-Trumbore). It returns the hit distance and the barycentric
// weights of p1 and p2.
func (r Ray) IntersectTriangle(p0, p1, p2 mgl64.Vec3) (t, u, v float64, hit bool) {
	e1 := p1.Sub(p0)
	e2 := p2.Sub(p0)
	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if gomath.Abs(det) < triangleEpsilon {
		return 0, 0, 0, false
	}
	inv := 1 / det

	s := r.Origin.Sub(p0)
	u = s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}
	q := s.Cross(e1)
	v = r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}
	t = e2.Dot(q) * inv
	if t < 0 {
		return 0, 0, 0, false
	}
	return t, u, v, true
}
