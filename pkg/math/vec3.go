// Package math provides the geometric primitives shared by the mesh engine
// and the file codecs: vector helpers, bounding boxes and error quadrics.
package math

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl64"
)

// Normalize returns a unit vector in the direction of v.
// A zero-length or non-finite v yields the zero vector.
func Normalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l == 0 || gomath.IsNaN(l) || gomath.IsInf(l, 0) {
		return mgl64.Vec3{}
	}
	return mgl64.Vec3{v[0] / l, v[1] / l, v[2] / l}
}

// TriangleNormal returns the unit normal and the unsigned area of the
// triangle (p0, p1, p2). The normal follows the right-hand winding rule.
func TriangleNormal(p0, p1, p2 mgl64.Vec3) (normal mgl64.Vec3, area float64) {
	c := p1.Sub(p0).Cross(p2.Sub(p0))
	return Normalize(c), c.Len() / 2
}

// Lerp interpolates between a (t=0) and b (t=1).
// Both endpoints are reproduced exactly.
func Lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Mul(1 - t).Add(b.Mul(t))
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b mgl64.Vec3) mgl64.Vec3 {
	return a.Add(b).Mul(0.5)
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b mgl64.Vec3) float64 {
	return a.Sub(b).Len()
}

// IsFinite reports whether every component of v is finite.
func IsFinite(v mgl64.Vec3) bool {
	for _, c := range v {
		if gomath.IsNaN(c) || gomath.IsInf(c, 0) {
			return false
		}
	}
	return true
}
