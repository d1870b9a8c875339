package math

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl64"
)

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// EmptyBounds returns an inverted box that any Extend call will overwrite.
func EmptyBounds() Bounds {
	inf := gomath.Inf(1)
	return Bounds{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
}

// BoundsOf returns the bounding box of the given points.
func BoundsOf(points []mgl64.Vec3) Bounds {
	b := EmptyBounds()
	for _, p := range points {
		b.Extend(p)
	}
	return b
}

// Extend grows the box to contain p.
func (b *Bounds) Extend(p mgl64.Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// IsEmpty reports whether the box contains no point.
func (b Bounds) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Center returns the centre of the box.
func (b Bounds) Center() mgl64.Vec3 {
	return Midpoint(b.Min, b.Max)
}

// Size returns the extent of the box along each axis.
func (b Bounds) Size() mgl64.Vec3 {
	if b.IsEmpty() {
		return mgl64.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Diagonal returns the length of the box diagonal.
func (b Bounds) Diagonal() float64 {
	return b.Size().Len()
}
