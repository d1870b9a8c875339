package math

import (
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestPlaneQuadricError(t *testing.T) {
	// Plane z = 2.
	q := PlaneQuadric(mgl64.Vec3{0, 0, 1}, mgl64.Vec3{5, -3, 2})

	tests := []struct {
		p    mgl64.Vec3
		want float64
	}{
		{mgl64.Vec3{0, 0, 2}, 0},
		{mgl64.Vec3{10, 10, 2}, 0},
		{mgl64.Vec3{0, 0, 5}, 9},
		{mgl64.Vec3{1, 1, 0}, 4},
	}
	for _, tc := range tests {
		if got := q.Error(tc.p); gomath.Abs(got-tc.want) > 1e-12 {
			t.Errorf("Error(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestQuadricSymmetric(t *testing.T) {
	n := Normalize(mgl64.Vec3{1, 2, 3})
	q := PlaneQuadric(n, mgl64.Vec3{1, 1, 1})
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			if q.At(r, c) != q.At(c, r) {
				t.Errorf("quadric not symmetric at (%d, %d)", r, c)
			}
		}
	}
}

func TestOptimumCorner(t *testing.T) {
	// Three orthogonal planes meeting at (1, 2, 3).
	corner := mgl64.Vec3{1, 2, 3}
	q := PlaneQuadric(mgl64.Vec3{1, 0, 0}, corner).
		Add(PlaneQuadric(mgl64.Vec3{0, 1, 0}, corner)).
		Add(PlaneQuadric(mgl64.Vec3{0, 0, 1}, corner))

	p, cost, ok := q.Optimum()
	if !ok {
		t.Fatal("Optimum() reported singular system for three orthogonal planes")
	}
	if !p.ApproxEqualThreshold(corner, 1e-9) {
		t.Errorf("Optimum() = %v, want %v", p, corner)
	}
	if cost > 1e-12 {
		t.Errorf("Optimum() cost = %v, want 0", cost)
	}
}

func TestOptimumParallelPlanes(t *testing.T) {
	// x = 0 and x = 1 plus y = 0 and z = 0: optimum sits halfway along x.
	q := PlaneQuadric(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0, 0}).
		Add(PlaneQuadric(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{1, 0, 0})).
		Add(PlaneQuadric(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0, 0})).
		Add(PlaneQuadric(mgl64.Vec3{0, 0, 1}, mgl64.Vec3{0, 0, 0}))

	p, cost, ok := q.Optimum()
	if !ok {
		t.Fatal("Optimum() reported singular system")
	}
	if !p.ApproxEqualThreshold(mgl64.Vec3{0.5, 0, 0}, 1e-9) {
		t.Errorf("Optimum() = %v, want (0.5, 0, 0)", p)
	}
	if gomath.Abs(cost-0.5) > 1e-9 {
		t.Errorf("Optimum() cost = %v, want 0.5", cost)
	}
}

func TestOptimumSingular(t *testing.T) {
	// A single plane leaves two degrees of freedom.
	q := PlaneQuadric(mgl64.Vec3{0, 0, 1}, mgl64.Vec3{0, 0, 0})
	_, cost, ok := q.Optimum()
	if ok {
		t.Error("Optimum() should report a singular system for a single plane")
	}
	if !gomath.IsInf(cost, 1) {
		t.Errorf("singular cost = %v, want +Inf", cost)
	}

	var zero Quadric
	if _, _, ok := zero.Optimum(); ok {
		t.Error("Optimum() of the zero quadric should be singular")
	}
}

func TestOptimumDeterministic(t *testing.T) {
	q := PlaneQuadric(Normalize(mgl64.Vec3{1, 1, 0}), mgl64.Vec3{0.3, 0.1, 0}).
		Add(PlaneQuadric(Normalize(mgl64.Vec3{0, 1, 1}), mgl64.Vec3{0, 0.7, 0.2})).
		Add(PlaneQuadric(Normalize(mgl64.Vec3{1, 0, 1}), mgl64.Vec3{0.9, 0, 0.4}))

	p1, c1, ok1 := q.Optimum()
	p2, c2, ok2 := q.Optimum()
	if p1 != p2 || c1 != c2 || ok1 != ok2 {
		t.Errorf("Optimum() not deterministic: %v/%v/%v vs %v/%v/%v", p1, c1, ok1, p2, c2, ok2)
	}
}
