package math

import (
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestNormalize(t *testing.T) {
	n := Normalize(mgl64.Vec3{3, 4, 0})
	if l := n.Len(); gomath.Abs(l-1) > 1e-12 {
		t.Errorf("Normalize().Len() = %v, want 1", l)
	}
	if got := Normalize(mgl64.Vec3{}); got != (mgl64.Vec3{}) {
		t.Errorf("Normalize(zero) = %v, want zero vector", got)
	}
}

func TestTriangleNormal(t *testing.T) {
	n, area := TriangleNormal(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0})
	if n != (mgl64.Vec3{0, 0, 1}) {
		t.Errorf("TriangleNormal() normal = %v, want (0, 0, 1)", n)
	}
	if area != 0.5 {
		t.Errorf("TriangleNormal() area = %v, want 0.5", area)
	}

	// Collinear points have no normal.
	n, area = TriangleNormal(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{2, 0, 0})
	if n != (mgl64.Vec3{}) || area != 0 {
		t.Errorf("degenerate TriangleNormal() = %v, %v, want zero", n, area)
	}
}

func TestLerpEndpoints(t *testing.T) {
	a := mgl64.Vec3{0.1, 0.2, 0.3}
	b := mgl64.Vec3{1.7, -3.3, 9.1}
	if got := Lerp(a, b, 0); got != a {
		t.Errorf("Lerp(t=0) = %v, want %v", got, a)
	}
	if got := Lerp(a, b, 1); got != b {
		t.Errorf("Lerp(t=1) = %v, want %v", got, b)
	}
	mid := Lerp(a, b, 0.5)
	if !mid.ApproxEqual(Midpoint(a, b)) {
		t.Errorf("Lerp(t=0.5) = %v, want %v", mid, Midpoint(a, b))
	}
}

func TestBounds(t *testing.T) {
	b := EmptyBounds()
	if !b.IsEmpty() {
		t.Error("EmptyBounds should be empty")
	}
	if b.Size() != (mgl64.Vec3{}) {
		t.Errorf("empty Size() = %v, want zero", b.Size())
	}

	b = BoundsOf([]mgl64.Vec3{{1, 2, 3}, {-1, 5, 0}, {0, 0, 4}})
	if b.Min != (mgl64.Vec3{-1, 0, 0}) {
		t.Errorf("Min = %v, want (-1, 0, 0)", b.Min)
	}
	if b.Max != (mgl64.Vec3{1, 5, 4}) {
		t.Errorf("Max = %v, want (1, 5, 4)", b.Max)
	}
	if c := b.Center(); c != (mgl64.Vec3{0, 2.5, 2}) {
		t.Errorf("Center() = %v, want (0, 2.5, 2)", c)
	}
}
