package math

import (
	"errors"
	gomath "math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// SingularEpsilon is the determinant magnitude below which a quadric has no
// well-defined minimum.
const SingularEpsilon = 1e-6

// Quadric is a symmetric 4x4 error quadric (column-major, like mgl64.Mat4).
// The error of a point p is p̄ᵀ Q p̄ with p̄ = (p, 1).
type Quadric mgl64.Mat4

// PlaneQuadric returns the fundamental quadric of the plane through p with
// unit normal n: the outer product of (n, -p·n) with itself.
func PlaneQuadric(n, p mgl64.Vec3) Quadric {
	plane := mgl64.Vec4{n[0], n[1], n[2], -p.Dot(n)}
	return Quadric(plane.OuterProd4(plane))
}

// Add returns q + o.
func (q Quadric) Add(o Quadric) Quadric {
	return Quadric(mgl64.Mat4(q).Add(mgl64.Mat4(o)))
}

// At returns the element at row, col.
func (q Quadric) At(row, col int) float64 {
	return mgl64.Mat4(q).At(row, col)
}

// Error evaluates the quadric form at p.
func (q Quadric) Error(p mgl64.Vec3) float64 {
	v := p.Vec4(1)
	return v.Dot(mgl64.Mat4(q).Mul4x1(v))
}

// Optimum returns the point minimising the quadric error and that error.
// ok is false when the 3x3 system is singular (|det| < SingularEpsilon) or the
// solution is not finite; callers must then pick a fallback position.
func (q Quadric) Optimum() (p mgl64.Vec3, cost float64, ok bool) {
	a := mat.NewDense(3, 3, []float64{
		q.At(0, 0), q.At(0, 1), q.At(0, 2),
		q.At(1, 0), q.At(1, 1), q.At(1, 2),
		q.At(2, 0), q.At(2, 1), q.At(2, 2),
	})
	if gomath.Abs(mat.Det(a)) < SingularEpsilon {
		return mgl64.Vec3{}, gomath.Inf(1), false
	}

	b := mat.NewVecDense(3, []float64{-q.At(0, 3), -q.At(1, 3), -q.At(2, 3)})
	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		// A Condition error still carries a usable solution.
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return mgl64.Vec3{}, gomath.Inf(1), false
		}
	}

	p = mgl64.Vec3{x.AtVec(0), x.AtVec(1), x.AtVec(2)}
	if !IsFinite(p) {
		return mgl64.Vec3{}, gomath.Inf(1), false
	}
	cost = q.Error(p)
	if cost < 0 {
		cost = 0
	}
	return p, cost, true
}
