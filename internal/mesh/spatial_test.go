package mesh

import (
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func linePositions(n int) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, n)
	for i := range out {
		out[i] = mgl64.Vec3{float64(i), 0, 0}
	}
	return out
}

func allIDs(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestSpatialIndex_Within(t *testing.T) {
	positions := linePositions(10)
	s := newSpatialIndex(allIDs(10), positions)

	got := s.Within(mgl64.Vec3{4, 0, 0}, 2.5)
	if want := []int{2, 3, 4, 5, 6}; !slices.Equal(got, want) {
		t.Errorf("Within = %v, want %v", got, want)
	}
	if got := s.Within(mgl64.Vec3{4, 0, 0}, 0); got != nil {
		t.Errorf("zero threshold returned %v", got)
	}
}

func TestSpatialIndex_MoveAndRemove(t *testing.T) {
	positions := linePositions(10)
	s := newSpatialIndex(allIDs(10), positions)

	s.Move(9, mgl64.Vec3{4.5, 0, 0})
	s.Remove(3)

	got := s.Within(mgl64.Vec3{4, 0, 0}, 1.2)
	if want := []int{4, 5, 9}; !slices.Equal(got, want) {
		t.Errorf("Within = %v, want %v", got, want)
	}
	// The old position of 9 must not match any more.
	if got := s.Within(mgl64.Vec3{9, 0, 0}, 0.5); len(got) != 0 {
		t.Errorf("stale entry returned: %v", got)
	}
}

func TestSpatialIndex_Rebuild(t *testing.T) {
	s := newSpatialIndex(allIDs(20), linePositions(20))

	// Enough churn to force several rebuilds.
	for round := 0; round < 5; round++ {
		for id := 0; id < 20; id++ {
			s.Move(id, mgl64.Vec3{float64(id), float64(round + 1), 0})
		}
	}
	for id := 10; id < 20; id++ {
		s.Remove(id)
	}

	got := s.Within(mgl64.Vec3{0, 5, 0}, 100)
	if !slices.Equal(got, allIDs(10)) {
		t.Errorf("Within after churn = %v", got)
	}
	if s.stale > len(s.current) {
		t.Errorf("stale count %d exceeds live count %d", s.stale, len(s.current))
	}
}
