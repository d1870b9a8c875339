package mesh

import (
	"errors"
	"math"
	"testing"
)

func TestQuadricSimplify_NoCandidates(t *testing.T) {
	m := buildTriangle(t, testOptions())
	m.ranking.Clear()

	if err := m.QuadricSimplify(); !errors.Is(err, ErrNoCandidates) {
		t.Errorf("expected ErrNoCandidates, got %v", err)
	}
	if m.LiveVertexCount() != 3 {
		t.Errorf("expected no collapse, live count %d", m.LiveVertexCount())
	}
}

func TestQuadricSimplify_InfiniteCostFallback(t *testing.T) {
	// A flat triangle has only singular pair quadrics.
	tests := []struct {
		name       string
		aggressive bool
	}{
		{"random midpoint", false},
		{"boundary aware", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			opts.Aggressive = tt.aggressive
			m := buildTriangle(t, opts)

			c, ok := m.Ranking().Cheapest()
			if !ok || !math.IsInf(c.Cost, 1) {
				t.Fatalf("expected an infinite cheapest cost, got %v", c.Cost)
			}
			if err := m.QuadricSimplify(); err != nil {
				t.Fatalf("QuadricSimplify failed: %v", err)
			}
			if m.LiveVertexCount() != 2 {
				t.Errorf("expected 2 live vertices, got %d", m.LiveVertexCount())
			}
		})
	}
}

func TestBoundaryCollapse(t *testing.T) {
	m := buildCube(t, testOptions())

	keep, drop, method := m.boundaryCollapse(Pair{V0: 1, V1: 2})
	if keep != 1 || drop != 2 || method != Midpoint {
		t.Errorf("interior pair: got keep=%d drop=%d %v", keep, drop, method)
	}

	tri := buildTriangle(t, testOptions())
	keep, drop, method = tri.boundaryCollapse(Pair{V0: 0, V1: 1})
	if keep != 0 || drop != 1 || method != Binary {
		t.Errorf("boundary pair: got keep=%d drop=%d %v", keep, drop, method)
	}
}

func TestRandomEdge_Deterministic(t *testing.T) {
	a := buildGrid(t, 5, testOptions())
	b := buildGrid(t, 5, testOptions())

	for i := 0; i < 10; i++ {
		pa, err := a.RandomEdge()
		if err != nil {
			t.Fatalf("RandomEdge failed: %v", err)
		}
		pb, _ := b.RandomEdge()
		if pa != pb {
			t.Fatalf("pick %d differs: %v vs %v", i, pa, pb)
		}
		if !a.IsEdge(pa.V0, pa.V1) {
			t.Errorf("pick %v is not an edge", pa)
		}
		if pa.V0 >= pa.V1 {
			t.Errorf("pick %v is not canonical", pa)
		}
	}
}

func TestCollapseRandomEdge_NoFaces(t *testing.T) {
	m := buildTriangle(t, testOptions())
	if err := m.Collapse(0, 1, Midpoint); err != nil {
		t.Fatalf("Collapse failed: %v", err)
	}
	if err := m.CollapseRandomEdge(Midpoint); !errors.Is(err, ErrTooFewVertices) {
		t.Errorf("expected ErrTooFewVertices, got %v", err)
	}
	if _, err := m.RandomEdge(); !errors.Is(err, ErrNoCandidates) {
		t.Errorf("expected ErrNoCandidates, got %v", err)
	}
}

func TestSimplifyN(t *testing.T) {
	m := buildGrid(t, 6, testOptions())

	n, err := m.SimplifyN(10)
	if err != nil {
		t.Fatalf("SimplifyN failed: %v", err)
	}
	if n != 10 {
		t.Errorf("expected 10 steps, got %d", n)
	}
	if m.LiveVertexCount() > 36-10 {
		t.Errorf("expected at most 26 live vertices, got %d", m.LiveVertexCount())
	}
}

func TestSimplifyTo(t *testing.T) {
	m := buildGrid(t, 6, testOptions())

	if _, err := m.SimplifyTo(12); err != nil {
		t.Fatalf("SimplifyTo failed: %v", err)
	}
	if m.LiveVertexCount() > 12 {
		t.Errorf("expected at most 12 live vertices, got %d", m.LiveVertexCount())
	}
}

func TestSimplifyAll(t *testing.T) {
	m := buildCube(t, testOptions())

	steps, err := m.SimplifyAll()
	if err != nil {
		t.Fatalf("SimplifyAll failed: %v", err)
	}
	if steps == 0 {
		t.Error("expected at least one step")
	}
	if m.LiveVertexCount() >= 8 {
		t.Errorf("expected the cube to shrink, got %d live vertices", m.LiveVertexCount())
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestBatchSizes(t *testing.T) {
	m := buildCube(t, testOptions())
	// 28 pairs: floor(sqrt(28)/2) = 2.
	if got := m.QuadricBatchSize(); got != 2 {
		t.Errorf("QuadricBatchSize() = %d, want 2", got)
	}
	if got := m.RandomBatchSize(); got != 1 {
		t.Errorf("RandomBatchSize() = %d, want 1", got)
	}

	m.ranking.Clear()
	if got := m.QuadricBatchSize(); got != 0 {
		t.Errorf("QuadricBatchSize() on empty ranking = %d, want 0", got)
	}

	g := buildGrid(t, 15, testOptions())
	if got := g.RandomBatchSize(); got != 2 {
		t.Errorf("RandomBatchSize() for 225 vertices = %d, want 2", got)
	}
}
