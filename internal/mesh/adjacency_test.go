package mesh

import (
	"math"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestFaceSet(t *testing.T) {
	var s FaceSet
	for _, f := range []int{5, 1, 3, 1} {
		s = s.insert(f)
	}
	if !slices.Equal(s, FaceSet{1, 3, 5}) {
		t.Fatalf("expected [1 3 5], got %v", s)
	}
	if !s.Contains(3) || s.Contains(4) {
		t.Error("Contains gave wrong answer")
	}

	got := s.Intersect(FaceSet{0, 3, 5, 9})
	if !slices.Equal(got, FaceSet{3, 5}) {
		t.Errorf("Intersect = %v, want [3 5]", got)
	}

	s = s.remove(3).remove(7)
	if !slices.Equal(s, FaceSet{1, 5}) {
		t.Errorf("expected [1 5] after remove, got %v", s)
	}
	if FaceSet(nil).Clone() != nil || (FaceSet{}).Clone() != nil {
		t.Error("Clone of an empty set should be nil")
	}
}

func TestAdjacency_DetachKeepsVertexLive(t *testing.T) {
	a := NewAdjacency(3)
	a.Attach(0, 7)
	a.Attach(0, 2)

	if got := a.IncidentFaces(0); !slices.Equal(got, FaceSet{2, 7}) {
		t.Errorf("expected [2 7], got %v", got)
	}
	a.Detach(0, 2)
	a.Detach(0, 7)
	if !a.IsLive(0) {
		t.Error("vertex without faces should stay live")
	}
	if a.Degree(0) != 0 {
		t.Errorf("expected degree 0, got %d", a.Degree(0))
	}
	if a.Len() != 3 {
		t.Errorf("expected 3 live vertices, got %d", a.Len())
	}
}

func TestAdjacency_Remove(t *testing.T) {
	a := NewAdjacency(4)
	a.Remove(1)
	a.Remove(1)

	if a.IsLive(1) {
		t.Error("removed vertex reported live")
	}
	if a.Len() != 3 {
		t.Fatalf("expected 3 live vertices, got %d", a.Len())
	}
	seen := make(map[int]bool)
	for i := 0; i < a.Len(); i++ {
		seen[a.At(i)] = true
	}
	for _, v := range []int{0, 2, 3} {
		if !seen[v] {
			t.Errorf("At did not reach vertex %d", v)
		}
	}
	if got := a.Vertices(); !slices.Equal(got, []int{0, 2, 3}) {
		t.Errorf("Vertices() = %v", got)
	}

	// Detach on a removed vertex must not revive it.
	a.Detach(1, 0)
	if a.IsLive(1) {
		t.Error("Detach revived a removed vertex")
	}

	a.Set(1, FaceSet{4, 6})
	if !a.IsLive(1) || !slices.Equal(a.IncidentFaces(1), FaceSet{4, 6}) {
		t.Errorf("Set did not restore vertex 1: %v", a.IncidentFaces(1))
	}
}

func TestBuildAdjacency_SkipsDegenerate(t *testing.T) {
	s, err := NewStore(cubePositions, cubeFaces)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	s.Degenerate[0] = true

	a := BuildAdjacency(s)
	if a.IncidentFaces(0).Contains(0) {
		t.Error("degenerate face attached to vertex 0")
	}
	if got := a.Degree(0); got != 5 {
		t.Errorf("expected vertex 0 degree 5, got %d", got)
	}
	if s.LiveFaceCount() != 11 || len(s.LiveFaces()) != 11 {
		t.Errorf("expected 11 live faces")
	}
}

func TestStore_FaceGeometry(t *testing.T) {
	s, err := NewStore(cubePositions, cubeFaces)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	if s.FaceNormals[0] != (mgl64.Vec3{0, 0, -1}) {
		t.Errorf("bottom face normal = %v", s.FaceNormals[0])
	}
	if math.Abs(s.FaceAreas[0]-0.5) > 1e-15 {
		t.Errorf("bottom face area = %v", s.FaceAreas[0])
	}
	for v, n := range s.Normals {
		if n != DefaultNormal {
			t.Errorf("vertex %d normal %v before UpdateVertexNormals", v, n)
		}
	}

	s.ReplaceCorner(0, 2, 3)
	if s.Faces[0] != [3]int{0, 3, 1} || !s.HasCorner(0, 3) || s.HasCorner(0, 2) {
		t.Errorf("ReplaceCorner produced %v", s.Faces[0])
	}

	// A vertex without faces keeps its normal.
	s.Normals[5] = mgl64.Vec3{1, 0, 0}
	s.UpdateVertexNormal(5, nil)
	if s.Normals[5] != (mgl64.Vec3{1, 0, 0}) {
		t.Errorf("isolated vertex normal changed to %v", s.Normals[5])
	}
}
