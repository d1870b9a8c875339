package mesh

import (
	"errors"
	"fmt"
)

// Topology errors. Rejected commands leave the mesh unchanged.
var (
	ErrSameVertex     = errors.New("cannot collapse a vertex into itself")
	ErrNotLive        = errors.New("vertex is not live")
	ErrTooFewVertices = errors.New("too few live vertices to collapse")
	ErrNotEdge        = errors.New("vertices do not share an edge")
	ErrNoCandidates   = errors.New("no collapse candidates")
)

// Construction errors.
var (
	ErrInvalidFace = errors.New("invalid face")
	ErrInvariant   = errors.New("mesh invariant violated")
)

// TopologyError reports a rejected collapse.
type TopologyError struct {
	Op     string
	V0, V1 int
	Err    error
}

func (e *TopologyError) Error() string {
	return fmt.Sprintf("%s(%d, %d): %v", e.Op, e.V0, e.V1, e.Err)
}

func (e *TopologyError) Unwrap() error { return e.Err }

// InvariantError reports an internal consistency failure detected after a
// mutation.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Op, ErrInvariant, e.Detail)
}

func (e *InvariantError) Unwrap() error { return ErrInvariant }
