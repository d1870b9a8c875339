// Package mesh implements the adjacency-tracked triangle mesh and the edge
// collapse engine that simplifies it.
package mesh

import (
	"fmt"
	"strings"
)

// Method selects where the surviving vertex of a collapse is placed.
type Method int

// Placement methods.
const (
	Binary   Method = iota // keep the retained vertex where it is
	Midpoint               // halfway between both endpoints
	Quadric                // quadric error optimum, midpoint when singular
)

// String returns the method name.
func (m Method) String() string {
	switch m {
	case Binary:
		return "binary"
	case Midpoint:
		return "midpoint"
	case Quadric:
		return "quadric"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod converts a method name to a Method.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(s) {
	case "binary":
		return Binary, nil
	case "midpoint":
		return Midpoint, nil
	case "quadric", "":
		return Quadric, nil
	default:
		return 0, fmt.Errorf("unknown placement method %q", s)
	}
}

// Pair is an unordered vertex pair, stored with V0 < V1.
type Pair struct {
	V0, V1 int
}

// MakePair returns the canonical pair of a and b.
func MakePair(a, b int) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{V0: a, V1: b}
}

// Other returns the endpoint of p that is not v.
func (p Pair) Other(v int) int {
	if p.V0 == v {
		return p.V1
	}
	return p.V0
}

// Contains reports whether v is an endpoint of p.
func (p Pair) Contains(v int) bool {
	return p.V0 == v || p.V1 == v
}
