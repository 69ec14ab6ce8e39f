// Package prim_kruskal defines configuration options and sentinel errors for MST computation.
// It supports selecting between Kruskal and Prim algorithms via MSTOptions.
package prim_kruskal

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/hclt/matrix"
)

// ErrInvalidGraph indicates that MST algorithms require a square, symmetric weight matrix.
// Returned when the matrix is nil, non-square, asymmetric or holds NaN/-Inf weights.
var ErrInvalidGraph = errors.New("prim_kruskal: MST requires a square symmetric weight matrix")

// ErrBadRoot indicates that the Prim root lies outside [0, n).
var ErrBadRoot = errors.New("prim_kruskal: root vertex out of range")

// ErrDisconnected indicates that +Inf ("no edge") weights split the vertices,
// so a spanning tree covering all of them cannot be formed.
var ErrDisconnected = errors.New("prim_kruskal: graph is disconnected")

// symmetryTol bounds |w[u,v] - w[v,u]| accepted as symmetric.
const symmetryTol = 1e-9

// Edge is an undirected tree edge between vertex indices U < V.
type Edge struct {
	U, V   int
	Weight float64
}

// MethodPrim selects Prim's algorithm (dense O(V²) growth from a root).
const MethodPrim = "prim"

// MethodKruskal selects Kruskal's algorithm (sort all edges and union-find).
const MethodKruskal = "kruskal"

// MSTOptions configures which MST algorithm to run.
// Use DefaultOptions() to get a default setup (Prim).
type MSTOptions struct {
	// Method to use: MethodPrim or MethodKruskal.
	Method string
}

// Option configures MSTOptions.
type Option func(*MSTOptions)

// WithMethod returns an Option that sets the algorithm Method.
func WithMethod(m string) Option {
	return func(opts *MSTOptions) {
		opts.Method = m
	}
}

// DefaultOptions returns MSTOptions initialized for Prim.
// Prim is the default because every weight matrix handed in here is a clique,
// where the O(V²) scan beats sorting O(V²) edges.
func DefaultOptions() MSTOptions {
	return MSTOptions{
		Method: MethodPrim,
	}
}

// Compute selects and runs the MST algorithm based on the options.
//
//	– MethodKruskal: calls Kruskal(w).
//	– MethodPrim:    calls Prim(w, 0).
//	– Otherwise:     returns ErrInvalidGraph.
func Compute(w *matrix.Dense, opts ...Option) ([]Edge, float64, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	switch o.Method {
	case MethodKruskal:
		return Kruskal(w)
	case MethodPrim:
		return Prim(w, 0)
	default:
		return nil, 0, fmt.Errorf("%w: unknown method %q", ErrInvalidGraph, o.Method)
	}
}

// validateWeights checks shape, symmetry and the numeric policy shared by both algorithms.
// +Inf marks a missing edge; NaN and -Inf are rejected.
func validateWeights(w *matrix.Dense) error {
	if w == nil {
		return ErrInvalidGraph
	}
	if err := matrix.ValidateSymmetric(w, symmetryTol); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidGraph, err)
	}
	n := w.Rows()
	data := w.RawData()
	for u := 0; u < n; u++ {
		for v := u + 1; v < n; v++ {
			a, b := data[u*n+v], data[v*n+u]
			if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, -1) || math.IsInf(b, -1) {
				return fmt.Errorf("%w: weight (%d,%d) is NaN or -Inf", ErrInvalidGraph, u, v)
			}
		}
	}

	return nil
}

// normalize returns the edge with U < V.
func normalize(u, v int, weight float64) Edge {
	if u > v {
		u, v = v, u
	}

	return Edge{U: u, V: v, Weight: weight}
}
