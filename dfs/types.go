// Package dfs defines state constants, sentinel errors and options for
// depth-first traversal of index-addressed directed graphs.
package dfs

import (
	"context"
	"errors"
)

// Vertex visitation states.
const (
	White = iota // White: the vertex has not been visited yet.
	Gray         // Gray: the vertex is in the recursion stack (visiting).
	Black        // Black: the vertex and all its descendants have been fully explored.
)

var (
	// ErrGraphNil is returned when a nil adjacency list is passed.
	ErrGraphNil = errors.New("dfs: graph is nil")

	// ErrVertexOutOfRange indicates an edge or root pointing outside [0, n).
	ErrVertexOutOfRange = errors.New("dfs: vertex out of range")

	// ErrCycleDetected indicates that a cycle was encountered during TopologicalSort.
	ErrCycleDetected = errors.New("dfs: cycle detected")
)

// TopoOption configures optional behavior for TopologicalSort.
type TopoOption func(*topoOptions)

// topoOptions holds settings for TopologicalSort.
type topoOptions struct {
	ctx   context.Context // allows cancellation; defaults to Background
	roots []int           // restrict the sort to vertices reachable from roots; nil means all
}

// defaultTopoOptions returns the default options (Background context, all vertices).
func defaultTopoOptions() topoOptions {
	return topoOptions{ctx: context.Background()}
}

// WithCancelContext returns a TopoOption that sets the cancellation context.
// Passing a nil context has no effect.
func WithCancelContext(ctx context.Context) TopoOption {
	return func(o *topoOptions) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithRoots restricts the ordering to vertices reachable from roots.
func WithRoots(roots ...int) TopoOption {
	return func(o *topoOptions) {
		o.roots = append([]int(nil), roots...)
	}
}
