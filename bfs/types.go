// Package bfs provides options and error definitions
// for breadth-first search over an index-addressed adjacency list.
package bfs

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for BFS execution.
var (
	// ErrStartVertexNotFound is returned when the start index is outside the graph.
	ErrStartVertexNotFound = errors.New("bfs: start vertex not found")

	// ErrGraphNil is returned if a nil adjacency list is passed.
	ErrGraphNil = errors.New("bfs: graph is nil")
)

// Option configures BFS behavior via functional arguments.
type Option func(*BFSOptions)

// BFSOptions holds parameters to customize BFS execution.
type BFSOptions struct {
	// Ctx allows cancellation and deadlines.
	Ctx context.Context
}

// DefaultOptions returns a BFSOptions with a Background context.
func DefaultOptions() BFSOptions {
	return BFSOptions{Ctx: context.Background()}
}

// WithContext sets a custom context for cancellation.
// Passing a nil context has no effect.
func WithContext(ctx context.Context) Option {
	return func(o *BFSOptions) {
		if ctx != nil {
			o.Ctx = ctx
		}
	}
}

// BFSResult holds the outcome of a BFS traversal:
//   - Order: vertices visited, in visit sequence.
//   - Depth: distance (in edges) from the start; -1 for unreached vertices.
//   - Parent: predecessor in the BFS tree; -1 for the start and unreached vertices.
type BFSResult struct {
	Order  []int
	Depth  []int
	Parent []int
}

// Farthest returns the reached vertex with the largest depth
// (the earliest visited one on ties) and that depth.
func (r *BFSResult) Farthest() (id, depth int) {
	id, depth = -1, -1
	for _, v := range r.Order {
		if r.Depth[v] > depth {
			id, depth = v, r.Depth[v]
		}
	}

	return id, depth
}

// PathTo reconstructs the path from the start vertex to dest.
// Returns an error if dest was not reached.
func (r *BFSResult) PathTo(dest int) ([]int, error) {
	if dest < 0 || dest >= len(r.Depth) || r.Depth[dest] < 0 {
		return nil, fmt.Errorf("bfs: no path to %d", dest)
	}
	path := make([]int, 0, r.Depth[dest]+1)
	for cur := dest; cur != -1; cur = r.Parent[cur] {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path, nil
}
