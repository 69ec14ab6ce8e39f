package dfs

import (
	"fmt"
)

// topoSorter encapsulates state for a topological sort traversal.
type topoSorter struct {
	adj   [][]int     // adj[u] lists the heads v of edges u→v
	opts  topoOptions // traversal options
	state []int       // visitation state: White, Gray, Black
	order []int       // recorded post-order sequence
	stack []int       // current Gray path, for cycle reporting
}

// TopologicalSort computes an ordering of the vertices of adj such that
// for every edge u→v, u appears before v.
// Vertices are explored in ascending index and edges in list order, so the
// result is deterministic for a given adjacency list.
// If adj is nil, returns ErrGraphNil.
// If a cycle is detected, returns ErrCycleDetected naming the cycle.
// You may pass WithCancelContext(ctx) to enable cancellation and WithRoots
// to ignore vertices unreachable from the given roots.
func TopologicalSort(adj [][]int, options ...TopoOption) ([]int, error) {
	if adj == nil {
		return nil, ErrGraphNil
	}
	opts := defaultTopoOptions()
	for _, opt := range options {
		opt(&opts)
	}
	n := len(adj)
	sorter := &topoSorter{
		adj:   adj,
		opts:  opts,
		state: make([]int, n),
		order: make([]int, 0, n),
	}

	starts := opts.roots
	if starts == nil {
		starts = make([]int, n)
		for v := range starts {
			starts[v] = v
		}
	}
	for _, v := range starts {
		if v < 0 || v >= n {
			return nil, fmt.Errorf("%w: root %d not in [0,%d)", ErrVertexOutOfRange, v, n)
		}
		if sorter.state[v] == White {
			if err := sorter.visit(v); err != nil {
				return nil, err
			}
		}
	}

	// Reverse post-order to produce topological order.
	for i, j := 0, len(sorter.order)-1; i < j; i, j = i+1, j-1 {
		sorter.order[i], sorter.order[j] = sorter.order[j], sorter.order[i]
	}

	return sorter.order, nil
}

// visit performs a DFS from id, marking states and detecting cycles.
func (t *topoSorter) visit(id int) error {
	select {
	case <-t.opts.ctx.Done():
		return t.opts.ctx.Err()
	default:
	}
	if t.state[id] == Gray {
		return fmt.Errorf("%w: %v", ErrCycleDetected, t.cycleFrom(id))
	}
	if t.state[id] == Black {
		return nil
	}
	t.state[id] = Gray
	t.stack = append(t.stack, id)

	for _, next := range t.adj[id] {
		if next < 0 || next >= len(t.adj) {
			return fmt.Errorf("%w: edge %d→%d", ErrVertexOutOfRange, id, next)
		}
		if err := t.visit(next); err != nil {
			return err
		}
	}

	t.stack = t.stack[:len(t.stack)-1]
	t.state[id] = Black
	t.order = append(t.order, id)

	return nil
}

// cycleFrom returns the Gray path segment starting at id, closed back onto id.
func (t *topoSorter) cycleFrom(id int) []int {
	for i, v := range t.stack {
		if v == id {
			cycle := append([]int(nil), t.stack[i:]...)
			return append(cycle, id)
		}
	}

	return []int{id}
}

// PostOrder is the DFS post-order, TopologicalSort reversed: every edge u→v has v before u.
// Evaluating a DAG of parent→child edges in this order visits children first.
func PostOrder(adj [][]int, options ...TopoOption) ([]int, error) {
	order, err := TopologicalSort(adj, options...)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}

	return order, nil
}
