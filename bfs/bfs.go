// Package bfs provides breadth-first search over an adjacency list whose
// vertices are the indices 0..n-1, returning unweighted shortest-path
// distances, parent links, and visit order.
//
// BFS explores vertices in increasing distance from a start vertex and
// stops early when its context is cancelled.
package bfs

import (
	"context"
	"fmt"
)

// queueItem pairs a vertex index with its BFS depth.
type queueItem struct {
	id    int
	depth int
}

// walker encapsulates mutable BFS state.
type walker struct {
	adj   [][]int
	ctx   context.Context
	queue []queueItem
	res   *BFSResult
}

// BFS runs breadth-first search on adj starting from start,
// applying any number of functional Options.
// adj[v] lists the neighbors of v; undirected graphs list each edge twice.
// Returns ErrGraphNil or ErrStartVertexNotFound for invalid input,
// an error for a neighbor outside the graph, or the context error.
func BFS(adj [][]int, start int, opts ...Option) (*BFSResult, error) {
	if adj == nil {
		return nil, ErrGraphNil
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	n := len(adj)
	if start < 0 || start >= n {
		return nil, fmt.Errorf("%w: %d not in [0,%d)", ErrStartVertexNotFound, start, n)
	}

	w := &walker{
		adj:   adj,
		ctx:   o.Ctx,
		queue: make([]queueItem, 0, n),
		res: &BFSResult{
			Order:  make([]int, 0, n),
			Depth:  make([]int, n),
			Parent: make([]int, n),
		},
	}
	for v := 0; v < n; v++ {
		w.res.Depth[v] = -1
		w.res.Parent[v] = -1
	}

	w.enqueue(start, 0, -1)

	return w.res, w.loop()
}

// enqueue marks id reached at depth d, records its parent, and adds it to the queue.
func (w *walker) enqueue(id, d, parent int) {
	w.res.Depth[id] = d
	w.res.Parent[id] = parent
	w.queue = append(w.queue, queueItem{id: id, depth: d})
}

// loop processes the queue until empty, error, or cancellation.
func (w *walker) loop() error {
	for len(w.queue) > 0 {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		default:
		}

		item := w.queue[0]
		w.queue = w.queue[1:]
		w.res.Order = append(w.res.Order, item.id)
		if err := w.enqueueNeighbors(item); err != nil {
			return err
		}
	}

	return nil
}

// enqueueNeighbors enqueues each unseen neighbor of item one level deeper.
func (w *walker) enqueueNeighbors(item queueItem) error {
	nextDepth := item.depth + 1
	for _, nbr := range w.adj[item.id] {
		if nbr < 0 || nbr >= len(w.adj) {
			return fmt.Errorf("bfs: neighbor %d of %d out of range [0,%d)", nbr, item.id, len(w.adj))
		}
		if w.res.Depth[nbr] < 0 {
			w.enqueue(nbr, nextDepth, item.id)
		}
	}

	return nil
}
