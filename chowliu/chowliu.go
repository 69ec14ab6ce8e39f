// Package chowliu builds Chow-Liu dependency trees from a mutual-information
// matrix and roots them at a graph centre.
//
// The complete graph over K variables is weighted with −MI(u,v) for every
// u<v; its minimum spanning tree is the maximum-MI spanning tree. The root is
// found with two breadth-first sweeps: the farthest vertex a from an arbitrary
// start, then the farthest vertex b from a; the midpoint of the a–b path has
// eccentricity equal to the tree radius.
package chowliu

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/hclt/bfs"
	"github.com/katalvlaran/hclt/matrix"
	"github.com/katalvlaran/hclt/prim_kruskal"
)

var (
	// ErrEmptyMatrix is returned for a nil or 0×0 MI matrix.
	ErrEmptyMatrix = errors.New("chowliu: MI matrix is empty")

	// ErrNotSquare is returned when the MI matrix is not K×K.
	ErrNotSquare = errors.New("chowliu: MI matrix must be square")

	// ErrNonFinite is returned when the MI matrix holds NaN or ±Inf off the diagonal.
	ErrNonFinite = errors.New("chowliu: MI matrix holds non-finite values")
)

// Option configures tree construction.
type Option func(*options)

type options struct {
	ctx    context.Context
	method string
}

// WithMethod selects the MST algorithm (prim_kruskal.MethodPrim or MethodKruskal).
func WithMethod(m string) Option {
	return func(o *options) { o.method = m }
}

// WithContext cancels the tree sweeps when ctx is done. A nil ctx is ignored.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// Tree is a spanning tree over N variables rooted at a centre.
type Tree struct {
	N     int
	Root  int
	Edges []prim_kruskal.Edge

	// Adj is the undirected adjacency list.
	Adj [][]int
	// Parent[v] is v's parent when the tree hangs from Root; -1 for Root.
	Parent []int
	// Children[v] lists v's children in ascending order.
	Children [][]int
	// Order is the BFS order from Root; parents precede children.
	Order []int
}

// ChowLiuTree returns the maximum-MI spanning tree of mi rooted at its centre.
// Only the upper triangle of mi is read; the diagonal is ignored.
func ChowLiuTree(mi *matrix.Dense, opts ...Option) (*Tree, error) {
	o := options{ctx: context.Background(), method: prim_kruskal.MethodPrim}
	for _, opt := range opts {
		opt(&o)
	}
	if mi == nil || mi.Rows() == 0 {
		return nil, ErrEmptyMatrix
	}
	if err := matrix.ValidateSquare(mi); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotSquare, err)
	}
	k := mi.Rows()

	w, err := negatedWeights(mi)
	if err != nil {
		return nil, err
	}
	edges, _, err := prim_kruskal.Compute(w, prim_kruskal.WithMethod(o.method))
	if err != nil {
		return nil, fmt.Errorf("chowliu: spanning tree: %w", err)
	}

	adj := make([][]int, k)
	for _, e := range edges {
		adj[e.U] = append(adj[e.U], e.V)
		adj[e.V] = append(adj[e.V], e.U)
	}
	sweep := bfs.WithContext(o.ctx)
	root, err := Center(adj, sweep)
	if err != nil {
		return nil, err
	}

	return rooted(k, root, edges, adj, sweep)
}

// negatedWeights mirrors −MI from the upper triangle into a fresh symmetric matrix.
func negatedWeights(mi *matrix.Dense) (*matrix.Dense, error) {
	k := mi.Rows()
	w, err := matrix.NewDense(k, k)
	if err != nil {
		return nil, err
	}
	src, dst := mi.RawData(), w.RawData()
	for u := 0; u < k; u++ {
		for v := u + 1; v < k; v++ {
			x := src[u*k+v]
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, fmt.Errorf("%w: MI(%d,%d)=%g", ErrNonFinite, u, v, x)
			}
			dst[u*k+v] = -x
			dst[v*k+u] = -x
		}
	}

	return w, nil
}

// Center returns a vertex of minimum eccentricity in the tree given by adj.
// It runs BFS from vertex 0, again from the farthest vertex a, and returns the
// middle vertex of the path from a to the farthest vertex b.
// opts are passed to both sweeps.
func Center(adj [][]int, opts ...bfs.Option) (int, error) {
	if len(adj) == 0 {
		return 0, ErrEmptyMatrix
	}
	first, err := bfs.BFS(adj, 0, opts...)
	if err != nil {
		return 0, fmt.Errorf("chowliu: centre sweep: %w", err)
	}
	a, _ := first.Farthest()
	second, err := bfs.BFS(adj, a, opts...)
	if err != nil {
		return 0, fmt.Errorf("chowliu: centre sweep: %w", err)
	}
	b, diameter := second.Farthest()
	path, err := second.PathTo(b)
	if err != nil {
		return 0, fmt.Errorf("chowliu: centre sweep: %w", err)
	}

	return path[diameter/2], nil
}

// rooted orients the tree away from root.
func rooted(k, root int, edges []prim_kruskal.Edge, adj [][]int, opts ...bfs.Option) (*Tree, error) {
	res, err := bfs.BFS(adj, root, opts...)
	if err != nil {
		return nil, fmt.Errorf("chowliu: orient: %w", err)
	}
	if len(res.Order) != k {
		return nil, fmt.Errorf("chowliu: tree reaches %d of %d vertices", len(res.Order), k)
	}
	children := make([][]int, k)
	for _, v := range res.Order {
		if p := res.Parent[v]; p >= 0 {
			children[p] = append(children[p], v)
		}
	}
	for _, c := range children {
		sort.Ints(c)
	}

	return &Tree{
		N:        k,
		Root:     root,
		Edges:    edges,
		Adj:      adj,
		Parent:   res.Parent,
		Children: children,
		Order:    res.Order,
	}, nil
}

// Eccentricity returns the largest hop distance from v to any vertex.
func (t *Tree) Eccentricity(v int) (int, error) {
	res, err := bfs.BFS(t.Adj, v)
	if err != nil {
		return 0, err
	}
	_, d := res.Farthest()

	return d, nil
}

// Radius returns the minimum eccentricity over all vertices.
func (t *Tree) Radius() int {
	best := -1
	for v := 0; v < t.N; v++ {
		e, err := t.Eccentricity(v)
		if err != nil {
			continue
		}
		if best < 0 || e < best {
			best = e
		}
	}

	return best
}

// TotalWeight returns the MI retained by the tree edges.
func (t *Tree) TotalWeight(mi *matrix.Dense) (float64, error) {
	total := 0.0
	for _, e := range t.Edges {
		x, err := mi.At(e.U, e.V)
		if err != nil {
			return 0, err
		}
		total += x
	}

	return total, nil
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (t *Tree) Depth() int {
	depth := make([]int, t.N)
	deepest := 0
	for _, v := range t.Order {
		if p := t.Parent[v]; p >= 0 {
			depth[v] = depth[p] + 1
			if depth[v] > deepest {
				deepest = depth[v]
			}
		}
	}

	return deepest
}
