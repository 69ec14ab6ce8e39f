// Package prim_kruskal provides an implementation of Kruskal’s Minimum Spanning Tree algorithm.
// It reads the upper triangle of a dense symmetric weight matrix and produces a slice of edges forming the MST.
package prim_kruskal

import (
	"math"
	"sort"

	"github.com/katalvlaran/hclt/matrix"
)

// Kruskal computes the Minimum Spanning Tree of the complete undirected graph encoded by w.
// It uses a disjoint-set (union-find) data structure with path compression and union by rank.
//
// Error Conditions:
//   - ErrInvalidGraph : w is nil, non-square, asymmetric, or holds NaN/-Inf.
//   - ErrDisconnected : +Inf weights leave more than one component.
//
// Steps:
//  1. Validate weights. n == 1 → trivial MST (empty, weight 0).
//  2. Collect every finite upper-triangle edge (u<v) in row-major order.
//  3. Stable sort by ascending weight (ties keep row-major order).
//  4. Union-find over vertex indices; accept an edge when its endpoints are in different sets.
//  5. Stop at n-1 edges; fewer → ErrDisconnected.
//
// Complexity: O(V² log V) time for a clique, O(V²) memory.
func Kruskal(w *matrix.Dense) ([]Edge, float64, error) {
	if err := validateWeights(w); err != nil {
		return nil, 0, err
	}
	n := w.Rows()
	if n == 1 {
		return []Edge{}, 0, nil
	}

	data := w.RawData()
	edges := make([]Edge, 0, n*(n-1)/2)
	for u := 0; u < n; u++ {
		for v := u + 1; v < n; v++ {
			if math.IsInf(data[u*n+v], 1) {
				continue
			}
			edges = append(edges, Edge{U: u, V: v, Weight: data[u*n+v]})
		}
	}
	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].Weight < edges[j].Weight
	})

	parent := make([]int, n)
	rank := make([]int, n)
	for v := range parent {
		parent[v] = v
	}

	// Iterative find with path compression to avoid deep recursion.
	find := func(u int) int {
		for parent[u] != u {
			parent[u] = parent[parent[u]]
			u = parent[u]
		}

		return u
	}

	// Union by rank merges two disjoint sets.
	union := func(ru, rv int) {
		if rank[ru] < rank[rv] {
			parent[ru] = rv
			return
		}
		parent[rv] = ru
		if rank[ru] == rank[rv] {
			rank[ru]++
		}
	}

	mst := make([]Edge, 0, n-1)
	var total float64
	for _, e := range edges {
		ru, rv := find(e.U), find(e.V)
		if ru == rv {
			continue
		}
		union(ru, rv)
		mst = append(mst, e)
		total += e.Weight
		if len(mst) == n-1 {
			break
		}
	}

	if len(mst) < n-1 {
		return nil, 0, ErrDisconnected
	}

	return mst, total, nil
}
