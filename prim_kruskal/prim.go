// Package prim_kruskal provides an implementation of Prim’s Minimum Spanning Tree (MST) algorithm.
// It works on a dense symmetric weight matrix and grows the MST from a root vertex
// with an array of best-known connection costs instead of a heap.
package prim_kruskal

import (
	"fmt"
	"math"

	"github.com/katalvlaran/hclt/matrix"
)

// Prim computes the Minimum Spanning Tree of the complete undirected graph whose
// edge (u,v) costs w[u,v]; the diagonal is ignored and +Inf means "no edge".
//
// Error Conditions:
//   - ErrInvalidGraph : w is nil, non-square, asymmetric, or holds NaN/-Inf.
//   - ErrBadRoot      : root outside [0, n) for n >= 1.
//   - ErrDisconnected : some vertex is only reachable through +Inf weights.
//
// Steps:
//  1. Validate weights and root.
//  2. best[v] = w[root,v], from[v] = root for every v != root.
//  3. Repeat n-1 times:
//     a. Pick the unvisited v with the smallest best[v] (lowest index on ties).
//     b. If best[v] is +Inf → ErrDisconnected.
//     c. Add (from[v], v), mark v visited and relax best[] through v.
//  4. Return MST edges (in insertion order) and the total weight.
//
// Complexity: O(V²) time, O(V) memory.
func Prim(w *matrix.Dense, root int) ([]Edge, float64, error) {
	if err := validateWeights(w); err != nil {
		return nil, 0, err
	}
	n := w.Rows()
	if root < 0 || root >= n {
		return nil, 0, fmt.Errorf("%w: %d not in [0,%d)", ErrBadRoot, root, n)
	}
	if n == 1 {
		return []Edge{}, 0, nil
	}

	data := w.RawData()
	visited := make([]bool, n)
	best := make([]float64, n)
	from := make([]int, n)
	for v := 0; v < n; v++ {
		best[v] = data[root*n+v]
		from[v] = root
	}
	visited[root] = true

	mst := make([]Edge, 0, n-1)
	var total float64
	for len(mst) < n-1 {
		next := -1
		for v := 0; v < n; v++ {
			if visited[v] {
				continue
			}
			if next == -1 || best[v] < best[next] {
				next = v
			}
		}
		if math.IsInf(best[next], 1) {
			return nil, 0, ErrDisconnected
		}

		visited[next] = true
		mst = append(mst, normalize(from[next], next, best[next]))
		total += best[next]

		row := data[next*n : (next+1)*n]
		for v := 0; v < n; v++ {
			if !visited[v] && row[v] < best[v] {
				best[v] = row[v]
				from[v] = next
			}
		}
	}

	return mst, total, nil
}
