// Package prim_kruskal computes Minimum Spanning Trees (MST) over a complete
// undirected graph given as a dense symmetric weight matrix: Prim’s algorithm
// and Kruskal’s algorithm.
//
// What & Why
//
//   - Given an undirected, connected, weighted graph G = (V, E), an MST is a subset T ⊆ E
//     that connects all vertices in V with minimal total weight.
//   - Negating pairwise mutual information turns the MST into the maximum-MI
//     spanning tree used by Chow-Liu structure learning (see package chowliu).
//
// Input convention
//
//   - w is n×n, symmetric within 1e-9; the diagonal is ignored (no self-loops).
//   - w[u,v] = +Inf means "no edge"; NaN and -Inf are rejected with ErrInvalidGraph.
//
// Algorithms Provided
//
//   - Prim(w, root) ([]Edge, float64, error)
//     Array-backed growth from root. Time O(V²), space O(V). Preferred for cliques.
//
//   - Kruskal(w) ([]Edge, float64, error)
//     Stable sort of the upper triangle + union-find. Time O(V² log V), space O(V²).
//
// Error Conditions
//
//   - ErrInvalidGraph : nil, non-square, asymmetric, NaN or -Inf weights.
//   - ErrBadRoot      : Prim root outside [0, n).
//   - ErrDisconnected : +Inf weights leave the graph in several components.
//
// Determinism
//
//   - Prim breaks ties by lowest vertex index; Kruskal by row-major edge order.
//     Both return a tree of minimal total weight; callers must not rely on which
//     of several equal-weight trees is returned.
package prim_kruskal
