// Package bfs provides breadth-first search over an index-addressed adjacency
// list, returning unweighted shortest-path distances, parent links, and visit order.
//
// What
//
//   - Explore vertices in non-decreasing distance (edge count) from a start vertex.
//   - Returns a BFSResult containing:
//   - Order: visit sequence
//   - Depth: distance (edges) from start, -1 when unreached
//   - Parent: predecessor in the BFS tree, -1 for the start
//   - Honors cancellation of the context passed with WithContext.
//
// Why
//
//   - Eccentricities and centers of Chow-Liu trees (two passes find a diameter path).
//   - Unweighted shortest paths and level layering in O(V + E).
//
// Determinism
//
//	Neighbors are enqueued in the order they appear in adj[v], so the visit
//	sequence is fully reproducible for a given adjacency list.
//
// Complexity (V = len(adj), E = total adjacency entries)
//
//   - Time:   O(V + E)
//   - Memory: O(V)
package bfs
