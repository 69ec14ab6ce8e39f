// Package dfs provides depth-first ordering of directed acyclic graphs whose
// vertices are the indices 0..n-1.
//
// TopologicalSort computes a linear ordering of vertices such that for
// every directed edge u→v, u appears before v in the ordering.
// PostOrder yields the opposite: children before parents, which is
// the evaluation order of a bottom-up circuit.
// If the graph contains a cycle, ErrCycleDetected is returned and the
// error message lists the vertices of the cycle.
//
// Complexity:
//
//   - Time:   O(V + E) (each vertex and edge visited once)
//   - Memory: O(V)     (recursion stack and state slice)
package dfs
