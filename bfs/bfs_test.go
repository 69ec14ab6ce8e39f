package bfs_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/katalvlaran/hclt/bfs"
)

// TestBFS_Errors verifies that invalid inputs are rejected.
func TestBFS_Errors(t *testing.T) {
	// nil graph
	if _, err := bfs.BFS(nil, 0); !errors.Is(err, bfs.ErrGraphNil) {
		t.Errorf("nil graph: want ErrGraphNil, got %v", err)
	}
	// start vertex out of range
	adj := [][]int{{}}
	if _, err := bfs.BFS(adj, 1); !errors.Is(err, bfs.ErrStartVertexNotFound) {
		t.Errorf("missing start: want ErrStartVertexNotFound, got %v", err)
	}
	if _, err := bfs.BFS(adj, -1); !errors.Is(err, bfs.ErrStartVertexNotFound) {
		t.Errorf("negative start: want ErrStartVertexNotFound, got %v", err)
	}
	// dangling neighbor index
	if _, err := bfs.BFS([][]int{{5}}, 0); err == nil {
		t.Errorf("dangling neighbor: want error, got nil")
	}
}

// TestBFS_SimpleTraversal covers the trivial one-vertex graph.
func TestBFS_SimpleTraversal(t *testing.T) {
	res, err := bfs.BFS([][]int{{}}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []int{0}; !reflect.DeepEqual(res.Order, want) {
		t.Errorf("Order = %v; want %v", res.Order, want)
	}
	if d := res.Depth[0]; d != 0 {
		t.Errorf("Depth[0] = %d; want 0", d)
	}
	if p := res.Parent[0]; p != -1 {
		t.Errorf("Parent[0] = %d; want -1", p)
	}
}

// TestCycleAndDepths covers a 4-cycle and checks depths.
func TestCycleAndDepths(t *testing.T) {
	// 0–1–2–3–0 undirected cycle
	adj := [][]int{{1, 3}, {0, 2}, {1, 3}, {2, 0}}
	res, err := bfs.BFS(adj, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []int{0, 1, 3, 2}; !reflect.DeepEqual(res.Order, want) {
		t.Errorf("Order = %v; want %v", res.Order, want)
	}
	if want := []int{0, 1, 2, 1}; !reflect.DeepEqual(res.Depth, want) {
		t.Errorf("Depth = %v; want %v", res.Depth, want)
	}
	path, err := res.PathTo(2)
	if err != nil {
		t.Fatalf("PathTo(2): %v", err)
	}
	if want := []int{0, 1, 2}; !reflect.DeepEqual(path, want) {
		t.Errorf("PathTo(2) = %v; want %v", path, want)
	}
}

// TestBFS_Disconnected ensures unreachable vertices keep depth -1.
func TestBFS_Disconnected(t *testing.T) {
	adj := [][]int{{1}, {0}, {3}, {2}}
	res, err := bfs.BFS(adj, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []int{0, 1}; !reflect.DeepEqual(res.Order, want) {
		t.Errorf("Order = %v; want %v", res.Order, want)
	}
	for _, v := range []int{2, 3} {
		if res.Depth[v] != -1 {
			t.Errorf("Depth[%d] = %d; want -1", v, res.Depth[v])
		}
		if _, err := res.PathTo(v); err == nil {
			t.Errorf("PathTo(%d): want error for unreached vertex", v)
		}
	}
}

// TestBFS_NilContext keeps the Background context.
func TestBFS_NilContext(t *testing.T) {
	res, err := bfs.BFS([][]int{{1}, {0}}, 0, bfs.WithContext(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []int{0, 1}; !reflect.DeepEqual(res.Order, want) {
		t.Errorf("Order = %v; want %v", res.Order, want)
	}
}

// TestBFS_Cancel honors an already cancelled context.
func TestBFS_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := bfs.BFS([][]int{{}}, 0, bfs.WithContext(ctx))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("want context.Canceled, got %v", err)
	}
}

// TestFarthest returns the deepest vertex, earliest on ties.
func TestFarthest(t *testing.T) {
	// star centred at 0
	adj := [][]int{{1, 2, 3}, {0}, {0}, {0}}
	res, err := bfs.BFS(adj, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id, d := res.Farthest()
	if id != 1 || d != 1 {
		t.Errorf("Farthest = (%d,%d); want (1,1)", id, d)
	}
}
