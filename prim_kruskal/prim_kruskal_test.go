package prim_kruskal_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/hclt/matrix"
	"github.com/katalvlaran/hclt/prim_kruskal"
)

// buildTriangle returns the weights of a triangle:
//
//	0—1 (weight 1), 1—2 (weight 2), 0—2 (weight 3).
//
// Its MST consists of edges 0—1 and 1—2 with total weight 3.
func buildTriangle(t *testing.T) *matrix.Dense {
	t.Helper()
	w, err := matrix.NewDenseRows([][]float64{
		{0, 1, 3},
		{1, 0, 2},
		{3, 2, 0},
	})
	require.NoError(t, err)

	return w
}

// buildRandomClique creates a symmetric n×n weight matrix with weights in [0,1).
// The generator is seeded for reproducibility.
func buildRandomClique(t testing.TB, n int, seed int64) *matrix.Dense {
	t.Helper()
	r := rand.New(rand.NewSource(seed))
	w, err := matrix.NewDense(n, n)
	require.NoError(t, err)
	for u := 0; u < n; u++ {
		for v := u + 1; v < n; v++ {
			x := r.Float64()
			_ = w.Set(u, v, x)
			_ = w.Set(v, u, x)
		}
	}

	return w
}

// bruteForceMST enumerates every spanning tree of K_n through Prüfer sequences
// and returns the minimal total weight.
func bruteForceMST(w *matrix.Dense) float64 {
	n := w.Rows()
	best := math.Inf(1)
	seq := make([]int, n-2)
	var rec func(pos int)
	rec = func(pos int) {
		if pos == len(seq) {
			total := 0.0
			for _, e := range pruferEdges(seq, n) {
				x, _ := w.At(e[0], e[1])
				total += x
			}
			best = math.Min(best, total)
			return
		}
		for v := 0; v < n; v++ {
			seq[pos] = v
			rec(pos + 1)
		}
	}
	rec(0)

	return best
}

// pruferEdges decodes a Prüfer sequence into the n-1 edges of its tree.
func pruferEdges(seq []int, n int) [][2]int {
	degree := make([]int, n)
	for v := range degree {
		degree[v] = 1
	}
	for _, v := range seq {
		degree[v]++
	}
	edges := make([][2]int, 0, n-1)
	for _, v := range seq {
		for u := 0; u < n; u++ {
			if degree[u] == 1 {
				edges = append(edges, [2]int{u, v})
				degree[u]--
				degree[v]--
				break
			}
		}
	}
	var last []int
	for u := 0; u < n; u++ {
		if degree[u] == 1 {
			last = append(last, u)
		}
	}

	return append(edges, [2]int{last[0], last[1]})
}

// edgeSet renders MST edges as a set of normalized pairs.
func edgeSet(mst []prim_kruskal.Edge) map[[2]int]bool {
	out := make(map[[2]int]bool, len(mst))
	for _, e := range mst {
		out[[2]int{e.U, e.V}] = true
	}

	return out
}

// TestValidation_InvalidWeights verifies that malformed matrices are rejected.
func TestValidation_InvalidWeights(t *testing.T) {
	_, _, err := prim_kruskal.Prim(nil, 0)
	assert.ErrorIs(t, err, prim_kruskal.ErrInvalidGraph)
	_, _, err = prim_kruskal.Kruskal(nil)
	assert.ErrorIs(t, err, prim_kruskal.ErrInvalidGraph)

	rect, _ := matrix.NewDense(2, 3)
	_, _, err = prim_kruskal.Kruskal(rect)
	assert.ErrorIs(t, err, prim_kruskal.ErrInvalidGraph)

	asym := buildTriangle(t)
	_ = asym.Set(0, 1, 5)
	_, _, err = prim_kruskal.Prim(asym, 0)
	assert.ErrorIs(t, err, prim_kruskal.ErrInvalidGraph)
	assert.ErrorIs(t, err, matrix.ErrAsymmetry)

	nan := buildTriangle(t)
	_ = nan.Set(0, 2, math.NaN())
	_ = nan.Set(2, 0, math.NaN())
	_, _, err = prim_kruskal.Kruskal(nan)
	assert.ErrorIs(t, err, prim_kruskal.ErrInvalidGraph)
}

// TestValidation_BadRoot verifies Prim rejects an out-of-range root.
func TestValidation_BadRoot(t *testing.T) {
	_, _, err := prim_kruskal.Prim(buildTriangle(t), 3)
	assert.ErrorIs(t, err, prim_kruskal.ErrBadRoot)
	_, _, err = prim_kruskal.Prim(buildTriangle(t), -1)
	assert.ErrorIs(t, err, prim_kruskal.ErrBadRoot)
}

// TestTriangle ensures both algorithms pick edges {0—1, 1—2} with weight 3.
func TestTriangle(t *testing.T) {
	w := buildTriangle(t)
	for name, run := range map[string]func() ([]prim_kruskal.Edge, float64, error){
		"prim":    func() ([]prim_kruskal.Edge, float64, error) { return prim_kruskal.Prim(w, 2) },
		"kruskal": func() ([]prim_kruskal.Edge, float64, error) { return prim_kruskal.Kruskal(w) },
	} {
		mst, total, err := run()
		require.NoError(t, err, name)
		assert.Equal(t, 3.0, total, name)
		assert.Len(t, mst, 2, name)
		set := edgeSet(mst)
		assert.True(t, set[[2]int{0, 1}], "%s: edge 0-1 must be in MST", name)
		assert.True(t, set[[2]int{1, 2}], "%s: edge 1-2 must be in MST", name)
	}
}

// TestSingleVertex verifies the trivial MST on a 1×1 matrix.
func TestSingleVertex(t *testing.T) {
	w, _ := matrix.NewDense(1, 1)

	mst, total, err := prim_kruskal.Prim(w, 0)
	require.NoError(t, err)
	assert.Empty(t, mst)
	assert.Zero(t, total)

	mst, total, err = prim_kruskal.Kruskal(w)
	require.NoError(t, err)
	assert.Empty(t, mst)
	assert.Zero(t, total)
}

// TestDisconnected verifies +Inf weights that isolate a vertex yield ErrDisconnected.
func TestDisconnected(t *testing.T) {
	w := buildTriangle(t)
	for _, v := range []int{0, 1} {
		_ = w.Set(v, 2, math.Inf(1))
		_ = w.Set(2, v, math.Inf(1))
	}

	_, _, err := prim_kruskal.Prim(w, 0)
	assert.ErrorIs(t, err, prim_kruskal.ErrDisconnected)
	_, _, err = prim_kruskal.Kruskal(w)
	assert.ErrorIs(t, err, prim_kruskal.ErrDisconnected)
}

// TestNegativeWeights checks that negated similarities (the Chow-Liu case) work.
func TestNegativeWeights(t *testing.T) {
	w := buildTriangle(t)
	for u := 0; u < 3; u++ {
		for v := 0; v < 3; v++ {
			x, _ := w.At(u, v)
			_ = w.Set(u, v, -x)
		}
	}

	mst, total, err := prim_kruskal.Prim(w, 0)
	require.NoError(t, err)
	assert.Equal(t, -5.0, total)
	set := edgeSet(mst)
	assert.True(t, set[[2]int{0, 2}])
	assert.True(t, set[[2]int{1, 2}])
}

// TestBruteForce_SmallCliques compares both algorithms against exhaustive
// enumeration of all spanning trees for K = 3..6.
func TestBruteForce_SmallCliques(t *testing.T) {
	for n := 3; n <= 6; n++ {
		w := buildRandomClique(t, n, int64(n))
		want := bruteForceMST(w)

		_, totalP, err := prim_kruskal.Prim(w, n-1)
		require.NoError(t, err)
		_, totalK, err := prim_kruskal.Kruskal(w)
		require.NoError(t, err)

		assert.InDelta(t, want, totalP, 1e-12, "prim n=%d", n)
		assert.InDelta(t, want, totalK, 1e-12, "kruskal n=%d", n)
	}
}

// TestCompute_Dispatch checks method selection and unknown methods.
func TestCompute_Dispatch(t *testing.T) {
	w := buildRandomClique(t, 20, 42)

	mstP, totalP, err := prim_kruskal.Compute(w, prim_kruskal.WithMethod(prim_kruskal.MethodPrim))
	require.NoError(t, err)
	mstK, totalK, err := prim_kruskal.Compute(w, prim_kruskal.WithMethod(prim_kruskal.MethodKruskal))
	require.NoError(t, err)

	assert.Len(t, mstP, 19)
	assert.Len(t, mstK, 19)
	assert.InDelta(t, totalK, totalP, 1e-10)

	_, _, err = prim_kruskal.Compute(w, prim_kruskal.WithMethod("boruvka"))
	assert.ErrorIs(t, err, prim_kruskal.ErrInvalidGraph)
}
