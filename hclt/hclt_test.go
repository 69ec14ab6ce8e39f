package hclt_test

import (
	"context"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/hclt/family"
	"github.com/katalvlaran/hclt/hclt"
	"github.com/katalvlaran/hclt/matrix"
	"github.com/katalvlaran/hclt/mutualinfo"
	"github.com/katalvlaran/hclt/prim_kruskal"
)

// pairs returns B rows of 4 binary variables with x2 = x0 and x3 = x1.
func pairs(t *testing.T, B int) *matrix.Dense {
	t.Helper()
	r := rand.New(rand.NewSource(5))
	x, err := matrix.NewDense(B, 4)
	require.NoError(t, err)
	for i := 0; i < B; i++ {
		a, b := float64(r.Intn(2)), float64(r.Intn(2))
		for j, v := range []float64{a, b, a, b} {
			require.NoError(t, x.Set(i, j, v))
		}
	}

	return x
}

func binary(t *testing.T) family.Family {
	t.Helper()
	f, err := family.NewCategorical(2)
	require.NoError(t, err)

	return f
}

// TestHCLT_EndToEnd learns, trains one EM step and evaluates.
func TestHCLT_EndToEnd(t *testing.T) {
	x := pairs(t, 300)
	var stages []hclt.Stage
	c, err := hclt.HCLT(x,
		hclt.WithBins(16),
		hclt.WithSigma(0.5/16),
		hclt.WithChunkSize(3),
		hclt.WithNumLatents(4),
		hclt.WithMaxPartitions(2),
		hclt.WithFamily(binary(t)),
		hclt.WithSeed(3),
		hclt.WithOnStage(func(s hclt.Stage, _ time.Duration) { stages = append(stages, s) }),
	)
	require.NoError(t, err)
	assert.Equal(t, []hclt.Stage{hclt.StageMutualInformation, hclt.StageChowLiu, hclt.StageRegionGraph, hclt.StageCompile}, stages)
	assert.Equal(t, 4, c.NumVars)

	before, err := c.MeanLogLikelihood(x)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err = c.Backward(x, 0)
		require.NoError(t, err)
		require.NoError(t, c.MiniBatchEM(1, 0.01))
	}
	after, err := c.MeanLogLikelihood(x)
	require.NoError(t, err)
	assert.Greater(t, after, before)
	assert.Less(t, after, 0.0)
}

// TestLearn_DependentPairs keeps the engineered edges in the tree.
func TestLearn_DependentPairs(t *testing.T) {
	s, err := hclt.Learn(pairs(t, 300), hclt.WithBins(16), hclt.WithSigma(0.5/16), hclt.WithNumLatents(2),
		hclt.WithFamily(binary(t)), hclt.WithMSTMethod(prim_kruskal.MethodKruskal))
	require.NoError(t, err)

	edges := map[[2]int]bool{}
	for _, e := range s.Tree.Edges {
		edges[[2]int{e.U, e.V}] = true
	}
	assert.True(t, edges[[2]int{0, 2}])
	assert.True(t, edges[[2]int{1, 3}])
	assert.NoError(t, s.Regions.Validate())
}

// TestHCLT_Options records invalid options.
func TestHCLT_Options(t *testing.T) {
	x := pairs(t, 20)
	for name, opt := range map[string]hclt.Option{
		"bins":       hclt.WithBins(1),
		"sigma":      hclt.WithSigma(0),
		"chunk":      hclt.WithChunkSize(0),
		"latents":    hclt.WithNumLatents(0),
		"partitions": hclt.WithMaxPartitions(1),
		"family":     hclt.WithFamily(nil),
		"mst":        hclt.WithMSTMethod("boruvka"),
	} {
		_, err := hclt.HCLT(x, opt)
		assert.ErrorIs(t, err, hclt.ErrOptionViolation, name)
	}
}

// TestHCLT_InputErrors rejects empty data and values outside the family.
func TestHCLT_InputErrors(t *testing.T) {
	_, err := hclt.HCLT(nil)
	assert.Error(t, err)

	x := pairs(t, 20)
	require.NoError(t, x.Set(3, 1, 2))
	_, err = hclt.HCLT(x, hclt.WithFamily(binary(t)))
	assert.ErrorIs(t, err, family.ErrDomain)

	_, err = hclt.HCLT(&matrix.Dense{}, hclt.WithFamily(binary(t)))
	assert.ErrorIs(t, err, mutualinfo.ErrEmptyBatch)

	nan := pairs(t, 20)
	nan.RawData()[5] = math.NaN()
	_, err = hclt.HCLT(nan, hclt.WithFamily(binary(t)))
	require.ErrorIs(t, err, matrix.ErrNaNInf)
	assert.Contains(t, err.Error(), "(1,1)")
}

// TestHCLT_Cancel stops between MI tiles.
func TestHCLT_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := hclt.HCLT(pairs(t, 20), hclt.WithFamily(binary(t)), hclt.WithContext(ctx))
	assert.ErrorIs(t, err, context.Canceled)
}

// TestHCLT_OnChunk forwards the MI tile hook.
func TestHCLT_OnChunk(t *testing.T) {
	tiles := 0
	_, err := hclt.Learn(pairs(t, 20), hclt.WithFamily(binary(t)), hclt.WithChunkSize(2), hclt.WithNumLatents(2),
		hclt.WithOnChunk(func(_, _, _, _ int) { tiles++ }))
	require.NoError(t, err)
	assert.Equal(t, 4, tiles)
}
