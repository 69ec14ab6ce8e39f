package circuit_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/hclt/circuit"
	"github.com/katalvlaran/hclt/matrix"
)

// TestForward_Normalised sums the probability of every configuration.
func TestForward_Normalised(t *testing.T) {
	for _, budget := range []int{0, 2} {
		c, _ := compiled(t, 4, 3, 3, budget)
		ll, err := c.Forward(allConfigurations(t, 4, 3))
		require.NoError(t, err)
		assert.InDelta(t, 0.0, floats.LogSumExp(ll), 1e-10, "budget %d", budget)
	}
}

// TestForward_AllMissing returns the normalisation constant for every row.
func TestForward_AllMissing(t *testing.T) {
	c, x := compiled(t, 6, 3, 3, 0)
	ll, err := c.Forward(x, circuit.WithMissing(allMissing(t, x.Rows(), x.Cols())))
	require.NoError(t, err)
	for i, v := range ll {
		assert.InDelta(t, 0.0, v, 1e-10, "row %d", i)
	}
}

// TestForward_MissingMarginalises compares a masked variable with explicit summation.
func TestForward_MissingMarginalises(t *testing.T) {
	const cats = 3
	c, x := compiled(t, 5, 2, cats, 0)
	row := x.RawRow(0)

	mask, err := circuit.NewMask(1, 5)
	require.NoError(t, err)
	mask.Set(0, 2, true)
	one, err := matrix.NewDenseFrom(1, 5, row)
	require.NoError(t, err)
	got, err := c.Forward(one, circuit.WithMissing(mask))
	require.NoError(t, err)

	terms := make([]float64, cats)
	for v := 0; v < cats; v++ {
		require.NoError(t, one.Set(0, 2, float64(v)))
		ll, err := c.Forward(one)
		require.NoError(t, err)
		terms[v] = ll[0]
	}
	assert.InDelta(t, floats.LogSumExp(terms), got[0], 1e-10)
}

// TestForward_Alphas covers alpha=1 identity and blending.
func TestForward_Alphas(t *testing.T) {
	c, x := compiled(t, 4, 2, 3, 0)
	plain, err := c.Forward(x)
	require.NoError(t, err)

	ones, _ := matrix.NewDense(x.Rows(), x.Cols())
	for i := range ones.RawData() {
		ones.RawData()[i] = 1
	}
	same, err := c.Forward(x, circuit.WithAlphas(ones))
	require.NoError(t, err)
	assert.InDeltaSlice(t, plain, same, 1e-12)

	half, _ := matrix.NewDense(x.Rows(), x.Cols())
	for i := range half.RawData() {
		half.RawData()[i] = 0.5
	}
	soft, err := c.Forward(x, circuit.WithAlphas(half))
	require.NoError(t, err)
	assert.NotEqual(t, plain, soft)
	for _, v := range soft {
		assert.False(t, math.IsNaN(v))
	}

	bad, _ := matrix.NewDense(x.Rows(), x.Cols())
	_ = bad.Set(0, 0, 1.5)
	_, err = c.Forward(x, circuit.WithAlphas(bad))
	assert.ErrorIs(t, err, circuit.ErrDomain)
}

// TestForward_Errors names shapes and rejects out-of-support values.
func TestForward_Errors(t *testing.T) {
	c, x := compiled(t, 4, 2, 3, 0)

	_, err := c.Forward(nil)
	assert.ErrorIs(t, err, circuit.ErrShape)

	narrow, _ := matrix.NewDense(3, 2)
	_, err = c.Forward(narrow)
	require.ErrorIs(t, err, circuit.ErrShape)
	assert.Contains(t, err.Error(), "3x2")
	assert.Contains(t, err.Error(), "4 variables")

	mask, _ := circuit.NewMask(1, 4)
	_, err = c.Forward(x, circuit.WithMissing(mask))
	assert.ErrorIs(t, err, circuit.ErrShape)

	alphas, _ := matrix.NewDense(x.Rows(), 3)
	_, err = c.Forward(x, circuit.WithAlphas(alphas))
	assert.ErrorIs(t, err, circuit.ErrShape)
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	odd := x.Clone().(*matrix.Dense)
	require.NoError(t, odd.Set(1, 1, 7))
	_, err = c.Forward(odd)
	require.ErrorIs(t, err, circuit.ErrDomain)
	assert.Contains(t, err.Error(), "x(1,1)")

	m, _ := circuit.NewMask(x.Rows(), x.Cols())
	m.Set(1, 1, true)
	_, err = c.Forward(odd, circuit.WithMissing(m))
	assert.NoError(t, err, "masked entries are not checked")
}

// TestMeanLogLikelihood averages Forward.
func TestMeanLogLikelihood(t *testing.T) {
	c, x := compiled(t, 4, 2, 3, 0)
	ll, err := c.Forward(x)
	require.NoError(t, err)
	mean, err := c.MeanLogLikelihood(x)
	require.NoError(t, err)
	assert.InDelta(t, floats.Sum(ll)/float64(len(ll)), mean, 1e-12)
}
