package matrix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/hclt/matrix"
)

// TestNormalizeColumnsMinMax maps each column independently onto [0,1).
func TestNormalizeColumnsMinMax(t *testing.T) {
	m, err := matrix.NewDenseRows([][]float64{
		{0, 10, 3},
		{2, 20, 3},
		{4, 30, 3},
	})
	require.NoError(t, err)

	out, err := matrix.NormalizeColumnsMinMax(m, 0)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0, 0, 0.5, 0.5, 0, 1, 1, 0}, out.RawData(), 1e-12)

	// a guard keeps the denominator positive and shrinks the range slightly
	guarded, err := matrix.NormalizeColumnsMinMax(m, 1e-8)
	require.NoError(t, err)
	v, _ := guarded.At(2, 0)
	assert.Less(t, v, 1.0)
	assert.InDelta(t, 1.0, v, 1e-8)

	// constant column collapses to zero
	c, _ := guarded.At(1, 2)
	assert.Zero(t, c)
}

// TestColumnMinMax checks per-column extremes.
func TestColumnMinMax(t *testing.T) {
	m, err := matrix.NewDenseRows([][]float64{{1, -2}, {-3, 4}})
	require.NoError(t, err)

	mins, maxs, err := matrix.ColumnMinMax(m)
	require.NoError(t, err)
	assert.Equal(t, []float64{-3, -2}, mins)
	assert.Equal(t, []float64{1, 4}, maxs)

	_, err = matrix.NormalizeColumnsMinMax(m, -1)
	assert.ErrorIs(t, err, matrix.ErrNaNInf)
}
