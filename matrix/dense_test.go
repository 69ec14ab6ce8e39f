package matrix_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/hclt/matrix"
)

// TestNewDense_InvalidDimensions verifies that non-positive shapes are rejected.
func TestNewDense_InvalidDimensions(t *testing.T) {
	_, err := matrix.NewDense(0, 3)
	assert.ErrorIs(t, err, matrix.ErrInvalidDimensions)
	_, err = matrix.NewDense(2, -1)
	assert.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}

// TestDense_AtSetBounds checks accessors and their out-of-range errors.
func TestDense_AtSetBounds(t *testing.T) {
	m, err := matrix.NewDense(2, 3)
	require.NoError(t, err)

	require.NoError(t, m.Set(1, 2, 7.5))
	v, err := m.At(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 7.5, v)

	_, err = m.At(2, 0)
	assert.ErrorIs(t, err, matrix.ErrOutOfRange)
	assert.ErrorIs(t, m.Set(0, 3, 1), matrix.ErrOutOfRange)
}

// TestNewDenseFrom_Validation covers length mismatch and non-finite values.
func TestNewDenseFrom_Validation(t *testing.T) {
	_, err := matrix.NewDenseFrom(2, 2, []float64{1, 2, 3})
	assert.ErrorIs(t, err, matrix.ErrBadShape)

	_, err = matrix.NewDenseFrom(1, 2, []float64{1, math.NaN()})
	assert.ErrorIs(t, err, matrix.ErrNaNInf)

	src := []float64{1, 2, 3, 4}
	m, err := matrix.NewDenseFrom(2, 2, src)
	require.NoError(t, err)
	src[0] = 100 // caller keeps ownership
	v, _ := m.At(0, 0)
	assert.Equal(t, 1.0, v)
}

// TestNewDenseRows_Ragged verifies ragged input is rejected.
func TestNewDenseRows_Ragged(t *testing.T) {
	_, err := matrix.NewDenseRows([][]float64{{1, 2}, {3}})
	assert.ErrorIs(t, err, matrix.ErrBadShape)

	m, err := matrix.NewDenseRows([][]float64{{1, 2}, {3, 4}, {5, 6}})
	require.NoError(t, err)
	r, c := m.Shape()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
}

// TestColumnRange_AndSetBlock copies a column window and writes it back elsewhere.
func TestColumnRange_AndSetBlock(t *testing.T) {
	m, err := matrix.NewDenseRows([][]float64{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
	})
	require.NoError(t, err)

	sub, err := matrix.ColumnRange(m, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3, 6, 7}, sub.RawData())

	_, err = matrix.ColumnRange(m, 3, 3)
	assert.ErrorIs(t, err, matrix.ErrBadShape)

	dst, err := matrix.NewDense(3, 3)
	require.NoError(t, err)
	require.NoError(t, dst.SetBlock(1, 1, sub))
	assert.Equal(t, []float64{0, 0, 0, 0, 2, 3, 0, 6, 7}, dst.RawData())
	assert.ErrorIs(t, dst.SetBlock(2, 2, sub), matrix.ErrBadShape)
}

// TestInduced_Copy checks index-set extraction and independence from the base.
func TestInduced_Copy(t *testing.T) {
	m, err := matrix.NewDenseRows([][]float64{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
	})
	require.NoError(t, err)

	sub, err := m.Induced([]int{2, 0}, []int{1, 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{8, 8, 2, 2}, sub.RawData())

	require.NoError(t, sub.Set(0, 0, -1))
	v, _ := m.At(2, 1)
	assert.Equal(t, 8.0, v)

	_, err = m.Induced([]int{3}, []int{0})
	assert.ErrorIs(t, err, matrix.ErrOutOfRange)
}

// TestValidators exercises the centralised validators.
func TestValidators(t *testing.T) {
	var nilDense *matrix.Dense
	assert.ErrorIs(t, matrix.ValidateNotNil(nilDense), matrix.ErrNilMatrix)

	rect, _ := matrix.NewDense(2, 3)
	assert.ErrorIs(t, matrix.ValidateSquare(rect), matrix.ErrNonSquare)

	other, _ := matrix.NewDense(3, 3)
	err := matrix.ValidateSameRows(rect, other)
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	assert.Contains(t, err.Error(), "2 vs 3")

	sym, _ := matrix.NewDenseRows([][]float64{{0, 1}, {1, 0}})
	assert.NoError(t, matrix.ValidateSymmetric(sym, 0))
	_ = sym.Set(0, 1, 1.5)
	assert.ErrorIs(t, matrix.ValidateSymmetric(sym, 1e-9), matrix.ErrAsymmetry)
	assert.NoError(t, matrix.ValidateSymmetric(sym, 0.5))
}
