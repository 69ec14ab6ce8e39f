// SPDX-License-Identifier: MIT

// Package matrix - Dense storage (row-major) & safe accessors.
//
// Purpose:
//   - Provide a cache-friendly row-major buffer with the explicit index formula i*cols + j.
//   - Guarantee safety at the public surface: At/Set return errors instead of panicking.
//   - Support copy-based sub-matrix extraction (Induced, ColumnRange) for tiled kernels.
//
// Complexity quicksheet:
//   - NewDense: O(r*c) zero-init; At/Set: O(1); Clone: O(r*c); Induced: O(r'*c').

package matrix

import (
	"fmt"
	"math"
)

const (
	ctxAt      = "At"
	ctxSet     = "Set"
	ctxInduce  = "Induced"
	ctxFrom    = "NewDenseFrom"
	ctxColumns = "ColumnRange"
)

// denseErrorf wraps an error with a uniform Dense context and callsite indices.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a concrete row-major matrix.
//   - r,c hold dimensions (rows, cols).
//   - data is a flat buffer of length r*c in row-major order (offset = i*c + j).
type Dense struct {
	r, c int
	data []float64
}

var _ Matrix = (*Dense)(nil)

// NewDense creates an r×c zero matrix using row-major storage.
//
// Errors:
//   - ErrInvalidDimensions when rows<=0 or cols<=0.
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols)}, nil
}

// NewDenseFrom wraps a copy of data (row-major, len == rows*cols) into a Dense.
//
// Implementation:
//   - Stage 1: validate shape and buffer length.
//   - Stage 2: reject NaN/±Inf values (ingestion boundary).
//   - Stage 3: copy into a fresh buffer so the caller keeps ownership of data.
//
// Errors:
//   - ErrInvalidDimensions, ErrBadShape (length mismatch), ErrNaNInf.
func NewDenseFrom(rows, cols int, data []float64) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%s: %d values for %dx%d: %w", ctxFrom, len(data), rows, cols, ErrBadShape)
	}
	buf := make([]float64, len(data))
	for k, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, denseErrorf(ctxFrom, k/cols, k%cols, ErrNaNInf)
		}
		buf[k] = v
	}

	return &Dense{r: rows, c: cols, data: buf}, nil
}

// NewDenseRows builds a Dense from a slice of equally sized rows.
// Returns ErrBadShape on ragged input.
func NewDenseRows(rows [][]float64) (*Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrInvalidDimensions
	}
	c := len(rows[0])
	flat := make([]float64, 0, len(rows)*c)
	for i, row := range rows {
		if len(row) != c {
			return nil, fmt.Errorf("%s: row %d has %d values, want %d: %w", ctxFrom, i, len(row), c, ErrBadShape)
		}
		flat = append(flat, row...)
	}

	return NewDenseFrom(len(rows), c, flat)
}

// Rows returns the number of rows.
func (m *Dense) Rows() int { return m.r }

// Cols returns the number of columns.
func (m *Dense) Cols() int { return m.c }

// Shape returns (rows, cols).
func (m *Dense) Shape() (rows, cols int) { return m.r, m.c }

// indexOf computes the flat offset for (row, col) or returns ErrOutOfRange.
func (m *Dense) indexOf(row, col int) (int, error) {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return 0, ErrOutOfRange
	}

	return row*m.c + col, nil
}

// At returns the element at (row, col).
// Errors: ErrOutOfRange when out of bounds.
func (m *Dense) At(row, col int) (float64, error) {
	off, err := m.indexOf(row, col)
	if err != nil {
		return 0, denseErrorf(ctxAt, row, col, err)
	}

	return m.data[off], nil
}

// Set stores v at (row, col).
// Errors: ErrOutOfRange when out of bounds.
func (m *Dense) Set(row, col int, v float64) error {
	off, err := m.indexOf(row, col)
	if err != nil {
		return denseErrorf(ctxSet, row, col, err)
	}
	m.data[off] = v

	return nil
}

// RawData exposes the backing row-major buffer without copying.
// Hot kernels index it directly; mutations are visible in m.
func (m *Dense) RawData() []float64 { return m.data }

// RawRow returns row i of the backing buffer without copying.
// The caller must guarantee 0 <= i < Rows().
func (m *Dense) RawRow(i int) []float64 { return m.data[i*m.c : (i+1)*m.c] }

// Clone returns a deep copy (new buffer).
func (m *Dense) Clone() Matrix {
	cp := make([]float64, len(m.data))
	copy(cp, m.data)

	return &Dense{r: m.r, c: m.c, data: cp}
}

// Induced materializes a copy sub-matrix using explicit index sets.
// Duplicates in index sets are allowed (repeated rows/cols in the result).
//
// Errors:
//   - ErrInvalidDimensions when an index set is empty.
//   - ErrOutOfRange when an index lies outside the base matrix.
//
// Complexity:
//   - Time O(len(rowsIdx)*len(colsIdx)).
func (m *Dense) Induced(rowsIdx, colsIdx []int) (*Dense, error) {
	out, err := NewDense(len(rowsIdx), len(colsIdx))
	if err != nil {
		return nil, err
	}
	for _, j := range colsIdx {
		if j < 0 || j >= m.c {
			return nil, denseErrorf(ctxInduce, 0, j, ErrOutOfRange)
		}
	}
	for ii, i := range rowsIdx {
		if i < 0 || i >= m.r {
			return nil, denseErrorf(ctxInduce, i, 0, ErrOutOfRange)
		}
		src := m.data[i*m.c : (i+1)*m.c]
		dst := out.data[ii*out.c : (ii+1)*out.c]
		for jj, j := range colsIdx {
			dst[jj] = src[j]
		}
	}

	return out, nil
}

// ColumnRange copies columns [start, end) of m into a new rows×(end-start) matrix.
//
// Errors:
//   - ErrBadShape when the range is empty or exceeds Cols().
func ColumnRange(m *Dense, start, end int) (*Dense, error) {
	if m == nil {
		return nil, ErrNilMatrix
	}
	if start < 0 || end > m.c || start >= end {
		return nil, fmt.Errorf("%s(%d,%d) on %dx%d: %w", ctxColumns, start, end, m.r, m.c, ErrBadShape)
	}
	w := end - start
	out := &Dense{r: m.r, c: w, data: make([]float64, m.r*w)}
	for i := 0; i < m.r; i++ {
		copy(out.data[i*w:(i+1)*w], m.data[i*m.c+start:i*m.c+end])
	}

	return out, nil
}

// SetBlock writes src into m with its top-left corner at (r0, c0).
// Each call touches only its own block, so tiled producers may write blocks
// in any order.
func (m *Dense) SetBlock(r0, c0 int, src *Dense) error {
	if src == nil {
		return ErrNilMatrix
	}
	if r0 < 0 || c0 < 0 || r0+src.r > m.r || c0+src.c > m.c {
		return fmt.Errorf("Dense.SetBlock(%d,%d) %dx%d into %dx%d: %w", r0, c0, src.r, src.c, m.r, m.c, ErrBadShape)
	}
	for i := 0; i < src.r; i++ {
		copy(m.data[(r0+i)*m.c+c0:(r0+i)*m.c+c0+src.c], src.data[i*src.c:(i+1)*src.c])
	}

	return nil
}
