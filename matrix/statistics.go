// SPDX-License-Identifier: MIT

// Package matrix - column statistics.
//
// Purpose:
//   - Per-column range statistics used to bring heterogeneous variables onto [0,1]
//     before soft binning.
//
// Determinism:
//   - Fixed i→j loops; no map iteration.

package matrix

import "math"

// ColumnMinMax returns per-column minima and maxima.
// Complexity: O(r*c) time, O(c) space.
func ColumnMinMax(m *Dense) (mins, maxs []float64, err error) {
	if m == nil {
		return nil, nil, ErrNilMatrix
	}
	mins = make([]float64, m.c)
	maxs = make([]float64, m.c)
	for j := 0; j < m.c; j++ {
		mins[j] = math.Inf(1)
		maxs[j] = math.Inf(-1)
	}
	for i := 0; i < m.r; i++ {
		row := m.data[i*m.c : (i+1)*m.c]
		for j, v := range row {
			if v < mins[j] {
				mins[j] = v
			}
			if v > maxs[j] {
				maxs[j] = v
			}
		}
	}

	return mins, maxs, nil
}

// NormalizeColumnsMinMax returns a copy of m where each column is mapped to
//
//	(v - min_j) / (max_j - min_j + guard).
//
// guard keeps the denominator positive: a zero-variance column collapses to
// all zeros instead of dividing by zero.
//
// Errors: ErrNilMatrix, ErrNaNInf when guard is not finite or negative.
// Complexity: O(r*c).
func NormalizeColumnsMinMax(m *Dense, guard float64) (*Dense, error) {
	if m == nil {
		return nil, ErrNilMatrix
	}
	if math.IsNaN(guard) || math.IsInf(guard, 0) || guard < 0 {
		return nil, validatorErrorf("NormalizeColumnsMinMax", ErrNaNInf)
	}
	mins, maxs, err := ColumnMinMax(m)
	if err != nil {
		return nil, err
	}
	denom := make([]float64, m.c)
	for j := range denom {
		denom[j] = maxs[j] - mins[j] + guard
	}

	out := &Dense{r: m.r, c: m.c, data: make([]float64, len(m.data))}
	for i := 0; i < m.r; i++ {
		src := m.data[i*m.c : (i+1)*m.c]
		dst := out.data[i*m.c : (i+1)*m.c]
		for j, v := range src {
			if denom[j] == 0 {
				// guard == 0 and constant column
				continue
			}
			dst[j] = (v - mins[j]) / denom[j]
		}
	}

	return out, nil
}
