// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//  - Provide a single, canonical source of truth for common validation checks.
//  - Return sentinel errors tagged with the validator name so call sites can wrap uniformly.

package matrix

import (
	"fmt"
	"math"
)

// validatorErrorf wraps an underlying error with the given validator tag.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateNotNil ensures the matrix reference is non-nil.
// A typed nil *Dense stored in the interface is also rejected.
func ValidateNotNil(m Matrix) error {
	if m == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}
	if d, ok := m.(*Dense); ok && d == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}

	return nil
}

// ValidateSquare checks that m is non-nil and square (Rows == Cols).
func ValidateSquare(m Matrix) error {
	if err := ValidateNotNil(m); err != nil {
		return err
	}
	if m.Rows() != m.Cols() {
		return fmt.Errorf("ValidateSquare: %dx%d: %w", m.Rows(), m.Cols(), ErrNonSquare)
	}

	return nil
}

// ValidateSameRows ensures a and b share the row count (batch size B).
// The error names both row counts.
func ValidateSameRows(a, b Matrix) error {
	if err := ValidateNotNil(a); err != nil {
		return err
	}
	if err := ValidateNotNil(b); err != nil {
		return err
	}
	if a.Rows() != b.Rows() {
		return fmt.Errorf("ValidateSameRows: %d vs %d rows: %w", a.Rows(), b.Rows(), ErrDimensionMismatch)
	}

	return nil
}

// ValidateSameShape ensures a and b have equal dimensions.
func ValidateSameShape(a, b Matrix) error {
	if err := ValidateSameRows(a, b); err != nil {
		return err
	}
	if a.Cols() != b.Cols() {
		return fmt.Errorf("ValidateSameShape: %d vs %d columns: %w", a.Cols(), b.Cols(), ErrDimensionMismatch)
	}

	return nil
}

// ValidateSymmetric checks A is symmetric within tolerance tol:
// |A[i,j] - A[j,i]| ≤ tol for all i<j.
//
// Errors: ErrNilMatrix, ErrNonSquare, ErrNaNInf on a bad tolerance, ErrAsymmetry on violation.
// Complexity: O(n²), upper triangle only.
func ValidateSymmetric(m Matrix, tol float64) error {
	if err := ValidateSquare(m); err != nil {
		return validatorErrorf("ValidateSymmetric", err)
	}
	if math.IsNaN(tol) || math.IsInf(tol, 0) {
		return validatorErrorf("ValidateSymmetric", ErrNaNInf)
	}
	tol = math.Abs(tol)

	n := m.Rows()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			aij, _ := m.At(i, j)
			aji, _ := m.At(j, i)
			if math.Abs(aij-aji) > tol {
				return fmt.Errorf("ValidateSymmetric: (%d,%d)=%g vs (%d,%d)=%g: %w", i, j, aij, j, i, aji, ErrAsymmetry)
			}
		}
	}

	return nil
}

// ValidateFinite rejects any NaN/±Inf entry, naming its coordinates.
func ValidateFinite(m *Dense) error {
	if m == nil {
		return validatorErrorf("ValidateFinite", ErrNilMatrix)
	}
	for k, v := range m.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("ValidateFinite: (%d,%d): %w", k/m.c, k%m.c, ErrNaNInf)
		}
	}

	return nil
}
