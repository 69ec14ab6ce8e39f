// Package matrix provides the row-major float64 container shared by the
// structure-learning pipeline.
//
// A *Dense holds either a B×K sample matrix (examples by variables), a K×K
// mutual-information matrix, or a B×K soft-evidence matrix. The package offers:
//
//   - Dense storage with error-returning accessors (At/Set never panic).
//   - Copying sub-matrix extraction (Induced, ColumnRange) used to tile
//     pairwise computations into column blocks.
//   - Column statistics (ColumnMinMax, NormalizeColumnsMinMax) used by the
//     soft-histogram estimator.
//   - Centralised validators (ValidateNotNil, ValidateSquare, ValidateSymmetric,
//     ValidateSameRows, ValidateSameShape, ValidateFinite) returning package
//     sentinels.
//
// Loops run in fixed i→j order so results are deterministic across runs.
package matrix
