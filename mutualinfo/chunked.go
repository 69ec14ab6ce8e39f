package mutualinfo

import (
	"fmt"

	"github.com/katalvlaran/hclt/matrix"
)

// MutualInformationChunked computes the same K×K matrix as MutualInformation
// but tiles the output into chunkSize×chunkSize blocks, calling the pairwise
// kernel once per block. Peak memory of the joint histogram drops from
// (K·nb)² to (chunkSize·nb)².
//
// The trailing tile on each axis is sized min(start+chunkSize, K) − start.
// Columns are normalised independently, so every tile matches the
// corresponding sub-block of the unchunked result.
//
// Cancellation: Options.Ctx is checked before each tile. On cancellation the
// partially filled matrix is returned together with ctx.Err(); tiles already
// written are final, unvisited ones stay zero.
//
// Error Conditions:
//   - every condition of MutualInformation,
//   - ErrBadChunk         : chunkSize < 1,
//   - ErrVariableMismatch : x1.Cols() != x2.Cols().
func MutualInformationChunked(x1, x2 *matrix.Dense, numBins int, sigma float64, chunkSize int, opts ...Option) (*matrix.Dense, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	if err = validateInputs(x1, x2, numBins, sigma); err != nil {
		return nil, err
	}
	if chunkSize < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrBadChunk, chunkSize)
	}
	if x1.Cols() != x2.Cols() {
		return nil, fmt.Errorf("%w: x1 has %d columns, x2 has %d columns", ErrVariableMismatch, x1.Cols(), x2.Cols())
	}

	K := x1.Cols()
	out, err := matrix.NewDense(K, K)
	if err != nil {
		return nil, err
	}
	for xs := 0; xs < K; xs += chunkSize {
		xe := min(xs+chunkSize, K)
		a, err := matrix.ColumnRange(x1, xs, xe)
		if err != nil {
			return nil, err
		}
		for ys := 0; ys < K; ys += chunkSize {
			select {
			case <-o.Ctx.Done():
				return out, o.Ctx.Err()
			default:
			}

			ye := min(ys+chunkSize, K)
			b, err := matrix.ColumnRange(x2, ys, ye)
			if err != nil {
				return nil, err
			}
			tile, err := estimate(a, b, numBins, sigma, o)
			if err != nil {
				return nil, fmt.Errorf("mutualinfo: tile (%d,%d): %w", xs, ys, err)
			}
			if err = out.SetBlock(xs, ys, tile); err != nil {
				return nil, err
			}
			o.OnChunk(xs, ys, xe-xs, ye-ys)
		}
	}

	return out, nil
}
