// Package mutualinfo estimates pairwise mutual information between the
// columns of two sample matrices with Gaussian soft histograms.
//
// Every variable is min-max normalised onto [0,1], each value spreads a
// Gaussian membership over numBins evenly spaced bin centres, and the joint
// soft histogram of a variable pair is the batch average of the outer product
// of their memberships. Entropies of the (normalised) marginal and joint
// histograms give
//
//	MI(i,j) = H(i) + H(j) − H(i,j).
//
// The joint histogram of all pairs is a (K1·nb)×(K2·nb) matrix; use
// MutualInformationChunked to bound its size for large K.
package mutualinfo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/hclt/matrix"
)

// MutualInformation returns the K1×K2 matrix of estimated mutual information
// between every column of x1 and every column of x2.
//
// Error Conditions:
//   - ErrNilInput        : x1 or x2 is nil.
//   - ErrEmptyBatch      : x1 has no rows, or either input has no columns.
//   - ErrBatchMismatch   : x1.Rows() != x2.Rows() (both sizes are named).
//   - ErrBadBins         : numBins < 2.
//   - ErrBadSigma        : sigma <= 0 or not finite.
//   - ErrOptionViolation : an invalid Option was supplied.
//
// Steps:
//  1. Normalise every column of x1 and x2 independently to [0,1].
//  2. Compute soft memberships (B, K·nb) for both inputs.
//  3. Joint soft histogram J = x1pᵀ·x2p / B via gonum/mat.
//  4. Marginal entropies from per-sample normalised memberships averaged over B.
//  5. Joint entropy per pair after normalising its nb×nb block to sum 1.
//
// Complexity: O(B·K1·K2·nb²) time, O(K1·K2·nb² + B·(K1+K2)·nb) memory.
func MutualInformation(x1, x2 *matrix.Dense, numBins int, sigma float64, opts ...Option) (*matrix.Dense, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	if err = validateInputs(x1, x2, numBins, sigma); err != nil {
		return nil, err
	}

	return estimate(x1, x2, numBins, sigma, o)
}

// validateInputs checks shapes and hyper-parameters shared by both entry points.
func validateInputs(x1, x2 *matrix.Dense, numBins int, sigma float64) error {
	if x1 == nil || x2 == nil {
		return ErrNilInput
	}
	if x1.Rows() == 0 || x1.Cols() == 0 || x2.Cols() == 0 {
		return fmt.Errorf("%w: x1 is %dx%d, x2 is %dx%d", ErrEmptyBatch, x1.Rows(), x1.Cols(), x2.Rows(), x2.Cols())
	}
	if err := matrix.ValidateSameRows(x1, x2); err != nil {
		return fmt.Errorf("%w: x1 has %d rows, x2 has %d rows: %w", ErrBatchMismatch, x1.Rows(), x2.Rows(), err)
	}
	if numBins < 2 {
		return fmt.Errorf("%w: got %d", ErrBadBins, numBins)
	}
	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return fmt.Errorf("%w: got %g", ErrBadSigma, sigma)
	}

	return nil
}

// estimate runs the kernel on already validated inputs.
func estimate(x1, x2 *matrix.Dense, numBins int, sigma float64, o Options) (*matrix.Dense, error) {
	n1, err := matrix.NormalizeColumnsMinMax(x1, o.RangeGuard)
	if err != nil {
		return nil, err
	}
	n2, err := matrix.NormalizeColumnsMinMax(x2, o.RangeGuard)
	if err != nil {
		return nil, err
	}

	bins := binCenters(numBins)
	p1 := softMembership(n1, bins, sigma)
	p2 := softMembership(n2, bins, sigma)

	B := x1.Rows()
	K1, K2 := x1.Cols(), x2.Cols()

	h1 := marginalEntropies(p1, B, K1, numBins, o.EntropyFloor)
	h2 := marginalEntropies(p2, B, K2, numBins, o.EntropyFloor)

	// (K1·nb)×(K2·nb) joint soft histogram, averaged over the batch.
	a := mat.NewDense(B, K1*numBins, p1)
	b := mat.NewDense(B, K2*numBins, p2)
	var joint mat.Dense
	joint.Mul(a.T(), b)
	joint.Scale(1/float64(B), &joint)

	out, err := matrix.NewDense(K1, K2)
	if err != nil {
		return nil, err
	}
	raw := joint.RawMatrix()
	block := make([]float64, numBins*numBins)
	for i := 0; i < K1; i++ {
		for j := 0; j < K2; j++ {
			for u := 0; u < numBins; u++ {
				row := raw.Data[(i*numBins+u)*raw.Stride+j*numBins : (i*numBins+u)*raw.Stride+(j+1)*numBins]
				copy(block[u*numBins:(u+1)*numBins], row)
			}
			h12 := blockEntropy(block, o.EntropyFloor)
			_ = out.Set(i, j, h1[i]+h2[j]-h12)
		}
	}

	return out, nil
}

// binCenters returns n evenly spaced centres over [0,1], endpoints included.
func binCenters(n int) []float64 {
	bins := make([]float64, n)
	floats.Span(bins, 0, 1)

	return bins
}

// softMembership returns a flat (B, K·nb) row-major buffer with entry
// exp(-0.5·(x[b,k]-bins[a])²/σ²) at column k·nb + a.
func softMembership(x *matrix.Dense, bins []float64, sigma float64) []float64 {
	B, K := x.Shape()
	nb := len(bins)
	inv := 1 / (sigma * sigma)
	out := make([]float64, B*K*nb)
	for s := 0; s < B; s++ {
		row := x.RawRow(s)
		base := s * K * nb
		for k, v := range row {
			for a, c := range bins {
				d := v - c
				out[base+k*nb+a] = math.Exp(-0.5 * d * d * inv)
			}
		}
	}

	return out
}

// marginalEntropies normalises every (sample, variable) membership over its
// bins, averages over the batch and returns −Σ p·log(p+floor) per variable.
// A membership that underflowed to all zeros contributes nothing.
func marginalEntropies(p []float64, B, K, nb int, floor float64) []float64 {
	hist := make([]float64, K*nb)
	for s := 0; s < B; s++ {
		for k := 0; k < K; k++ {
			m := p[(s*K+k)*nb : (s*K+k+1)*nb]
			z := floats.Sum(m)
			if z == 0 {
				continue
			}
			floats.AddScaled(hist[k*nb:(k+1)*nb], 1/z, m)
		}
	}
	floats.Scale(1/float64(B), hist)

	h := make([]float64, K)
	for k := 0; k < K; k++ {
		h[k] = flooredEntropy(hist[k*nb:(k+1)*nb], floor)
	}

	return h
}

// blockEntropy normalises an nb×nb joint block to a probability table in place
// and returns its floored entropy. An all-zero block has entropy 0.
func blockEntropy(block []float64, floor float64) float64 {
	z := floats.Sum(block)
	if z == 0 {
		return 0
	}
	floats.Scale(1/z, block)

	return flooredEntropy(block, floor)
}

// flooredEntropy returns −Σ p·log(p+floor).
func flooredEntropy(p []float64, floor float64) float64 {
	var h float64
	for _, v := range p {
		h -= v * math.Log(v+floor)
	}

	return h
}
