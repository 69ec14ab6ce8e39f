// Package mutualinfo provides tunable options and error definitions
// for soft-histogram mutual-information estimation.
package mutualinfo

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Default smoothing constants.
const (
	// DefaultEntropyFloor is added inside every logarithm so empty bins give log(1e-4) instead of log(0).
	DefaultEntropyFloor = 1e-4

	// DefaultRangeGuard is added to every column range before min-max normalisation.
	DefaultRangeGuard = 1e-8
)

// Sentinel errors for MI estimation.
var (
	// ErrNilInput is returned when a sample matrix is nil.
	ErrNilInput = errors.New("mutualinfo: sample matrix is nil")

	// ErrEmptyBatch is returned when a sample matrix has no rows or no columns.
	ErrEmptyBatch = errors.New("mutualinfo: empty sample matrix")

	// ErrBatchMismatch is returned when x1 and x2 have different numbers of rows.
	ErrBatchMismatch = errors.New("mutualinfo: batch sizes differ")

	// ErrBadBins is returned when numBins < 2.
	ErrBadBins = errors.New("mutualinfo: num_bins must be >= 2")

	// ErrBadSigma is returned when sigma is not a positive finite number.
	ErrBadSigma = errors.New("mutualinfo: sigma must be > 0")

	// ErrBadChunk is returned when chunk_size < 1.
	ErrBadChunk = errors.New("mutualinfo: chunk_size must be >= 1")

	// ErrVariableMismatch is returned by the chunked estimator when x1 and x2
	// do not share the variable count it tiles over.
	ErrVariableMismatch = errors.New("mutualinfo: variable counts differ")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("mutualinfo: invalid option supplied")
)

// Option configures estimation via functional arguments.
// An invalid Option is recorded and surfaced as ErrOptionViolation
// when the estimator is invoked.
type Option func(*Options)

// Options holds the smoothing constants and hooks of one estimation call.
type Options struct {
	// Ctx allows cancelling the chunked estimator between tiles.
	Ctx context.Context

	// EntropyFloor is added inside each logarithm of the entropy sums.
	EntropyFloor float64

	// RangeGuard is added to each column's (max - min) during normalisation.
	RangeGuard float64

	// OnChunk is called after each tile of the chunked estimator is written.
	// Receives the tile's top-left corner and its size.
	OnChunk func(rowStart, colStart, rows, cols int)

	err error
}

// DefaultOptions returns Options with the reference constants,
// a background context and a no-op OnChunk hook.
func DefaultOptions() Options {
	return Options{
		Ctx:          context.Background(),
		EntropyFloor: DefaultEntropyFloor,
		RangeGuard:   DefaultRangeGuard,
		OnChunk:      func(int, int, int, int) {},
	}
}

// WithContext sets a custom context for cancellation.
func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		if ctx != nil {
			o.Ctx = ctx
		}
	}
}

// WithEntropyFloor overrides the additive log floor. It must be positive and finite.
func WithEntropyFloor(f float64) Option {
	return func(o *Options) {
		if !(f > 0) || math.IsInf(f, 0) {
			o.err = fmt.Errorf("%w: entropy floor must be > 0 (%g)", ErrOptionViolation, f)
			return
		}
		o.EntropyFloor = f
	}
}

// WithRangeGuard overrides the normalisation range guard. Zero is allowed
// (constant columns then normalise to 0 without a guard); negatives are not.
func WithRangeGuard(g float64) Option {
	return func(o *Options) {
		if g < 0 || math.IsNaN(g) || math.IsInf(g, 0) {
			o.err = fmt.Errorf("%w: range guard must be >= 0 (%g)", ErrOptionViolation, g)
			return
		}
		o.RangeGuard = g
	}
}

// WithOnChunk registers a callback run after each tile is written.
func WithOnChunk(fn func(rowStart, colStart, rows, cols int)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnChunk = fn
		}
	}
}

// buildOptions applies opts over the defaults and returns any recorded violation.
func buildOptions(opts []Option) (Options, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return o, o.err
}
