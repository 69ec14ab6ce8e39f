package circuit

import (
	"context"

	"github.com/katalvlaran/hclt/matrix"
)

// CompileOption configures Compile.
type CompileOption func(*compileOptions)

type compileOptions struct {
	ctx  context.Context
	seed uint64
}

// WithSeed seeds the random parameter initialisation.
func WithSeed(seed uint64) CompileOption {
	return func(o *compileOptions) { o.seed = seed }
}

// WithContext aborts compilation when ctx is done. A nil ctx is ignored.
func WithContext(ctx context.Context) CompileOption {
	return func(o *compileOptions) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// EvalOption configures Forward, Backward and Sample inputs.
type EvalOption func(*evalOptions)

type evalOptions struct {
	missing *Mask
	alphas  *matrix.Dense
}

// WithMissing marginalises the variables marked in mask.
func WithMissing(mask *Mask) EvalOption {
	return func(o *evalOptions) { o.missing = mask }
}

// WithAlphas blends each observation with background evidence:
// alpha=1 keeps the evidence, alpha=0 discards it.
func WithAlphas(alphas *matrix.Dense) EvalOption {
	return func(o *evalOptions) { o.alphas = alphas }
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	device       Device
	hostFallback bool
}

// WithDevice requests placement on d after loading.
func WithDevice(d Device) LoadOption {
	return func(o *loadOptions) { o.device = d }
}

// WithHostFallback places the circuit on Host when the requested device is unavailable.
func WithHostFallback() LoadOption {
	return func(o *loadOptions) { o.hostFallback = true }
}
