package hclt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/katalvlaran/hclt/family"
	"github.com/katalvlaran/hclt/prim_kruskal"
)

// Defaults used by the MNIST training script this pipeline was tuned on.
const (
	DefaultNumBins    = 32
	DefaultSigma      = 0.5 / 32
	DefaultChunkSize  = 32
	DefaultNumLatents = 32
	DefaultNumCats    = 256
)

// ErrOptionViolation is returned when an invalid Option is supplied.
var ErrOptionViolation = errors.New("hclt: invalid option supplied")

// Stage names a step of structure learning reported to WithOnStage.
type Stage string

const (
	StageMutualInformation Stage = "mutual-information"
	StageChowLiu           Stage = "chow-liu"
	StageRegionGraph       Stage = "region-graph"
	StageCompile           Stage = "compile"
)

// Option configures HCLT.
type Option func(*Options)

// Options holds the structure-learning hyper-parameters.
type Options struct {
	Ctx           context.Context
	NumBins       int
	Sigma         float64
	ChunkSize     int
	NumLatents    int
	MaxPartitions int
	Family        family.Family
	MSTMethod     string
	Seed          uint64
	OnStage       func(stage Stage, elapsed time.Duration)
	OnChunk       func(rowStart, colStart, rows, cols int)
	err           error
}

// DefaultOptions returns the defaults: 32 bins, sigma 0.5/32, chunks of 32,
// 32 latent states, unbounded partitions, 256-way categorical inputs, Prim.
func DefaultOptions() Options {
	fam, _ := family.NewCategorical(DefaultNumCats)
	return Options{
		Ctx:        context.Background(),
		NumBins:    DefaultNumBins,
		Sigma:      DefaultSigma,
		ChunkSize:  DefaultChunkSize,
		NumLatents: DefaultNumLatents,
		Family:     fam,
		MSTMethod:  prim_kruskal.MethodPrim,
		OnStage:    func(Stage, time.Duration) {},
	}
}

func (o *Options) fail(format string, args ...any) {
	if o.err == nil {
		o.err = fmt.Errorf("%w: "+format, append([]any{ErrOptionViolation}, args...)...)
	}
}

// WithContext sets a context checked between MI tiles and stages.
func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		if ctx != nil {
			o.Ctx = ctx
		}
	}
}

// WithBins sets the number of soft histogram bins (>= 2).
func WithBins(n int) Option {
	return func(o *Options) {
		if n < 2 {
			o.fail("num_bins must be >= 2 (%d)", n)
			return
		}
		o.NumBins = n
	}
}

// WithSigma sets the soft-binning kernel width (> 0).
func WithSigma(s float64) Option {
	return func(o *Options) {
		if !(s > 0) {
			o.fail("sigma must be > 0 (%g)", s)
			return
		}
		o.Sigma = s
	}
}

// WithChunkSize sets the MI tile edge (>= 1).
func WithChunkSize(n int) Option {
	return func(o *Options) {
		if n < 1 {
			o.fail("chunk_size must be >= 1 (%d)", n)
			return
		}
		o.ChunkSize = n
	}
}

// WithNumLatents sets the number of hidden states per variable (>= 1).
func WithNumLatents(n int) Option {
	return func(o *Options) {
		if n < 1 {
			o.fail("num_latents must be >= 1 (%d)", n)
			return
		}
		o.NumLatents = n
	}
}

// WithMaxPartitions bounds compiled fan-in; 0 is unbounded.
func WithMaxPartitions(n int) Option {
	return func(o *Options) {
		if n < 0 || n == 1 {
			o.fail("max_npartitions must be 0 or >= 2 (%d)", n)
			return
		}
		o.MaxPartitions = n
	}
}

// WithFamily sets the input distribution family.
func WithFamily(f family.Family) Option {
	return func(o *Options) {
		if f == nil {
			o.fail("family is nil")
			return
		}
		o.Family = f
	}
}

// WithMSTMethod selects prim_kruskal.MethodPrim or MethodKruskal.
func WithMSTMethod(m string) Option {
	return func(o *Options) {
		if m != prim_kruskal.MethodPrim && m != prim_kruskal.MethodKruskal {
			o.fail("unknown MST method %q", m)
			return
		}
		o.MSTMethod = m
	}
}

// WithSeed seeds parameter initialisation.
func WithSeed(seed uint64) Option {
	return func(o *Options) { o.Seed = seed }
}

// WithOnStage registers a callback invoked after each stage with its duration.
func WithOnStage(fn func(stage Stage, elapsed time.Duration)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnStage = fn
		}
	}
}

// WithOnChunk registers a callback invoked after each MI tile.
func WithOnChunk(fn func(rowStart, colStart, rows, cols int)) Option {
	return func(o *Options) { o.OnChunk = fn }
}
