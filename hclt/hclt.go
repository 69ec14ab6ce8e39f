// Package hclt learns Hidden Chow-Liu Tree circuits from data.
//
// HCLT estimates pairwise mutual information with soft histograms, keeps
// the maximum-MI spanning tree rooted at its centre, attaches a hidden
// variable to every tree node and compiles the resulting region graph.
package hclt

import (
	"fmt"
	"time"

	"github.com/katalvlaran/hclt/chowliu"
	"github.com/katalvlaran/hclt/circuit"
	"github.com/katalvlaran/hclt/matrix"
	"github.com/katalvlaran/hclt/mutualinfo"
	"github.com/katalvlaran/hclt/region"
)

// Structure is the outcome of structure learning before compilation.
type Structure struct {
	Tree    *chowliu.Tree
	Regions *region.Graph
}

// Learn runs mutual information, Chow-Liu and region expansion on x.
func Learn(x *matrix.Dense, opts ...Option) (*Structure, error) {
	o, err := build(opts)
	if err != nil {
		return nil, err
	}

	return learn(x, o)
}

// HCLT learns a structure from x and compiles it into a circuit.
func HCLT(x *matrix.Dense, opts ...Option) (*circuit.Circuit, error) {
	o, err := build(opts)
	if err != nil {
		return nil, err
	}
	s, err := learn(x, o)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	c, err := circuit.Compile(s.Regions, o.MaxPartitions, circuit.WithSeed(o.Seed), circuit.WithContext(o.Ctx))
	if err != nil {
		return nil, fmt.Errorf("hclt: compile: %w", err)
	}
	o.OnStage(StageCompile, time.Since(start))

	return c, nil
}

func build(opts []Option) (Options, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return o, o.err
}

func learn(x *matrix.Dense, o Options) (*Structure, error) {
	if err := matrix.ValidateNotNil(x); err != nil {
		return nil, fmt.Errorf("hclt: %w", err)
	}
	if x.Rows() == 0 || x.Cols() == 0 {
		return nil, fmt.Errorf("hclt: %w: %dx%d", mutualinfo.ErrEmptyBatch, x.Rows(), x.Cols())
	}
	if err := matrix.ValidateFinite(x); err != nil {
		return nil, fmt.Errorf("hclt: %w", err)
	}
	for i := 0; i < x.Rows(); i++ {
		for j, v := range x.RawRow(i) {
			if err := o.Family.Validate(v); err != nil {
				return nil, fmt.Errorf("hclt: x(%d,%d): %w", i, j, err)
			}
		}
	}

	start := time.Now()
	miOpts := []mutualinfo.Option{mutualinfo.WithContext(o.Ctx)}
	if o.OnChunk != nil {
		miOpts = append(miOpts, mutualinfo.WithOnChunk(o.OnChunk))
	}
	mi, err := mutualinfo.MutualInformationChunked(x, x, o.NumBins, o.Sigma, o.ChunkSize, miOpts...)
	if err != nil {
		return nil, fmt.Errorf("hclt: mutual information: %w", err)
	}
	o.OnStage(StageMutualInformation, time.Since(start))

	start = time.Now()
	tree, err := chowliu.ChowLiuTree(mi, chowliu.WithMethod(o.MSTMethod), chowliu.WithContext(o.Ctx))
	if err != nil {
		return nil, fmt.Errorf("hclt: chow-liu tree: %w", err)
	}
	o.OnStage(StageChowLiu, time.Since(start))
	if err := o.Ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	rg, err := region.FromTree(tree, o.NumLatents, o.Family)
	if err != nil {
		return nil, fmt.Errorf("hclt: region graph: %w", err)
	}
	o.OnStage(StageRegionGraph, time.Since(start))

	return &Structure{Tree: tree, Regions: rg}, nil
}
