package family

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// CategoricalName is the registry name of Categorical.
const CategoricalName = "categorical"

// Categorical is a distribution over the codes 0..NumCats-1.
// Parameters are the NumCats probabilities; statistics are expected counts.
type Categorical struct {
	NumCats int
}

// NewCategorical returns a Categorical family with numCats >= 2 codes.
func NewCategorical(numCats int) (*Categorical, error) {
	if numCats < 2 {
		return nil, fmt.Errorf("%w: categorical needs >= 2 categories, got %d", ErrBadFamily, numCats)
	}

	return &Categorical{NumCats: numCats}, nil
}

// Name returns CategoricalName.
func (c *Categorical) Name() string { return CategoricalName }

// NumParams returns NumCats: one probability per code.
func (c *Categorical) NumParams() int { return c.NumCats }

// NumStats returns NumCats: one expected count per code.
func (c *Categorical) NumStats() int { return c.NumCats }

// InitParams draws params from a flat Dirichlet.
func (c *Categorical) InitParams(params []float64, rng *rand.Rand) {
	for i := range params[:c.NumCats] {
		params[i] = rng.ExpFloat64() + 1e-3
	}
	floats.Scale(1/floats.Sum(params[:c.NumCats]), params[:c.NumCats])
}

// Validate rejects x unless it is an integer code in [0, NumCats).
func (c *Categorical) Validate(x float64) error {
	if x != math.Trunc(x) || x < 0 || x >= float64(c.NumCats) {
		return fmt.Errorf("%w: categorical code %g not in {0..%d}", ErrDomain, x, c.NumCats-1)
	}

	return nil
}

// LogProb returns log params[x]. x must have passed Validate.
func (c *Categorical) LogProb(params []float64, x float64) float64 {
	return math.Log(params[int(x)])
}

// SoftLogProb returns log(α·p(x) + (1−α)·(1−p(x))/(C−1)).
func (c *Categorical) SoftLogProb(params []float64, x, alpha float64) float64 {
	p := params[int(x)]
	return math.Log(alpha*p + (1-alpha)*(1-p)/float64(c.NumCats-1))
}

// MarginalLogProb returns the log of the total probability mass, 0 for normalised params.
func (c *Categorical) MarginalLogProb(params []float64) float64 {
	return math.Log(floats.Sum(params[:c.NumCats]))
}

// Accumulate adds flow to the count of code x.
func (c *Categorical) Accumulate(stats, _ []float64, x, flow float64) {
	stats[int(x)] += flow
}

// AccumulateMissing spreads flow over all codes in proportion to params.
func (c *Categorical) AccumulateMissing(stats, params []float64, flow float64) {
	floats.AddScaled(stats[:c.NumCats], flow, params[:c.NumCats])
}

// Update sets params to (counts + pc/C) / (Σcounts + pc), interpolated by step.
// A node with no mass keeps its parameters.
func (c *Categorical) Update(params, stats []float64, step, pseudocount float64) {
	total := floats.Sum(stats[:c.NumCats]) + pseudocount
	if total <= 0 {
		return
	}
	prior := pseudocount / float64(c.NumCats)
	for i := 0; i < c.NumCats; i++ {
		est := (stats[i] + prior) / total
		params[i] = (1-step)*params[i] + step*est
	}
}

// Sample draws a code from params.
func (c *Categorical) Sample(params []float64, rng *rand.Rand) float64 {
	return distuv.NewCategorical(params[:c.NumCats], rng).Rand()
}

// Spec returns the persisted description of c.
func (c *Categorical) Spec() Spec {
	return Spec{Name: CategoricalName, NumCats: c.NumCats}
}
