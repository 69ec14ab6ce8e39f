package family

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// GaussianName is the registry name of Gaussian.
const GaussianName = "gaussian"

// Gaussian is a univariate normal with parameters [mean, std].
// Statistics are [Σflow, Σflow·x, Σflow·x²].
type Gaussian struct {
	// Mean and Std describe the initialisation prior over node means.
	Mean, Std float64
	// MinStd floors the learned standard deviation.
	MinStd float64
}

// NewGaussian returns a Gaussian family; std must be positive and minStd non-negative.
func NewGaussian(mean, std, minStd float64) (*Gaussian, error) {
	if !(std > 0) || math.IsInf(std, 0) || math.IsNaN(mean) || math.IsInf(mean, 0) || minStd < 0 || minStd > std {
		return nil, fmt.Errorf("%w: gaussian mean=%g std=%g minStd=%g", ErrBadFamily, mean, std, minStd)
	}

	return &Gaussian{Mean: mean, Std: std, MinStd: minStd}, nil
}

// Name returns GaussianName.
func (g *Gaussian) Name() string { return GaussianName }

// NumParams returns 2: mean and std.
func (g *Gaussian) NumParams() int { return 2 }

// NumStats returns 3: Σflow, Σflow·x and Σflow·x².
func (g *Gaussian) NumStats() int { return 3 }

// InitParams draws the mean from N(Mean, Std²) and sets std to Std.
func (g *Gaussian) InitParams(params []float64, rng *rand.Rand) {
	params[0] = distuv.Normal{Mu: g.Mean, Sigma: g.Std, Src: rng}.Rand()
	params[1] = g.Std
}

// Validate rejects NaN and ±Inf observations.
func (g *Gaussian) Validate(x float64) error {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return fmt.Errorf("%w: gaussian observation %g", ErrDomain, x)
	}

	return nil
}

// LogProb returns the normal log-density of x under params.
func (g *Gaussian) LogProb(params []float64, x float64) float64 {
	return distuv.Normal{Mu: params[0], Sigma: params[1]}.LogProb(x)
}

// SoftLogProb returns log(α·p(x) + (1−α)).
func (g *Gaussian) SoftLogProb(params []float64, x, alpha float64) float64 {
	p := math.Exp(g.LogProb(params, x))
	return math.Log(alpha*p + (1 - alpha))
}

// MarginalLogProb returns 0: the density integrates to one.
func (g *Gaussian) MarginalLogProb([]float64) float64 { return 0 }

// Accumulate adds the flow-weighted moments of x.
func (g *Gaussian) Accumulate(stats, _ []float64, x, flow float64) {
	stats[0] += flow
	stats[1] += flow * x
	stats[2] += flow * x * x
}

// AccumulateMissing adds the expected moments under params, weighted by flow.
func (g *Gaussian) AccumulateMissing(stats, params []float64, flow float64) {
	mu, sd := params[0], params[1]
	stats[0] += flow
	stats[1] += flow * mu
	stats[2] += flow * (mu*mu + sd*sd)
}

// Update moment-matches the statistics, shrunk towards the current
// parameters by pseudocount pseudo-observations.
func (g *Gaussian) Update(params, stats []float64, step, pseudocount float64) {
	n := stats[0] + pseudocount
	if n <= 0 {
		return
	}
	mu, sd := params[0], params[1]
	mean := (stats[1] + pseudocount*mu) / n
	second := (stats[2] + pseudocount*(mu*mu+sd*sd)) / n
	std := math.Sqrt(math.Max(second-mean*mean, 0))
	if std < g.MinStd {
		std = g.MinStd
	}
	if std == 0 {
		std = sd
	}
	params[0] = (1-step)*mu + step*mean
	params[1] = (1-step)*sd + step*std
}

// Sample draws from N(mean, std²).
func (g *Gaussian) Sample(params []float64, rng *rand.Rand) float64 {
	return distuv.Normal{Mu: params[0], Sigma: params[1], Src: rng}.Rand()
}

// Spec returns the persisted description of g.
func (g *Gaussian) Spec() Spec {
	return Spec{Name: GaussianName, Mean: g.Mean, Std: g.Std, MinStd: g.MinStd}
}
