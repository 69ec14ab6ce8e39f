// Package family defines the input distributions attached to the leaves of a
// probabilistic circuit.
//
// A Family is stateless: every method receives the parameter slice of a
// single input node (NumParams values) and, for learning, its statistics
// slice (NumStats values). The circuit owns the storage; families only
// interpret it.
package family

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
)

var (
	// ErrDomain is returned when an observed value lies outside the support.
	ErrDomain = errors.New("family: value outside support")

	// ErrUnknownFamily is returned by Lookup for an unregistered name.
	ErrUnknownFamily = errors.New("family: unknown family")

	// ErrBadFamily is returned for invalid family hyper-parameters.
	ErrBadFamily = errors.New("family: invalid hyper-parameters")
)

// Family is an input-node distribution over one variable.
type Family interface {
	// Name identifies the family in persisted artifacts.
	Name() string
	// NumParams is the parameter count of one input node.
	NumParams() int
	// NumStats is the sufficient-statistic count of one input node.
	NumStats() int

	// InitParams fills params with a random starting point.
	InitParams(params []float64, rng *rand.Rand)
	// Validate reports ErrDomain when x is not a valid observation.
	Validate(x float64) error

	// LogProb returns log p(x).
	LogProb(params []float64, x float64) float64
	// SoftLogProb blends the evidence x with a background distribution:
	// alpha=1 is LogProb, alpha=0 carries no information about x.
	SoftLogProb(params []float64, x, alpha float64) float64
	// MarginalLogProb is the log of the total mass, used for missing values.
	MarginalLogProb(params []float64) float64

	// Accumulate adds flow-weighted sufficient statistics of an observed x.
	Accumulate(stats, params []float64, x, flow float64)
	// AccumulateMissing adds flow-weighted expected statistics under params.
	AccumulateMissing(stats, params []float64, flow float64)
	// Update moves params towards the estimate from stats:
	// params = (1-step)*params + step*estimate, smoothed by pseudocount.
	Update(params, stats []float64, step, pseudocount float64)

	// Sample draws x ~ p.
	Sample(params []float64, rng *rand.Rand) float64

	// Spec returns the persisted description of the family.
	Spec() Spec
}

// Spec is the gob-friendly description of a Family.
type Spec struct {
	Name    string
	NumCats int
	Mean    float64
	Std     float64
	MinStd  float64
}

// Constructor rebuilds a Family from its Spec.
type Constructor func(Spec) (Family, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Constructor{}
)

// Register makes a family constructor available to Lookup.
// Registering the same name twice replaces the previous constructor.
func Register(name string, ctor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = ctor
}

// Lookup rebuilds the Family described by s.
func Lookup(s Spec) (Family, error) {
	registryMu.RLock()
	ctor, ok := registry[s.Name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrUnknownFamily, s.Name, Names())
	}

	return ctor(s)
}

// Names lists the registered family names in ascending order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)

	return out
}

func init() {
	Register(CategoricalName, func(s Spec) (Family, error) { return NewCategorical(s.NumCats) })
	Register(GaussianName, func(s Spec) (Family, error) { return NewGaussian(s.Mean, s.Std, s.MinStd) })
}
