package circuit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/hclt/family"
	"github.com/katalvlaran/hclt/matrix"
)

// batch is a validated evaluation input.
type batch struct {
	x       *matrix.Dense
	missing *Mask
	alphas  *matrix.Dense
}

func (b *batch) row(i int) (x []float64, miss []bool, alpha []float64) {
	x = b.x.RawRow(i)
	if b.missing != nil {
		miss = b.missing.Row(i)
	}
	if b.alphas != nil {
		alpha = b.alphas.RawRow(i)
	}

	return x, miss, alpha
}

// prepare checks shapes and domains of x and the evaluation options.
// Missing entries are not checked against the family support.
func (c *Circuit) prepare(x *matrix.Dense, opts []EvalOption) (*batch, error) {
	if !c.Device.Available() {
		return nil, fmt.Errorf("%w: circuit on %q", ErrDeviceUnavailable, c.Device)
	}
	o := evalOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if x == nil {
		return nil, fmt.Errorf("%w: x is nil", ErrShape)
	}
	rows, cols := x.Shape()
	if cols != c.NumVars {
		return nil, fmt.Errorf("%w: x is %dx%d, circuit has %d variables", ErrShape, rows, cols, c.NumVars)
	}
	if m := o.missing; m != nil && (m.Rows() != rows || m.Cols() != cols) {
		return nil, fmt.Errorf("%w: missing mask is %dx%d, x is %dx%d", ErrShape, m.Rows(), m.Cols(), rows, cols)
	}
	if a := o.alphas; a != nil {
		if err := matrix.ValidateSameShape(a, x); err != nil {
			return nil, fmt.Errorf("%w: alphas are %dx%d, x is %dx%d: %w", ErrShape, a.Rows(), a.Cols(), rows, cols, err)
		}
		for i, v := range a.RawData() {
			if !(v >= 0 && v <= 1) {
				return nil, fmt.Errorf("%w: alpha (%d,%d)=%g not in [0,1]", ErrDomain, i/cols, i%cols, v)
			}
		}
	}

	b := &batch{x: x, missing: o.missing, alphas: o.alphas}
	for i := 0; i < rows; i++ {
		row, miss, _ := b.row(i)
		for j, v := range row {
			if miss != nil && miss[j] {
				continue
			}
			if err := c.varFamily(j).Validate(v); err != nil {
				return nil, fmt.Errorf("%w: x(%d,%d): %w", ErrDomain, i, j, err)
			}
		}
	}

	return b, nil
}

// varFamily returns the family of the input nodes over variable v.
func (c *Circuit) varFamily(v int) family.Family {
	return c.families[c.varFam[v]]
}

// evaluator holds per-call scratch buffers.
type evaluator struct {
	c        *Circuit
	vals     []float64
	terms    []float64
	partials []float64
}

func (c *Circuit) newEvaluator() *evaluator {
	return &evaluator{
		c:        c,
		vals:     make([]float64, len(c.nodes)),
		terms:    make([]float64, 0, c.maxFanIn),
		partials: make([]float64, 0, c.maxFanIn),
	}
}

// eval fills e.vals with the log-value of every node for one example
// and returns the root value.
func (e *evaluator) eval(x []float64, miss []bool, alpha []float64) float64 {
	c := e.c
	for id := range c.nodes {
		n := &c.nodes[id]
		switch n.Kind {
		case InputNode:
			f := c.families[n.Family]
			p := c.inputParams(n)
			switch {
			case miss != nil && miss[n.Var]:
				e.vals[id] = f.MarginalLogProb(p)
			case alpha != nil:
				e.vals[id] = f.SoftLogProb(p, x[n.Var], alpha[n.Var])
			default:
				e.vals[id] = f.LogProb(p, x[n.Var])
			}
		case ProductNode:
			s := 0.0
			for _, ch := range n.Children {
				s += e.vals[ch]
			}
			e.vals[id] = s
		case SumNode:
			e.vals[id] = e.sum(n)
		}
	}

	return e.vals[c.root]
}

// sum combines the per-group log-sum-exps of log w + child value.
func (e *evaluator) sum(n *node) float64 {
	w := e.c.logW[n.Param : n.Param+len(n.Children)]
	if len(n.Groups) == 1 {
		e.terms = e.terms[:0]
		for j, ch := range n.Children {
			e.terms = append(e.terms, w[j]+e.vals[ch])
		}
		return floats.LogSumExp(e.terms)
	}
	e.partials = e.partials[:0]
	start := 0
	for _, end := range n.Groups {
		e.terms = e.terms[:0]
		for j := start; j < end; j++ {
			e.terms = append(e.terms, w[j]+e.vals[n.Children[j]])
		}
		e.partials = append(e.partials, floats.LogSumExp(e.terms))
		start = end
	}

	return floats.LogSumExp(e.partials)
}

// Forward returns the log-likelihood of every row of x.
//
// WithMissing marginalises masked variables; a fully masked row yields the
// circuit's log normalisation constant (0 for normalised parameters).
// WithAlphas replaces observed evidence by soft evidence.
func (c *Circuit) Forward(x *matrix.Dense, opts ...EvalOption) ([]float64, error) {
	b, err := c.prepare(x, opts)
	if err != nil {
		return nil, err
	}
	e := c.newEvaluator()
	out := make([]float64, x.Rows())
	for i := range out {
		out[i] = e.eval(b.row(i))
	}

	return out, nil
}

// MeanLogLikelihood returns the average of Forward over the rows of x.
func (c *Circuit) MeanLogLikelihood(x *matrix.Dense, opts ...EvalOption) (float64, error) {
	ll, err := c.Forward(x, opts...)
	if err != nil {
		return 0, err
	}
	if len(ll) == 0 {
		return math.NaN(), nil
	}

	return floats.Sum(ll) / float64(len(ll)), nil
}
