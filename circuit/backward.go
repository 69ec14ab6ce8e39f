package circuit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/hclt/matrix"
)

// Backward evaluates x and accumulates EM flows.
//
// The accumulated statistics become flowsMemory·previous + batch, so 0 keeps
// only this batch and 1 sums every batch since the last MiniBatchEM.
// The flow of a sum edge n→c for one example is flow(n)·w·p(c)/p(n); product
// nodes pass their flow to every child; input nodes add flow-weighted
// sufficient statistics, expected ones when the variable is missing.
// It returns the per-row log-likelihoods of the forward pass.
func (c *Circuit) Backward(x *matrix.Dense, flowsMemory float64, opts ...EvalOption) ([]float64, error) {
	if !(flowsMemory >= 0 && flowsMemory <= 1) {
		return nil, fmt.Errorf("%w: flows_memory %g not in [0,1]", ErrHyperparameter, flowsMemory)
	}
	b, err := c.prepare(x, opts)
	if err != nil {
		return nil, err
	}
	if flowsMemory != 1 {
		floats.Scale(flowsMemory, c.sumFlows)
		floats.Scale(flowsMemory, c.inStats)
	}

	e := c.newEvaluator()
	flows := make([]float64, len(c.nodes))
	out := make([]float64, x.Rows())
	for i := range out {
		row, miss, alpha := b.row(i)
		out[i] = e.eval(row, miss, alpha)
		if math.IsInf(out[i], -1) {
			continue
		}
		c.propagate(e.vals, flows, row, miss)
	}

	return out, nil
}

// propagate pushes one example's flow from the root to the inputs.
func (c *Circuit) propagate(vals, flows, x []float64, miss []bool) {
	for i := range flows {
		flows[i] = 0
	}
	flows[c.root] = 1
	for id := len(c.nodes) - 1; id >= 0; id-- {
		f := flows[id]
		if f == 0 {
			continue
		}
		n := &c.nodes[id]
		switch n.Kind {
		case SumNode:
			vn := vals[id]
			if math.IsInf(vn, -1) {
				continue
			}
			w := c.logW[n.Param : n.Param+len(n.Children)]
			acc := c.sumFlows[n.Param : n.Param+len(n.Children)]
			for j, ch := range n.Children {
				ef := f * math.Exp(w[j]+vals[ch]-vn)
				acc[j] += ef
				flows[ch] += ef
			}
		case ProductNode:
			for _, ch := range n.Children {
				flows[ch] += f
			}
		case InputNode:
			fam := c.families[n.Family]
			if miss != nil && miss[n.Var] {
				fam.AccumulateMissing(c.inputStats(n), c.inputParams(n), f)
			} else {
				fam.Accumulate(c.inputStats(n), c.inputParams(n), x[n.Var], f)
			}
		}
	}
}

// MiniBatchEM updates every parameter from the accumulated flows and clears them.
//
// For a sum node with edge flows f and fan-in k the estimate is
// (f + pseudocount/k) / (Σf + pseudocount), and the weights move to
// (1−stepSize)·w + stepSize·estimate. Nodes without flow or pseudocount keep
// their weights. Input nodes update through their family.
func (c *Circuit) MiniBatchEM(stepSize, pseudocount float64) error {
	if !(stepSize > 0 && stepSize <= 1) {
		return fmt.Errorf("%w: step_size %g not in (0,1]", ErrHyperparameter, stepSize)
	}
	if !(pseudocount >= 0) || math.IsInf(pseudocount, 1) {
		return fmt.Errorf("%w: pseudocount %g must be finite and >= 0", ErrHyperparameter, pseudocount)
	}

	for id := range c.nodes {
		n := &c.nodes[id]
		switch n.Kind {
		case SumNode:
			k := len(n.Children)
			w := c.sumW[n.Param : n.Param+k]
			f := c.sumFlows[n.Param : n.Param+k]
			total := floats.Sum(f) + pseudocount
			if total <= 0 {
				continue
			}
			prior := pseudocount / float64(k)
			for j := range w {
				w[j] = (1-stepSize)*w[j] + stepSize*(f[j]+prior)/total
			}
		case InputNode:
			c.families[n.Family].Update(c.inputParams(n), c.inputStats(n), stepSize, pseudocount)
		}
	}
	c.refreshLogWeights()
	c.ClearFlows()

	return nil
}

// ClearFlows discards the accumulated statistics.
func (c *Circuit) ClearFlows() {
	for i := range c.sumFlows {
		c.sumFlows[i] = 0
	}
	for i := range c.inStats {
		c.inStats[i] = 0
	}
}

// Flows returns a copy of the accumulated sum-edge flows.
func (c *Circuit) Flows() []float64 {
	out := make([]float64, len(c.sumFlows))
	copy(out, c.sumFlows)

	return out
}
