package circuit

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/hclt/matrix"
)

// Sample completes every row of x by drawing the variables marked in mask
// from p(missing | observed). Observed entries are copied unchanged.
// A nil mask draws every variable.
//
// Each row is evaluated bottom-up with the missing variables marginalised,
// then traversed from the root: a sum node picks one child with probability
// proportional to w·p(child)/p(node), a product node visits all children and
// an input node over a missing variable draws a value from its family.
func (c *Circuit) Sample(x *matrix.Dense, mask *Mask, rng *rand.Rand) (*matrix.Dense, error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrHyperparameter)
	}
	if x == nil {
		return nil, fmt.Errorf("%w: x is nil", ErrShape)
	}
	if mask == nil {
		var err error
		if mask, err = NewMask(x.Rows(), x.Cols()); err != nil {
			return nil, err
		}
		mask.Fill(true)
	}
	b, err := c.prepare(x, []EvalOption{WithMissing(mask)})
	if err != nil {
		return nil, err
	}

	out := x.Clone().(*matrix.Dense)
	e := c.newEvaluator()
	probs := make([]float64, c.maxFanIn)
	stack := make([]int, 0, len(c.nodes))
	for i := 0; i < x.Rows(); i++ {
		row, miss, _ := b.row(i)
		e.eval(row, miss, nil)
		dst := out.RawRow(i)

		stack = append(stack[:0], c.root)
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			n := &c.nodes[id]
			switch n.Kind {
			case SumNode:
				stack = append(stack, n.Children[c.pickChild(n, e.vals, e.vals[id], probs, rng)])
			case ProductNode:
				stack = append(stack, n.Children...)
			case InputNode:
				if miss[n.Var] {
					dst[n.Var] = c.families[n.Family].Sample(c.inputParams(n), rng)
				}
			}
		}
	}

	return out, nil
}

// pickChild draws the index of a sum child from its posterior responsibility.
// A zero-probability node falls back to its prior weights.
func (c *Circuit) pickChild(n *node, vals []float64, vn float64, probs []float64, rng *rand.Rand) int {
	k := len(n.Children)
	p := probs[:k]
	w := c.logW[n.Param : n.Param+k]
	if math.IsInf(vn, -1) {
		copy(p, c.sumW[n.Param:n.Param+k])
	} else {
		for j, ch := range n.Children {
			p[j] = math.Exp(w[j] + vals[ch] - vn)
		}
	}

	return int(distuv.NewCategorical(p, rng).Rand())
}
