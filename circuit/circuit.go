package circuit

import (
	"fmt"
	"math"
	"slices"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/hclt/family"
)

// NodeKind is the type of a circuit node.
type NodeKind uint8

const (
	// InputNode evaluates a family distribution on one variable.
	InputNode NodeKind = iota
	// ProductNode adds the log-values of its children.
	ProductNode
	// SumNode mixes its children with learned weights.
	SumNode
)

// String returns the lower-case kind name.
func (k NodeKind) String() string {
	switch k {
	case InputNode:
		return "input"
	case ProductNode:
		return "product"
	case SumNode:
		return "sum"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// node is one compiled circuit node. Children always have smaller ids.
type node struct {
	Kind     NodeKind
	Depth    int
	Children []int
	// Groups holds the exclusive end of each partition group over Children (sum nodes).
	Groups []int
	// Param is the offset into the sum weights (sum) or input parameters (input).
	Param int
	// Stat is the offset into the input statistics (input).
	Stat   int
	Var    int
	Family int
}

// Layer is a contiguous id range [Start, End) of nodes of one kind at one depth.
type Layer struct {
	Kind       NodeKind
	Depth      int
	Start, End int
	NumEdges   int
}

// NumNodes returns the layer width.
func (l Layer) NumNodes() int { return l.End - l.Start }

// Circuit is a compiled probabilistic circuit. Its structure is fixed; only
// parameters change through MiniBatchEM.
type Circuit struct {
	ID      uuid.UUID
	NumVars int
	Device  Device
	Layers  []Layer

	nodes    []node
	root     int
	families []family.Family

	sumW     []float64
	logW     []float64
	inParams []float64

	sumFlows []float64
	inStats  []float64
	maxFanIn int
	varFam   []int
}

// NumNodes returns the number of circuit nodes.
func (c *Circuit) NumNodes() int { return len(c.nodes) }

// NumEdges returns the number of sum edges (learned mixture weights).
func (c *Circuit) NumEdges() int { return len(c.sumW) }

// NumParams returns the total number of learned parameters.
func (c *Circuit) NumParams() int { return len(c.sumW) + len(c.inParams) }

// Root returns the id of the output node.
func (c *Circuit) Root() int { return c.root }

// Families returns the input families in the order they are indexed.
func (c *Circuit) Families() []family.Family {
	return slices.Clone(c.families)
}

// Parameters returns copies of the sum weights and input parameters.
func (c *Circuit) Parameters() (sum, input []float64) {
	return slices.Clone(c.sumW), slices.Clone(c.inParams)
}

// SetParameters replaces all parameters; lengths must match Parameters.
func (c *Circuit) SetParameters(sum, input []float64) error {
	if len(sum) != len(c.sumW) || len(input) != len(c.inParams) {
		return fmt.Errorf("%w: parameters (%d,%d), circuit has (%d,%d)", ErrShape, len(sum), len(input), len(c.sumW), len(c.inParams))
	}
	for i, w := range sum {
		if math.IsNaN(w) || w < 0 {
			return fmt.Errorf("%w: sum weight %d is %g", ErrDomain, i, w)
		}
	}
	copy(c.sumW, sum)
	copy(c.inParams, input)
	c.refreshLogWeights()

	return nil
}

// NodeInfo describes one node for inspection.
type NodeInfo struct {
	Kind     NodeKind
	Depth    int
	Children []int
	Var      int
}

// Node returns a description of node id.
func (c *Circuit) Node(id int) NodeInfo {
	n := &c.nodes[id]
	v := -1
	if n.Kind == InputNode {
		v = n.Var
	}

	return NodeInfo{Kind: n.Kind, Depth: n.Depth, Children: slices.Clone(n.Children), Var: v}
}

func (c *Circuit) refreshLogWeights() {
	if len(c.logW) != len(c.sumW) {
		c.logW = make([]float64, len(c.sumW))
	}
	for i, w := range c.sumW {
		c.logW[i] = math.Log(w)
	}
}

// index derives the lookup tables that are not persisted.
func (c *Circuit) index() {
	c.varFam = make([]int, c.NumVars)
	c.maxFanIn = 0
	for id := range c.nodes {
		n := &c.nodes[id]
		c.maxFanIn = max(c.maxFanIn, len(n.Children))
		if n.Kind == InputNode && n.Var >= 0 && n.Var < c.NumVars {
			c.varFam[n.Var] = n.Family
		}
	}
	c.refreshLogWeights()
}

func (c *Circuit) inputParams(n *node) []float64 {
	f := c.families[n.Family]
	return c.inParams[n.Param : n.Param+f.NumParams()]
}

func (c *Circuit) inputStats(n *node) []float64 {
	f := c.families[n.Family]
	return c.inStats[n.Stat : n.Stat+f.NumStats()]
}

// Verify checks that the compiled structure is decomposable and smooth:
// product children cover disjoint variables and sum children share their
// parent's variables. It also checks that children precede parents and that
// the root covers every variable.
func (c *Circuit) Verify() error {
	scopes := make([][]int, len(c.nodes))
	for id := range c.nodes {
		n := &c.nodes[id]
		for _, ch := range n.Children {
			if ch < 0 || ch >= id {
				return fmt.Errorf("%w: node %d child %d is not evaluated before it", ErrStructure, id, ch)
			}
		}
		switch n.Kind {
		case InputNode:
			if n.Var < 0 || n.Var >= c.NumVars || n.Family < 0 || n.Family >= len(c.families) {
				return fmt.Errorf("%w: input %d var=%d family=%d", ErrStructure, id, n.Var, n.Family)
			}
			scopes[id] = []int{n.Var}
		case ProductNode:
			var s []int
			for _, ch := range n.Children {
				s = append(s, scopes[ch]...)
			}
			slices.Sort(s)
			for i := 1; i < len(s); i++ {
				if s[i] == s[i-1] {
					return fmt.Errorf("%w: product %d covers variable %d twice", ErrStructure, id, s[i])
				}
			}
			scopes[id] = s
		case SumNode:
			if len(n.Children) == 0 {
				return fmt.Errorf("%w: sum %d has no children", ErrStructure, id)
			}
			scopes[id] = scopes[n.Children[0]]
			for _, ch := range n.Children[1:] {
				if !slices.Equal(scopes[ch], scopes[id]) {
					return fmt.Errorf("%w: sum %d children %d and %d differ in scope", ErrStructure, id, n.Children[0], ch)
				}
			}
		default:
			return fmt.Errorf("%w: node %d has %s", ErrStructure, id, n.Kind)
		}
	}
	if c.root < 0 || c.root >= len(c.nodes) || len(scopes[c.root]) != c.NumVars {
		return fmt.Errorf("%w: root %d does not cover %d variables", ErrStructure, c.root, c.NumVars)
	}

	return nil
}

// Summary reports structural sizes and the mean mixture entropy.
type Summary struct {
	NumVars   int
	NumNodes  int
	NumEdges  int
	NumParams int
	NumLayers int
	Depth     int
	MaxFanIn  int
	// MeanSumEntropy is the average entropy (nats) of the sum-node weight vectors.
	MeanSumEntropy float64
}

// Stats summarises the circuit.
func (c *Circuit) Stats() Summary {
	s := Summary{
		NumVars:   c.NumVars,
		NumNodes:  len(c.nodes),
		NumEdges:  len(c.sumW),
		NumParams: c.NumParams(),
		NumLayers: len(c.Layers),
		MaxFanIn:  c.maxFanIn,
	}
	var total float64
	var sums int
	for id := range c.nodes {
		n := &c.nodes[id]
		if n.Depth > s.Depth {
			s.Depth = n.Depth
		}
		if n.Kind != SumNode {
			continue
		}
		total += stat.Entropy(c.sumW[n.Param : n.Param+len(n.Children)])
		sums++
	}
	if sums > 0 {
		s.MeanSumEntropy = total / float64(sums)
	}

	return s
}
