package circuit

import (
	"cmp"
	"context"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/hclt/family"
	"github.com/katalvlaran/hclt/region"
)

// protoNode is a node under construction, before ids are grouped into layers.
type protoNode struct {
	node
	params []float64
}

// builder expands regions into nodes in children-first order.
type builder struct {
	budget   int
	rng      *rand.Rand
	nodes    []protoNode
	families []family.Family
}

// Compile expands a region graph into a layered circuit.
//
// Input regions become NumNodes input nodes; a product region of width n
// becomes n product nodes, the i-th multiplying the i-th node of every child
// region; a sum region becomes NumNodes sum nodes, each fully connected to
// every node of every child region.
//
// maxNPartitions bounds fan-in: products with more children are split into
// partial products, and sum edges are evaluated in groups of at most
// maxNPartitions whose partial log-sum-exps are then combined. Zero means
// unbounded. Nodes are grouped into layers by (depth, kind): the input layer
// first, then product and sum layers by increasing depth.
//
// The circuit holds no reference to rg.
func Compile(rg *region.Graph, maxNPartitions int, opts ...CompileOption) (*Circuit, error) {
	if maxNPartitions < 0 || maxNPartitions == 1 {
		return nil, fmt.Errorf("%w: got %d", ErrBadPartitions, maxNPartitions)
	}
	if rg == nil {
		return nil, fmt.Errorf("%w: nil region graph", ErrStructure)
	}
	o := compileOptions{ctx: context.Background()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := rg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStructure, err)
	}
	if w := rg.Node(rg.Root).NumNodes; w != 1 {
		return nil, fmt.Errorf("%w: root region %d has %d nodes, want 1", ErrStructure, rg.Root, w)
	}
	order, err := rg.Order(o.ctx)
	if err != nil {
		if cerr := o.ctx.Err(); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("%w: %w", ErrStructure, err)
	}

	b := &builder{
		budget: maxNPartitions,
		rng:    rand.New(rand.NewPCG(o.seed, o.seed^0x5851f42d4c957f2d)),
	}
	expanded := make(map[region.NodeID][]int, len(order))
	for _, id := range order {
		r := rg.Node(id)
		ids := make([]int, r.NumNodes)
		switch r.Kind {
		case region.Input:
			fam := b.family(r.Family)
			for i := range ids {
				ids[i] = b.input(r.Var, fam)
			}
		case region.Product:
			for i := range ids {
				kids := make([]int, len(r.Children))
				for j, c := range r.Children {
					kids[j] = expanded[c][i]
				}
				ids[i] = b.product(kids)
			}
		case region.Sum:
			var kids []int
			for _, c := range r.Children {
				kids = append(kids, expanded[c]...)
			}
			for i := range ids {
				ids[i] = b.sum(kids)
			}
		}
		expanded[id] = ids
	}

	c, err := b.layout(expanded[rg.Root][0], rg.NumVars)
	if err != nil {
		return nil, err
	}
	if err := c.Verify(); err != nil {
		return nil, err
	}

	return c, nil
}

// family returns the index of fam, registering it on first use.
func (b *builder) family(fam family.Family) int {
	for i, f := range b.families {
		if f == fam {
			return i
		}
	}
	b.families = append(b.families, fam)

	return len(b.families) - 1
}

func (b *builder) add(p protoNode) int {
	b.nodes = append(b.nodes, p)
	return len(b.nodes) - 1
}

func (b *builder) input(v, fam int) int {
	params := make([]float64, b.families[fam].NumParams())
	b.families[fam].InitParams(params, b.rng)

	return b.add(protoNode{node: node{Kind: InputNode, Var: v, Family: fam}, params: params})
}

// product adds a product over kids, splitting it into a tree of partial
// products whenever the fan-in exceeds the budget.
func (b *builder) product(kids []int) int {
	for b.budget > 0 && len(kids) > b.budget {
		next := make([]int, 0, (len(kids)+b.budget-1)/b.budget)
		for start := 0; start < len(kids); start += b.budget {
			end := min(start+b.budget, len(kids))
			if end-start == 1 {
				next = append(next, kids[start])
				continue
			}
			next = append(next, b.add(protoNode{node: node{Kind: ProductNode, Children: slices.Clone(kids[start:end])}}))
		}
		kids = next
	}

	return b.add(protoNode{node: node{Kind: ProductNode, Children: slices.Clone(kids)}})
}

// sum adds a sum over kids with randomly initialised normalised weights.
func (b *builder) sum(kids []int) int {
	w := make([]float64, len(kids))
	for i := range w {
		w[i] = b.rng.ExpFloat64() + 1e-3
	}
	floats.Scale(1/floats.Sum(w), w)

	var groups []int
	if b.budget > 0 {
		for end := b.budget; end < len(kids); end += b.budget {
			groups = append(groups, end)
		}
	}
	groups = append(groups, len(kids))

	return b.add(protoNode{node: node{Kind: SumNode, Children: slices.Clone(kids), Groups: groups}, params: w})
}

// kindRank orders kinds within a depth. Children always sit at a smaller
// depth, so the order within a depth only fixes the layer sequence.
func kindRank(k NodeKind) int {
	switch k {
	case InputNode:
		return 0
	case ProductNode:
		return 1
	default:
		return 2
	}
}

// layout computes depths, renumbers nodes layer by layer and packs parameters.
func (b *builder) layout(root, numVars int) (*Circuit, error) {
	for i := range b.nodes {
		n := &b.nodes[i]
		for _, ch := range n.Children {
			n.Depth = max(n.Depth, b.nodes[ch].Depth+1)
		}
	}

	perm := make([]int, len(b.nodes))
	for i := range perm {
		perm[i] = i
	}
	slices.SortStableFunc(perm, func(x, y int) int {
		nx, ny := &b.nodes[x], &b.nodes[y]
		if c := cmp.Compare(nx.Depth, ny.Depth); c != 0 {
			return c
		}
		return cmp.Compare(kindRank(nx.Kind), kindRank(ny.Kind))
	})
	newID := make([]int, len(perm))
	for to, from := range perm {
		newID[from] = to
	}

	c := &Circuit{
		ID:       uuid.New(),
		NumVars:  numVars,
		Device:   Host,
		nodes:    make([]node, len(perm)),
		root:     newID[root],
		families: b.families,
	}
	for to, from := range perm {
		p := b.nodes[from]
		n := p.node
		n.Children = make([]int, len(p.Children))
		for j, ch := range p.Children {
			n.Children[j] = newID[ch]
		}
		switch n.Kind {
		case InputNode:
			n.Param = len(c.inParams)
			n.Stat = len(c.inStats)
			c.inParams = append(c.inParams, p.params...)
			c.inStats = append(c.inStats, make([]float64, c.families[n.Family].NumStats())...)
		case SumNode:
			n.Param = len(c.sumW)
			c.sumW = append(c.sumW, p.params...)
		}
		if err := b.checkBudget(to, &n); err != nil {
			return nil, err
		}
		c.nodes[to] = n

		if last := len(c.Layers) - 1; last >= 0 && c.Layers[last].Kind == n.Kind && c.Layers[last].Depth == n.Depth {
			c.Layers[last].End = to + 1
			c.Layers[last].NumEdges += len(n.Children)
		} else {
			c.Layers = append(c.Layers, Layer{Kind: n.Kind, Depth: n.Depth, Start: to, End: to + 1, NumEdges: len(n.Children)})
		}
	}
	c.sumFlows = make([]float64, len(c.sumW))
	c.index()

	return c, nil
}

// checkBudget rejects any product fan-in or sum group above the budget.
func (b *builder) checkBudget(id int, n *node) error {
	if b.budget == 0 {
		return nil
	}
	switch n.Kind {
	case ProductNode:
		if len(n.Children) > b.budget {
			return fmt.Errorf("%w: product %d has %d partitions, budget %d", ErrStructure, id, len(n.Children), b.budget)
		}
	case SumNode:
		start := 0
		for _, end := range n.Groups {
			if end-start > b.budget {
				return fmt.Errorf("%w: sum %d group has %d edges, budget %d", ErrStructure, id, end-start, b.budget)
			}
			start = end
		}
	}

	return nil
}
