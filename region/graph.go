// Package region implements region graphs: DAGs of variable scopes from
// which probabilistic circuits are compiled.
//
// Nodes live in an arena and reference each other by NodeID, so a region
// may be shared by several parents without pointer bookkeeping.
package region

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/katalvlaran/hclt/dfs"
	"github.com/katalvlaran/hclt/family"
)

var (
	// ErrStructure reports a region graph that violates a scope or shape rule.
	ErrStructure = errors.New("region: structural violation")

	// ErrBadNode is returned when building a node from invalid arguments.
	ErrBadNode = errors.New("region: invalid node")
)

// Kind distinguishes the three region node types.
type Kind uint8

const (
	// Input regions hold NumNodes leaf distributions over one variable.
	Input Kind = iota
	// Product regions factorise their scope into disjoint child scopes.
	Product
	// Sum regions mix children that share their scope.
	Sum
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case Input:
		return "input"
	case Product:
		return "product"
	case Sum:
		return "sum"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// NodeID addresses a node in its Graph.
type NodeID int

// Node is one region of the graph.
type Node struct {
	Kind Kind
	// Scope is the sorted set of variables covered.
	Scope []int
	// Children are the regions combined by a Product or Sum.
	Children []NodeID
	// NumNodes is the number of circuit nodes the region expands into.
	NumNodes int
	// Var is the variable of an Input region, -1 otherwise.
	Var int
	// Family is the distribution of an Input region.
	Family family.Family
}

// Graph is an arena of region nodes with a designated root.
type Graph struct {
	NumVars int
	Nodes   []Node
	Root    NodeID
}

// New returns an empty region graph over numVars variables.
func New(numVars int) *Graph {
	return &Graph{NumVars: numVars, Root: -1}
}

// Node returns the node addressed by id.
func (g *Graph) Node(id NodeID) *Node {
	return &g.Nodes[id]
}

// Len returns the number of nodes in the arena.
func (g *Graph) Len() int { return len(g.Nodes) }

func (g *Graph) add(n Node) NodeID {
	g.Nodes = append(g.Nodes, n)
	return NodeID(len(g.Nodes) - 1)
}

func (g *Graph) has(id NodeID) bool {
	return id >= 0 && int(id) < len(g.Nodes)
}

// AddInput adds an input region over variable v with numNodes distributions.
func (g *Graph) AddInput(v, numNodes int, fam family.Family) (NodeID, error) {
	if v < 0 || v >= g.NumVars {
		return -1, fmt.Errorf("%w: input variable %d not in [0,%d)", ErrBadNode, v, g.NumVars)
	}
	if numNodes < 1 {
		return -1, fmt.Errorf("%w: input over %d needs >= 1 node, got %d", ErrBadNode, v, numNodes)
	}
	if fam == nil {
		return -1, fmt.Errorf("%w: input over %d has no family", ErrBadNode, v)
	}

	return g.add(Node{Kind: Input, Scope: []int{v}, NumNodes: numNodes, Var: v, Family: fam}), nil
}

// AddProduct adds a product region over children. Its scope is the union of
// the child scopes and its width that of the first child.
func (g *Graph) AddProduct(children ...NodeID) (NodeID, error) {
	if len(children) == 0 {
		return -1, fmt.Errorf("%w: product without children", ErrBadNode)
	}
	var scope []int
	for _, c := range children {
		if !g.has(c) {
			return -1, fmt.Errorf("%w: product child %d not in arena of %d", ErrBadNode, c, len(g.Nodes))
		}
		scope = append(scope, g.Nodes[c].Scope...)
	}
	sort.Ints(scope)

	return g.add(Node{
		Kind:     Product,
		Scope:    scope,
		Children: append([]NodeID(nil), children...),
		NumNodes: g.Nodes[children[0]].NumNodes,
		Var:      -1,
	}), nil
}

// AddSum adds a sum region with numNodes mixtures over children.
// Its scope is that of the first child.
func (g *Graph) AddSum(numNodes int, children ...NodeID) (NodeID, error) {
	if len(children) == 0 {
		return -1, fmt.Errorf("%w: sum without children", ErrBadNode)
	}
	if numNodes < 1 {
		return -1, fmt.Errorf("%w: sum needs >= 1 node, got %d", ErrBadNode, numNodes)
	}
	for _, c := range children {
		if !g.has(c) {
			return -1, fmt.Errorf("%w: sum child %d not in arena of %d", ErrBadNode, c, len(g.Nodes))
		}
	}

	return g.add(Node{
		Kind:     Sum,
		Scope:    append([]int(nil), g.Nodes[children[0]].Scope...),
		Children: append([]NodeID(nil), children...),
		NumNodes: numNodes,
		Var:      -1,
	}), nil
}

// SetRoot designates the root region.
func (g *Graph) SetRoot(id NodeID) error {
	if !g.has(id) {
		return fmt.Errorf("%w: root %d not in arena of %d", ErrBadNode, id, len(g.Nodes))
	}
	g.Root = id

	return nil
}

// Adjacency returns parent→child edges as an index adjacency list.
func (g *Graph) Adjacency() [][]int {
	adj := make([][]int, len(g.Nodes))
	for i, n := range g.Nodes {
		adj[i] = make([]int, len(n.Children))
		for j, c := range n.Children {
			adj[i][j] = int(c)
		}
	}

	return adj
}

// Order returns the nodes reachable from the root, children before parents.
// A done ctx aborts the walk with ctx.Err().
func (g *Graph) Order(ctx context.Context) ([]NodeID, error) {
	if !g.has(g.Root) {
		return nil, fmt.Errorf("%w: root %d not set", ErrStructure, g.Root)
	}
	order, err := dfs.PostOrder(g.Adjacency(), dfs.WithRoots(int(g.Root)), dfs.WithCancelContext(ctx))
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("%w: %v", ErrStructure, err)
	}
	ids := make([]NodeID, len(order))
	for i, v := range order {
		ids[i] = NodeID(v)
	}

	return ids, nil
}
