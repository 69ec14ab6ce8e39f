package region

import (
	"context"
	"fmt"
	"slices"
)

// Validate checks the invariants the compiler relies on:
//   - the graph is acyclic and the root covers every variable;
//   - an input region covers exactly its variable and has a family;
//   - product children have pairwise disjoint scopes whose union is the
//     product scope, and all expose the product's NumNodes;
//   - sum children share the sum scope.
//
// Violations are reported as ErrStructure naming the node.
func (g *Graph) Validate() error {
	order, err := g.Order(context.Background())
	if err != nil {
		return err
	}
	for _, id := range order {
		if err := g.validateNode(id); err != nil {
			return err
		}
	}
	root := g.Nodes[g.Root]
	if len(root.Scope) != g.NumVars || !isRange(root.Scope) {
		return fmt.Errorf("%w: root %d scope %v does not cover %d variables", ErrStructure, g.Root, root.Scope, g.NumVars)
	}

	return nil
}

func (g *Graph) validateNode(id NodeID) error {
	n := &g.Nodes[id]
	if n.NumNodes < 1 {
		return fmt.Errorf("%w: %s %d has %d nodes", ErrStructure, n.Kind, id, n.NumNodes)
	}
	switch n.Kind {
	case Input:
		if len(n.Children) != 0 || len(n.Scope) != 1 || n.Scope[0] != n.Var {
			return fmt.Errorf("%w: input %d must cover only variable %d, scope %v", ErrStructure, id, n.Var, n.Scope)
		}
		if n.Family == nil {
			return fmt.Errorf("%w: input %d has no family", ErrStructure, id)
		}
	case Product:
		if len(n.Children) == 0 {
			return fmt.Errorf("%w: product %d has no children", ErrStructure, id)
		}
		seen := make(map[int]NodeID, len(n.Scope))
		for _, c := range n.Children {
			child := &g.Nodes[c]
			if child.NumNodes != n.NumNodes {
				return fmt.Errorf("%w: product %d child %d has %d nodes, want %d", ErrStructure, id, c, child.NumNodes, n.NumNodes)
			}
			for _, v := range child.Scope {
				if prev, dup := seen[v]; dup {
					return fmt.Errorf("%w: product %d children %d and %d both cover variable %d", ErrStructure, id, prev, c, v)
				}
				seen[v] = c
			}
		}
		if len(seen) != len(n.Scope) {
			return fmt.Errorf("%w: product %d scope %v is not the union of its children", ErrStructure, id, n.Scope)
		}
		for _, v := range n.Scope {
			if _, ok := seen[v]; !ok {
				return fmt.Errorf("%w: product %d scope %v is not the union of its children", ErrStructure, id, n.Scope)
			}
		}
	case Sum:
		if len(n.Children) == 0 {
			return fmt.Errorf("%w: sum %d has no children", ErrStructure, id)
		}
		for _, c := range n.Children {
			if !slices.Equal(g.Nodes[c].Scope, n.Scope) {
				return fmt.Errorf("%w: sum %d scope %v differs from child %d scope %v", ErrStructure, id, n.Scope, c, g.Nodes[c].Scope)
			}
		}
	default:
		return fmt.Errorf("%w: node %d has unknown %s", ErrStructure, id, n.Kind)
	}

	return nil
}

// isRange reports whether the sorted scope is exactly 0..len-1.
func isRange(scope []int) bool {
	for i, v := range scope {
		if v != i {
			return false
		}
	}

	return true
}
