package region

import (
	"fmt"

	"github.com/katalvlaran/hclt/chowliu"
	"github.com/katalvlaran/hclt/family"
)

// FromTree expands a rooted dependency tree into a hidden Chow-Liu region graph.
//
// Every variable v gets an input region of numLatents distributions, one per
// state of its hidden variable. A leaf is represented by its input region; an
// inner node by the product of its input region and the transition regions
// of its children. Every non-root node is then mixed by a numLatents-wide sum
// region (the transition from its parent's hidden state), and the root by a
// single-node sum region.
func FromTree(tree *chowliu.Tree, numLatents int, fam family.Family) (*Graph, error) {
	if tree == nil || tree.N == 0 {
		return nil, fmt.Errorf("%w: empty tree", ErrBadNode)
	}
	if numLatents < 1 {
		return nil, fmt.Errorf("%w: num_latents must be >= 1, got %d", ErrBadNode, numLatents)
	}

	g := New(tree.N)
	// up[v] is the region v hands to its parent.
	up := make([]NodeID, tree.N)
	for i := len(tree.Order) - 1; i >= 0; i-- {
		v := tree.Order[i]
		in, err := g.AddInput(v, numLatents, fam)
		if err != nil {
			return nil, err
		}
		h := in
		if kids := tree.Children[v]; len(kids) > 0 {
			parts := make([]NodeID, 0, len(kids)+1)
			parts = append(parts, in)
			for _, c := range kids {
				parts = append(parts, up[c])
			}
			if h, err = g.AddProduct(parts...); err != nil {
				return nil, err
			}
		}
		width := numLatents
		if v == tree.Root {
			width = 1
		}
		if up[v], err = g.AddSum(width, h); err != nil {
			return nil, err
		}
	}
	if err := g.SetRoot(up[tree.Root]); err != nil {
		return nil, err
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}

	return g, nil
}
