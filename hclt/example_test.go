package hclt_test

import (
	"fmt"

	"github.com/katalvlaran/hclt/family"
	"github.com/katalvlaran/hclt/hclt"
	"github.com/katalvlaran/hclt/matrix"
)

// ExampleHCLT learns a small circuit over three ternary variables.
func ExampleHCLT() {
	x, _ := matrix.NewDenseRows([][]float64{
		{0, 0, 1}, {1, 1, 2}, {2, 2, 0}, {0, 0, 1},
		{1, 1, 1}, {2, 2, 2}, {0, 0, 0}, {1, 1, 0},
	})
	fam, _ := family.NewCategorical(3)

	c, err := hclt.HCLT(x, hclt.WithNumLatents(2), hclt.WithBins(8), hclt.WithSigma(0.5/8), hclt.WithFamily(fam))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	s := c.Stats()
	fmt.Println("vars:", s.NumVars, "nodes:", s.NumNodes, "layers:", s.NumLayers)
	// Output: vars: 3 nodes: 13 layers: 4
}
