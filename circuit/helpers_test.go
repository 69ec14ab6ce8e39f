package circuit_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/hclt/chowliu"
	"github.com/katalvlaran/hclt/circuit"
	"github.com/katalvlaran/hclt/family"
	"github.com/katalvlaran/hclt/matrix"
	"github.com/katalvlaran/hclt/mutualinfo"
	"github.com/katalvlaran/hclt/region"
)

// chainData draws B rows over k categorical variables where each variable
// copies its predecessor with probability 0.8.
func chainData(t testing.TB, B, k, cats int, seed int64) *matrix.Dense {
	t.Helper()
	r := rand.New(rand.NewSource(seed))
	x, err := matrix.NewDense(B, k)
	require.NoError(t, err)
	for i := 0; i < B; i++ {
		prev := r.Intn(cats)
		for j := 0; j < k; j++ {
			v := prev
			if j == 0 || r.Float64() > 0.8 {
				v = r.Intn(cats)
			}
			require.NoError(t, x.Set(i, j, float64(v)))
			prev = v
		}
	}

	return x
}

// regionGraph learns a hidden Chow-Liu region graph from x.
func regionGraph(t testing.TB, x *matrix.Dense, latents, cats int) *region.Graph {
	t.Helper()
	mi, err := mutualinfo.MutualInformationChunked(x, x, 8, 0.5/8, 4)
	require.NoError(t, err)
	tree, err := chowliu.ChowLiuTree(mi)
	require.NoError(t, err)
	fam, err := family.NewCategorical(cats)
	require.NoError(t, err)
	rg, err := region.FromTree(tree, latents, fam)
	require.NoError(t, err)

	return rg
}

// compiled returns a circuit and its training data.
func compiled(t testing.TB, k, latents, cats, budget int) (*circuit.Circuit, *matrix.Dense) {
	t.Helper()
	x := chainData(t, 200, k, cats, int64(k*100+cats))
	c, err := circuit.Compile(regionGraph(t, x, latents, cats), budget, circuit.WithSeed(7))
	require.NoError(t, err)

	return c, x
}

// allConfigurations enumerates every assignment of k variables with cats values.
func allConfigurations(t testing.TB, k, cats int) *matrix.Dense {
	t.Helper()
	n := 1
	for i := 0; i < k; i++ {
		n *= cats
	}
	x, err := matrix.NewDense(n, k)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		code := i
		for j := 0; j < k; j++ {
			require.NoError(t, x.Set(i, j, float64(code%cats)))
			code /= cats
		}
	}

	return x
}

func allMissing(t testing.TB, rows, cols int) *circuit.Mask {
	t.Helper()
	m, err := circuit.NewMask(rows, cols)
	require.NoError(t, err)
	m.Fill(true)

	return m
}
