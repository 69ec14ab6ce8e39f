package main

import (
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/hclt/circuit"
	"github.com/katalvlaran/hclt/matrix"
)

func TestMultiLinear(t *testing.T) {
	s, err := newMultiLinear([]float64{0.9, 0.1, 0.05}, []int{0, 10, 30})
	require.NoError(t, err)

	assert.InDelta(t, 0.9, s.at(0), 1e-12)
	assert.InDelta(t, 0.5, s.at(5), 1e-12)
	assert.InDelta(t, 0.1, s.at(10), 1e-12)
	assert.InDelta(t, 0.075, s.at(20), 1e-12)
	assert.InDelta(t, 0.05, s.at(30), 1e-12)
	assert.InDelta(t, 0.05, s.at(1000), 1e-12)

	_, err = newMultiLinear([]float64{0.9, 0.1}, []int{0})
	assert.Error(t, err)
	_, err = newMultiLinear([]float64{0.9, 0.1}, []int{5, 5})
	assert.Error(t, err)
}

func TestReadCSV(t *testing.T) {
	x, err := readCSV(strings.NewReader("0,1,2\n3,4,5\n"))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5}, x.RawData())

	_, err = readCSV(strings.NewReader("0,1\n2,x\n"))
	assert.ErrorContains(t, err, "line 2 column 1")

	_, err = readCSV(strings.NewReader("0,1\n2\n"))
	assert.Error(t, err)
}

func TestBatches(t *testing.T) {
	x, err := matrix.NewDense(10, 2)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		require.NoError(t, x.Set(i, 0, float64(i)))
	}

	xs, err := batches(x, 3, nil)
	require.NoError(t, err)
	require.Len(t, xs, 3)
	v, _ := xs[2].At(2, 0)
	assert.Equal(t, 8.0, v)

	shuffled, err := batches(x, 5, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	seen := map[float64]bool{}
	for _, b := range shuffled {
		for i := 0; i < b.Rows(); i++ {
			v, _ := b.At(i, 0)
			seen[v] = true
		}
	}
	assert.Len(t, seen, 10)

	_, err = batches(x, 11, nil)
	assert.ErrorIs(t, err, errNoBatches)
}

func TestLeftHalfMask(t *testing.T) {
	m, err := leftHalfMask(1, 8, 4)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, false, false, true, true, false, false}, m.Row(0))

	_, err = leftHalfMask(1, 9, 4)
	assert.Error(t, err)
}

func TestBitsPerDim(t *testing.T) {
	assert.InDelta(t, 1.0, bitsPerDim(-4*math.Ln2, 4), 1e-12)
}

func writeSplit(t *testing.T, path string, rows int, r *rand.Rand) {
	t.Helper()
	var sb strings.Builder
	for i := 0; i < rows; i++ {
		a, b := r.IntN(3), r.IntN(3)
		sb.WriteString(strings.Join([]string{strconv.Itoa(a), strconv.Itoa(b), strconv.Itoa(a), strconv.Itoa((a + b) % 3)}, ","))
		sb.WriteByte('\n')
	}
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))
}

// TestRun_Modes trains a tiny circuit and runs every offline mode on it.
func TestRun_Modes(t *testing.T) {
	dir := t.TempDir()
	r := rand.New(rand.NewPCG(3, 4))
	writeSplit(t, filepath.Join(dir, "toy_train.csv"), 64, r)
	writeSplit(t, filepath.Join(dir, "toy_test.csv"), 16, r)

	cfg := config{
		mode:       "train",
		dataset:    "toy",
		dataDir:    dir,
		outputDir:  filepath.Join(dir, "out"),
		device:     circuit.Host,
		batchSize:  8,
		numLatents: 2,
		numCats:    3,
		epochs:     2,
		rowWidth:   2,
		seed:       5,
	}
	require.NoError(t, run(cfg))
	require.FileExists(t, cfg.artifactPath())

	for _, mode := range []string{"load", "miss", "alphas", "sample"} {
		cfg.mode = mode
		require.NoError(t, run(cfg), mode)
	}
	assert.FileExists(t, filepath.Join(cfg.outputDir, "samples0_test.csv"))
	assert.FileExists(t, filepath.Join(cfg.outputDir, "samples1_test.csv"))

	samples, err := loadCSV(filepath.Join(cfg.outputDir, "samples0_test.csv"))
	require.NoError(t, err)
	assert.Equal(t, 8, samples.Rows())
	for _, v := range samples.RawData() {
		assert.True(t, v >= 0 && v <= 2)
	}

	cfg.mode = "bogus"
	assert.Error(t, run(cfg))
}
