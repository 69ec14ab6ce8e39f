package main

import (
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/hclt/circuit"
	"github.com/katalvlaran/hclt/matrix"
)

const pseudocount = 0.1

// evaluate averages the per-batch mean log-likelihood. opts, when set,
// supplies the evaluation options of batch i.
func evaluate(c *circuit.Circuit, xs []*matrix.Dense, opts func(i int) []circuit.EvalOption) (float64, error) {
	means := make([]float64, len(xs))
	for i, x := range xs {
		var o []circuit.EvalOption
		if opts != nil {
			o = opts(i)
		}
		lls, err := c.Forward(x, o...)
		if err != nil {
			return 0, fmt.Errorf("batch %d: %w", i, err)
		}
		means[i] = stat.Mean(lls, nil)
	}

	return stat.Mean(means, nil), nil
}

// bitsPerDim converts a mean log-likelihood in nats over numVars variables.
func bitsPerDim(ll float64, numVars int) float64 {
	return -ll / (float64(numVars) * math.Ln2)
}

// miniBatchEM runs epochs of stochastic EM over reshuffled batches with the
// 0.9 → 0.1 → 0.05 multi-linear step-size schedule.
func miniBatchEM(c *circuit.Circuit, epochs int, train *matrix.Dense, batchSize int, test []*matrix.Dense, rng *rand.Rand) error {
	nb := train.Rows() / batchSize
	warm := epochs * 100 / 350
	if warm < 1 {
		warm = 1
	}
	sched, err := newMultiLinear([]float64{0.9, 0.1, 0.05}, []int{0, nb * warm, nb * max(epochs, warm+1)})
	if err != nil {
		return err
	}

	step := 0
	for epoch := 0; epoch < epochs; epoch++ {
		t0 := time.Now()
		xs, err := batches(train, batchSize, rng)
		if err != nil {
			return err
		}
		var trainLL float64
		for _, x := range xs {
			lls, err := c.Backward(x, 0)
			if err != nil {
				return err
			}
			if err := c.MiniBatchEM(sched.at(step), pseudocount); err != nil {
				return err
			}
			trainLL += stat.Mean(lls, nil)
			step++
		}
		trainLL /= float64(len(xs))

		t1 := time.Now()
		testLL, err := evaluate(c, test, nil)
		if err != nil {
			return err
		}
		log.Printf("[Epoch %d/%d][train LL: %.2f; test LL: %.2f].....[train %.2fs; test %.2fs]",
			epoch, epochs, trainLL, testLL, t1.Sub(t0).Seconds(), time.Since(t1).Seconds())
	}

	return nil
}

// fullBatchEM accumulates flows over every batch and takes one EM step.
func fullBatchEM(c *circuit.Circuit, train, test []*matrix.Dense) error {
	t0 := time.Now()
	c.ClearFlows()
	var trainLL float64
	for _, x := range train {
		lls, err := c.Backward(x, 1)
		if err != nil {
			return err
		}
		trainLL += stat.Mean(lls, nil)
	}
	if err := c.MiniBatchEM(1, pseudocount); err != nil {
		return err
	}
	trainLL /= float64(len(train))

	t1 := time.Now()
	testLL, err := evaluate(c, test, nil)
	if err != nil {
		return err
	}
	log.Printf("[full batch][train LL: %.2f; test LL: %.2f].....[train %.2fs; test %.2fs]",
		trainLL, testLL, t1.Sub(t0).Seconds(), time.Since(t1).Seconds())

	return nil
}

// sampleLeftHalf completes the left half of each image in the first n
// batches and writes the inputs, masks and samples as CSV files.
func sampleLeftHalf(c *circuit.Circuit, xs []*matrix.Dense, rowWidth, n int, dir string, rng *rand.Rand) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for b, x := range xs {
		if b >= n {
			break
		}
		mask, err := leftHalfMask(x.Rows(), x.Cols(), rowWidth)
		if err != nil {
			return err
		}
		lls, err := c.Forward(x, circuit.WithMissing(mask))
		if err != nil {
			return err
		}
		samples, err := c.Sample(x, mask, rng)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, fmt.Sprintf("samples%d_test.csv", b))
		if err := writeCSV(path, samples); err != nil {
			return err
		}
		log.Printf("batch %d: observed half ll %.2f, samples written to %s", b, stat.Mean(lls, nil), path)
	}

	return nil
}

func loadCircuit(path string, d circuit.Device) (*circuit.Circuit, error) {
	t0 := time.Now()
	log.Printf("Loading circuit %s into %s", path, d)
	c, err := circuit.LoadFile(path, circuit.WithDevice(d), circuit.WithHostFallback())
	if err != nil {
		return nil, err
	}
	if c.Device != d {
		log.Printf("Warning: %s unavailable, circuit placed on %s", d, c.Device)
	}
	log.Printf("Took %.2fs: %d nodes, %d params", time.Since(t0).Seconds(), c.NumNodes(), c.NumParams())

	return c, nil
}

func saveCircuit(c *circuit.Circuit, path string) error {
	t0 := time.Now()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := c.SaveFile(path); err != nil {
		return err
	}
	log.Printf("Saved %s in %.2fs", path, time.Since(t0).Seconds())

	return nil
}
