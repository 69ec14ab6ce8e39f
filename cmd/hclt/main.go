// Command hclt learns, trains, evaluates, samples from and serves Hidden
// Chow-Liu Tree circuits over integer-valued tabular data.
//
// Data comes from $HCLT_DATA/<dataset>_train.csv and _test.csv, one example
// per line. Artifacts are written to $HCLT_OUTPUT_DIR/<dataset>_<latents>.hclt.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/katalvlaran/hclt/circuit"
	"github.com/katalvlaran/hclt/family"
	"github.com/katalvlaran/hclt/hclt"
	"github.com/katalvlaran/hclt/matrix"
	"github.com/katalvlaran/hclt/server"
)

type config struct {
	mode         string
	dataset      string
	dataDir      string
	outputDir    string
	inputCircuit string
	device       circuit.Device
	batchSize    int
	numLatents   int
	numCats      int
	epochs       int
	rowWidth     int
	seed         uint64
	port         string
}

func main() {
	cfg := parseConfig()
	log.Printf("hclt %s: dataset=%s latents=%d batch=%d device=%s", cfg.mode, cfg.dataset, cfg.numLatents, cfg.batchSize, cfg.device)

	if err := run(cfg); err != nil {
		log.Fatalf("FATAL: %s: %v", cfg.mode, err)
	}
}

func parseConfig() config {
	var (
		cfg    config
		device string
		seed   uint
	)
	flag.StringVar(&cfg.mode, "mode", "train", "one of train, load, miss, alphas, sample, serve")
	flag.StringVar(&cfg.dataset, "dataset", "mnist", "dataset name; selects <name>_train.csv and <name>_test.csv")
	flag.StringVar(&cfg.inputCircuit, "input-circuit", "", "train from this artifact instead of learning a structure")
	flag.StringVar(&device, "device", "cpu", "cpu, cuda or cuda:N")
	flag.IntVar(&cfg.batchSize, "batch-size", 512, "examples per batch")
	flag.IntVar(&cfg.numLatents, "num-latents", hclt.DefaultNumLatents, "latent states per tree variable")
	flag.IntVar(&cfg.numCats, "categories", hclt.DefaultNumCats, "categories per variable")
	flag.IntVar(&cfg.epochs, "epochs", 350, "mini-batch EM epochs before the full-batch step")
	flag.IntVar(&cfg.rowWidth, "row-width", 28, "image row width used by sample mode to hide the left half")
	flag.UintVar(&seed, "seed", 1, "random seed")
	flag.Parse()

	d, err := circuit.ParseDevice(device)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	cfg.device = d
	cfg.seed = uint64(seed)
	cfg.outputDir = getEnvOrDefault("HCLT_OUTPUT_DIR", "examples")
	cfg.port = getEnvOrDefault("PORT", "5339")
	if cfg.mode != "serve" {
		cfg.dataDir = requireEnv("HCLT_DATA")
	}

	return cfg
}

func (cfg config) artifactPath() string {
	return filepath.Join(cfg.outputDir, fmt.Sprintf("%s_%d.hclt", cfg.dataset, cfg.numLatents))
}

func run(cfg config) error {
	if cfg.mode == "serve" {
		return serve(cfg)
	}

	rng := rand.New(rand.NewPCG(cfg.seed, cfg.seed+1))
	train, test, err := loadSplits(cfg.dataDir, cfg.dataset)
	if err != nil {
		return err
	}
	trainBatches, err := batches(train, cfg.batchSize, nil)
	if err != nil {
		return err
	}
	testBatches, err := batches(test, cfg.batchSize, nil)
	if err != nil {
		return err
	}
	numVars := train.Cols()

	switch cfg.mode {
	case "train":
		log.Println("===========================TRAIN===========================")
		var c *circuit.Circuit
		if cfg.inputCircuit == "" {
			if c, err = learn(cfg, train); err != nil {
				return err
			}
		} else if c, err = loadCircuit(cfg.inputCircuit, cfg.device); err != nil {
			return err
		}
		if err := miniBatchEM(c, cfg.epochs, train, cfg.batchSize, testBatches, rng); err != nil {
			return err
		}
		if err := fullBatchEM(c, trainBatches, testBatches); err != nil {
			return err
		}
		return saveCircuit(c, cfg.artifactPath())

	case "load":
		log.Println("===========================LOAD============================")
		c, err := loadCircuit(cfg.artifactPath(), cfg.device)
		if err != nil {
			return err
		}
		t0 := time.Now()
		trainLL, err := evaluate(c, trainBatches, nil)
		if err != nil {
			return err
		}
		t1 := time.Now()
		testLL, err := evaluate(c, testBatches, nil)
		if err != nil {
			return err
		}
		log.Printf("train_ll: %.2f, test_ll: %.2f; train %.2fs, test %.2fs", trainLL, testLL, t1.Sub(t0).Seconds(), time.Since(t1).Seconds())
		log.Printf("train_bpd: %.2f, test_bpd: %.2f", bitsPerDim(trainLL, numVars), bitsPerDim(testLL, numVars))
		return nil

	case "miss":
		log.Println("===========================MISS============================")
		c, err := loadCircuit(cfg.artifactPath(), cfg.device)
		if err != nil {
			return err
		}
		masks, err := randomMasks(testBatches, 0.5, rng)
		if err != nil {
			return err
		}
		testLL, err := evaluate(c, testBatches, nil)
		if err != nil {
			return err
		}
		t0 := time.Now()
		missLL, err := evaluate(c, testBatches, func(i int) []circuit.EvalOption {
			return []circuit.EvalOption{circuit.WithMissing(masks[i])}
		})
		if err != nil {
			return err
		}
		log.Printf("test_ll: %.2f, test_bpd: %.2f", testLL, bitsPerDim(testLL, numVars))
		log.Printf("test_miss_ll: %.2f, test_miss_bpd: %.2f; time = %.2fs", missLL, bitsPerDim(missLL, numVars), time.Since(t0).Seconds())
		return nil

	case "alphas":
		log.Println("===========================ALPHAS==========================")
		c, err := loadCircuit(cfg.artifactPath(), cfg.device)
		if err != nil {
			return err
		}
		alphas, err := constantAlphas(testBatches, 0.99)
		if err != nil {
			return err
		}
		testLL, err := evaluate(c, testBatches, nil)
		if err != nil {
			return err
		}
		t0 := time.Now()
		alphaLL, err := evaluate(c, testBatches, func(i int) []circuit.EvalOption {
			return []circuit.EvalOption{circuit.WithAlphas(alphas[i])}
		})
		if err != nil {
			return err
		}
		log.Printf("test_ll: %.2f, test_ll_alpha: %.2f; time = %.2fs", testLL, alphaLL, time.Since(t0).Seconds())
		return nil

	case "sample":
		log.Println("===========================SAMPLE==========================")
		c, err := loadCircuit(cfg.artifactPath(), cfg.device)
		if err != nil {
			return err
		}
		t0 := time.Now()
		if err := sampleLeftHalf(c, testBatches, cfg.rowWidth, 2, cfg.outputDir, rng); err != nil {
			return err
		}
		log.Printf("Samples took %.2fs", time.Since(t0).Seconds())
		return nil

	default:
		return fmt.Errorf("unknown mode %q", cfg.mode)
	}
}

func learn(cfg config, train *matrix.Dense) (*circuit.Circuit, error) {
	fam, err := family.NewCategorical(cfg.numCats)
	if err != nil {
		return nil, err
	}
	c, err := hclt.HCLT(train,
		hclt.WithNumLatents(cfg.numLatents),
		hclt.WithFamily(fam),
		hclt.WithSeed(cfg.seed),
		hclt.WithOnStage(func(s hclt.Stage, d time.Duration) {
			log.Printf("  %s took %.2fs", s, d.Seconds())
		}),
	)
	if err != nil {
		return nil, err
	}
	if err := c.To(cfg.device); err != nil {
		log.Printf("Warning: %v", err)
	}
	log.Printf("learned circuit %s: %d nodes, %d params", c.ID, c.NumNodes(), c.NumParams())

	return c, nil
}

func serve(cfg config) error {
	path := cfg.inputCircuit
	if path == "" {
		path = cfg.artifactPath()
	}
	c, err := loadCircuit(path, cfg.device)
	if err != nil {
		return err
	}
	r := server.SetupRouter(c, cfg.seed)

	log.Printf("Serving circuit %s on :%s", c.ID, cfg.port)
	return r.Run(":" + cfg.port)
}

// requireEnv reads a required environment variable and exits if it is not set.
func requireEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		log.Fatalf("FATAL: Required environment variable %s is not set.", key)
	}
	return val
}

// getEnvOrDefault returns the env var value or fallback.
func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
