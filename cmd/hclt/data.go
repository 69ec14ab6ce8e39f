package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"github.com/katalvlaran/hclt/circuit"
	"github.com/katalvlaran/hclt/matrix"
)

var errNoBatches = errors.New("fewer rows than one batch")

// loadSplits reads <dir>/<name>_train.csv and <dir>/<name>_test.csv.
func loadSplits(dir, name string) (train, test *matrix.Dense, err error) {
	if train, err = loadCSV(filepath.Join(dir, name+"_train.csv")); err != nil {
		return nil, nil, err
	}
	if test, err = loadCSV(filepath.Join(dir, name+"_test.csv")); err != nil {
		return nil, nil, err
	}
	if train.Cols() != test.Cols() {
		return nil, nil, fmt.Errorf("train has %d columns, test has %d", train.Cols(), test.Cols())
	}
	log.Printf("loaded %s: train %dx%d, test %dx%d", name, train.Rows(), train.Cols(), test.Rows(), test.Cols())

	return train, test, nil
}

func loadCSV(path string) (*matrix.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readCSV(f)
}

// readCSV parses headerless numeric records of equal width.
func readCSV(r io.Reader) (*matrix.Dense, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	var (
		rows [][]float64
		line int
	)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		row := make([]float64, len(rec))
		for j, field := range rec {
			if row[j], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, fmt.Errorf("line %d column %d: %w", line, j, err)
			}
		}
		rows = append(rows, row)
	}

	return matrix.NewDenseRows(rows)
}

// batches splits x into full batches of size rows, dropping the remainder.
// A non-nil rng shuffles the rows first.
func batches(x *matrix.Dense, size int, rng *rand.Rand) ([]*matrix.Dense, error) {
	if size <= 0 {
		return nil, fmt.Errorf("batch size %d", size)
	}
	n := x.Rows() / size
	if n == 0 {
		return nil, fmt.Errorf("%w: %d rows, batch size %d", errNoBatches, x.Rows(), size)
	}
	perm := make([]int, x.Rows())
	for i := range perm {
		perm[i] = i
	}
	if rng != nil {
		rng.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
	}
	cols := make([]int, x.Cols())
	for j := range cols {
		cols[j] = j
	}

	out := make([]*matrix.Dense, n)
	for b := range out {
		var err error
		if out[b], err = x.Induced(perm[b*size:(b+1)*size], cols); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// randomMasks hides each entry independently with probability p.
func randomMasks(xs []*matrix.Dense, p float64, rng *rand.Rand) ([]*circuit.Mask, error) {
	out := make([]*circuit.Mask, len(xs))
	for b, x := range xs {
		m, err := circuit.NewMask(x.Rows(), x.Cols())
		if err != nil {
			return nil, err
		}
		for i := 0; i < x.Rows(); i++ {
			for j := 0; j < x.Cols(); j++ {
				m.Set(i, j, rng.Float64() < p)
			}
		}
		out[b] = m
	}

	return out, nil
}

// leftHalfMask hides the left half of every rowWidth-wide image row.
func leftHalfMask(rows, cols, rowWidth int) (*circuit.Mask, error) {
	if rowWidth <= 0 || cols%rowWidth != 0 {
		return nil, fmt.Errorf("row width %d does not divide %d columns", rowWidth, cols)
	}
	m, err := circuit.NewMask(rows, cols)
	if err != nil {
		return nil, err
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m.Set(i, j, j%rowWidth < rowWidth/2)
		}
	}

	return m, nil
}

// constantAlphas returns one alpha matrix per batch, filled with a.
func constantAlphas(xs []*matrix.Dense, a float64) ([]*matrix.Dense, error) {
	out := make([]*matrix.Dense, len(xs))
	for b, x := range xs {
		buf := make([]float64, x.Rows()*x.Cols())
		for i := range buf {
			buf[i] = a
		}
		var err error
		if out[b], err = matrix.NewDenseFrom(x.Rows(), x.Cols(), buf); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func writeCSV(path string, x *matrix.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	rec := make([]string, x.Cols())
	for i := 0; i < x.Rows(); i++ {
		for j, v := range x.RawRow(i) {
			rec[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(rec); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
