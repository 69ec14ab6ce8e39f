package circuit

import (
	"fmt"
)

// Mask marks unobserved entries of a B×K batch; true means missing.
type Mask struct {
	rows, cols int
	data       []bool
}

// NewMask returns an all-observed rows×cols mask.
func NewMask(rows, cols int) (*Mask, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("%w: mask %dx%d", ErrShape, rows, cols)
	}

	return &Mask{rows: rows, cols: cols, data: make([]bool, rows*cols)}, nil
}

// Rows returns the batch size.
func (m *Mask) Rows() int { return m.rows }

// Cols returns the variable count.
func (m *Mask) Cols() int { return m.cols }

// At reports whether entry (i, j) is missing.
func (m *Mask) At(i, j int) bool { return m.data[i*m.cols+j] }

// Set marks entry (i, j) as missing or observed.
func (m *Mask) Set(i, j int, missing bool) { m.data[i*m.cols+j] = missing }

// Row returns the backing slice of row i.
func (m *Mask) Row(i int) []bool { return m.data[i*m.cols : (i+1)*m.cols] }

// Fill marks every entry with missing.
func (m *Mask) Fill(missing bool) {
	for i := range m.data {
		m.data[i] = missing
	}
}
