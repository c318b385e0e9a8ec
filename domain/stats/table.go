package stats

import (
	"gonum.org/v1/gonum/mat"

	"xlmhg/domain/core"
)

// Table is the scratch buffer of the p-value recurrences, indexed by
// (k successes, w failures). It is backed by a row-major mat.Dense.
//
// A Table may be reused across calls but not shared between concurrent ones.
type Table struct {
	dense  *mat.Dense
	data   []float64
	stride int
	rows   int
	cols   int
}

// NewTable allocates a rows x cols table.
func NewTable(rows, cols int) (*Table, error) {
	if rows <= 0 || cols <= 0 {
		return nil, core.NewParameterError("table dims", [2]int{rows, cols}, "positive")
	}
	return WrapDense(mat.NewDense(rows, cols, nil)), nil
}

// WrapDense uses d as table storage. Views returned by d.Slice work as well.
func WrapDense(d *mat.Dense) *Table {
	raw := d.RawMatrix()
	return &Table{
		dense:  d,
		data:   raw.Data,
		stride: raw.Stride,
		rows:   raw.Rows,
		cols:   raw.Cols,
	}
}

// Dense exposes the backing matrix.
func (t *Table) Dense() *mat.Dense {
	return t.dense
}

// Dims returns the number of rows and columns.
func (t *Table) Dims() (rows, cols int) {
	return t.rows, t.cols
}

// Fits returns an error unless the table has at least rows x cols entries.
func (t *Table) Fits(rows, cols int) error {
	if t.rows < rows || t.cols < cols {
		return core.NewTableTooSmallError(t.rows, t.cols, rows, cols)
	}
	return nil
}

// At returns entry (k, w) without bounds checks beyond the slice's own.
func (t *Table) At(k, w int) float64 {
	return t.data[k*t.stride+w]
}

// Set stores v at (k, w).
func (t *Table) Set(k, w int, v float64) {
	t.data[k*t.stride+w] = v
}

// TableDims returns the minimal table size for an algorithm.
// Algorithm 1 covers the whole (K+1) x (W+1) lattice. Algorithm 2 only visits
// the first L ranks, so w never exceeds min(L, W).
func TableDims(alg Algorithm, N, K, L int) (rows, cols int) {
	W := N - K
	if alg == Algorithm1 {
		return K + 1, W + 1
	}
	return K + 1, min(L, W) + 1
}
