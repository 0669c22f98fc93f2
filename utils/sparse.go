package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// DOK is a dictionary-of-keys sparse matrix that only accumulates. Every
// value added is checked for NaN and Inf.
type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		false,
		"unnamed - hint: pass a variable name to SetName()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return mat.Transpose{Matrix: m} }
func (m DOK) NNZ() int            { return m.M.NNZ() }
func (m DOK) Name() string        { return m.name }

func (m *DOK) SetName(name string) { m.name = name }
func (m *DOK) SetReadOnly()        { m.readOnly = true }
func (m *DOK) SetWritable()        { m.readOnly = false }

// AddAt accumulates val into (i, j).
func (m DOK) AddAt(i, j int, val float64) (err error) {
	m.checkWritable()
	if err = CheckFinite(val); err != nil {
		return fmt.Errorf("%s(%d,%d): %w", m.name, i, j, err)
	}
	if val == 0 {
		return
	}
	m.M.Set(i, j, m.M.At(i, j)+val)
	return
}

// AddBlock accumulates the dense block B at rows x cols. Repeated global
// indices accumulate.
func (m DOK) AddBlock(rows, cols []int, B mat.Matrix) (err error) {
	var (
		nr, nc = B.Dims()
	)
	if nr != len(rows) || nc != len(cols) {
		panic(fmt.Errorf("block of size %dx%d scattered to %dx%d indices in %q",
			nr, nc, len(rows), len(cols), m.name))
	}
	for i, I := range rows {
		for j, J := range cols {
			if err = m.AddAt(I, J, B.At(i, j)); err != nil {
				return
			}
		}
	}
	return
}

// Reset clears all entries while keeping the dimensions.
func (m *DOK) Reset() {
	m.checkWritable()
	nr, nc := m.Dims()
	m.M = sparse.NewDOK(nr, nc)
}

func (m DOK) DoNonZero(fn func(i, j int, v float64)) { m.M.DoNonZero(fn) }

func (m DOK) ToCSR() *sparse.CSR { return m.M.ToCSR() }

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}
