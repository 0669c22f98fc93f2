package utils

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestDOK(t *testing.T) {
	m := NewDOK(3, 4)
	m.SetName("dRdW")
	require.NoError(t, m.AddAt(0, 1, 2))
	require.NoError(t, m.AddAt(0, 1, 3))
	require.NoError(t, m.AddAt(2, 3, 0))
	assert.Equal(t, 5., m.At(0, 1))
	assert.Equal(t, 1, m.NNZ())
	{ // Repeated indices in a block accumulate
		B := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
		require.NoError(t, m.AddBlock([]int{1, 1}, []int{0, 2}, B))
		assert.Equal(t, 4., m.At(1, 0))
		assert.Equal(t, 6., m.At(1, 2))
		assert.Equal(t, 6., m.T().At(2, 1))
		assert.Panics(t, func() { _ = m.AddBlock([]int{1}, []int{0, 2}, B) })
	}
	{ // Non-finite values are rejected
		err := m.AddAt(0, 0, math.NaN())
		assert.True(t, errors.Is(err, ErrNonFinite))
		assert.Contains(t, err.Error(), "dRdW(0,0)")
		err = AddToVec(mat.NewVecDense(2, nil), []int{0, 1}, []float64{1, math.Inf(-1)})
		assert.True(t, errors.Is(err, ErrNonFinite))
	}
	{
		var nnz int
		m.DoNonZero(func(i, j int, v float64) { nnz++ })
		assert.Equal(t, m.NNZ(), nnz)
		csr := m.ToCSR()
		assert.Equal(t, 5., csr.At(0, 1))
	}
	m.SetReadOnly()
	assert.Panics(t, func() { _ = m.AddAt(0, 0, 1) })
	m.SetWritable()
	m.Reset()
	assert.Equal(t, 0, m.NNZ())
	r, c := m.Dims()
	assert.Equal(t, [2]int{3, 4}, [2]int{r, c})
}

func TestAddToVec(t *testing.T) {
	v := mat.NewVecDense(3, nil)
	require.NoError(t, AddToVec(v, []int{2, 0, 2}, []float64{1, 2, 3}))
	assert.Equal(t, []float64{2, 0, 4}, v.RawVector().Data)
}
