package utils

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var ErrNonFinite = errors.New("non-finite value")

func IsFinite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

func CheckFinite(x float64) (err error) {
	if !IsFinite(x) {
		err = fmt.Errorf("%w: %v", ErrNonFinite, x)
	}
	return
}

// CheckFiniteSlice reports the first non-finite entry of x.
func CheckFiniteSlice(x []float64) (err error) {
	for i, v := range x {
		if !IsFinite(v) {
			return fmt.Errorf("%w: entry %d is %v", ErrNonFinite, i, v)
		}
	}
	return
}

func ConstArray(N int, val float64) (v []float64) {
	v = make([]float64, N)
	for i := range v {
		v[i] = val
	}
	return
}

// AddToVec accumulates vals into v at the global indices. Repeated indices
// accumulate.
func AddToVec(v *mat.VecDense, indices []int, vals []float64) (err error) {
	if err = CheckFiniteSlice(vals); err != nil {
		return
	}
	for i, I := range indices {
		v.SetVec(I, v.AtVec(I)+vals[i])
	}
	return
}
