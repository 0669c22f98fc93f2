// Package ad holds the number representations the residual kernels are
// instantiated over: a plain real, a first-order dual carrying a dense
// gradient, and a second-order dual carrying gradient and Hessian.
//
// Every representation implements Number, so one generic kernel body
// produces bit-identical values whichever representation it runs on.
// Derivatives are forward mode. A Tape is the per-call value that seeds
// independents, collects dependents and extracts derivative blocks.
package ad

// Number is the arithmetic available to a generic kernel.
// Const returns a passive value of the receiver's representation; the
// receiver itself is ignored so that the zero value can be used.
type Number[T any] interface {
	Value() float64
	Const(v float64) T
	Add(b T) T
	Sub(b T) T
	Mul(b T) T
	Div(b T) T
	Neg() T
	Scale(s float64) T
	Shift(s float64) T
	Sqrt() T
	Abs() T
	Exp() T
	Log() T
	Sin() T
	Cos() T
	Pow(p float64) T
}

// Differentiable is a Number that can be seeded as an independent
// variable and queried for its gradient.
type Differentiable[T any] interface {
	Number[T]
	Variable(v float64, index, n int) T
	Gradient(n int) []float64
	Order() int
}

// SecondOrder is implemented by representations that track curvature.
type SecondOrder interface {
	Hessian(n int) []float64
}

// Zero returns the passive zero of T.
func Zero[T Number[T]]() (z T) {
	return z.Const(0)
}

// Consts converts plain values to passive values of T.
func Consts[T Number[T]](vals []float64) (r []T) {
	var z T
	r = make([]T, len(vals))
	for i, v := range vals {
		r[i] = z.Const(v)
	}
	return
}

// Values projects a slice of T onto its values.
func Values[T Number[T]](xs []T) (r []float64) {
	r = make([]float64, len(xs))
	for i, x := range xs {
		r[i] = x.Value()
	}
	return
}

func Max[T Number[T]](a, b T) T {
	if a.Value() >= b.Value() {
		return a
	}
	return b
}

func Dot[T Number[T]](a, b []T) (r T) {
	r = Zero[T]()
	for i := range a {
		r = r.Add(a[i].Mul(b[i]))
	}
	return
}

// DotF contracts a slice of T with plain coefficients.
func DotF[T Number[T]](a []T, b []float64) (r T) {
	r = Zero[T]()
	for i := range a {
		r = r.Add(a[i].Scale(b[i]))
	}
	return
}

func Norm[T Number[T]](a []T) T {
	return Dot(a, a).Sqrt()
}

// Matrix allocates an nr x nc array of passive zeros.
func Matrix[T Number[T]](nr, nc int) (m [][]T) {
	m = make([][]T, nr)
	for i := range m {
		m[i] = make([]T, nc)
		for j := range m[i] {
			m[i][j] = Zero[T]()
		}
	}
	return
}

// Vector allocates n passive zeros.
func Vector[T Number[T]](n int) (v []T) {
	v = make([]T, n)
	for i := range v {
		v[i] = Zero[T]()
	}
	return
}
