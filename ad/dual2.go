package ad

import (
	"fmt"
	"math"
)

// Dual2 is a second-order forward-mode value: value, gradient and the
// dense row-major Hessian with respect to the tape's independents. nil
// slices stand for zero.
type Dual2 struct {
	V float64
	G []float64
	H []float64
}

func (a Dual2) Value() float64      { return a.V }
func (Dual2) Const(v float64) Dual2 { return Dual2{V: v} }
func (Dual2) Order() int            { return 2 }

func (Dual2) Variable(v float64, index, n int) Dual2 {
	if index < 0 || index >= n {
		panic(fmt.Errorf("independent index %d out of range [0,%d)", index, n))
	}
	g := make([]float64, n)
	g[index] = 1
	return Dual2{V: v, G: g}
}

func (a Dual2) Gradient(n int) (g []float64) {
	g = make([]float64, n)
	if a.G == nil {
		return
	}
	checkLength(len(a.G), n)
	copy(g, a.G)
	return
}

func (a Dual2) Hessian(n int) (h []float64) {
	h = make([]float64, n*n)
	if a.H == nil {
		return
	}
	checkLength(len(a.H), n*n)
	copy(h, a.H)
	return
}

func (a Dual2) Add(b Dual2) Dual2 {
	return Dual2{V: a.V + b.V, G: lin(1, a.G, 1, b.G), H: lin(1, a.H, 1, b.H)}
}

func (a Dual2) Sub(b Dual2) Dual2 {
	return Dual2{V: a.V - b.V, G: lin(1, a.G, -1, b.G), H: lin(1, a.H, -1, b.H)}
}

func (a Dual2) Neg() Dual2 {
	return Dual2{V: -a.V, G: scale(-1, a.G), H: scale(-1, a.H)}
}

func (a Dual2) Mul(b Dual2) Dual2 {
	h := lin(b.V, a.H, a.V, b.H)
	h = addSymOuter(h, 1, a.G, b.G)
	return Dual2{V: a.V * b.V, G: lin(b.V, a.G, a.V, b.G), H: h}
}

func (a Dual2) Div(b Dual2) Dual2 {
	var (
		inv = 1 / b.V
		r   = b.chain(inv, -inv*inv, 2*inv*inv*inv)
		p   = a.Mul(r)
	)
	p.V = a.V / b.V
	return p
}

func (a Dual2) Scale(s float64) Dual2 {
	return Dual2{V: a.V * s, G: scale(s, a.G), H: scale(s, a.H)}
}

func (a Dual2) Shift(s float64) Dual2 { return Dual2{V: a.V + s, G: a.G, H: a.H} }

// chain applies a scalar function with first and second derivatives d1, d2
// evaluated at a.V.
func (a Dual2) chain(v, d1, d2 float64) Dual2 {
	h := scale(d1, a.H)
	h = addOuter(h, d2, a.G)
	return Dual2{V: v, G: scale(d1, a.G), H: h}
}

func (a Dual2) Sqrt() Dual2 {
	v := math.Sqrt(a.V)
	return a.chain(v, 0.5/v, -0.25/(v*a.V))
}

func (a Dual2) Abs() Dual2 {
	if a.V < 0 {
		return a.Neg()
	}
	return a
}

func (a Dual2) Exp() Dual2 {
	v := math.Exp(a.V)
	return a.chain(v, v, v)
}

func (a Dual2) Log() Dual2 {
	return a.chain(math.Log(a.V), 1/a.V, -1/(a.V*a.V))
}

func (a Dual2) Sin() Dual2 {
	s, c := math.Sin(a.V), math.Cos(a.V)
	return a.chain(s, c, -s)
}

func (a Dual2) Cos() Dual2 {
	s, c := math.Sin(a.V), math.Cos(a.V)
	return a.chain(c, -s, -c)
}

func (a Dual2) Pow(p float64) Dual2 {
	return a.chain(math.Pow(a.V, p), p*math.Pow(a.V, p-1), p*(p-1)*math.Pow(a.V, p-2))
}
