package ad

import (
	"fmt"
	"math"
)

// Dual is a first-order forward-mode value. G holds the gradient with
// respect to every independent of the current tape; a nil G is a zero
// gradient. Gradients are never modified in place once built, so
// results may share backing arrays with their operands.
type Dual struct {
	V float64
	G []float64
}

func (a Dual) Value() float64     { return a.V }
func (Dual) Const(v float64) Dual { return Dual{V: v} }
func (Dual) Order() int           { return 1 }

func (Dual) Variable(v float64, index, n int) Dual {
	if index < 0 || index >= n {
		panic(fmt.Errorf("independent index %d out of range [0,%d)", index, n))
	}
	g := make([]float64, n)
	g[index] = 1
	return Dual{V: v, G: g}
}

func (a Dual) Gradient(n int) (g []float64) {
	g = make([]float64, n)
	if a.G == nil {
		return
	}
	checkLength(len(a.G), n)
	copy(g, a.G)
	return
}

func (a Dual) Add(b Dual) Dual { return Dual{V: a.V + b.V, G: lin(1, a.G, 1, b.G)} }
func (a Dual) Sub(b Dual) Dual { return Dual{V: a.V - b.V, G: lin(1, a.G, -1, b.G)} }
func (a Dual) Neg() Dual       { return Dual{V: -a.V, G: scale(-1, a.G)} }

func (a Dual) Mul(b Dual) Dual {
	return Dual{V: a.V * b.V, G: lin(b.V, a.G, a.V, b.G)}
}

func (a Dual) Div(b Dual) Dual {
	v := a.V / b.V
	return Dual{V: v, G: lin(1/b.V, a.G, -v/b.V, b.G)}
}

func (a Dual) Scale(s float64) Dual { return Dual{V: a.V * s, G: scale(s, a.G)} }
func (a Dual) Shift(s float64) Dual { return Dual{V: a.V + s, G: a.G} }

func (a Dual) chain(v, d1 float64) Dual {
	return Dual{V: v, G: scale(d1, a.G)}
}

func (a Dual) Sqrt() Dual {
	v := math.Sqrt(a.V)
	return a.chain(v, 0.5/v)
}

func (a Dual) Abs() Dual {
	if a.V < 0 {
		return a.Neg()
	}
	return a
}

func (a Dual) Exp() Dual {
	v := math.Exp(a.V)
	return a.chain(v, v)
}

func (a Dual) Log() Dual { return a.chain(math.Log(a.V), 1/a.V) }
func (a Dual) Sin() Dual { return a.chain(math.Sin(a.V), math.Cos(a.V)) }
func (a Dual) Cos() Dual { return a.chain(math.Cos(a.V), -math.Sin(a.V)) }

func (a Dual) Pow(p float64) Dual {
	return a.chain(math.Pow(a.V, p), p*math.Pow(a.V, p-1))
}
