package ad

import "math"

// Real is the plain representation used by the residual-only path.
type Real float64

func (a Real) Value() float64       { return float64(a) }
func (Real) Const(v float64) Real   { return Real(v) }
func (a Real) Add(b Real) Real      { return a + b }
func (a Real) Sub(b Real) Real      { return a - b }
func (a Real) Mul(b Real) Real      { return a * b }
func (a Real) Div(b Real) Real      { return a / b }
func (a Real) Neg() Real            { return -a }
func (a Real) Scale(s float64) Real { return a * Real(s) }
func (a Real) Shift(s float64) Real { return a + Real(s) }
func (a Real) Sqrt() Real           { return Real(math.Sqrt(float64(a))) }
func (a Real) Abs() Real            { return Real(math.Abs(float64(a))) }
func (a Real) Exp() Real            { return Real(math.Exp(float64(a))) }
func (a Real) Log() Real            { return Real(math.Log(float64(a))) }
func (a Real) Sin() Real            { return Real(math.Sin(float64(a))) }
func (a Real) Cos() Real            { return Real(math.Cos(float64(a))) }
func (a Real) Pow(p float64) Real   { return Real(math.Pow(float64(a), p)) }
