package ad

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testFunc exercises every operation of Number.
func testFunc[T Number[T]](x, y T) T {
	var (
		a = x.Mul(y).Div(x.Add(y))
		b = x.Sin().Mul(y.Cos())
		c = x.Mul(x).Shift(1).Sqrt().Log()
		d = y.Scale(0.3).Exp().Sub(x.Pow(2.5))
		e = x.Sub(y).Abs().Neg()
	)
	return a.Add(b).Add(c).Add(d).Add(e)
}

func evalReal(x, y float64) float64 {
	return testFunc(Real(x), Real(y)).Value()
}

func TestNumbers(t *testing.T) {
	var (
		x0, y0 = 0.7, 1.3
		h      = 1.e-6
	)
	{ // Values are bit identical across representations
		var (
			r  = testFunc(Real(x0), Real(y0))
			d  = testFunc(Dual{}.Variable(x0, 0, 2), Dual{}.Variable(y0, 1, 2))
			d2 = testFunc(Dual2{}.Variable(x0, 0, 2), Dual2{}.Variable(y0, 1, 2))
		)
		assert.Equal(t, r.Value(), d.Value())
		assert.Equal(t, r.Value(), d2.Value())
	}
	{ // First derivatives against central differences
		d := testFunc(Dual{}.Variable(x0, 0, 2), Dual{}.Variable(y0, 1, 2))
		fdx := (evalReal(x0+h, y0) - evalReal(x0-h, y0)) / (2 * h)
		fdy := (evalReal(x0, y0+h) - evalReal(x0, y0-h)) / (2 * h)
		g := d.Gradient(2)
		assert.InDelta(t, fdx, g[0], 1.e-7)
		assert.InDelta(t, fdy, g[1], 1.e-7)
		d2 := testFunc(Dual2{}.Variable(x0, 0, 2), Dual2{}.Variable(y0, 1, 2))
		assert.InDeltaSlice(t, g, d2.Gradient(2), 1.e-14)
	}
	{ // Hessian against differences of the first-order gradient
		grad := func(x, y float64) []float64 {
			return testFunc(Dual{}.Variable(x, 0, 2), Dual{}.Variable(y, 1, 2)).Gradient(2)
		}
		H := testFunc(Dual2{}.Variable(x0, 0, 2), Dual2{}.Variable(y0, 1, 2)).Hessian(2)
		gxp, gxm := grad(x0+h, y0), grad(x0-h, y0)
		gyp, gym := grad(x0, y0+h), grad(x0, y0-h)
		for i := 0; i < 2; i++ {
			assert.InDelta(t, (gxp[i]-gxm[i])/(2*h), H[i*2+0], 1.e-6)
			assert.InDelta(t, (gyp[i]-gym[i])/(2*h), H[i*2+1], 1.e-6)
		}
		assert.Equal(t, H[1], H[2])
	}
	{ // Passive values carry no derivative
		c := Dual{}.Const(3).Mul(Dual{}.Variable(2, 1, 3))
		assert.Equal(t, []float64{0, 3, 0}, c.Gradient(3))
		assert.Nil(t, Dual{}.Const(1).Add(Dual{}.Const(2)).G)
		assert.Equal(t, make([]float64, 9), Dual2{}.Const(4).Hessian(3))
	}
	{ // Mixing gradients from different tapes is a programming error
		assert.Panics(t, func() {
			Dual{}.Variable(1, 0, 2).Add(Dual{}.Variable(1, 0, 3))
		})
	}
	{ // Helpers
		v := Consts[Real]([]float64{3, 4})
		assert.Equal(t, 5., Norm(v).Value())
		assert.Equal(t, 11., DotF(v, []float64{1, 2}).Value())
		assert.Equal(t, Real(4), Max(v[0], v[1]))
		assert.True(t, math.IsInf(float64(Real(0).Log()), -1))
	}
}

func TestTape(t *testing.T) {
	{ // Jacobian of a linear map
		tp := NewTape[Dual](3)
		tp.StartRecording()
		var (
			a = tp.RegisterInput(0, 1)
			b = tp.RegisterInput(1, 2)
			c = tp.RegisterInput(2, 3)
			k = tp.Passive(10)
		)
		tp.RegisterOutput(a.Add(b.Scale(2)))
		tp.RegisterOutput(c.Mul(k).Sub(a))
		tp.StopRecording()
		J := tp.Jacobian()
		r, cc := J.Dims()
		require.Equal(t, 2, r)
		require.Equal(t, 3, cc)
		assert.Equal(t, []float64{1, 2, 0}, J.RawRowView(0))
		assert.Equal(t, []float64{-1, 0, 10}, J.RawRowView(1))
		assert.Panics(t, func() { tp.Hessian(0) })
	}
	{ // Hessian of a quadratic form
		tp := NewTape[Dual2](2)
		tp.StartRecording()
		x := tp.RegisterInput(0, 2)
		y := tp.RegisterInput(1, 5)
		tp.RegisterOutput(x.Mul(x).Scale(3).Add(x.Mul(y)))
		tp.StopRecording()
		H := tp.Hessian(0)
		assert.Equal(t, 6., H.At(0, 0))
		assert.Equal(t, 1., H.At(0, 1))
		assert.Equal(t, 1., H.At(1, 0))
		assert.Equal(t, 0., H.At(1, 1))
	}
	{ // Lifecycle misuse panics
		tp := NewTape[Dual](1)
		assert.Panics(t, func() { tp.RegisterInput(0, 1) })
		assert.Panics(t, func() { tp.Jacobian() })
		tp.StartRecording()
		tp.RegisterInput(0, 1)
		assert.Panics(t, func() { tp.RegisterInput(0, 1) })
		tp.StopRecording()
		assert.Panics(t, func() { tp.StartRecording() })
		assert.Panics(t, func() { NewTape[Dual](0) })
	}
}

func TestLayout(t *testing.T) {
	{ // Face layout, both groups
		l := NewLayout(true, true, [2]int{4, 4}, [2]int{6, 6})
		assert.Equal(t, Range{0, 4}, l.W[0])
		assert.Equal(t, Range{4, 8}, l.W[1])
		assert.Equal(t, Range{8, 14}, l.X[0])
		assert.Equal(t, Range{14, 20}, l.X[1])
		assert.Equal(t, 20, l.N)
	}
	{ // Geometry only: solution groups keep their place with zero width
		l := NewLayout(false, true, [2]int{4, 4}, [2]int{6, 6})
		assert.Equal(t, 0, l.W[0].Len())
		assert.Equal(t, 0, l.W[1].Len())
		assert.Equal(t, Range{0, 6}, l.X[0])
		assert.Equal(t, Range{6, 12}, l.X[1])
	}
	{ // Single cell
		l := CellLayout(true, false, 3, 8)
		assert.Equal(t, Range{0, 3}, l.W[0])
		assert.Equal(t, 0, l.W[1].Len())
		assert.Equal(t, 0, l.X[0].Len())
		assert.Equal(t, 3, l.N)
	}
}
