package basis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func near(a, b float64, tolI ...float64) bool {
	tol := 1.e-12
	if len(tolI) != 0 {
		tol = tolI[0]
	}
	return math.Abs(a-b) <= tol*math.Max(1, math.Abs(b))
}

func TestJacobi(t *testing.T) {
	{ // Gauss-Legendre is exact to degree 2N+1
		x, w := JacobiGQ(0, 0, 3)
		assert.Equal(t, 4, len(x))
		var s0, s6, s7 float64
		for i := range x {
			s0 += w[i]
			s6 += w[i] * math.Pow(x[i], 6)
			s7 += w[i] * math.Pow(x[i], 7)
		}
		assert.True(t, near(s0, 2))
		assert.True(t, near(s6, 2./7.))
		assert.True(t, near(s7, 0))
		assert.True(t, x[0] < x[1])
	}
	{ // Gauss-Lobatto nodes and weights
		x := JacobiGL(0, 0, 2)
		assert.True(t, near(x[0], -1))
		assert.True(t, near(x[1], 0))
		assert.True(t, near(x[2], 1))
		w := GaussLobattoWeights(x)
		assert.True(t, near(w[0], 1./3.))
		assert.True(t, near(w[1], 4./3.))
		x = JacobiGL(0, 0, 4)
		w = GaussLobattoWeights(x)
		var s4 float64
		for i := range x {
			s4 += w[i] * math.Pow(x[i], 4)
		}
		assert.True(t, near(s4, 2./5.))
	}
}

func TestLagrange(t *testing.T) {
	for _, fam := range []NodeFamily{GaussLobattoNodes, GaussLegendreNodes, EquidistantNodes} {
		lb := NewLagrange1D(3, fam)
		{ // Kronecker property
			for i := range lb.Nodes {
				for j, xj := range lb.Nodes {
					want := 0.
					if i == j {
						want = 1
					}
					assert.True(t, near(lb.Value(i, xj), want))
				}
			}
		}
		{ // Partition of unity and derivative of a reproduced cubic
			x := 0.37
			var s, ds, dc float64
			for i, xi := range lb.Nodes {
				s += lb.Value(i, x)
				ds += lb.Derivative(i, x)
				dc += xi * xi * xi * lb.Derivative(i, x)
			}
			assert.True(t, near(s, 1))
			assert.True(t, near(ds, 0))
			assert.True(t, near(dc, 3*x*x))
		}
	}
	{ // Degree zero
		lb := NewLagrange1D(0, GaussLobattoNodes)
		assert.Equal(t, []float64{0.5}, lb.Nodes)
		assert.Equal(t, 1., lb.Value(0, 0.1))
		assert.Equal(t, 0., lb.Derivative(0, 0.1))
	}
}

func TestFESystem(t *testing.T) {
	var (
		base = NewTensorLagrange(2, 2, GaussLobattoNodes)
		fe   = NewFESystem(base, 3)
	)
	assert.Equal(t, 9, base.NBase())
	assert.Equal(t, 27, fe.NDofs())
	assert.Equal(t, 2, fe.ComponentIndex(5))
	assert.Equal(t, 1, fe.BaseIndex(5))
	pts := base.SupportPoints()
	assert.Equal(t, []float64{0.5, 0}, pts[1])
	assert.Equal(t, []float64{0, 0.5}, pts[3])
	{ // Gradient of the reproduced field x*y^2
		p := []float64{0.3, 0.8}
		var gx, gy float64
		for i, sp := range pts {
			g := base.Grad(i, p)
			f := sp[0] * sp[1] * sp[1]
			gx += f * g[0]
			gy += f * g[1]
		}
		assert.True(t, near(gx, 0.64))
		assert.True(t, near(gy, 2*0.3*0.8))
	}
	{ // Tabulation matches pointwise evaluation
		q := NewGauss(2, 3)
		vals, grads := fe.Tabulate(q.Points)
		assert.Equal(t, fe.ShapeValue(7, q.Points[4]), vals[7][4])
		assert.Equal(t, fe.ShapeGrad(7, q.Points[4]), grads[7][4])
		assert.Equal(t, pts[fe.BaseIndex(7)], fe.UnitSupportPoints()[7])
	}
}

func TestQuadrature(t *testing.T) {
	{ // Volume rule measures the unit cell and integrates x^2 y
		q := NewGauss(2, 2)
		var s, m float64
		for i, p := range q.Points {
			s += q.Weights[i]
			m += q.Weights[i] * p[0] * p[0] * p[1]
		}
		assert.True(t, near(s, 1))
		assert.True(t, near(m, 1./6.))
		ql := NewGaussLobatto(3, 3)
		assert.Equal(t, 27, ql.Size())
	}
	{ // Zero dimensional rule for 1-D faces
		q := NewGauss(0, 4)
		assert.Equal(t, 1, q.Size())
		assert.Equal(t, 1., q.Weights[0])
		fq := ProjectToFace(q, 1, 1)
		assert.Equal(t, []float64{1}, fq.Points[0])
	}
	{ // Face and subface projections
		q := NewGauss(1, 1)
		fq := ProjectToFace(q, 2, 2)
		assert.Equal(t, []float64{0.5, 0}, fq.Points[0])
		sq := ProjectToSubface(q, 2, 1, 1)
		assert.Equal(t, []float64{1, 0.75}, sq.Points[0])
		assert.Equal(t, q.Weights, sq.Weights)
		q2 := NewGauss(2, 1)
		sq = ProjectToSubface(q2, 3, 4, 2)
		assert.Equal(t, []float64{0.25, 0.75, 0}, sq.Points[0])
		assert.Equal(t, []float64{0, 0, -1}, UnitNormal(3, 4))
		assert.Equal(t, []int{0, 2}, TangentialDirections(3, 3))
		assert.Equal(t, 4, NSubfaces(3))
		assert.Equal(t, 1, NSubfaces(1))
	}
}
