package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/dgresidual/ad"
	"github.com/notargets/dgresidual/types"
)

func TestNewPDEType(t *testing.T) {
	pt, err := NewPDEType(" Convection_Diffusion ")
	require.NoError(t, err)
	assert.Equal(t, PDE_ConvectionDiffusion, pt)
	assert.Equal(t, "Convection Diffusion", pt.Print())
	_, err = NewPDEType("mhd")
	assert.True(t, errors.Is(err, ErrUnsupportedPDE))
	assert.Equal(t, 5, PDE_Euler.NState(3))
	assert.Equal(t, 2, PDE_BurgersInviscid.NState(2))
	assert.Equal(t, 2, PDE_AdvectionVector.NState(3))
	assert.Equal(t, 1, PDE_Diffusion.NState(3))
}

func TestValidate(t *testing.T) {
	_, err := New[ad.Real](Parameters{PDE: PDE_Advection, Dim: 2, AdvectionSpeed: []float64{1}})
	assert.True(t, errors.Is(err, ErrUnsupportedPDE))
	_, err = New[ad.Real](Parameters{PDE: PDE_Diffusion, Dim: 2})
	assert.Error(t, err)
	_, err = New[ad.Real](Parameters{PDE: PDE_Euler, Dim: 2, Gamma: 1.4,
		FreeStream: []float64{1, 0, 0, 1}, BCs: map[int]BoundaryCondition{0: {Type: types.BC_Neuman}}})
	assert.Error(t, err)
	_, err = New[ad.Real](Parameters{PDE: PDE_Euler, Dim: 2, Gamma: 1.4, FreeStream: []float64{1, 0, 1}})
	assert.Error(t, err)
	_, err = New[ad.Real](Parameters{PDE: PDE_Euler, Dim: 4})
	assert.Error(t, err)
}

func TestConvectionDiffusion(t *testing.T) {
	phys, err := New[ad.Real](Parameters{PDE: PDE_ConvectionDiffusion, Dim: 2,
		AdvectionSpeed: []float64{1.1, -0.3}, DiffusionCoefficient: 0.5, ManufacturedSolution: true})
	require.NoError(t, err)
	u := []ad.Real{2}
	F := phys.ConvectiveFlux(u)
	assert.Equal(t, [][]ad.Real{{2.2, -0.6}}, F)
	Fd := phys.DissipativeFlux(u, [][]ad.Real{{1, -2}})
	assert.Equal(t, [][]ad.Real{{-0.5, 1}}, Fd)
	n := []ad.Real{0, 1}
	assert.InDelta(t, 0.3, float64(phys.MaxNormalEigenvalue(u, n)), 1.e-15)
	{ // Source balances the manufactured solution: compare with finite differences
		var (
			x  = []float64{0.3, 0.7}
			h  = 1.e-4
			um = func(x []float64) float64 { return math.Sin(math.Pi*x[0]) * math.Sin(math.Pi*x[1]) }
		)
		var div, lap float64
		a := []float64{1.1, -0.3}
		for d := 0; d < 2; d++ {
			xp, xm := append([]float64{}, x...), append([]float64{}, x...)
			xp[d] += h
			xm[d] -= h
			div += a[d] * (um(xp) - um(xm)) / (2 * h)
			lap += (um(xp) - 2*um(x) + um(xm)) / (h * h)
		}
		S := phys.SourceTerm(ad.Consts[ad.Real](x), u)
		assert.InDelta(t, div-0.5*lap, float64(S[0]), 1.e-5)
	}
	{ // Dirichlet by default, imposing the manufactured value
		x := ad.Consts[ad.Real]([]float64{0.5, 0.5})
		uExt, gExt := phys.BoundaryFaceValues(3, x, n, u, [][]ad.Real{{1, 2}})
		assert.InDelta(t, 1, float64(uExt[0]), 1.e-15)
		assert.Equal(t, [][]ad.Real{{1, 2}}, gExt)
	}
}

func TestAdvectionBoundary(t *testing.T) {
	phys, err := New[ad.Real](Parameters{PDE: PDE_Advection, Dim: 1, AdvectionSpeed: []float64{1},
		BCs: map[int]BoundaryCondition{
			0: {Type: types.BC_In, Value: func(x []float64) []float64 { return []float64{3} }},
			1: {Type: types.BC_Out},
		}})
	require.NoError(t, err)
	x := []ad.Real{0}
	g := [][]ad.Real{{0}}
	uExt, _ := phys.BoundaryFaceValues(0, x, []ad.Real{-1}, []ad.Real{1}, g)
	assert.Equal(t, []ad.Real{3}, uExt)
	// Outflow through an inflow-typed boundary keeps the interior value
	uExt, _ = phys.BoundaryFaceValues(0, x, []ad.Real{1}, []ad.Real{1}, g)
	assert.Equal(t, []ad.Real{1}, uExt)
	uExt, _ = phys.BoundaryFaceValues(1, x, []ad.Real{1}, []ad.Real{5}, g)
	assert.Equal(t, []ad.Real{5}, uExt)
}

func TestNeumann(t *testing.T) {
	phys, err := New[ad.Real](Parameters{PDE: PDE_Diffusion, Dim: 2, DiffusionCoefficient: 1,
		BCs: map[int]BoundaryCondition{
			1: {Type: types.BC_Neuman, Value: func(x []float64) []float64 { return []float64{2} }},
		}})
	require.NoError(t, err)
	n := []ad.Real{1, 0}
	uExt, gExt := phys.BoundaryFaceValues(1, []ad.Real{1, 0.5}, n, []ad.Real{4}, [][]ad.Real{{0.5, 3}})
	assert.Equal(t, []ad.Real{4}, uExt)
	assert.Equal(t, [][]ad.Real{{2, 3}}, gExt)
}

func TestBurgers(t *testing.T) {
	phys, err := New[ad.Real](Parameters{PDE: PDE_BurgersInviscid, Dim: 2, ManufacturedSolution: true})
	require.NoError(t, err)
	u := []ad.Real{2, 3}
	assert.Equal(t, [][]ad.Real{{2, 3}, {3, 4.5}}, phys.ConvectiveFlux(u))
	assert.Equal(t, ad.Real(3), phys.MaxNormalEigenvalue(u, []ad.Real{0, -1}))
	{ // Source is the divergence of the flux of the manufactured solution
		var (
			x  = []float64{0.2, 0.9}
			h  = 1.e-5
			um = func(x []float64) []ad.Real {
				return []ad.Real{ad.Real(math.Sin(math.Pi*x[0]) + 2), ad.Real(math.Sin(math.Pi*x[1]) + 2)}
			}
			div = make([]float64, 2)
		)
		for d := 0; d < 2; d++ {
			xp, xm := append([]float64{}, x...), append([]float64{}, x...)
			xp[d] += h
			xm[d] -= h
			Fp, Fm := phys.ConvectiveFlux(um(xp)), phys.ConvectiveFlux(um(xm))
			for s := 0; s < 2; s++ {
				div[s] += float64(Fp[s][d]-Fm[s][d]) / (2 * h)
			}
		}
		S := phys.SourceTerm(ad.Consts[ad.Real](x), u)
		for s := 0; s < 2; s++ {
			assert.InDelta(t, div[s], float64(S[s]), 1.e-7)
		}
	}
}

func TestEuler(t *testing.T) {
	phys, err := New[ad.Real](Parameters{PDE: PDE_Euler, Dim: 2, Gamma: 1.4,
		FreeStream: []float64{1, 0.5, 0, 1}, BCs: map[int]BoundaryCondition{2: {Type: types.BC_Wall}}})
	require.NoError(t, err)
	eu := phys.(*Euler[ad.Real])
	assert.InDelta(t, 1/0.4+0.125, eu.Qinf[3], 1.e-14)
	assert.InDelta(t, math.Sqrt(1.4), eu.Cinf, 1.e-14)
	q := ad.Consts[ad.Real](eu.Qinf)
	F := phys.ConvectiveFlux(q)
	assert.InDelta(t, 0.5, float64(F[0][0]), 1.e-14)
	assert.InDelta(t, 0.25+1, float64(F[1][0]), 1.e-14)
	assert.InDelta(t, 1, float64(F[2][1]), 1.e-14)
	assert.InDelta(t, 0.5*(eu.Qinf[3]+1), float64(F[3][0]), 1.e-14)
	assert.InDelta(t, 0.5+math.Sqrt(1.4), float64(phys.MaxNormalEigenvalue(q, []ad.Real{1, 0})), 1.e-14)
	g := ad.Matrix[ad.Real](4, 2)
	{ // Wall mirrors the normal momentum
		qw := []ad.Real{1, 0.3, 0.2, 2.5}
		qExt, _ := phys.BoundaryFaceValues(2, nil, []ad.Real{0, -1}, qw, g)
		assert.Equal(t, []ad.Real{1, 0.3, -0.2, 2.5}, qExt)
	}
	{ // Far field returns the free stream when the interior matches it
		qExt, _ := phys.BoundaryFaceValues(1, nil, []ad.Real{1, 0}, q, g)
		for i := range q {
			assert.InDelta(t, float64(q[i]), float64(qExt[i]), 1.e-12)
		}
		qExt, _ = phys.BoundaryFaceValues(0, nil, []ad.Real{-1, 0}, q, g)
		for i := range q {
			assert.InDelta(t, float64(q[i]), float64(qExt[i]), 1.e-12)
		}
	}
}
