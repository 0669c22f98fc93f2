package numflux

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/dgresidual/ad"
	"github.com/notargets/dgresidual/physics"
)

func advection(t *testing.T, kappa float64) physics.Physics[ad.Real] {
	pde := physics.PDE_Advection
	if kappa > 0 {
		pde = physics.PDE_ConvectionDiffusion
	}
	phys, err := physics.New[ad.Real](physics.Parameters{PDE: pde, Dim: 1,
		AdvectionSpeed: []float64{1}, DiffusionCoefficient: kappa})
	require.NoError(t, err)
	return phys
}

func TestFluxNames(t *testing.T) {
	ft, err := NewFluxType("Lax_Friedrichs")
	require.NoError(t, err)
	assert.Equal(t, FLUX_LaxFriedrichs, ft)
	_, err = NewFluxType("hllc")
	assert.True(t, errors.Is(err, ErrUnsupportedFlux))
	dt, err := NewDissipativeFluxType("SIPG")
	require.NoError(t, err)
	assert.Equal(t, FLUX_SymmetricInteriorPenalty, dt)
	phys := advection(t, 0)
	_, err = NewConvective[ad.Real](FLUX_Roe, phys)
	assert.True(t, errors.Is(err, ErrUnsupportedFlux))
	_, err = NewDissipative[ad.Real](FLUX_BassiRebay2, phys)
	assert.True(t, errors.Is(err, ErrUnsupportedFlux))
}

func TestConvective(t *testing.T) {
	var (
		phys = advection(t, 0)
		n    = []ad.Real{1}
	)
	central, err := NewConvective[ad.Real](FLUX_Central, phys)
	require.NoError(t, err)
	lf, err := NewConvective[ad.Real](FLUX_LaxFriedrichs, phys)
	require.NoError(t, err)
	assert.Equal(t, []ad.Real{1.5}, central.EvaluateFlux([]ad.Real{1}, []ad.Real{2}, n))
	// Unit speed: Lax-Friedrichs is the upwind flux
	assert.Equal(t, []ad.Real{1}, lf.EvaluateFlux([]ad.Real{1}, []ad.Real{2}, n))
	assert.Equal(t, []ad.Real{-2}, lf.EvaluateFlux([]ad.Real{1}, []ad.Real{2}, []ad.Real{-1}))
	{ // Consistency and conservation
		f := lf.EvaluateFlux([]ad.Real{3}, []ad.Real{3}, n)
		assert.Equal(t, []ad.Real{3}, f)
		fa := lf.EvaluateFlux([]ad.Real{1}, []ad.Real{2}, n)
		fb := lf.EvaluateFlux([]ad.Real{2}, []ad.Real{1}, []ad.Real{-1})
		assert.Equal(t, fa[0], -fb[0])
	}
}

func TestSymmetricInteriorPenalty(t *testing.T) {
	var (
		phys = advection(t, 2)
		n    = []ad.Real{1}
		zero = ad.Real(0)
	)
	ip, err := NewDissipative[ad.Real](FLUX_SymmetricInteriorPenalty, phys)
	require.NoError(t, err)
	assert.Equal(t, []ad.Real{1.5}, ip.EvaluateSolutionFlux([]ad.Real{1}, []ad.Real{2}, n))
	// {-k du/dx}.n - tau (-k [u] n).n = -2*(0.5+1.5)/2 + 4*2*(1-2)
	aux := ip.EvaluateAuxiliaryFlux(zero, zero, []ad.Real{1}, []ad.Real{2},
		[][]ad.Real{{0.5}}, [][]ad.Real{{1.5}}, n, 4, false)
	assert.InDelta(t, -2-8, float64(aux[0]), 1.e-14)
	// Boundary: ghost gradient carries the flux
	aux = ip.EvaluateAuxiliaryFlux(zero, zero, []ad.Real{1}, []ad.Real{1},
		[][]ad.Real{{0.5}}, [][]ad.Real{{1.5}}, n, 4, true)
	assert.InDelta(t, -3, float64(aux[0]), 1.e-14)
	// Artificial dissipation adds to the physical coefficient
	aux = ip.EvaluateAuxiliaryFlux(1, 1, []ad.Real{1}, []ad.Real{1},
		[][]ad.Real{{1}}, [][]ad.Real{{1}}, n, 4, false)
	assert.InDelta(t, -3, float64(aux[0]), 1.e-14)
	{ // Swapping sides flips the sign
		a := ip.EvaluateAuxiliaryFlux(zero, zero, []ad.Real{1}, []ad.Real{2},
			[][]ad.Real{{0.5}}, [][]ad.Real{{1.5}}, n, 4, false)
		b := ip.EvaluateAuxiliaryFlux(zero, zero, []ad.Real{2}, []ad.Real{1},
			[][]ad.Real{{1.5}}, [][]ad.Real{{0.5}}, []ad.Real{-1}, 4, false)
		assert.InDelta(t, float64(a[0]), -float64(b[0]), 1.e-14)
	}
}
