// Package numflux holds the interface fluxes: convective numerical fluxes
// F*(u_int, u_ext).n and the symmetric interior penalty treatment of the
// dissipative terms.
package numflux

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notargets/dgresidual/ad"
	"github.com/notargets/dgresidual/physics"
)

var ErrUnsupportedFlux = errors.New("unsupported numerical flux")

type FluxType uint8

const (
	FLUX_Central FluxType = iota
	FLUX_LaxFriedrichs
	FLUX_Roe
)

var (
	FluxNames = map[string]FluxType{
		"central":        FLUX_Central,
		"central_flux":   FLUX_Central,
		"average":        FLUX_Central,
		"lax_friedrichs": FLUX_LaxFriedrichs,
		"lax":            FLUX_LaxFriedrichs,
		"roe":            FLUX_Roe,
	}
	FluxPrintNames = []string{"Central", "Lax Friedrichs", "Roe"}
)

func (ft FluxType) Print() string { return FluxPrintNames[ft] }

func NewFluxType(label string) (ft FluxType, err error) {
	var (
		ok bool
	)
	if ft, ok = FluxNames[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("%w: convective %q", ErrUnsupportedFlux, label)
	}
	return
}

type DissipativeFluxType uint8

const (
	FLUX_SymmetricInteriorPenalty DissipativeFluxType = iota
	FLUX_BassiRebay2
)

var (
	DissipativeFluxNames = map[string]DissipativeFluxType{
		"symm_internal_penalty": FLUX_SymmetricInteriorPenalty,
		"sipg":                  FLUX_SymmetricInteriorPenalty,
		"bassi_rebay_2":         FLUX_BassiRebay2,
		"br2":                   FLUX_BassiRebay2,
	}
	DissipativeFluxPrintNames = []string{"Symmetric Interior Penalty", "Bassi Rebay 2"}
)

func (dt DissipativeFluxType) Print() string { return DissipativeFluxPrintNames[dt] }

func NewDissipativeFluxType(label string) (dt DissipativeFluxType, err error) {
	var (
		ok bool
	)
	if dt, ok = DissipativeFluxNames[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("%w: dissipative %q", ErrUnsupportedFlux, label)
	}
	return
}

// Convective returns the numerical flux dotted with the interior normal.
type Convective[T ad.Number[T]] interface {
	EvaluateFlux(uInt, uExt, n []T) []T
}

// Dissipative returns the interface solution u* used by the lifting term
// and the auxiliary flux dotted with the interior normal.
type Dissipative[T ad.Number[T]] interface {
	EvaluateSolutionFlux(uInt, uExt, n []T) []T
	EvaluateAuxiliaryFlux(epsInt, epsExt T, uInt, uExt []T, gradInt, gradExt [][]T,
		n []T, penalty T, onBoundary bool) []T
}

func NewConvective[T ad.Number[T]](ft FluxType, phys physics.Physics[T]) (cf Convective[T], err error) {
	switch ft {
	case FLUX_Central:
		cf = &CentralFlux[T]{phys: phys}
	case FLUX_LaxFriedrichs:
		cf = &LaxFriedrichs[T]{phys: phys}
	default:
		err = fmt.Errorf("%w: %s is not implemented", ErrUnsupportedFlux, ft.Print())
	}
	return
}

func NewDissipative[T ad.Number[T]](dt DissipativeFluxType, phys physics.Physics[T]) (df Dissipative[T], err error) {
	switch dt {
	case FLUX_SymmetricInteriorPenalty:
		df = &SymmetricInteriorPenalty[T]{phys: phys}
	default:
		err = fmt.Errorf("%w: %s is not implemented", ErrUnsupportedFlux, dt.Print())
	}
	return
}

type CentralFlux[T ad.Number[T]] struct {
	phys physics.Physics[T]
}

func (cf *CentralFlux[T]) EvaluateFlux(uInt, uExt, n []T) (fn []T) {
	var (
		FL = cf.phys.ConvectiveFlux(uInt)
		FR = cf.phys.ConvectiveFlux(uExt)
	)
	fn = make([]T, len(uInt))
	for s := range fn {
		fn[s] = ad.Dot(FL[s], n).Add(ad.Dot(FR[s], n)).Scale(0.5)
	}
	return
}

// LaxFriedrichs adds the dissipation lambda_max (u_int - u_ext) / 2 to the
// central flux.
type LaxFriedrichs[T ad.Number[T]] struct {
	phys physics.Physics[T]
}

func (lf *LaxFriedrichs[T]) EvaluateFlux(uInt, uExt, n []T) (fn []T) {
	var (
		FL   = lf.phys.ConvectiveFlux(uInt)
		FR   = lf.phys.ConvectiveFlux(uExt)
		maxV = ad.Max(lf.phys.MaxNormalEigenvalue(uInt, n), lf.phys.MaxNormalEigenvalue(uExt, n))
	)
	fn = make([]T, len(uInt))
	for s := range fn {
		fn[s] = ad.Dot(FL[s], n).Add(ad.Dot(FR[s], n)).Scale(0.5)
		fn[s] = fn[s].Add(maxV.Mul(uInt[s].Sub(uExt[s])).Scale(0.5))
	}
	return
}

// SymmetricInteriorPenalty is the SIPG treatment:
//
//	u*   = {u}
//	aux  = {F_diss(u, grad u)}.n - penalty F_diss({u}, [u] (x) n).n
//
// On boundaries the ghost state stands in for the average.
type SymmetricInteriorPenalty[T ad.Number[T]] struct {
	phys physics.Physics[T]
}

func (ip *SymmetricInteriorPenalty[T]) EvaluateSolutionFlux(uInt, uExt, n []T) (us []T) {
	us = make([]T, len(uInt))
	for s := range us {
		us[s] = uInt[s].Add(uExt[s]).Scale(0.5)
	}
	return
}

func (ip *SymmetricInteriorPenalty[T]) dissipativeFlux(eps T, u []T, grad [][]T) (F [][]T) {
	F = ip.phys.DissipativeFlux(u, grad)
	if eps.Value() != 0 {
		A := ip.phys.ArtificialDissipativeFlux(eps, u, grad)
		for s := range F {
			for d := range F[s] {
				F[s][d] = F[s][d].Add(A[s][d])
			}
		}
	}
	return
}

func (ip *SymmetricInteriorPenalty[T]) EvaluateAuxiliaryFlux(epsInt, epsExt T, uInt, uExt []T,
	gradInt, gradExt [][]T, n []T, penalty T, onBoundary bool) (aux []T) {
	var (
		nState = len(uInt)
		dim    = len(n)
		Favg   [][]T
		uAvg   = ip.EvaluateSolutionFlux(uInt, uExt, n)
		epsAvg = epsInt.Add(epsExt).Scale(0.5)
		jump   = ad.Matrix[T](nState, dim)
	)
	if onBoundary {
		Favg = ip.dissipativeFlux(epsExt, uExt, gradExt)
	} else {
		FL := ip.dissipativeFlux(epsInt, uInt, gradInt)
		FR := ip.dissipativeFlux(epsExt, uExt, gradExt)
		Favg = ad.Matrix[T](nState, dim)
		for s := range Favg {
			for d := range Favg[s] {
				Favg[s][d] = FL[s][d].Add(FR[s][d]).Scale(0.5)
			}
		}
	}
	for s := 0; s < nState; s++ {
		for d := 0; d < dim; d++ {
			jump[s][d] = uInt[s].Sub(uExt[s]).Mul(n[d])
		}
	}
	Fpen := ip.dissipativeFlux(epsAvg, uAvg, jump)
	aux = make([]T, nState)
	for s := range aux {
		aux[s] = ad.Dot(Favg[s], n).Sub(penalty.Mul(ad.Dot(Fpen[s], n)))
	}
	return
}
