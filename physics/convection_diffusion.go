package physics

import (
	"math"

	"github.com/notargets/dgresidual/ad"
	"github.com/notargets/dgresidual/types"
)

// ConvectionDiffusion covers linear advection (scalar or two-component),
// pure diffusion and their combination:
//
//	F_conv = a u,  F_diss = -kappa grad u
type ConvectionDiffusion[T ad.Number[T]] struct {
	dim, nState  int
	a            []float64
	kappa        float64
	manufactured bool
	bcs          map[int]BoundaryCondition
}

func newConvectionDiffusion[T ad.Number[T]](p Parameters) *ConvectionDiffusion[T] {
	cd := &ConvectionDiffusion[T]{
		dim:          p.Dim,
		nState:       p.PDE.NState(p.Dim),
		a:            make([]float64, p.Dim),
		manufactured: p.ManufacturedSolution,
		bcs:          p.BCs,
	}
	if p.PDE != PDE_Diffusion {
		copy(cd.a, p.AdvectionSpeed)
	}
	if p.PDE == PDE_Diffusion || p.PDE == PDE_ConvectionDiffusion {
		cd.kappa = p.DiffusionCoefficient
	}
	return cd
}

func (cd *ConvectionDiffusion[T]) NState() int { return cd.nState }
func (cd *ConvectionDiffusion[T]) Dim() int    { return cd.dim }

func (cd *ConvectionDiffusion[T]) ConvectiveFlux(u []T) (F [][]T) {
	F = make([][]T, cd.nState)
	for s := range F {
		F[s] = make([]T, cd.dim)
		for d := range F[s] {
			F[s][d] = u[s].Scale(cd.a[d])
		}
	}
	return
}

func (cd *ConvectionDiffusion[T]) MaxNormalEigenvalue(u []T, n []T) T {
	return ad.DotF(n, cd.a).Abs()
}

func (cd *ConvectionDiffusion[T]) DissipativeFlux(u []T, grad [][]T) (F [][]T) {
	if cd.kappa == 0 {
		return zeroFlux[T](cd.nState, cd.dim)
	}
	F = make([][]T, cd.nState)
	for s := range F {
		F[s] = make([]T, cd.dim)
		for d := range F[s] {
			F[s][d] = grad[s][d].Scale(-cd.kappa)
		}
	}
	return
}

func (cd *ConvectionDiffusion[T]) ArtificialDissipativeFlux(eps T, u []T, grad [][]T) [][]T {
	return laplacianFlux(eps, grad)
}

// SourceTerm is a.grad(u_m) - kappa lap(u_m) for the manufactured
// solution, zero otherwise.
func (cd *ConvectionDiffusion[T]) SourceTerm(x []T, u []T) (S []T) {
	S = ad.Vector[T](cd.nState)
	if !cd.manufactured {
		return
	}
	for s := range S {
		um, grad := cd.manufacturedSolution(s, x)
		lap := um.Scale(-float64(cd.dim) * math.Pi * math.Pi)
		S[s] = ad.DotF(grad, cd.a).Sub(lap.Scale(cd.kappa))
	}
	return
}

// manufacturedSolution is u_m = (s+1) prod_d sin(pi x_d) and its gradient.
func (cd *ConvectionDiffusion[T]) manufacturedSolution(s int, x []T) (um T, grad []T) {
	var (
		sins = make([]T, cd.dim)
		coss = make([]T, cd.dim)
	)
	for d := 0; d < cd.dim; d++ {
		sins[d] = x[d].Scale(math.Pi).Sin()
		coss[d] = x[d].Scale(math.Pi).Cos()
	}
	um = ad.Zero[T]().Shift(float64(s + 1))
	for d := 0; d < cd.dim; d++ {
		um = um.Mul(sins[d])
	}
	grad = make([]T, cd.dim)
	for d := 0; d < cd.dim; d++ {
		grad[d] = coss[d].Scale(math.Pi * float64(s+1))
		for e := 0; e < cd.dim; e++ {
			if e != d {
				grad[d] = grad[d].Mul(sins[e])
			}
		}
	}
	return
}

func (cd *ConvectionDiffusion[T]) defaultValue(x []T) (u []T) {
	u = ad.Vector[T](cd.nState)
	if cd.manufactured {
		for s := range u {
			u[s], _ = cd.manufacturedSolution(s, x)
		}
	}
	return
}

func (cd *ConvectionDiffusion[T]) bc(id int) (bc BoundaryCondition) {
	var ok bool
	if bc, ok = cd.bcs[id]; !ok {
		bc = BoundaryCondition{Type: types.BC_Dirichlet}
		if cd.kappa == 0 {
			bc.Type = types.BC_Far
		}
	}
	return
}

func (cd *ConvectionDiffusion[T]) BoundaryFaceValues(id int, x, n, uInt []T,
	gradInt [][]T) (uExt []T, gradExt [][]T) {
	var (
		bc = cd.bc(id)
	)
	gradExt = copyGrad(gradInt)
	switch bc.Type {
	case types.BC_Dirichlet:
		uExt = boundaryValue(bc, x, cd.defaultValue)
	case types.BC_Far, types.BC_In:
		// Characteristic: impose the value on inflow only, unless the
		// diffusion needs it everywhere.
		if ad.DotF(n, cd.a).Value() < 0 || cd.kappa > 0 {
			uExt = boundaryValue(bc, x, cd.defaultValue)
		} else {
			uExt = append([]T{}, uInt...)
		}
	case types.BC_Neuman:
		// Exterior gradient is corrected so that n . grad u matches g.
		uExt = append([]T{}, uInt...)
		g := boundaryValue(bc, x, func(x []T) []T { return ad.Vector[T](cd.nState) })
		for s := range gradExt {
			dn := ad.Dot(gradInt[s], n)
			for d := range gradExt[s] {
				gradExt[s][d] = gradInt[s][d].Add(g[s].Sub(dn).Mul(n[d]))
			}
		}
	default:
		uExt = append([]T{}, uInt...)
	}
	return
}
