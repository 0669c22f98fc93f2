// Package physics holds the conservation-law closures consumed by the
// residual kernels. Every model is generic over the number representation
// so one instance per representation is built from the same Parameters.
package physics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notargets/dgresidual/ad"
	"github.com/notargets/dgresidual/types"
)

var ErrUnsupportedPDE = errors.New("unsupported pde")

type PDEType uint8

const (
	PDE_Advection PDEType = iota
	PDE_AdvectionVector
	PDE_Diffusion
	PDE_ConvectionDiffusion
	PDE_BurgersInviscid
	PDE_Euler
)

var (
	PDENames = map[string]PDEType{
		"advection":            PDE_Advection,
		"advection_vector":     PDE_AdvectionVector,
		"diffusion":            PDE_Diffusion,
		"convection_diffusion": PDE_ConvectionDiffusion,
		"burgers_inviscid":     PDE_BurgersInviscid,
		"euler":                PDE_Euler,
	}
	PDEPrintNames = []string{"Advection", "Vector Advection", "Diffusion",
		"Convection Diffusion", "Inviscid Burgers", "Euler"}
)

func (pt PDEType) Print() string { return PDEPrintNames[pt] }

func NewPDEType(label string) (pt PDEType, err error) {
	var (
		ok bool
	)
	label = strings.ToLower(strings.TrimSpace(label))
	if pt, ok = PDENames[label]; !ok {
		err = fmt.Errorf("%w: %q", ErrUnsupportedPDE, label)
	}
	return
}

// NState is the number of conserved variables of the PDE in dim dimensions.
func (pt PDEType) NState(dim int) int {
	switch pt {
	case PDE_AdvectionVector:
		return 2
	case PDE_BurgersInviscid:
		return dim
	case PDE_Euler:
		return dim + 2
	}
	return 1
}

// Physics is the closure of one conservation law. Flux arrays are indexed
// [state][direction].
type Physics[T ad.Number[T]] interface {
	NState() int
	Dim() int
	ConvectiveFlux(u []T) [][]T
	// MaxNormalEigenvalue is the largest |eigenvalue| of dF/du . n.
	MaxNormalEigenvalue(u []T, n []T) T
	DissipativeFlux(u []T, grad [][]T) [][]T
	ArtificialDissipativeFlux(eps T, u []T, grad [][]T) [][]T
	SourceTerm(x []T, u []T) []T
	BoundaryFaceValues(id int, x, n, uInt []T, gradInt [][]T) (uExt []T, gradExt [][]T)
}

// BoundaryCondition is attached to a boundary id. Value returns the
// imposed state at a physical point; nil means the model's default.
type BoundaryCondition struct {
	Type  types.BCFLAG
	Value func(x []float64) []float64
}

type Parameters struct {
	PDE                  PDEType
	Dim                  int
	AdvectionSpeed       []float64
	DiffusionCoefficient float64
	Gamma                float64
	// FreeStream is the primitive state (density, velocity..., pressure)
	// imposed by Euler far-field boundaries.
	FreeStream           []float64
	ManufacturedSolution bool
	BCs                  map[int]BoundaryCondition
}

func (p Parameters) validate() (err error) {
	if p.Dim < 1 || p.Dim > 3 {
		return fmt.Errorf("%w: dimension %d", ErrUnsupportedPDE, p.Dim)
	}
	allowed := map[types.BCFLAG]bool{}
	switch p.PDE {
	case PDE_Advection, PDE_AdvectionVector, PDE_ConvectionDiffusion:
		if len(p.AdvectionSpeed) != p.Dim {
			return fmt.Errorf("%w: advection speed needs %d components, got %d",
				ErrUnsupportedPDE, p.Dim, len(p.AdvectionSpeed))
		}
		if p.PDE == PDE_ConvectionDiffusion && p.DiffusionCoefficient <= 0 {
			return fmt.Errorf("%w: diffusion coefficient must be positive", ErrUnsupportedPDE)
		}
		allowed = map[types.BCFLAG]bool{types.BC_Dirichlet: true, types.BC_Far: true,
			types.BC_In: true, types.BC_Out: true, types.BC_Neuman: true}
	case PDE_Diffusion:
		if p.DiffusionCoefficient <= 0 {
			return fmt.Errorf("%w: diffusion coefficient must be positive", ErrUnsupportedPDE)
		}
		allowed = map[types.BCFLAG]bool{types.BC_Dirichlet: true, types.BC_Neuman: true,
			types.BC_Out: true}
	case PDE_BurgersInviscid:
		allowed = map[types.BCFLAG]bool{types.BC_Dirichlet: true, types.BC_Far: true,
			types.BC_In: true, types.BC_Out: true}
	case PDE_Euler:
		if p.Gamma <= 1 {
			return fmt.Errorf("%w: gamma must exceed 1, got %g", ErrUnsupportedPDE, p.Gamma)
		}
		if len(p.FreeStream) != p.Dim+2 {
			return fmt.Errorf("%w: free stream needs %d primitive values, got %d",
				ErrUnsupportedPDE, p.Dim+2, len(p.FreeStream))
		}
		if p.ManufacturedSolution {
			return fmt.Errorf("%w: no manufactured solution for euler", ErrUnsupportedPDE)
		}
		allowed = map[types.BCFLAG]bool{types.BC_Wall: true, types.BC_Slip: true,
			types.BC_Far: true, types.BC_In: true, types.BC_Dirichlet: true, types.BC_Out: true}
	default:
		return fmt.Errorf("%w: type %d", ErrUnsupportedPDE, p.PDE)
	}
	for id, bc := range p.BCs {
		if !allowed[bc.Type] {
			return fmt.Errorf("%w: boundary %d: %s is not available for %s",
				ErrUnsupportedPDE, id, bc.Type, p.PDE.Print())
		}
	}
	return
}

// New builds the closure of p.PDE for the representation T.
func New[T ad.Number[T]](p Parameters) (phys Physics[T], err error) {
	if err = p.validate(); err != nil {
		return
	}
	switch p.PDE {
	case PDE_Advection, PDE_AdvectionVector, PDE_Diffusion, PDE_ConvectionDiffusion:
		phys = newConvectionDiffusion[T](p)
	case PDE_BurgersInviscid:
		phys = newBurgers[T](p)
	case PDE_Euler:
		phys = newEuler[T](p)
	}
	return
}

// laplacianFlux is -eps grad u, the artificial dissipation shared by all
// models.
func laplacianFlux[T ad.Number[T]](eps T, grad [][]T) (F [][]T) {
	F = make([][]T, len(grad))
	for s := range grad {
		F[s] = make([]T, len(grad[s]))
		for d := range grad[s] {
			F[s][d] = eps.Mul(grad[s][d]).Neg()
		}
	}
	return
}

func zeroFlux[T ad.Number[T]](nState, dim int) [][]T {
	return ad.Matrix[T](nState, dim)
}

// boundaryValue evaluates the imposed state of bc at x, falling back on
// def when bc carries no value.
func boundaryValue[T ad.Number[T]](bc BoundaryCondition, x []T, def func(x []T) []T) []T {
	if bc.Value == nil {
		return def(x)
	}
	return ad.Consts[T](bc.Value(ad.Values(x)))
}

func copyGrad[T ad.Number[T]](g [][]T) (c [][]T) {
	c = make([][]T, len(g))
	for i := range g {
		c[i] = append([]T{}, g[i]...)
	}
	return
}
