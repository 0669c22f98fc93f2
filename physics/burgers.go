package physics

import (
	"math"

	"github.com/notargets/dgresidual/ad"
	"github.com/notargets/dgresidual/types"
)

// Burgers is the inviscid vector Burgers equation, F[s][d] = u_s u_d / 2.
type Burgers[T ad.Number[T]] struct {
	dim          int
	manufactured bool
	bcs          map[int]BoundaryCondition
}

func newBurgers[T ad.Number[T]](p Parameters) *Burgers[T] {
	return &Burgers[T]{dim: p.Dim, manufactured: p.ManufacturedSolution, bcs: p.BCs}
}

func (b *Burgers[T]) NState() int { return b.dim }
func (b *Burgers[T]) Dim() int    { return b.dim }

func (b *Burgers[T]) ConvectiveFlux(u []T) (F [][]T) {
	F = make([][]T, b.dim)
	for s := range F {
		F[s] = make([]T, b.dim)
		for d := range F[s] {
			F[s][d] = u[s].Mul(u[d]).Scale(0.5)
		}
	}
	return
}

func (b *Burgers[T]) MaxNormalEigenvalue(u []T, n []T) T {
	return ad.Dot(u, n).Abs()
}

func (b *Burgers[T]) DissipativeFlux(u []T, grad [][]T) [][]T {
	return zeroFlux[T](b.dim, b.dim)
}

func (b *Burgers[T]) ArtificialDissipativeFlux(eps T, u []T, grad [][]T) [][]T {
	return laplacianFlux(eps, grad)
}

// SourceTerm is div F of the manufactured solution u_m,s = sin(pi x_s) + 2.
func (b *Burgers[T]) SourceTerm(x []T, u []T) (S []T) {
	S = ad.Vector[T](b.dim)
	if !b.manufactured {
		return
	}
	um := b.manufacturedSolution(x)
	dum := make([]T, b.dim)
	for d := range dum {
		dum[d] = x[d].Scale(math.Pi).Cos().Scale(math.Pi)
	}
	// d/dx_d (u_s u_d / 2) = (du_s/dx_d u_d + u_s du_d/dx_d) / 2, and
	// du_s/dx_d vanishes for s != d.
	for s := 0; s < b.dim; s++ {
		for d := 0; d < b.dim; d++ {
			term := um[s].Mul(dum[d])
			if s == d {
				term = term.Scale(2)
			}
			S[s] = S[s].Add(term.Scale(0.5))
		}
	}
	return
}

func (b *Burgers[T]) manufacturedSolution(x []T) (um []T) {
	um = make([]T, b.dim)
	for s := range um {
		um[s] = x[s].Scale(math.Pi).Sin().Shift(2)
	}
	return
}

func (b *Burgers[T]) defaultValue(x []T) []T {
	if b.manufactured {
		return b.manufacturedSolution(x)
	}
	return ad.Vector[T](b.dim)
}

func (b *Burgers[T]) BoundaryFaceValues(id int, x, n, uInt []T,
	gradInt [][]T) (uExt []T, gradExt [][]T) {
	bc, ok := b.bcs[id]
	if !ok {
		bc = BoundaryCondition{Type: types.BC_Far}
	}
	gradExt = copyGrad(gradInt)
	switch bc.Type {
	case types.BC_Dirichlet:
		uExt = boundaryValue(bc, x, b.defaultValue)
	case types.BC_Far, types.BC_In:
		if ad.Dot(uInt, n).Value() < 0 {
			uExt = boundaryValue(bc, x, b.defaultValue)
		} else {
			uExt = append([]T{}, uInt...)
		}
	default:
		uExt = append([]T{}, uInt...)
	}
	return
}
