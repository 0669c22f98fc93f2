// Package metric evaluates the reference-to-physical mapping of a cell
// described by geometry nodes: the Jacobian, its determinant and inverse
// transpose, and the covariant metric terms that satisfy the discrete
// metric identity on curved cells. Matrices are indexed [phys][ref].
package metric

import (
	"github.com/notargets/dgresidual/ad"
	"github.com/notargets/dgresidual/basis"
)

// Mapping interpolates the physical coordinates x[q][c] and the mapping
// gradient J[q][c][r] = dx_c/dxi_r at the reference points.
func Mapping[T ad.Number[T]](fe *basis.FESystem, points [][]float64,
	coeffs []T) (x [][]T, J [][][]T) {
	var (
		dim     = fe.Dim()
		vals, g = fe.Tabulate(points)
	)
	x = ad.Matrix[T](len(points), dim)
	J = make([][][]T, len(points))
	for q := range points {
		J[q] = ad.Matrix[T](dim, dim)
		for idof, c := range coeffs {
			ic := fe.ComponentIndex(idof)
			x[q][ic] = x[q][ic].Add(c.Scale(vals[idof][q]))
			for r := 0; r < dim; r++ {
				J[q][ic][r] = J[q][ic][r].Add(c.Scale(g[idof][q][r]))
			}
		}
	}
	return
}

func Determinant[T ad.Number[T]](J [][]T) (det T) {
	switch len(J) {
	case 1:
		det = J[0][0]
	case 2:
		det = J[0][0].Mul(J[1][1]).Sub(J[0][1].Mul(J[1][0]))
	case 3:
		cof := Cofactor(J)
		det = J[0][0].Mul(cof[0][0]).Add(J[0][1].Mul(cof[0][1])).Add(J[0][2].Mul(cof[0][2]))
	}
	return
}

// Cofactor returns the cofactor matrix, equal to det(J) J^-T.
func Cofactor[T ad.Number[T]](J [][]T) (cof [][]T) {
	var (
		dim = len(J)
	)
	cof = ad.Matrix[T](dim, dim)
	switch dim {
	case 1:
		cof[0][0] = J[0][0].Const(1)
	case 2:
		cof[0][0] = J[1][1]
		cof[0][1] = J[1][0].Neg()
		cof[1][0] = J[0][1].Neg()
		cof[1][1] = J[0][0]
	case 3:
		for i := 0; i < 3; i++ {
			i1, i2 := (i+1)%3, (i+2)%3
			for j := 0; j < 3; j++ {
				j1, j2 := (j+1)%3, (j+2)%3
				cof[i][j] = J[i1][j1].Mul(J[i2][j2]).Sub(J[i1][j2].Mul(J[i2][j1]))
			}
		}
	}
	return
}

// InverseTranspose returns J^-T given det(J).
func InverseTranspose[T ad.Number[T]](J [][]T, det T) (invT [][]T) {
	invT = Cofactor(J)
	for i := range invT {
		for j := range invT[i] {
			invT[i][j] = invT[i][j].Div(det)
		}
	}
	return
}

// Jacobian differentiates the polynomial mapping directly.
func Jacobian[T ad.Number[T]](fe *basis.FESystem, points [][]float64,
	coeffs []T) (J [][][]T, det []T, invT [][][]T) {
	_, J = Mapping(fe, points, coeffs)
	det = make([]T, len(points))
	invT = make([][][]T, len(points))
	for q := range points {
		det[q] = Determinant(J[q])
		invT[q] = InverseTranspose(J[q], det[q])
	}
	return
}

// CovariantMetrics returns J^-T built from metric terms that satisfy the
// discrete metric identity, and the determinant of the mapping. In 3-D the
// metric terms are the curl of the nodal products
// V^n = (X_{n+1} grad X_{n+2} - X_{n+2} grad X_{n+1}) / 2 collected at the
// geometry support points and differentiated with the geometry basis. In
// 1-D and 2-D the cofactors of the mapping gradient are already exact.
func CovariantMetrics[T ad.Number[T]](fe *basis.FESystem, points [][]float64,
	coeffs []T) (invT [][][]T, det []T) {
	var (
		dim  = fe.Dim()
		J    [][][]T
		cofs [][][]T
	)
	_, J = Mapping(fe, points, coeffs)
	det = make([]T, len(points))
	for q := range points {
		det[q] = Determinant(J[q])
	}
	if dim < 3 {
		cofs = make([][][]T, len(points))
		for q := range points {
			cofs[q] = Cofactor(J[q])
		}
	} else {
		cofs = curlMetricTerms(fe, points, coeffs)
	}
	invT = make([][][]T, len(points))
	for q := range points {
		invT[q] = ad.Matrix[T](dim, dim)
		for n := 0; n < dim; n++ {
			for i := 0; i < dim; i++ {
				invT[q][n][i] = cofs[q][n][i].Div(det[q])
			}
		}
	}
	return
}

func curlMetricTerms[T ad.Number[T]](fe *basis.FESystem, points [][]float64,
	coeffs []T) (cofs [][][]T) {
	var (
		grid     = fe.Base.SupportPoints()
		xg, Jg   = Mapping(fe, grid, coeffs)
		nGrid    = len(grid)
		gradGrid = make([][][]float64, nGrid) // [g][q][r]
	)
	for g := 0; g < nGrid; g++ {
		gradGrid[g] = make([][]float64, len(points))
		for q, p := range points {
			gradGrid[g][q] = fe.Base.Grad(g, p)
		}
	}
	// V[g][n][r]
	V := make([][][]T, nGrid)
	for g := 0; g < nGrid; g++ {
		V[g] = ad.Matrix[T](3, 3)
		for n := 0; n < 3; n++ {
			n1, n2 := (n+1)%3, (n+2)%3
			for r := 0; r < 3; r++ {
				V[g][n][r] = xg[g][n1].Mul(Jg[g][n2][r]).Sub(xg[g][n2].Mul(Jg[g][n1][r])).Scale(0.5)
			}
		}
	}
	cofs = make([][][]T, len(points))
	for q := range points {
		cofs[q] = ad.Matrix[T](3, 3)
		for n := 0; n < 3; n++ {
			for i := 0; i < 3; i++ {
				i1, i2 := (i+1)%3, (i+2)%3
				for g := 0; g < nGrid; g++ {
					cofs[q][n][i] = cofs[q][n][i].
						Add(V[g][n][i2].Scale(gradGrid[g][q][i1])).
						Sub(V[g][n][i1].Scale(gradGrid[g][q][i2]))
				}
			}
		}
	}
	return
}

// FaceNormal maps the reference unit normal to the physical unit normal and
// returns the surface Jacobian |J^-T n_ref| det J.
func FaceNormal[T ad.Number[T]](invT [][]T, det T, unitNormal []float64) (n []T, surfaceJac T) {
	var (
		dim = len(unitNormal)
	)
	n = make([]T, dim)
	for d := 0; d < dim; d++ {
		n[d] = ad.DotF(invT[d], unitNormal)
	}
	area := ad.Norm(n)
	for d := range n {
		n[d] = n[d].Div(area)
	}
	surfaceJac = area.Mul(det)
	return
}
