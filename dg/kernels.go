package dg

import (
	"math"

	"github.com/notargets/dgresidual/ad"
	"github.com/notargets/dgresidual/basis"
	"github.com/notargets/dgresidual/metric"
	"github.com/notargets/dgresidual/numflux"
	"github.com/notargets/dgresidual/physics"
)

/*
	The three local kernels integrate the weak form of
		du/dt + div(F_conv(u) + F_diss(u, grad u)) = S
	over one cell, one boundary face or one interior face:
		volume:    grad(phi) . (F_conv + F_diss) + phi S
		boundary: -phi (F* + aux) + grad(phi) . F_diss(u_int, (u* - u_int) n)
		face:      the same on both sides, with F* and aux flipped for the exterior
	All of them are generic in the number type, so the same body produces the
	residual, its first derivatives and the curvature of dual . residual.
*/

const faceTol = 1.e-10

// tabulation is a quadrature rule with the solution basis evaluated on it.
type tabulation struct {
	basis.Quadrature
	vals  [][]float64   // [idof][q]
	grads [][][]float64 // [idof][q][ref]
}

func newTabulation(fe *basis.FESystem, q basis.Quadrature) (tab *tabulation) {
	tab = &tabulation{Quadrature: q}
	tab.vals, tab.grads = fe.Tabulate(q.Points)
	return
}

// strategies are the physics and numerical flux closures of one
// representation.
type strategies[T ad.Number[T]] struct {
	phys physics.Physics[T]
	conv numflux.Convective[T]
	diss numflux.Dissipative[T]
}

func newStrategies[T ad.Number[T]](p physics.Parameters, ft numflux.FluxType,
	dt numflux.DissipativeFluxType) (s *strategies[T], err error) {
	s = &strategies[T]{}
	if s.phys, err = physics.New[T](p); err != nil {
		return
	}
	if s.conv, err = numflux.NewConvective(ft, s.phys); err != nil {
		return
	}
	s.diss, err = numflux.NewDissipative(dt, s.phys)
	return
}

// cellSide is one cell taking part in a kernel call.
type cellSide[T ad.Number[T]] struct {
	cell, face int
	w, x       []T
	dual       []float64
	eps        T
	tab        *tabulation
}

// stateAt interpolates the state and its physical gradient at point q and
// returns the physical gradient of every basis function there.
func stateAt[T ad.Number[T]](fe *basis.FESystem, tab *tabulation, q int, w []T,
	invT [][]T) (u []T, grad [][]T, gradPhi [][]T) {
	var (
		dim      = fe.Dim()
		nb       = fe.Base.NBase()
		baseGrad = make([][]T, nb)
	)
	for ib := 0; ib < nb; ib++ {
		g := tab.grads[ib*fe.NComponents][q]
		baseGrad[ib] = make([]T, dim)
		for d := 0; d < dim; d++ {
			baseGrad[ib][d] = ad.DotF(invT[d], g)
		}
	}
	u = ad.Vector[T](fe.NComponents)
	grad = ad.Matrix[T](fe.NComponents, dim)
	gradPhi = make([][]T, len(w))
	for i, wi := range w {
		s := fe.ComponentIndex(i)
		gradPhi[i] = baseGrad[fe.BaseIndex(i)]
		u[s] = u[s].Add(wi.Scale(tab.vals[i][q]))
		for d := 0; d < dim; d++ {
			grad[s][d] = grad[s][d].Add(wi.Mul(gradPhi[i][d]))
		}
	}
	return
}

func dissipativeFlux[T ad.Number[T]](phys physics.Physics[T], eps T, u []T, grad [][]T) (F [][]T) {
	F = phys.DissipativeFlux(u, grad)
	if eps.Value() != 0 {
		A := phys.ArtificialDissipativeFlux(eps, u, grad)
		for s := range F {
			for d := range F[s] {
				F[s][d] = F[s][d].Add(A[s][d])
			}
		}
	}
	return
}

// jumpTensor is (uStar - u) (x) n.
func jumpTensor[T ad.Number[T]](uStar, u, n []T) (j [][]T) {
	j = make([][]T, len(u))
	for s := range u {
		j[s] = make([]T, len(n))
		for d := range n {
			j[s][d] = uStar[s].Sub(u[s]).Mul(n[d])
		}
	}
	return
}

func dualDot[T ad.Number[T]](rhs []T, dual []float64) (r T) {
	r = ad.Zero[T]()
	for i := range rhs {
		r = r.Add(rhs[i].Scale(dual[i]))
	}
	return
}

func checkJacobian[T ad.Number[T]](det []T, cell, face int) error {
	for _, d := range det {
		if !(d.Value() > 0) {
			return &GeometryError{Cell: cell, Face: face, Err: ErrInvertedCell}
		}
	}
	return nil
}

// matchFace checks that two sides of a conforming face see opposite normals
// and the same surface jacobian.
func matchFace[T ad.Number[T]](nInt, nExt []T, sjInt, sjExt T) error {
	for d := range nInt {
		if math.Abs(nInt[d].Value()+nExt[d].Value()) > faceTol {
			return ErrNonMatchingFace
		}
	}
	if math.Abs(sjInt.Value()-sjExt.Value()) > faceTol*math.Max(1, math.Abs(sjInt.Value())) {
		return ErrNonMatchingFace
	}
	return nil
}

func volumeTerm[T ad.Number[T]](fe, geomFE *basis.FESystem, s *strategies[T],
	cs *cellSide[T]) (rhs []T, ddr T, err error) {
	var (
		tab       = cs.tab
		x, _      = metric.Mapping(geomFE, tab.Points, cs.x)
		invT, det = metric.CovariantMetrics(geomFE, tab.Points, cs.x)
	)
	if err = checkJacobian(det, cs.cell, -1); err != nil {
		return
	}
	rhs = ad.Vector[T](len(cs.w))
	for q := range tab.Points {
		var (
			u, grad, gradPhi = stateAt(fe, tab, q, cs.w, invT[q])
			Fc               = s.phys.ConvectiveFlux(u)
			Fd               = dissipativeFlux(s.phys, cs.eps, u, grad)
			S                = s.phys.SourceTerm(x[q], u)
			JxW              = det[q].Scale(tab.Weights[q])
		)
		for i := range rhs {
			c := fe.ComponentIndex(i)
			r := ad.Dot(gradPhi[i], Fc[c]).Add(ad.Dot(gradPhi[i], Fd[c])).Add(S[c].Scale(tab.vals[i][q]))
			rhs[i] = rhs[i].Add(r.Mul(JxW))
		}
	}
	ddr = dualDot(rhs, cs.dual)
	return
}

func boundaryTerm[T ad.Number[T]](fe, geomFE *basis.FESystem, s *strategies[T],
	cs *cellSide[T], boundaryID int, penalty T) (rhs []T, ddr T, err error) {
	var (
		tab       = cs.tab
		nHat      = basis.UnitNormal(fe.Dim(), cs.face)
		x, _      = metric.Mapping(geomFE, tab.Points, cs.x)
		invT, det = metric.CovariantMetrics(geomFE, tab.Points, cs.x)
	)
	if err = checkJacobian(det, cs.cell, cs.face); err != nil {
		return
	}
	rhs = ad.Vector[T](len(cs.w))
	for q := range tab.Points {
		var (
			n, sj                  = metric.FaceNormal(invT[q], det[q], nHat)
			uInt, gradInt, gradPhi = stateAt(fe, tab, q, cs.w, invT[q])
			uExt, gradExt          = s.phys.BoundaryFaceValues(boundaryID, x[q], n, uInt, gradInt)
			Fconv                  = s.conv.EvaluateFlux(uInt, uExt, n)
			uStar                  = s.diss.EvaluateSolutionFlux(uExt, uExt, n)
			Flift                  = dissipativeFlux(s.phys, cs.eps, uInt, jumpTensor(uStar, uInt, n))
			aux                    = s.diss.EvaluateAuxiliaryFlux(cs.eps, cs.eps, uInt, uExt,
				gradInt, gradExt, n, penalty, true)
			JxW = sj.Scale(tab.Weights[q])
		)
		for i := range rhs {
			c := fe.ComponentIndex(i)
			r := Fconv[c].Add(aux[c]).Scale(tab.vals[i][q]).Neg().Add(ad.Dot(gradPhi[i], Flift[c]))
			rhs[i] = rhs[i].Add(r.Mul(JxW))
		}
	}
	ddr = dualDot(rhs, cs.dual)
	return
}

// faceTerm integrates an interior face. A non-negative subface on one side
// means that side is the coarse cell and the other side carries the whole
// child face; the child's surface jacobian weights the points.
func faceTerm[T ad.Number[T]](fe, geomFE *basis.FESystem, s *strategies[T],
	in, ex *cellSide[T], subInt, subExt int, penalty T) (rhsInt, rhsExt []T, ddr T, err error) {
	var (
		dim          = fe.Dim()
		nHatI, nHatE = basis.UnitNormal(dim, in.face), basis.UnitNormal(dim, ex.face)
		invTi, detI  = metric.CovariantMetrics(geomFE, in.tab.Points, in.x)
		invTe, detE  = metric.CovariantMetrics(geomFE, ex.tab.Points, ex.x)
		conforming   = subInt < 0 && subExt < 0
	)
	if err = checkJacobian(detI, in.cell, in.face); err != nil {
		return
	}
	if err = checkJacobian(detE, ex.cell, ex.face); err != nil {
		return
	}
	rhsInt, rhsExt = ad.Vector[T](len(in.w)), ad.Vector[T](len(ex.w))
	for q := range in.tab.Points {
		var (
			nI, sjI = metric.FaceNormal(invTi[q], detI[q], nHatI)
			nE, sjE = metric.FaceNormal(invTe[q], detE[q], nHatE)
			sj      = sjI
		)
		if subInt >= 0 {
			sj = sjE
		}
		if conforming {
			if ferr := matchFace(nI, nE, sjI, sjE); ferr != nil {
				err = &GeometryError{Cell: in.cell, Face: in.face, Err: ferr}
				return
			}
		}
		var (
			uI, gI, gPhiI = stateAt(fe, in.tab, q, in.w, invTi[q])
			uE, gE, gPhiE = stateAt(fe, ex.tab, q, ex.w, invTe[q])
			Fconv         = s.conv.EvaluateFlux(uI, uE, nI)
			uStar         = s.diss.EvaluateSolutionFlux(uI, uE, nI)
			FliftI        = dissipativeFlux(s.phys, in.eps, uI, jumpTensor(uStar, uI, nI))
			FliftE        = dissipativeFlux(s.phys, ex.eps, uE, jumpTensor(uStar, uE, nE))
			aux           = s.diss.EvaluateAuxiliaryFlux(in.eps, ex.eps, uI, uE, gI, gE, nI, penalty, false)
			JxW           = sj.Scale(in.tab.Weights[q])
		)
		for i := range rhsInt {
			c := fe.ComponentIndex(i)
			r := Fconv[c].Add(aux[c]).Scale(in.tab.vals[i][q]).Neg().Add(ad.Dot(gPhiI[i], FliftI[c]))
			rhsInt[i] = rhsInt[i].Add(r.Mul(JxW))
		}
		for j := range rhsExt {
			c := fe.ComponentIndex(j)
			r := Fconv[c].Add(aux[c]).Scale(ex.tab.vals[j][q]).Add(ad.Dot(gPhiE[j], FliftE[c]))
			rhsExt[j] = rhsExt[j].Add(r.Mul(JxW))
		}
	}
	ddr = dualDot(rhsInt, in.dual).Add(dualDot(rhsExt, ex.dual))
	return
}
