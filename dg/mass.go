package dg

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/dgresidual/ad"
	"github.com/notargets/dgresidual/metric"
	"github.com/notargets/dgresidual/utils"
)

// EvaluateMassMatrices assembles the block diagonal mass matrix on the
// current geometry nodes and, when inverse is set, its cell-wise inverse.
func (dg *DG) EvaluateMassMatrices(inverse bool) (err error) {
	if !dg.allocated {
		return fmt.Errorf("mass matrix before AllocateSystem")
	}
	dg.GlobalMassMatrix.SetWritable()
	dg.GlobalMassMatrix.Reset()
	if inverse {
		dg.GlobalInverseMass.SetWritable()
		dg.GlobalInverseMass.Reset()
	}
	for _, k := range dg.topo.ActiveCells() {
		var (
			M    *mat.Dense
			dofs = dg.topo.SolutionDofs(k)
		)
		if M, err = dg.localMassMatrix(k); err != nil {
			return
		}
		if err = dg.GlobalMassMatrix.AddBlock(dofs, dofs, M); err != nil {
			return
		}
		if inverse {
			var Minv mat.Dense
			if err = Minv.Inverse(M); err != nil {
				return fmt.Errorf("cell %d: invert mass matrix: %w", k, err)
			}
			if err = dg.GlobalInverseMass.AddBlock(dofs, dofs, &Minv); err != nil {
				return
			}
		}
	}
	dg.GlobalMassMatrix.SetReadOnly()
	if inverse {
		dg.GlobalInverseMass.SetReadOnly()
	}
	return
}

func (dg *DG) localMassMatrix(k int) (M *mat.Dense, err error) {
	var (
		tab    = dg.volume
		nDofs  = dg.fe.NDofs()
		x      = ad.Consts[ad.Real](dg.cellGeometry(k))
		_, det = metric.CovariantMetrics(dg.geomFE, tab.Points, x)
	)
	if err = checkJacobian(det, k, -1); err != nil {
		return
	}
	M = mat.NewDense(nDofs, nDofs, nil)
	for i := 0; i < nDofs; i++ {
		for j := 0; j < nDofs; j++ {
			if dg.fe.ComponentIndex(i) != dg.fe.ComponentIndex(j) {
				continue
			}
			var m float64
			for q, w := range tab.Weights {
				m += tab.vals[i][q] * tab.vals[j][q] * float64(det[q]) * w
			}
			M.Set(i, j, m)
		}
	}
	return
}

func (dg *DG) cellGeometry(k int) (x []float64) {
	xDofs := dg.topo.GeometryDofs(k)
	x = make([]float64, len(xDofs))
	for j, I := range xDofs {
		x[j] = dg.GeometryNodes.AtVec(I)
	}
	return
}

// InitializeSolution interpolates fn at the physical support points of
// every cell. fn returns one value per state.
func (dg *DG) InitializeSolution(fn func(x []float64) []float64) (err error) {
	if !dg.allocated {
		return fmt.Errorf("initialize before AllocateSystem")
	}
	var (
		pts = dg.fe.UnitSupportPoints()
	)
	for _, k := range dg.topo.ActiveCells() {
		var (
			dofs = dg.topo.SolutionDofs(k)
			x, _ = metric.Mapping(dg.geomFE, pts, ad.Consts[ad.Real](dg.cellGeometry(k)))
		)
		for i, I := range dofs {
			u := fn(ad.Values(x[i]))
			if len(u) != dg.NState {
				return fmt.Errorf("initial condition returned %d values for %d states", len(u), dg.NState)
			}
			v := u[dg.fe.ComponentIndex(i)]
			if err = utils.CheckFinite(v); err != nil {
				return fmt.Errorf("initial condition at cell %d: %w", k, err)
			}
			dg.Solution.SetVec(I, v)
		}
	}
	return
}
