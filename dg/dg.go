// Package dg assembles the discontinuous-Galerkin residual of a
// conservation law on a hypercube mesh, and on request its exact
// derivatives with respect to the solution and the geometry nodes and the
// second derivatives of the dual-weighted residual.
//
// One generic set of local kernels runs over three number representations
// from package ad; a pass picks the representation once from its Flags.
package dg

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/dgresidual/ad"
	"github.com/notargets/dgresidual/basis"
	"github.com/notargets/dgresidual/numflux"
	"github.com/notargets/dgresidual/observability"
	"github.com/notargets/dgresidual/physics"
	"github.com/notargets/dgresidual/utils"
)

type Parameters struct {
	Physics         physics.Parameters
	PolynomialOrder int
	// NState, when set, must agree with the number of states of the PDE
	NState          int
	ConvectiveFlux  string // default lax_friedrichs
	DissipativeFlux string // default symm_internal_penalty
	UseStrongForm   bool
	// UseCollocatedNodes puts the solution nodes on the Gauss-Lobatto
	// points and integrates with the collocated Gauss-Lobatto rule
	UseCollocatedNodes       bool
	OverIntegration          int
	AddArtificialDissipation bool
	// UsePeriodicBC joins the two ends of a 1-D mesh
	UsePeriodicBC  bool
	ParallelDegree int
}

type Option func(dg *DG)

func WithLogger(l *slog.Logger) Option {
	return func(dg *DG) { dg.logger = l }
}

func WithMetrics(am *observability.AssemblyMetrics) Option {
	return func(dg *DG) { dg.metrics = am }
}

type DG struct {
	Parameters
	topo       Topology
	fe, geomFE *basis.FESystem
	volume     *tabulation
	faces      [][]*tabulation // [face][subface+1]
	real       *strategies[ad.Real]
	dual       *strategies[ad.Dual]
	dual2      *strategies[ad.Dual2]
	partitions *utils.PartitionMap
	cellPos    map[int]int
	allocated  bool
	logger     *slog.Logger
	metrics    *observability.AssemblyMetrics

	Solution      *mat.VecDense // W
	GeometryNodes *mat.VecDense // X
	DualWeights   *mat.VecDense
	RightHandSide *mat.VecDense
	// ArtificialDissipation is the coefficient of every active cell, in
	// active cell order
	ArtificialDissipation []float64

	SystemMatrix                        utils.DOK // dR/dW
	DRdX                                utils.DOK
	D2RdWdW, D2RdWdX, D2RdXdW, D2RdXdX  utils.DOK
	GlobalMassMatrix, GlobalInverseMass utils.DOK

	Stats PassStats
}

// NewDG validates the discretization choices and builds the finite element,
// quadrature tables and physics closures for every representation.
func NewDG(p Parameters, topo Topology, opts ...Option) (dg *DG, err error) {
	var (
		ft numflux.FluxType
		dt numflux.DissipativeFluxType
	)
	if topo == nil {
		return nil, fmt.Errorf("%w: no mesh", ErrUnsupportedDiscretization)
	}
	dim := topo.Dim()
	switch {
	case p.UseStrongForm:
		err = fmt.Errorf("%w: strong form is not implemented", ErrUnsupportedDiscretization)
	case p.PolynomialOrder < 0:
		err = fmt.Errorf("%w: polynomial order %d", ErrUnsupportedDiscretization, p.PolynomialOrder)
	case p.OverIntegration < 0:
		err = fmt.Errorf("%w: over-integration %d", ErrUnsupportedDiscretization, p.OverIntegration)
	case p.UseCollocatedNodes && p.PolynomialOrder < 1:
		err = fmt.Errorf("%w: collocated nodes need order 1 or more", ErrUnsupportedDiscretization)
	case p.UsePeriodicBC && dim != 1:
		err = fmt.Errorf("%w: periodic wraparound is for 1-D meshes, have %d-D",
			ErrUnsupportedDiscretization, dim)
	case p.Physics.Dim != 0 && p.Physics.Dim != dim:
		err = fmt.Errorf("%w: physics in %d-D on a %d-D mesh",
			ErrUnsupportedDiscretization, p.Physics.Dim, dim)
	}
	if err != nil {
		return
	}
	p.Physics.Dim = dim
	nState := p.Physics.PDE.NState(dim)
	if p.NState != 0 && p.NState != nState {
		return nil, fmt.Errorf("%w: %s has %d states, asked for %d",
			ErrUnsupportedPDE, p.Physics.PDE.Print(), nState, p.NState)
	}
	p.NState = nState
	if p.ConvectiveFlux == "" {
		p.ConvectiveFlux = defaultConvectiveFlux
	}
	if p.DissipativeFlux == "" {
		p.DissipativeFlux = defaultDissipativeFlux
	}
	if ft, err = numflux.NewFluxType(p.ConvectiveFlux); err != nil {
		return
	}
	if dt, err = numflux.NewDissipativeFluxType(p.DissipativeFlux); err != nil {
		return
	}
	dg = &DG{
		Parameters: p,
		topo:       topo,
		geomFE:     topo.GeometryElement(),
		logger:     observability.Discard(),
	}
	if p.UsePeriodicBC {
		dg.topo = newPeriodic1D(topo)
	}
	if dg.real, err = newStrategies[ad.Real](p.Physics, ft, dt); err != nil {
		return nil, err
	}
	if dg.dual, err = newStrategies[ad.Dual](p.Physics, ft, dt); err != nil {
		return nil, err
	}
	if dg.dual2, err = newStrategies[ad.Dual2](p.Physics, ft, dt); err != nil {
		return nil, err
	}
	dg.buildElement()
	for _, opt := range opts {
		opt(dg)
	}
	return
}

const (
	defaultConvectiveFlux  = "lax_friedrichs"
	defaultDissipativeFlux = "symm_internal_penalty"
)

func (dg *DG) buildElement() {
	var (
		dim         = dg.topo.Dim()
		nq          = dg.PolynomialOrder + 1 + dg.OverIntegration
		family      = basis.EquidistantNodes
		volQ, faceQ basis.Quadrature
	)
	if dg.UseCollocatedNodes {
		family = basis.GaussLobattoNodes
		volQ, faceQ = basis.NewGaussLobatto(dim, nq), basis.NewGaussLobatto(dim-1, nq)
	} else {
		volQ, faceQ = basis.NewGauss(dim, nq), basis.NewGauss(dim-1, nq)
	}
	dg.fe = basis.NewFESystem(basis.NewTensorLagrange(dim, dg.PolynomialOrder, family), dg.NState)
	dg.volume = newTabulation(dg.fe, volQ)
	dg.faces = make([][]*tabulation, basis.NFaces(dim))
	for f := range dg.faces {
		dg.faces[f] = make([]*tabulation, basis.NSubfaces(dim)+1)
		for sub := -1; sub < basis.NSubfaces(dim); sub++ {
			dg.faces[f][sub+1] = newTabulation(dg.fe, basis.ProjectToSubface(faceQ, dim, f, sub))
		}
	}
}

// Element is the solution finite element.
func (dg *DG) Element() *basis.FESystem { return dg.fe }

func (dg *DG) Topology() Topology { return dg.topo }

// AllocateSystem numbers the solution dofs and sizes the global vectors and
// matrices. It is called again after the mesh changes.
func (dg *DG) AllocateSystem() {
	var (
		active = dg.topo.ActiveCells()
		nW     = dg.topo.DistributeDofs(dg.fe.NDofs())
		nX     = dg.topo.NumGeometryDofs()
	)
	dg.Solution = mat.NewVecDense(nW, nil)
	dg.GeometryNodes = mat.NewVecDense(nX, dg.topo.GeometryNodes())
	dg.DualWeights = mat.NewVecDense(nW, nil)
	dg.RightHandSide = mat.NewVecDense(nW, nil)
	dg.ArtificialDissipation = make([]float64, len(active))
	dg.cellPos = make(map[int]int, len(active))
	for i, k := range active {
		dg.cellPos[k] = i
	}
	newMatrix := func(name string, nr, nc int) (m utils.DOK) {
		m = utils.NewDOK(nr, nc)
		m.SetName(name)
		return
	}
	dg.SystemMatrix = newMatrix("dRdW", nW, nW)
	dg.DRdX = newMatrix("dRdX", nW, nX)
	dg.D2RdWdW = newMatrix("d2RdWdW", nW, nW)
	dg.D2RdWdX = newMatrix("d2RdWdX", nW, nX)
	dg.D2RdXdW = newMatrix("d2RdXdW", nX, nW)
	dg.D2RdXdX = newMatrix("d2RdXdX", nX, nX)
	dg.GlobalMassMatrix = newMatrix("mass", nW, nW)
	dg.GlobalInverseMass = newMatrix("inverse mass", nW, nW)
	dg.partitions = utils.NewPartitionMap(dg.ParallelDegree, len(active))
	dg.allocated = true
	dg.logger.Debug("allocate", "cells", len(active), "solution_dofs", nW, "geometry_dofs", nX,
		"partitions", dg.partitions.ParallelDegree)
}

func (dg *DG) SetDualWeights(v []float64) error {
	if !dg.allocated || len(v) != dg.DualWeights.Len() {
		return fmt.Errorf("dual weights: need %d values, got %d", dg.numSolutionDofs(), len(v))
	}
	if err := utils.CheckFiniteSlice(v); err != nil {
		return fmt.Errorf("dual weights: %w", err)
	}
	dg.DualWeights.CopyVec(mat.NewVecDense(len(v), v))
	return nil
}

// SetArtificialDissipation sets the per-cell coefficients, in active cell
// order. They are used only when AddArtificialDissipation is set.
func (dg *DG) SetArtificialDissipation(coeffs []float64) error {
	if !dg.allocated || len(coeffs) != len(dg.ArtificialDissipation) {
		return fmt.Errorf("artificial dissipation: need %d values, got %d",
			len(dg.topo.ActiveCells()), len(coeffs))
	}
	for i, c := range coeffs {
		if err := utils.CheckFinite(c); err != nil {
			return fmt.Errorf("artificial dissipation of cell %d: %w", i, err)
		}
		if c < 0 {
			return fmt.Errorf("artificial dissipation of cell %d is negative: %g", i, c)
		}
	}
	copy(dg.ArtificialDissipation, coeffs)
	return nil
}

func (dg *DG) numSolutionDofs() int {
	if dg.Solution == nil {
		return 0
	}
	return dg.Solution.Len()
}

// ResidualNorm is the l2 norm of the last assembled residual.
func (dg *DG) ResidualNorm() float64 {
	if dg.RightHandSide == nil {
		return 0
	}
	return mat.Norm(dg.RightHandSide, 2)
}

// AssembleResidual computes the residual and the derivative blocks selected
// by flags. Matrices written by the pass are cleared first and left read
// only afterwards; the others keep their content.
func (dg *DG) AssembleResidual(flags Flags) (err error) {
	var (
		start  = time.Now()
		active []int
	)
	if err = flags.Validate(); err != nil {
		return
	}
	if !dg.allocated {
		return fmt.Errorf("assemble before AllocateSystem")
	}
	active = dg.topo.ActiveCells()
	dg.logger.Debug("assemble.start", "mode", flags.String(), "cells", len(active))
	dg.RightHandSide.Zero()
	for _, id := range flags.targets() {
		m := dg.matrix(id)
		m.SetWritable()
		m.Reset()
	}
	dg.Stats = newPassStats(flags)
	if dg.partitions.ParallelDegree == 1 {
		err = dg.assembleCells(active, flags, directSink{dg: dg}, &dg.Stats)
	} else {
		err = dg.assembleParallel(active, flags)
	}
	for _, id := range flags.targets() {
		dg.matrix(id).SetReadOnly()
	}
	dg.Stats.Duration = time.Since(start)
	dg.Stats.ResidualNorm = dg.ResidualNorm()
	if dg.metrics != nil {
		dg.metrics.RecordPass(dg.Stats.toAssemblyStats(err))
	}
	if err != nil {
		dg.logger.Error("assemble.failed", dg.failureAttrs(flags, err)...)
		return
	}
	dg.logger.Info("assemble.done", "mode", flags.String(), "cells", dg.Stats.Cells,
		"faces", dg.Stats.NumFaces(), "residual_norm", dg.Stats.ResidualNorm,
		"duration", dg.Stats.Duration)
	return
}

func (dg *DG) assembleCells(cells []int, flags Flags, sk sink, st *PassStats) (err error) {
	for _, k := range cells {
		if err = dg.assembleCell(k, flags, sk, st); err != nil {
			return
		}
	}
	return
}

// assembleParallel splits the active cells into contiguous partitions. Each
// partition records its additions, which are replayed in partition order so
// the result matches the serial pass bit for bit.
// failureAttrs locates a geometry failure in its cell and partition.
func (dg *DG) failureAttrs(flags Flags, err error) (attrs []any) {
	attrs = []any{"mode", flags.String(), "error", err}
	var ge *GeometryError
	if !errors.As(err, &ge) {
		return
	}
	attrs = append(attrs, "cell", ge.Cell)
	if pos, ok := dg.cellPos[ge.Cell]; ok {
		bn, _, _ := dg.partitions.GetBucket(pos)
		attrs = append(attrs, "partition", bn)
	}
	return
}

func (dg *DG) assembleParallel(active []int, flags Flags) (err error) {
	var (
		np    = dg.partitions.ParallelDegree
		bufs  = make([]*utils.DynBuffer[scatterOp], np)
		stats = make([]PassStats, np)
	)
	err = dg.partitions.RunPartitions(func(n, kMin, kMax int) error {
		bufs[n] = utils.NewDynBuffer[scatterOp](4 * dg.partitions.GetBucketDimension(n))
		stats[n] = newPassStats(flags)
		return dg.assembleCells(active[kMin:kMax], flags, bufferedSink{buf: bufs[n]}, &stats[n])
	})
	if err != nil {
		return
	}
	ds := directSink{dg: dg}
	for n := 0; n < np; n++ {
		if err = replay(bufs[n], ds); err != nil {
			return
		}
		dg.Stats.merge(stats[n])
	}
	return
}
