package dg

import (
	"time"

	"github.com/notargets/dgresidual/basis"
	"github.com/notargets/dgresidual/observability"
)

// Face configurations as counted in PassStats.
const (
	FaceBoundary  = "boundary"
	FacePeriodic  = "periodic"
	FaceSameLevel = "same_level"
	FaceFiner     = "finer"
)

// PassStats counts the work of the last pass.
type PassStats struct {
	Mode         string
	Cells        int
	Faces        map[string]int // assembled faces by configuration
	Skipped      int            // faces left to the finer neighbor
	KernelCalls  map[string]int
	Duration     time.Duration
	ResidualNorm float64
}

func newPassStats(flags Flags) PassStats {
	return PassStats{
		Mode:        flags.String(),
		Faces:       make(map[string]int),
		KernelCalls: make(map[string]int),
	}
}

func (ps *PassStats) merge(o PassStats) {
	ps.Cells += o.Cells
	ps.Skipped += o.Skipped
	for k, n := range o.Faces {
		ps.Faces[k] += n
	}
	for k, n := range o.KernelCalls {
		ps.KernelCalls[k] += n
	}
}

// NumFaces is the number of distinct faces assembled.
func (ps PassStats) NumFaces() (n int) {
	for _, c := range ps.Faces {
		n += c
	}
	return
}

func (ps PassStats) toAssemblyStats(err error) observability.AssemblyStats {
	return observability.AssemblyStats{
		Mode:         ps.Mode,
		Cells:        ps.Cells,
		KernelCalls:  ps.KernelCalls,
		Faces:        ps.Faces,
		Duration:     ps.Duration,
		ResidualNorm: ps.ResidualNorm,
		Err:          err,
	}
}

// assembleCell runs the volume kernel of cell k and the kernel of every
// face that k owns, so each face of the mesh is integrated exactly once:
//   - domain boundary: boundary kernel
//   - periodic boundary: face kernel with the partner, if k owns the pair
//   - finer neighbor: one face kernel per subface
//   - same level: face kernel, if k owns the pair
//   - coarser neighbor: nothing, the neighbor visits the subface
func (dg *DG) assembleCell(k int, flags Flags, sk sink, st *PassStats) (err error) {
	var (
		t = dg.topo
	)
	st.Cells++
	if err = dg.runKernel(dg.volumeCall(k), flags, sk); err != nil {
		return
	}
	st.KernelCalls[volumeKernel.String()]++
	for f := 0; f < basis.NFaces(t.Dim()); f++ {
		switch {
		case t.HasPeriodicNeighbor(k, f):
			nb, nf := t.PeriodicNeighbor(k, f), t.PeriodicNeighborFace(k, f)
			if t.PeriodicNeighborIsCoarser(k, f) {
				st.Skipped++
				continue
			}
			if !dg.owns(k, f, nb, nf) {
				continue
			}
			err = dg.visitFace(dg.faceCall(k, f, -1, nb, nf), FacePeriodic, flags, sk, st)
		case t.AtBoundary(k, f):
			err = dg.visitFace(dg.boundaryCall(k, f), FaceBoundary, flags, sk, st)
		case t.FaceHasChildren(k, f):
			nf := t.NeighborOfNeighbor(k, f)
			for sub := 0; sub < t.NumSubfaces(k, f) && err == nil; sub++ {
				nb := t.NeighborChildOnSubface(k, f, sub)
				err = dg.visitFace(dg.faceCall(k, f, sub, nb, nf), FaceFiner, flags, sk, st)
			}
		case t.NeighborIsCoarser(k, f):
			st.Skipped++
		default:
			nb, nf := t.Neighbor(k, f), t.NeighborOfNeighbor(k, f)
			if !dg.owns(k, f, nb, nf) {
				continue
			}
			err = dg.visitFace(dg.faceCall(k, f, -1, nb, nf), FaceSameLevel, flags, sk, st)
		}
		if err != nil {
			return
		}
	}
	return
}

func (dg *DG) visitFace(c *kernelCall, config string, flags Flags, sk sink, st *PassStats) (err error) {
	if err = dg.runKernel(c, flags, sk); err != nil {
		return
	}
	st.Faces[config]++
	st.KernelCalls[c.kind.String()]++
	return
}

// owns decides which of two cells meeting at a face integrates it: the
// shallower level, then the smaller index. A cell that is its own neighbor
// integrates the pair at its lower face number. Checking the level first
// agrees with index order on same-level faces and keeps the cross-level
// 1-D wraparound face from being skipped by both sides.
func (dg *DG) owns(k, f, nb, nf int) bool {
	t := dg.topo
	switch {
	case nb == k:
		return f < nf
	case t.Level(k) != t.Level(nb):
		return t.Level(k) < t.Level(nb)
	default:
		return t.Index(k) < t.Index(nb)
	}
}

// penalty is deg(deg+1) / h with h the extent of the cell normal to the
// face; deg1sq is 1 for piecewise constants.
func (dg *DG) penalty(k, f int) float64 {
	var (
		p      = dg.PolynomialOrder
		deg1sq = float64(p * (p + 1))
	)
	if p == 0 {
		deg1sq = 1
	}
	return deg1sq / dg.topo.ExtentInDirection(k, basis.FaceDirection(f))
}

func (dg *DG) eps(k int) float64 {
	if !dg.AddArtificialDissipation {
		return 0
	}
	return dg.ArtificialDissipation[dg.cellPos[k]]
}

// gather fills side i of c with the local coefficients of cell k.
func (dg *DG) gather(c *kernelCall, i, k int) {
	var (
		wDofs = dg.topo.SolutionDofs(k)
		xDofs = dg.topo.GeometryDofs(k)
	)
	c.cell[i] = k
	c.wDofs[i], c.xDofs[i] = wDofs, xDofs
	c.w[i] = make([]float64, len(wDofs))
	c.dual[i] = make([]float64, len(wDofs))
	for j, I := range wDofs {
		c.w[i][j] = dg.Solution.AtVec(I)
		c.dual[i][j] = dg.DualWeights.AtVec(I)
	}
	c.x[i] = dg.cellGeometry(k)
	c.eps[i] = dg.eps(k)
}

func (dg *DG) volumeCall(k int) (c *kernelCall) {
	c = &kernelCall{kind: volumeKernel, nSides: 1}
	c.face[0], c.subface[0] = -1, -1
	dg.gather(c, 0, k)
	return
}

func (dg *DG) boundaryCall(k, f int) (c *kernelCall) {
	c = &kernelCall{
		kind:     boundaryKernel,
		nSides:   1,
		boundary: dg.topo.BoundaryID(k, f),
		penalty:  dg.penalty(k, f),
	}
	c.face[0], c.subface[0] = f, -1
	dg.gather(c, 0, k)
	return
}

// faceCall pairs face f of k (on subface sub, or the whole face when sub is
// negative) with the whole face nf of nb.
func (dg *DG) faceCall(k, f, sub, nb, nf int) (c *kernelCall) {
	c = &kernelCall{
		kind:    faceKernel,
		nSides:  2,
		face:    [2]int{f, nf},
		subface: [2]int{sub, -1},
		penalty: 0.5 * (dg.penalty(k, f) + dg.penalty(nb, nf)),
	}
	dg.gather(c, 0, k)
	dg.gather(c, 1, nb)
	return
}
