package dg

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/dgresidual/ad"
)

// Flags selects what a pass computes besides the residual. It is fixed for
// the whole pass.
type Flags struct {
	DRdW, DRdX bool
	D2R        bool
}

// Validate rejects the combinations no path implements.
func (f Flags) Validate() error {
	if f.D2R && (f.DRdW || f.DRdX) {
		return fmt.Errorf("%w: %s", ErrUnsupportedMode, f)
	}
	return nil
}

func (f Flags) String() string {
	var parts []string
	if f.DRdW {
		parts = append(parts, "dRdW")
	}
	if f.DRdX {
		parts = append(parts, "dRdX")
	}
	if f.D2R {
		parts = append(parts, "d2R")
	}
	if len(parts) == 0 {
		return "residual"
	}
	return strings.Join(parts, "+")
}

type kernelKind uint8

const (
	volumeKernel kernelKind = iota
	boundaryKernel
	faceKernel
)

func (kk kernelKind) String() string {
	return [...]string{"volume", "boundary", "face"}[kk]
}

// kernelCall is one local evaluation with its gathered inputs. Side 0 is
// the interior cell, side 1 the exterior cell of a face call.
type kernelCall struct {
	kind       kernelKind
	nSides     int
	cell, face [2]int
	subface    [2]int
	boundary   int
	penalty    float64
	wDofs      [2][]int
	xDofs      [2][]int
	w, x, dual [2][]float64
	eps        [2]float64
}

// runKernel picks the representation once for the call, evaluates the
// kernel and scatters the value and derivative blocks.
func (dg *DG) runKernel(c *kernelCall, flags Flags, sk sink) (err error) {
	switch {
	case flags.D2R:
		err = runTaped(dg, dg.dual2, c, true, true, true, sk)
	case flags.DRdW || flags.DRdX:
		err = runTaped(dg, dg.dual, c, flags.DRdW, flags.DRdX, false, sk)
	default:
		err = runResidual(dg, c, sk)
	}
	return
}

func evaluate[T ad.Number[T]](dg *DG, s *strategies[T], c *kernelCall,
	w, x [2][]T) (rhs [2][]T, ddr T, err error) {
	var (
		z     T
		sides [2]*cellSide[T]
	)
	for i := 0; i < c.nSides; i++ {
		sides[i] = &cellSide[T]{
			cell: c.cell[i],
			face: c.face[i],
			w:    w[i],
			x:    x[i],
			dual: c.dual[i],
			eps:  z.Const(c.eps[i]),
			tab:  dg.volume,
		}
		if c.kind != volumeKernel {
			sides[i].tab = dg.faces[c.face[i]][c.subface[i]+1]
		}
	}
	switch c.kind {
	case volumeKernel:
		rhs[0], ddr, err = volumeTerm(dg.fe, dg.geomFE, s, sides[0])
	case boundaryKernel:
		rhs[0], ddr, err = boundaryTerm(dg.fe, dg.geomFE, s, sides[0], c.boundary, z.Const(c.penalty))
	case faceKernel:
		rhs[0], rhs[1], ddr, err = faceTerm(dg.fe, dg.geomFE, s, sides[0], sides[1],
			c.subface[0], c.subface[1], z.Const(c.penalty))
	}
	return
}

func runResidual(dg *DG, c *kernelCall, sk sink) (err error) {
	var (
		w, x [2][]ad.Real
		rhs  [2][]ad.Real
	)
	for i := 0; i < c.nSides; i++ {
		w[i], x[i] = ad.Consts[ad.Real](c.w[i]), ad.Consts[ad.Real](c.x[i])
	}
	if rhs, _, err = evaluate(dg, dg.real, c, w, x); err != nil {
		return
	}
	for i := 0; i < c.nSides; i++ {
		if err = sk.addResidual(c.wDofs[i], ad.Values(rhs[i])); err != nil {
			return
		}
	}
	return
}

func seed[T ad.Differentiable[T]](tape *ad.Tape[T], r ad.Range, vals []float64, active bool) (v []T) {
	v = make([]T, len(vals))
	for i, val := range vals {
		if active {
			v[i] = tape.RegisterInput(r.Begin+i, val)
		} else {
			v[i] = tape.Passive(val)
		}
	}
	return
}

// runTaped seeds the differentiated groups in the order
// [w_int, w_ext, x_int, x_ext]. First order records every local residual
// entry; second order records dual . residual and extracts its Hessian.
func runTaped[T ad.Differentiable[T]](dg *DG, s *strategies[T], c *kernelCall,
	wrtW, wrtX, second bool, sk sink) (err error) {
	var (
		l = ad.NewLayout(wrtW, wrtX, [2]int{len(c.w[0]), len(c.w[1])},
			[2]int{len(c.x[0]), len(c.x[1])})
		tape = ad.NewTape[T](l.N)
		w, x [2][]T
		rhs  [2][]T
		ddr  T
	)
	tape.StartRecording()
	for i := 0; i < c.nSides; i++ {
		w[i] = seed(tape, l.W[i], c.w[i], wrtW)
		x[i] = seed(tape, l.X[i], c.x[i], wrtX)
	}
	if rhs, ddr, err = evaluate(dg, s, c, w, x); err != nil {
		return
	}
	if second {
		tape.RegisterOutput(ddr)
	} else {
		for i := 0; i < c.nSides; i++ {
			for _, r := range rhs[i] {
				tape.RegisterOutput(r)
			}
		}
	}
	tape.StopRecording()
	for i := 0; i < c.nSides; i++ {
		if err = sk.addResidual(c.wDofs[i], ad.Values(rhs[i])); err != nil {
			return
		}
	}
	if second {
		return scatterHessian(tape.Hessian(0), l, c, sk)
	}
	return scatterJacobian(tape.Jacobian(), l, c, wrtW, wrtX, sk)
}

func scatterJacobian(J *mat.Dense, l ad.Layout, c *kernelCall, wrtW, wrtX bool, sk sink) (err error) {
	var (
		row int
	)
	for i := 0; i < c.nSides; i++ {
		rows := ad.Range{Begin: row, End: row + len(c.wDofs[i])}
		for j := 0; j < c.nSides; j++ {
			if wrtW {
				if err = addSubBlock(sk, matDRdW, J, rows, l.W[j], c.wDofs[i], c.wDofs[j]); err != nil {
					return
				}
			}
			if wrtX {
				if err = addSubBlock(sk, matDRdX, J, rows, l.X[j], c.wDofs[i], c.xDofs[j]); err != nil {
					return
				}
			}
		}
		row = rows.End
	}
	return
}

func scatterHessian(H *mat.Dense, l ad.Layout, c *kernelCall, sk sink) (err error) {
	type block struct {
		id         matrixID
		rows, cols [2]ad.Range
		rdof, cdof [2][]int
	}
	blocks := []block{
		{matD2RdWdW, l.W, l.W, c.wDofs, c.wDofs},
		{matD2RdWdX, l.W, l.X, c.wDofs, c.xDofs},
		{matD2RdXdW, l.X, l.W, c.xDofs, c.wDofs},
		{matD2RdXdX, l.X, l.X, c.xDofs, c.xDofs},
	}
	for _, b := range blocks {
		for i := 0; i < c.nSides; i++ {
			for j := 0; j < c.nSides; j++ {
				if err = addSubBlock(sk, b.id, H, b.rows[i], b.cols[j], b.rdof[i], b.cdof[j]); err != nil {
					return
				}
			}
		}
	}
	return
}

func addSubBlock(sk sink, id matrixID, A *mat.Dense, r, c ad.Range, rows, cols []int) error {
	if r.Len() == 0 || c.Len() == 0 {
		return nil
	}
	return sk.addBlock(id, rows, cols, A.Slice(r.Begin, r.End, c.Begin, c.End))
}
