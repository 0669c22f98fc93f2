package dg

import (
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/dgresidual/utils"
)

type matrixID uint8

const (
	residualTarget matrixID = iota
	matDRdW
	matDRdX
	matD2RdWdW
	matD2RdWdX
	matD2RdXdW
	matD2RdXdX
)

// sink receives the local blocks of a kernel call. Additions accumulate,
// including repeated global indices inside one block.
type sink interface {
	addResidual(rows []int, vals []float64) error
	addBlock(id matrixID, rows, cols []int, B mat.Matrix) error
}

// directSink adds straight into the global containers.
type directSink struct {
	dg *DG
}

func (ds directSink) addResidual(rows []int, vals []float64) error {
	return utils.AddToVec(ds.dg.RightHandSide, rows, vals)
}

func (ds directSink) addBlock(id matrixID, rows, cols []int, B mat.Matrix) error {
	return ds.dg.matrix(id).AddBlock(rows, cols, B)
}

type scatterOp struct {
	id         matrixID
	rows, cols []int
	vals       []float64
	block      *mat.Dense
}

// bufferedSink records the additions of one partition so they can be
// replayed in partition order after all partitions finish.
type bufferedSink struct {
	buf *utils.DynBuffer[scatterOp]
}

func (bs bufferedSink) addResidual(rows []int, vals []float64) error {
	bs.buf.Add(scatterOp{id: residualTarget, rows: rows, vals: append([]float64{}, vals...)})
	return nil
}

func (bs bufferedSink) addBlock(id matrixID, rows, cols []int, B mat.Matrix) error {
	bs.buf.Add(scatterOp{id: id, rows: rows, cols: cols, block: mat.DenseCopyOf(B)})
	return nil
}

func replay(buf *utils.DynBuffer[scatterOp], sk sink) (err error) {
	for _, op := range buf.Cells() {
		if op.id == residualTarget {
			err = sk.addResidual(op.rows, op.vals)
		} else {
			err = sk.addBlock(op.id, op.rows, op.cols, op.block)
		}
		if err != nil {
			return
		}
	}
	return
}

func (dg *DG) matrix(id matrixID) *utils.DOK {
	switch id {
	case matDRdW:
		return &dg.SystemMatrix
	case matDRdX:
		return &dg.DRdX
	case matD2RdWdW:
		return &dg.D2RdWdW
	case matD2RdWdX:
		return &dg.D2RdWdX
	case matD2RdXdW:
		return &dg.D2RdXdW
	case matD2RdXdX:
		return &dg.D2RdXdX
	}
	panic("no matrix for the residual target")
}

// targets lists the matrices a pass with flags writes.
func (f Flags) targets() (ids []matrixID) {
	if f.DRdW {
		ids = append(ids, matDRdW)
	}
	if f.DRdX {
		ids = append(ids, matDRdX)
	}
	if f.D2R {
		ids = append(ids, matD2RdWdW, matD2RdWdX, matD2RdXdW, matD2RdXdX)
	}
	return
}
