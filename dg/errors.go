package dg

import (
	"errors"
	"fmt"

	"github.com/notargets/dgresidual/numflux"
	"github.com/notargets/dgresidual/physics"
	"github.com/notargets/dgresidual/utils"
)

var (
	ErrInvertedCell              = errors.New("non-positive jacobian determinant")
	ErrNonMatchingFace           = errors.New("face geometry does not match across the interface")
	ErrUnsupportedMode           = errors.New("unsupported differentiation mode")
	ErrUnsupportedDiscretization = errors.New("unsupported discretization")
	ErrNonFinite                 = utils.ErrNonFinite
	ErrUnsupportedPDE            = physics.ErrUnsupportedPDE
	ErrUnsupportedFlux           = numflux.ErrUnsupportedFlux
)

// GeometryError locates a geometry failure. Face is -1 for a volume
// evaluation.
type GeometryError struct {
	Cell, Face int
	Err        error
}

func (ge *GeometryError) Error() string {
	if ge.Face < 0 {
		return fmt.Sprintf("cell %d: %v", ge.Cell, ge.Err)
	}
	return fmt.Sprintf("cell %d face %d: %v", ge.Cell, ge.Face, ge.Err)
}

func (ge *GeometryError) Unwrap() error { return ge.Err }
