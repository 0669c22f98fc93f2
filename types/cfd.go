package types

import (
	"fmt"
	"strings"
)

type BCFLAG uint8

const (
	BC_None BCFLAG = iota
	BC_In
	BC_Dirichlet
	BC_Slip
	BC_Far
	BC_Wall
	BC_Neuman
	BC_Out
	BC_Periodic
)

var BCNameMap = map[string]BCFLAG{
	"inflow":    BC_In,
	"in":        BC_In,
	"out":       BC_Out,
	"outflow":   BC_Out,
	"wall":      BC_Wall,
	"far":       BC_Far,
	"farfield":  BC_Far,
	"dirichlet": BC_Dirichlet,
	"neuman":    BC_Neuman,
	"neumann":   BC_Neuman,
	"slip":      BC_Slip,
	"periodic":  BC_Periodic,
}

var bcPrintNames = []string{"none", "inflow", "dirichlet", "slip", "farfield",
	"wall", "neumann", "outflow", "periodic"}

func (bc BCFLAG) String() string {
	if int(bc) < len(bcPrintNames) {
		return bcPrintNames[bc]
	}
	return fmt.Sprintf("BCFLAG(%d)", uint8(bc))
}

// NewBCFLAG looks up a boundary condition by its input-file name.
func NewBCFLAG(label string) (bc BCFLAG, err error) {
	var (
		ok bool
	)
	if bc, ok = BCNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown boundary condition type: %q", label)
	}
	return
}
