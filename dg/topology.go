package dg

import (
	"github.com/notargets/dgresidual/basis"
)

// Topology is what the engine needs from a mesh: the active cells, their
// dof lists and geometry, and the neighbor queries of every face.
// *mesh.Hypercube satisfies it.
type Topology interface {
	Dim() int
	ActiveCells() []int
	Index(k int) int
	Level(k int) int
	DistributeDofs(nPerCell int) int
	SolutionDofs(k int) []int
	GeometryDofs(k int) []int
	GeometryElement() *basis.FESystem
	NumGeometryDofs() int
	GeometryNodes() []float64
	ExtentInDirection(k, dir int) float64

	AtBoundary(k, f int) bool
	BoundaryID(k, f int) int
	HasPeriodicNeighbor(k, f int) bool
	PeriodicNeighbor(k, f int) int
	PeriodicNeighborFace(k, f int) int
	PeriodicNeighborIsCoarser(k, f int) bool
	Neighbor(k, f int) int
	NeighborOfNeighbor(k, f int) int
	NeighborIsCoarser(k, f int) bool
	FaceHasChildren(k, f int) bool
	NumSubfaces(k, f int) int
	NeighborChildOnSubface(k, f, sub int) int
}

// periodic1D joins the two ends of a 1-D mesh that was built without
// periodicity: the cell whose left face is on the boundary and the cell
// whose right face is on the boundary become partners.
type periodic1D struct {
	Topology
	first, last int
}

func newPeriodic1D(t Topology) Topology {
	p := &periodic1D{Topology: t, first: -1, last: -1}
	for _, k := range t.ActiveCells() {
		if t.AtBoundary(k, 0) && !t.HasPeriodicNeighbor(k, 0) {
			p.first = k
		}
		if t.AtBoundary(k, 1) && !t.HasPeriodicNeighbor(k, 1) {
			p.last = k
		}
	}
	if p.first < 0 || p.last < 0 {
		return t
	}
	return p
}

func (p *periodic1D) wraps(k, f int) bool {
	return (k == p.first && f == 0) || (k == p.last && f == 1)
}

func (p *periodic1D) partner(k, f int) int {
	if f == 0 {
		return p.last
	}
	return p.first
}

func (p *periodic1D) HasPeriodicNeighbor(k, f int) bool {
	return p.wraps(k, f) || p.Topology.HasPeriodicNeighbor(k, f)
}

func (p *periodic1D) PeriodicNeighbor(k, f int) int {
	if p.wraps(k, f) {
		return p.partner(k, f)
	}
	return p.Topology.PeriodicNeighbor(k, f)
}

func (p *periodic1D) PeriodicNeighborIsCoarser(k, f int) bool {
	if p.wraps(k, f) {
		return p.Level(p.partner(k, f)) < p.Level(k)
	}
	return p.Topology.PeriodicNeighborIsCoarser(k, f)
}
