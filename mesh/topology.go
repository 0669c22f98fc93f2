package mesh

import (
	"fmt"
	"math"

	"github.com/notargets/dgresidual/basis"
)

type LinkKind uint8

const (
	Boundary LinkKind = iota
	SameLevel
	Coarser
	Finer
)

func (lk LinkKind) String() string {
	return [...]string{"boundary", "same-level", "coarser", "finer"}[lk]
}

type faceLink struct {
	kind       LinkKind
	periodic   bool
	boundaryID int
	neighbor   int
	children   []int // indexed by subface
}

const geomTol = 1.e-10

// connect finds the neighbors of every active cell face by matching the
// face planes of the logical boxes.
func (m *Hypercube) connect() (err error) {
	var (
		planes = make(map[string][]int)
	)
	planeKey := func(dir, side int, x float64) string {
		s := (x - m.lower[dir]) / (m.upper[dir] - m.lower[dir])
		return fmt.Sprintf("%d:%d:%d", dir, side, int64(math.Round(s*1.e9)))
	}
	for _, k := range m.active {
		c := m.cells[k]
		for d := 0; d < m.dim; d++ {
			planes[planeKey(d, 0, c.Lo[d])] = append(planes[planeKey(d, 0, c.Lo[d])], k)
			planes[planeKey(d, 1, c.Hi[d])] = append(planes[planeKey(d, 1, c.Hi[d])], k)
		}
	}
	for _, k := range m.active {
		c := m.cells[k]
		c.faces = make([]faceLink, basis.NFaces(m.dim))
		for f := range c.faces {
			var (
				d, s     = basis.FaceDirection(f), basis.FaceSide(f)
				x        = c.Lo[d]
				periodic bool
			)
			if s == 1 {
				x = c.Hi[d]
			}
			switch {
			case s == 0 && near(x, m.lower[d], m.upper[d]-m.lower[d]):
				if !m.periodic[d] {
					c.faces[f] = faceLink{kind: Boundary, boundaryID: f, neighbor: -1}
					continue
				}
				x, periodic = m.upper[d], true
			case s == 1 && near(x, m.upper[d], m.upper[d]-m.lower[d]):
				if !m.periodic[d] {
					c.faces[f] = faceLink{kind: Boundary, boundaryID: f, neighbor: -1}
					continue
				}
				x, periodic = m.lower[d], true
			}
			var (
				touching []int
			)
			for _, nb := range planes[planeKey(d, 1-s, x)] {
				if m.overlaps(c, m.cells[nb], d) {
					touching = append(touching, nb)
				}
			}
			if c.faces[f], err = m.classify(k, f, touching); err != nil {
				return
			}
			c.faces[f].periodic = periodic
			if periodic {
				c.faces[f].boundaryID = f
				if c.faces[f].kind != SameLevel {
					return fmt.Errorf("cell %d face %d: periodic faces must be conforming", k, f)
				}
			}
		}
	}
	return
}

func (m *Hypercube) overlaps(a, b *Cell, normalDir int) bool {
	for d := 0; d < m.dim; d++ {
		if d == normalDir {
			continue
		}
		w := math.Min(a.Hi[d], b.Hi[d]) - math.Max(a.Lo[d], b.Lo[d])
		if w <= geomTol*(m.upper[d]-m.lower[d]) {
			return false
		}
	}
	return true
}

func (m *Hypercube) classify(k, f int, touching []int) (fl faceLink, err error) {
	var (
		c    = m.cells[k]
		dirs = basis.TangentialDirections(m.dim, f)
	)
	fl.neighbor = -1
	if len(touching) == 0 {
		err = fmt.Errorf("cell %d face %d has no neighbor", k, f)
		return
	}
	if len(touching) == 1 {
		nb := m.cells[touching[0]]
		switch {
		case nb.Level == c.Level:
			fl.kind, fl.neighbor = SameLevel, touching[0]
			return
		case nb.Level == c.Level-1:
			fl.kind, fl.neighbor = Coarser, touching[0]
			return
		}
	}
	if len(touching) != basis.NSubfaces(m.dim) {
		err = fmt.Errorf("cell %d face %d: %d neighbors, refinement is not 2:1 balanced",
			k, f, len(touching))
		return
	}
	fl.kind = Finer
	fl.children = make([]int, len(touching))
	for i := range fl.children {
		fl.children[i] = -1
	}
	for _, nb := range touching {
		if m.cells[nb].Level != c.Level+1 {
			err = fmt.Errorf("cell %d face %d: neighbor %d is not one level finer", k, f, nb)
			return
		}
		var sub int
		for j, d := range dirs {
			mid := 0.5 * (c.Lo[d] + c.Hi[d])
			if m.cells[nb].Lo[d] >= mid-geomTol*(m.upper[d]-m.lower[d]) {
				sub |= 1 << j
			}
		}
		fl.children[sub] = nb
	}
	for sub, nb := range fl.children {
		if nb < 0 {
			err = fmt.Errorf("cell %d face %d: subface %d has no child", k, f, sub)
			return
		}
	}
	return
}

func near(a, b, scale float64) bool {
	return math.Abs(a-b) <= geomTol*scale
}

func (m *Hypercube) link(k, f int) faceLink { return m.cells[k].faces[f] }

// AtBoundary is true on the domain boundary, periodic or not.
func (m *Hypercube) AtBoundary(k, f int) bool {
	fl := m.link(k, f)
	return fl.kind == Boundary || fl.periodic
}

func (m *Hypercube) BoundaryID(k, f int) int           { return m.link(k, f).boundaryID }
func (m *Hypercube) HasPeriodicNeighbor(k, f int) bool { return m.link(k, f).periodic }

func (m *Hypercube) PeriodicNeighbor(k, f int) int {
	if !m.link(k, f).periodic {
		return -1
	}
	return m.link(k, f).neighbor
}

// PeriodicNeighborFace is the partner's face number. Partners are always
// the opposite face in the same direction.
func (m *Hypercube) PeriodicNeighborFace(k, f int) int { return f ^ 1 }

func (m *Hypercube) PeriodicNeighborIsCoarser(k, f int) bool {
	fl := m.link(k, f)
	return fl.periodic && fl.kind == Coarser
}

// Neighbor is the cell across an interior face, -1 on the boundary. For a
// face with children it is -1; use NeighborChildOnSubface.
func (m *Hypercube) Neighbor(k, f int) int {
	fl := m.link(k, f)
	if fl.periodic || fl.kind == Boundary {
		return -1
	}
	return fl.neighbor
}

func (m *Hypercube) NeighborOfNeighbor(k, f int) int { return f ^ 1 }
func (m *Hypercube) NeighborIsCoarser(k, f int) bool { return m.link(k, f).kind == Coarser }
func (m *Hypercube) FaceHasChildren(k, f int) bool   { return m.link(k, f).kind == Finer }

func (m *Hypercube) NumSubfaces(k, f int) int {
	return len(m.link(k, f).children)
}

func (m *Hypercube) NeighborChildOnSubface(k, f, sub int) int {
	return m.link(k, f).children[sub]
}

// CountInterfaces returns the number of distinct faces of the active mesh:
// boundary faces, periodic pairs, conforming interior faces and hanging
// sub-faces each count once.
func (m *Hypercube) CountInterfaces() (n int) {
	type pair struct{ a, fa, b, fb int }
	seen := make(map[pair]bool)
	for _, k := range m.active {
		for f, fl := range m.cells[k].faces {
			switch fl.kind {
			case Boundary:
				n++
			case Finer:
				n += len(fl.children)
			case SameLevel:
				p := pair{k, f, fl.neighbor, f ^ 1}
				if fl.neighbor < k || (fl.neighbor == k && f > f^1) {
					p = pair{fl.neighbor, f ^ 1, k, f}
				}
				if !seen[p] {
					seen[p] = true
					n++
				}
			}
		}
	}
	return
}
