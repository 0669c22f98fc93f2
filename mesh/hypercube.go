// Package mesh provides a structured hypercube mesh with isotropic local
// refinement, periodic directions and curved high-order geometry nodes.
// Cells are addressed by a handle (their position in the cell store);
// Index is the position within the cell's refinement level, so cells on
// different levels may share an index.
package mesh

import (
	"fmt"
	"math"

	"github.com/notargets/dgresidual/basis"
)

// Warp maps a logical point of the undeformed box to its physical position.
type Warp func(x []float64) []float64

type Cell struct {
	Level, Index int
	Lo, Hi       []float64
	Parent       int
	Children     []int
	active       bool
	solnDofs     []int
	geomDofs     []int
	faces        []faceLink
}

type Hypercube struct {
	dim          int
	lower, upper []float64
	periodic     []bool
	warp         Warp
	cells        []*Cell
	active       []int
	levelCount   []int
	geomFE       *basis.FESystem
	geomNodes    []float64
	nSolnDofs    int
}

type Option func(m *Hypercube)

// WithPeriodic joins the lower and upper boundaries of the directions.
func WithPeriodic(dirs ...int) Option {
	return func(m *Hypercube) {
		for _, d := range dirs {
			m.periodic[d] = true
		}
	}
}

func WithWarp(w Warp) Option {
	return func(m *Hypercube) { m.warp = w }
}

// NewHypercube subdivides the box [lower, upper] into n[d] cells per
// direction with geometry nodes of degree geomDegree.
func NewHypercube(dim int, n []int, lower, upper []float64, geomDegree int,
	opts ...Option) (m *Hypercube, err error) {
	if dim < 1 || dim > 3 {
		err = fmt.Errorf("unsupported dimension %d", dim)
		return
	}
	if len(n) != dim || len(lower) != dim || len(upper) != dim {
		err = fmt.Errorf("need %d subdivisions and bounds, got %d, %d, %d",
			dim, len(n), len(lower), len(upper))
		return
	}
	if geomDegree < 1 {
		err = fmt.Errorf("geometry degree must be at least 1, got %d", geomDegree)
		return
	}
	m = &Hypercube{
		dim:      dim,
		lower:    append([]float64{}, lower...),
		upper:    append([]float64{}, upper...),
		periodic: make([]bool, dim),
		warp:     func(x []float64) []float64 { return append([]float64{}, x...) },
		geomFE: basis.NewFESystem(
			basis.NewTensorLagrange(dim, geomDegree, basis.GaussLobattoNodes), dim),
	}
	for _, opt := range opts {
		opt(m)
	}
	var (
		total = 1
	)
	for d := 0; d < dim; d++ {
		if n[d] < 1 || upper[d] <= lower[d] {
			err = fmt.Errorf("bad subdivision %d of [%g,%g] in direction %d",
				n[d], lower[d], upper[d], d)
			return
		}
		total *= n[d]
	}
	for k := 0; k < total; k++ {
		var (
			c  = &Cell{Level: 0, Index: k, Parent: -1, active: true}
			kk = k
		)
		c.Lo, c.Hi = make([]float64, dim), make([]float64, dim)
		for d := 0; d < dim; d++ {
			i := kk % n[d]
			kk /= n[d]
			h := (upper[d] - lower[d]) / float64(n[d])
			c.Lo[d] = lower[d] + float64(i)*h
			c.Hi[d] = lower[d] + float64(i+1)*h
			if i == n[d]-1 {
				c.Hi[d] = upper[d]
			}
		}
		m.cells = append(m.cells, c)
	}
	m.levelCount = []int{total}
	err = m.rebuild()
	return
}

// Refine splits every listed active cell into 2^dim children.
func (m *Hypercube) Refine(cells ...int) (err error) {
	for _, k := range cells {
		if k < 0 || k >= len(m.cells) || !m.cells[k].active {
			return fmt.Errorf("cell %d is not an active cell", k)
		}
		var (
			parent = m.cells[k]
			level  = parent.Level + 1
		)
		if len(m.levelCount) <= level {
			m.levelCount = append(m.levelCount, 0)
		}
		for ic := 0; ic < 1<<m.dim; ic++ {
			c := &Cell{Level: level, Index: m.levelCount[level], Parent: k, active: true}
			m.levelCount[level]++
			c.Lo, c.Hi = make([]float64, m.dim), make([]float64, m.dim)
			for d := 0; d < m.dim; d++ {
				mid := 0.5 * (parent.Lo[d] + parent.Hi[d])
				if (ic>>d)&1 == 0 {
					c.Lo[d], c.Hi[d] = parent.Lo[d], mid
				} else {
					c.Lo[d], c.Hi[d] = mid, parent.Hi[d]
				}
			}
			parent.Children = append(parent.Children, len(m.cells))
			m.cells = append(m.cells, c)
		}
		parent.active = false
	}
	return m.rebuild()
}

func (m *Hypercube) rebuild() (err error) {
	m.active = m.active[:0]
	for level := range m.levelCount {
		for k, c := range m.cells {
			if c.active && c.Level == level {
				m.active = append(m.active, k)
			}
		}
	}
	if err = m.connect(); err != nil {
		return
	}
	m.distributeGeometry()
	m.nSolnDofs = 0
	return
}

// distributeGeometry numbers the geometry nodes, sharing nodes that
// coincide in the logical box.
func (m *Hypercube) distributeGeometry() {
	var (
		base   = m.geomFE.Base.SupportPoints()
		lookup = make(map[string]int)
		x      = make([]float64, m.dim)
	)
	m.geomNodes = m.geomNodes[:0]
	for _, k := range m.active {
		c := m.cells[k]
		c.geomDofs = make([]int, m.geomFE.NDofs())
		for ib, xi := range base {
			for d := 0; d < m.dim; d++ {
				x[d] = c.Lo[d] + xi[d]*(c.Hi[d]-c.Lo[d])
			}
			key := m.pointKey(x)
			start, ok := lookup[key]
			if !ok {
				start = len(m.geomNodes)
				lookup[key] = start
				m.geomNodes = append(m.geomNodes, m.warp(x)...)
			}
			for d := 0; d < m.dim; d++ {
				c.geomDofs[ib*m.dim+d] = start + d
			}
		}
	}
}

func (m *Hypercube) pointKey(x []float64) (key string) {
	for d, v := range x {
		s := (v - m.lower[d]) / (m.upper[d] - m.lower[d])
		key += fmt.Sprintf("%d,", int64(math.Round(s*1.e9)))
	}
	return
}

// DistributeDofs gives every active cell nPerCell consecutive solution
// dofs in active-cell order and returns the total.
func (m *Hypercube) DistributeDofs(nPerCell int) int {
	m.nSolnDofs = 0
	for _, k := range m.active {
		c := m.cells[k]
		c.solnDofs = make([]int, nPerCell)
		for i := range c.solnDofs {
			c.solnDofs[i] = m.nSolnDofs
			m.nSolnDofs++
		}
	}
	return m.nSolnDofs
}

func (m *Hypercube) Dim() int                        { return m.dim }
func (m *Hypercube) NumCells() int                   { return len(m.cells) }
func (m *Hypercube) ActiveCells() []int              { return m.active }
func (m *Hypercube) Cell(k int) *Cell                { return m.cells[k] }
func (m *Hypercube) Index(k int) int                 { return m.cells[k].Index }
func (m *Hypercube) Level(k int) int                 { return m.cells[k].Level }
func (m *Hypercube) SolutionDofs(k int) []int        { return m.cells[k].solnDofs }
func (m *Hypercube) GeometryDofs(k int) []int        { return m.cells[k].geomDofs }
func (m *Hypercube) GeometryElement() *basis.FESystem { return m.geomFE }
func (m *Hypercube) NumSolutionDofs() int            { return m.nSolnDofs }
func (m *Hypercube) NumGeometryDofs() int            { return len(m.geomNodes) }

// GeometryNodes returns a copy of the initial geometry node coordinates.
func (m *Hypercube) GeometryNodes() []float64 {
	return append([]float64{}, m.geomNodes...)
}

// Vertex returns the physical position of corner iv of cell k.
func (m *Hypercube) Vertex(k, iv int) []float64 {
	var (
		c = m.cells[k]
		x = make([]float64, m.dim)
	)
	for d := 0; d < m.dim; d++ {
		x[d] = c.Lo[d]
		if (iv>>d)&1 == 1 {
			x[d] = c.Hi[d]
		}
	}
	return m.warp(x)
}

// ExtentInDirection is the mean physical length of the cell edges parallel
// to reference direction dir.
func (m *Hypercube) ExtentInDirection(k, dir int) (ext float64) {
	var (
		n int
	)
	for iv := 0; iv < 1<<m.dim; iv++ {
		if (iv>>dir)&1 == 1 {
			continue
		}
		ext += dist(m.Vertex(k, iv), m.Vertex(k, iv|1<<dir))
		n++
	}
	ext /= float64(n)
	return
}

// Diameter is the longest cell diagonal.
func (m *Hypercube) Diameter(k int) (diam float64) {
	var (
		nv = 1 << m.dim
	)
	for iv := 0; iv < nv/2; iv++ {
		diam = math.Max(diam, dist(m.Vertex(k, iv), m.Vertex(k, nv-1-iv)))
	}
	return
}

func dist(a, b []float64) (r float64) {
	for i := range a {
		r += (a[i] - b[i]) * (a[i] - b[i])
	}
	return math.Sqrt(r)
}

// SinusoidalWarp perturbs the interior of the box with a product of sines
// that vanishes on the box boundary.
func SinusoidalWarp(amplitude float64, lower, upper []float64) Warp {
	return func(x []float64) (y []float64) {
		var (
			s = amplitude
		)
		y = append([]float64{}, x...)
		for d := range x {
			L := upper[d] - lower[d]
			s *= math.Sin(math.Pi * (x[d] - lower[d]) / L)
		}
		for d := range y {
			y[d] += s * (upper[d] - lower[d])
		}
		return
	}
}
