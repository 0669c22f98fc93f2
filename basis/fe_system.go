package basis

// TensorLagrange is the scalar Lagrange basis of one degree in every
// direction on [0,1]^dim. Basis functions are numbered lexicographically,
// first coordinate fastest.
type TensorLagrange struct {
	Dim int
	L   *Lagrange1D
}

func NewTensorLagrange(dim, degree int, family NodeFamily) *TensorLagrange {
	return &TensorLagrange{Dim: dim, L: NewLagrange1D(degree, family)}
}

func (tl *TensorLagrange) Degree() int { return tl.L.Degree() }

func (tl *TensorLagrange) NBase() (n int) {
	n = 1
	for d := 0; d < tl.Dim; d++ {
		n *= len(tl.L.Nodes)
	}
	return
}

func (tl *TensorLagrange) multiIndex(i int) (mi []int) {
	var (
		n1 = len(tl.L.Nodes)
	)
	mi = make([]int, tl.Dim)
	for d := 0; d < tl.Dim; d++ {
		mi[d] = i % n1
		i /= n1
	}
	return
}

func (tl *TensorLagrange) Value(i int, p []float64) (v float64) {
	v = 1
	for d, id := range tl.multiIndex(i) {
		v *= tl.L.Value(id, p[d])
	}
	return
}

func (tl *TensorLagrange) Grad(i int, p []float64) (g []float64) {
	var (
		mi = tl.multiIndex(i)
	)
	g = make([]float64, tl.Dim)
	for d := range g {
		g[d] = 1
		for e, ie := range mi {
			if e == d {
				g[d] *= tl.L.Derivative(ie, p[e])
			} else {
				g[d] *= tl.L.Value(ie, p[e])
			}
		}
	}
	return
}

// SupportPoints are the nodes of the basis, in basis order.
func (tl *TensorLagrange) SupportPoints() (pts [][]float64) {
	pts = make([][]float64, tl.NBase())
	for i := range pts {
		pts[i] = make([]float64, tl.Dim)
		for d, id := range tl.multiIndex(i) {
			pts[i][d] = tl.L.Nodes[id]
		}
	}
	return
}

// FESystem is NComponents copies of a scalar base. Dof i belongs to
// component i % NComponents and uses base function i / NComponents.
type FESystem struct {
	Base        *TensorLagrange
	NComponents int
}

func NewFESystem(base *TensorLagrange, nComponents int) *FESystem {
	return &FESystem{Base: base, NComponents: nComponents}
}

func (fe *FESystem) Dim() int    { return fe.Base.Dim }
func (fe *FESystem) Degree() int { return fe.Base.Degree() }
func (fe *FESystem) NDofs() int  { return fe.Base.NBase() * fe.NComponents }

func (fe *FESystem) ComponentIndex(idof int) int { return idof % fe.NComponents }
func (fe *FESystem) BaseIndex(idof int) int      { return idof / fe.NComponents }

func (fe *FESystem) ShapeValue(idof int, p []float64) float64 {
	return fe.Base.Value(fe.BaseIndex(idof), p)
}

func (fe *FESystem) ShapeGrad(idof int, p []float64) []float64 {
	return fe.Base.Grad(fe.BaseIndex(idof), p)
}

// UnitSupportPoints returns the reference support point of every dof.
func (fe *FESystem) UnitSupportPoints() (pts [][]float64) {
	base := fe.Base.SupportPoints()
	pts = make([][]float64, fe.NDofs())
	for i := range pts {
		pts[i] = base[fe.BaseIndex(i)]
	}
	return
}

// Tabulate evaluates every dof's value and reference gradient at the
// points: vals[idof][q], grads[idof][q][d].
func (fe *FESystem) Tabulate(points [][]float64) (vals [][]float64, grads [][][]float64) {
	var (
		nb = fe.Base.NBase()
		bv = make([][]float64, nb)
		bg = make([][][]float64, nb)
	)
	for ib := 0; ib < nb; ib++ {
		bv[ib] = make([]float64, len(points))
		bg[ib] = make([][]float64, len(points))
		for q, p := range points {
			bv[ib][q] = fe.Base.Value(ib, p)
			bg[ib][q] = fe.Base.Grad(ib, p)
		}
	}
	vals = make([][]float64, fe.NDofs())
	grads = make([][][]float64, fe.NDofs())
	for idof := range vals {
		vals[idof] = bv[fe.BaseIndex(idof)]
		grads[idof] = bg[fe.BaseIndex(idof)]
	}
	return
}
