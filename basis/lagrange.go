package basis

import "fmt"

// NodeFamily selects the 1-D nodes of a Lagrange basis.
type NodeFamily uint8

const (
	GaussLobattoNodes NodeFamily = iota
	GaussLegendreNodes
	EquidistantNodes
)

// Lagrange1D is the nodal Lagrange basis of degree len(Nodes)-1 on [0,1].
type Lagrange1D struct {
	Nodes []float64
	denom []float64
}

func NewLagrange1D(degree int, family NodeFamily) (lb *Lagrange1D) {
	var (
		r = make([]float64, degree+1)
	)
	switch family {
	case GaussLobattoNodes:
		r = JacobiGL(0, 0, degree)
	case GaussLegendreNodes:
		r, _ = JacobiGQ(0, 0, degree)
	case EquidistantNodes:
		for i := range r {
			if degree == 0 {
				r[i] = 0
				continue
			}
			r[i] = -1 + 2*float64(i)/float64(degree)
		}
	default:
		panic(fmt.Errorf("unknown node family %d", family))
	}
	lb = &Lagrange1D{Nodes: make([]float64, degree+1), denom: make([]float64, degree+1)}
	for i, ri := range r {
		lb.Nodes[i] = 0.5 * (ri + 1)
	}
	for i, xi := range lb.Nodes {
		d := 1.
		for j, xj := range lb.Nodes {
			if j != i {
				d *= xi - xj
			}
		}
		lb.denom[i] = d
	}
	return
}

func (lb *Lagrange1D) Degree() int { return len(lb.Nodes) - 1 }

// Value of basis function i at x.
func (lb *Lagrange1D) Value(i int, x float64) float64 {
	p := 1.
	for j, xj := range lb.Nodes {
		if j != i {
			p *= x - xj
		}
	}
	return p / lb.denom[i]
}

// Derivative of basis function i at x.
func (lb *Lagrange1D) Derivative(i int, x float64) (d float64) {
	for k := range lb.Nodes {
		if k == i {
			continue
		}
		p := 1.
		for j, xj := range lb.Nodes {
			if j != i && j != k {
				p *= x - xj
			}
		}
		d += p
	}
	d /= lb.denom[i]
	return
}
