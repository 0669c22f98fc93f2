package basis

import "fmt"

// Quadrature is a rule on [0,1]^dim. A rule on zero dimensions is the
// single empty point with weight one, which is what a 1-D face integrates
// with.
type Quadrature struct {
	Points  [][]float64
	Weights []float64
}

func (q Quadrature) Size() int { return len(q.Weights) }

// NewGauss is the n points per direction Gauss-Legendre rule.
func NewGauss(dim, n int) Quadrature {
	x, w := JacobiGQ(0, 0, n-1)
	return tensorRule(dim, x, w)
}

// NewGaussLobatto is the n points per direction Gauss-Lobatto rule,
// collocated with a GaussLobattoNodes basis of degree n-1.
func NewGaussLobatto(dim, n int) Quadrature {
	if n < 2 {
		panic(fmt.Errorf("gauss-lobatto rule needs at least 2 points, got %d", n))
	}
	x := JacobiGL(0, 0, n-1)
	return tensorRule(dim, x, GaussLobattoWeights(x))
}

func tensorRule(dim int, x, w []float64) (q Quadrature) {
	var (
		n  = len(x)
		np = 1
	)
	for d := 0; d < dim; d++ {
		np *= n
	}
	q.Points = make([][]float64, np)
	q.Weights = make([]float64, np)
	for ip := 0; ip < np; ip++ {
		q.Points[ip] = make([]float64, dim)
		q.Weights[ip] = 1
		ii := ip
		for d := 0; d < dim; d++ {
			i := ii % n
			ii /= n
			q.Points[ip][d] = 0.5 * (x[i] + 1)
			q.Weights[ip] *= 0.5 * w[i]
		}
	}
	return
}

func NFaces(dim int) int { return 2 * dim }

// NSubfaces is the number of children of a face under isotropic refinement.
func NSubfaces(dim int) int {
	if dim <= 1 {
		return 1
	}
	return 1 << (dim - 1)
}

// FaceDirection is the reference direction normal to face.
func FaceDirection(face int) int { return face / 2 }

// FaceSide is 0 for the face at coordinate 0 and 1 for the face at 1.
func FaceSide(face int) int { return face % 2 }

// UnitNormal is the outward reference normal of face.
func UnitNormal(dim, face int) (n []float64) {
	n = make([]float64, dim)
	n[FaceDirection(face)] = 1
	if FaceSide(face) == 0 {
		n[FaceDirection(face)] = -1
	}
	return
}

// TangentialDirections lists the reference directions spanning face, in
// increasing order. The face quadrature coordinates follow this order.
func TangentialDirections(dim, face int) (dirs []int) {
	for d := 0; d < dim; d++ {
		if d != FaceDirection(face) {
			dirs = append(dirs, d)
		}
	}
	return
}

// ProjectToFace lifts a dim-1 rule onto face of the unit cell.
func ProjectToFace(q Quadrature, dim, face int) Quadrature {
	return ProjectToSubface(q, dim, face, -1)
}

// ProjectToSubface lifts a dim-1 rule onto child subface of face. Bit j of
// subface selects the upper half along the j-th tangential direction.
// Weights are those of the face rule; the caller scales with the surface
// Jacobian of the child face. subface < 0 projects onto the whole face.
func ProjectToSubface(q Quadrature, dim, face, subface int) (fq Quadrature) {
	var (
		dirs = TangentialDirections(dim, face)
		nd   = FaceDirection(face)
		side = float64(FaceSide(face))
	)
	fq.Points = make([][]float64, q.Size())
	fq.Weights = make([]float64, q.Size())
	copy(fq.Weights, q.Weights)
	for ip, pt := range q.Points {
		p := make([]float64, dim)
		p[nd] = side
		for j, d := range dirs {
			t := pt[j]
			if subface >= 0 {
				t = 0.5 * (t + float64((subface>>j)&1))
			}
			p[d] = t
		}
		fq.Points[ip] = p
	}
	return
}
