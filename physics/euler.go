package physics

import (
	"math"

	"github.com/notargets/dgresidual/ad"
	"github.com/notargets/dgresidual/types"
)

// Euler is the compressible Euler system in conservative variables
// (rho, rho u_1..rho u_dim, E) for a calorically perfect gas.
type Euler[T ad.Number[T]] struct {
	dim               int
	Gamma, GM1, OOGM1 float64
	Qinf              []float64
	Pinf, Cinf, Minf  float64
	bcs               map[int]BoundaryCondition
}

func newEuler[T ad.Number[T]](p Parameters) (c *Euler[T]) {
	var (
		rho   = p.FreeStream[0]
		vel   = p.FreeStream[1 : p.Dim+1]
		pres  = p.FreeStream[p.Dim+1]
		vmag2 float64
	)
	c = &Euler[T]{
		dim:   p.Dim,
		Gamma: p.Gamma,
		GM1:   p.Gamma - 1,
		OOGM1: 1 / (p.Gamma - 1),
		Pinf:  pres,
		bcs:   p.BCs,
	}
	c.Qinf = make([]float64, p.Dim+2)
	c.Qinf[0] = rho
	for d, v := range vel {
		c.Qinf[d+1] = rho * v
		vmag2 += v * v
	}
	c.Qinf[p.Dim+1] = pres*c.OOGM1 + 0.5*rho*vmag2
	c.Cinf = math.Sqrt(c.Gamma * pres / rho)
	c.Minf = math.Sqrt(vmag2) / c.Cinf
	return
}

func (c *Euler[T]) NState() int { return c.dim + 2 }
func (c *Euler[T]) Dim() int    { return c.dim }

func (c *Euler[T]) velocity(q []T) (vel []T) {
	vel = make([]T, c.dim)
	for d := range vel {
		vel[d] = q[d+1].Div(q[0])
	}
	return
}

func (c *Euler[T]) pressure(q []T) T {
	var (
		rho = q[0]
		E   = q[c.dim+1]
		ke  = ad.Zero[T]()
	)
	for d := 0; d < c.dim; d++ {
		ke = ke.Add(q[d+1].Mul(q[d+1]))
	}
	ke = ke.Div(rho).Scale(0.5)
	return E.Sub(ke).Scale(c.GM1)
}

func (c *Euler[T]) soundSpeed(q []T) T {
	return c.pressure(q).Div(q[0]).Scale(c.Gamma).Sqrt()
}

func (c *Euler[T]) ConvectiveFlux(q []T) (F [][]T) {
	var (
		vel = c.velocity(q)
		p   = c.pressure(q)
		E   = q[c.dim+1]
	)
	F = ad.Matrix[T](c.dim+2, c.dim)
	for d := 0; d < c.dim; d++ {
		F[0][d] = q[d+1]
		for i := 0; i < c.dim; i++ {
			F[i+1][d] = q[i+1].Mul(vel[d])
			if i == d {
				F[i+1][d] = F[i+1][d].Add(p)
			}
		}
		F[c.dim+1][d] = E.Add(p).Mul(vel[d])
	}
	return
}

func (c *Euler[T]) MaxNormalEigenvalue(q []T, n []T) T {
	return ad.Dot(c.velocity(q), n).Abs().Add(c.soundSpeed(q))
}

func (c *Euler[T]) DissipativeFlux(q []T, grad [][]T) [][]T {
	return zeroFlux[T](c.dim+2, c.dim)
}

func (c *Euler[T]) ArtificialDissipativeFlux(eps T, q []T, grad [][]T) [][]T {
	return laplacianFlux(eps, grad)
}

func (c *Euler[T]) SourceTerm(x []T, q []T) []T {
	return ad.Vector[T](c.dim + 2)
}

func (c *Euler[T]) freeStream(x []T) []T {
	return ad.Consts[T](c.Qinf)
}

func (c *Euler[T]) BoundaryFaceValues(id int, x, n, qInt []T,
	gradInt [][]T) (qExt []T, gradExt [][]T) {
	bc, ok := c.bcs[id]
	if !ok {
		bc = BoundaryCondition{Type: types.BC_Far}
	}
	gradExt = copyGrad(gradInt)
	switch bc.Type {
	case types.BC_Wall, types.BC_Slip:
		// Mirror state: the normal momentum changes sign.
		qExt = append([]T{}, qInt...)
		mn := ad.Zero[T]()
		for d := 0; d < c.dim; d++ {
			mn = mn.Add(qInt[d+1].Mul(n[d]))
		}
		for d := 0; d < c.dim; d++ {
			qExt[d+1] = qInt[d+1].Sub(mn.Mul(n[d]).Scale(2))
		}
	case types.BC_Dirichlet, types.BC_In:
		qExt = boundaryValue(bc, x, c.freeStream)
	case types.BC_Far:
		qExt = c.RiemannBC(qInt, boundaryValue(bc, x, c.freeStream), n)
	default:
		qExt = append([]T{}, qInt...)
	}
	return
}

// RiemannBC uses the Riemann invariants along the boundary normal to blend
// the interior and far-field states:
//
//	Rinf = VnormInf - 2 Cinf / (Gamma-1)
//	Rint = VnormInt + 2 Cint / (Gamma-1)
//	Vn = (Rint + Rinf) / 2,  C = (Gamma-1) (Rint - Rinf) / 4
//
// Entropy and tangential velocity come from the upwind side.
func (c *Euler[T]) RiemannBC(qInt, qInf []T, n []T) (q []T) {
	var (
		velInt   = c.velocity(qInt)
		velInf   = c.velocity(qInf)
		VnormInt = ad.Dot(velInt, n)
		VnormInf = ad.Dot(velInf, n)
	)
	if c.Minf > 1 {
		if VnormInt.Value() < 0 {
			return append([]T{}, qInf...)
		}
		return append([]T{}, qInt...)
	}
	var (
		CInt  = c.soundSpeed(qInt)
		CInf  = c.soundSpeed(qInf)
		Rinf  = VnormInf.Sub(CInf.Scale(2 * c.OOGM1))
		Rint  = VnormInt.Add(CInt.Scale(2 * c.OOGM1))
		Vnorm = Rint.Add(Rinf).Scale(0.5)
		C     = Rint.Sub(Rinf).Scale(0.25 * c.GM1)
		src   = qInt
		vsrc  = velInt
		vnsrc = VnormInt
	)
	if VnormInt.Value() < 0 {
		src, vsrc, vnsrc = qInf, velInf, VnormInf
	}
	Beta := c.pressure(src).Div(src[0].Pow(c.Gamma))
	rho := C.Mul(C).Div(Beta.Scale(c.Gamma)).Pow(c.OOGM1)
	p := Beta.Mul(rho.Pow(c.Gamma))
	q = make([]T, c.dim+2)
	q[0] = rho
	ke := ad.Zero[T]()
	for d := 0; d < c.dim; d++ {
		// tangential part of the upwind velocity plus the new normal part
		u := vsrc[d].Sub(vnsrc.Mul(n[d])).Add(Vnorm.Mul(n[d]))
		q[d+1] = rho.Mul(u)
		ke = ke.Add(u.Mul(u))
	}
	q[c.dim+1] = p.Scale(c.OOGM1).Add(rho.Mul(ke).Scale(0.5))
	return
}
