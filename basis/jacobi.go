// Package basis provides the reference-cell machinery the residual kernels
// consume: Gauss rules from the Jacobi recurrences, tensor-product Lagrange
// bases on the unit hypercube [0,1]^dim and vector-valued systems of them,
// and the projection of face quadrature onto cell faces and sub-faces.
package basis

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

func gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1.
	a1 := alpha + 1.
	b1 := beta + 1.
	return math.Gamma(a1) * math.Gamma(b1) * math.Pow(2, ab1) / ab1 / math.Gamma(ab1)
}

// JacobiGQ returns the N+1 point Gauss quadrature for the Jacobi weight
// (1-x)^alpha (1+x)^beta on [-1,1], nodes ascending.
func JacobiGQ(alpha, beta float64, N int) (x, w []float64) {
	var (
		h1, d0, d1 []float64
		fac        float64
	)
	if N == 0 {
		x = []float64{-(alpha - beta) / (alpha + beta + 2.)}
		w = []float64{2.}
		return
	}
	h1 = make([]float64, N+1)
	for i := 0; i < N+1; i++ {
		h1[i] = 2*float64(i) + alpha + beta
	}
	// main diagonal: -1/2*(alpha^2-beta^2)/(h1+2)/h1
	d0 = make([]float64, N+1)
	fac = -.5 * (alpha*alpha - beta*beta)
	for i := 0; i < N+1; i++ {
		val := h1[i]
		d0[i] = fac / (val * (val + 2.))
	}
	if alpha+beta < 10*1.e-16 {
		d0[0] = 0.
	}
	d1 = make([]float64, N)
	for i := 0; i < N; i++ {
		ip1 := float64(i + 1)
		val := h1[i]
		d1[i] = 2. / (val + 2.)
		d1[i] *= math.Sqrt(ip1 * (ip1 + alpha + beta) * (ip1 + alpha) * (ip1 + beta) / ((val + 1.) * (val + 3.)))
	}
	JJ := mat.NewSymDense(N+1, nil)
	for i := 0; i < N+1; i++ {
		JJ.SetSym(i, i, d0[i])
		if i < N {
			JJ.SetSym(i, i+1, d1[i])
		}
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(JJ, true); !ok {
		panic("eigenvalue decomposition failed")
	}
	x = eig.Values(nil)
	var VVr mat.Dense
	eig.VectorsTo(&VVr)
	w = make([]float64, N+1)
	g0 := gamma0(alpha, beta)
	for i, v := range VVr.RawRowView(0) {
		w[i] = v * v * g0
	}
	return
}

// JacobiGL returns the N+1 Gauss-Lobatto nodes on [-1,1].
func JacobiGL(alpha, beta float64, N int) (x []float64) {
	x = make([]float64, N+1)
	switch N {
	case 0:
		x[0] = 0
		return
	case 1:
		x[0], x[1] = -1, 1
		return
	}
	xint, _ := JacobiGQ(alpha+1, beta+1, N-2)
	x[0], x[N] = -1, 1
	copy(x[1:N], xint)
	return
}

// GaussLobattoWeights are the Legendre Gauss-Lobatto weights for nodes x on
// [-1,1]: 2/(N(N+1) P_N(x)^2).
func GaussLobattoWeights(x []float64) (w []float64) {
	N := len(x) - 1
	w = make([]float64, N+1)
	if N == 0 {
		w[0] = 2
		return
	}
	for i, xi := range x {
		p := legendre(N, xi)
		w[i] = 2. / (float64(N*(N+1)) * p * p)
	}
	return
}

func legendre(n int, x float64) float64 {
	var (
		p0, p1 = 1., x
	)
	if n == 0 {
		return p0
	}
	for k := 1; k < n; k++ {
		kf := float64(k)
		p0, p1 = p1, ((2*kf+1)*x*p1-kf*p0)/(kf+1)
	}
	return p1
}
