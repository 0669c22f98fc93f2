package ad

import "fmt"

func checkLength(got, want int) {
	if got != want {
		panic(fmt.Errorf("mixed derivative lengths: %d != %d", got, want))
	}
}

// lin returns alpha*x + beta*y, treating nil as zero.
func lin(alpha float64, x []float64, beta float64, y []float64) (r []float64) {
	switch {
	case x == nil && y == nil:
		return nil
	case y == nil:
		return scale(alpha, x)
	case x == nil:
		return scale(beta, y)
	}
	checkLength(len(x), len(y))
	r = make([]float64, len(x))
	for i := range x {
		r[i] = alpha*x[i] + beta*y[i]
	}
	return
}

func scale(s float64, x []float64) (r []float64) {
	if x == nil {
		return nil
	}
	if s == 1 {
		return x
	}
	r = make([]float64, len(x))
	for i, v := range x {
		r[i] = s * v
	}
	return
}

// addOuter returns h + s*g*g^T without touching h.
func addOuter(h []float64, s float64, g []float64) []float64 {
	if g == nil || s == 0 {
		return h
	}
	return addSymOuterScaled(h, 0.5*s, g, g)
}

// addSymOuter returns h + s*(x*y^T + y*x^T) without touching h.
func addSymOuter(h []float64, s float64, x, y []float64) []float64 {
	if x == nil || y == nil || s == 0 {
		return h
	}
	return addSymOuterScaled(h, s, x, y)
}

func addSymOuterScaled(h []float64, s float64, x, y []float64) (r []float64) {
	n := len(x)
	checkLength(len(y), n)
	r = make([]float64, n*n)
	if h != nil {
		checkLength(len(h), n*n)
		copy(r, h)
	}
	for i := 0; i < n; i++ {
		if x[i] == 0 && y[i] == 0 {
			continue
		}
		row := r[i*n : (i+1)*n]
		for j := 0; j < n; j++ {
			row[j] += s * (x[i]*y[j] + y[i]*x[j])
		}
	}
	return
}
