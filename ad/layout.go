package ad

// Range is a half-open span of independent positions.
type Range struct {
	Begin, End int
}

func (r Range) Len() int { return r.End - r.Begin }

// Layout orders the independents of one kernel call as
// [w_int, w_ext, x_int, x_ext]. A single-cell call has empty exterior
// groups. A group that is not differentiated keeps its place in the
// ordering with zero width.
type Layout struct {
	W [2]Range
	X [2]Range
	N int
}

// NewLayout builds the layout for nW solution and nX geometry
// coefficients per side.
func NewLayout(wrtW, wrtX bool, nW, nX [2]int) (l Layout) {
	var (
		next int
	)
	place := func(active bool, n int) (r Range) {
		r.Begin = next
		if active {
			next += n
		}
		r.End = next
		return
	}
	l.W[0] = place(wrtW, nW[0])
	l.W[1] = place(wrtW, nW[1])
	l.X[0] = place(wrtX, nX[0])
	l.X[1] = place(wrtX, nX[1])
	l.N = next
	return
}

// CellLayout is the single-cell form [w, x].
func CellLayout(wrtW, wrtX bool, nW, nX int) Layout {
	return NewLayout(wrtW, wrtX, [2]int{nW, 0}, [2]int{nX, 0})
}
