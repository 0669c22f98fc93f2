package ad

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Tape is owned by exactly one kernel call. With forward-mode values the
// recording is carried by the values themselves; the tape fixes the number
// of independents, hands out seeded inputs and collects the dependents
// from which derivative blocks are extracted.
type Tape[T Differentiable[T]] struct {
	n         int
	recording bool
	stopped   bool
	seeded    []bool
	outputs   []T
}

func NewTape[T Differentiable[T]](nIndependent int) *Tape[T] {
	if nIndependent <= 0 {
		panic(fmt.Errorf("tape needs at least one independent, got %d", nIndependent))
	}
	return &Tape[T]{
		n:      nIndependent,
		seeded: make([]bool, nIndependent),
	}
}

func (t *Tape[T]) StartRecording() {
	if t.recording || t.stopped {
		panic("tape already used")
	}
	t.recording = true
}

// RegisterInput seeds the independent at position index with value v.
func (t *Tape[T]) RegisterInput(index int, v float64) T {
	var z T
	if !t.recording {
		panic("register input outside of recording")
	}
	if t.seeded[index] {
		panic(fmt.Errorf("independent %d registered twice", index))
	}
	t.seeded[index] = true
	return z.Variable(v, index, t.n)
}

// Passive returns v as a constant of the tape's representation.
func (t *Tape[T]) Passive(v float64) T {
	var z T
	return z.Const(v)
}

func (t *Tape[T]) RegisterOutput(y T) {
	if !t.recording {
		panic("register output outside of recording")
	}
	t.outputs = append(t.outputs, y)
}

func (t *Tape[T]) StopRecording() {
	if !t.recording {
		panic("stop without start")
	}
	t.recording = false
	t.stopped = true
}

// Jacobian returns the dependents x independents derivative matrix.
func (t *Tape[T]) Jacobian() (J *mat.Dense) {
	t.checkStopped()
	if len(t.outputs) == 0 {
		panic("jacobian of a tape without outputs")
	}
	J = mat.NewDense(len(t.outputs), t.n, nil)
	for i, y := range t.outputs {
		J.SetRow(i, y.Gradient(t.n))
	}
	return
}

// Hessian returns the independents x independents second derivative of
// dependent iout. The representation must track curvature.
func (t *Tape[T]) Hessian(iout int) *mat.Dense {
	t.checkStopped()
	so, ok := any(t.outputs[iout]).(SecondOrder)
	if !ok {
		panic(fmt.Errorf("representation of order %d has no hessian", t.outputs[iout].Order()))
	}
	return mat.NewDense(t.n, t.n, so.Hessian(t.n))
}

func (t *Tape[T]) checkStopped() {
	if !t.stopped {
		panic("tape queried before StopRecording")
	}
}
