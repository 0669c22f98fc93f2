package InputParameters

import (
	"fmt"
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

var coordinates = []string{"x", "y", "z"}

// environment is the symbol table every expression compiles against. The
// coordinates are overwritten per evaluation.
func environment() map[string]any {
	return map[string]any{
		"x": 0., "y": 0., "z": 0.,
		"pi":   math.Pi,
		"sin":  math.Sin,
		"cos":  math.Cos,
		"tan":  math.Tan,
		"exp":  math.Exp,
		"log":  math.Log,
		"sqrt": math.Sqrt,
		"pow":  math.Pow,
		"tanh": math.Tanh,
	}
}

// Expression is a compiled scalar function of the physical coordinates.
type Expression struct {
	Source  string
	program *vm.Program
}

func Compile(src string) (e *Expression, err error) {
	var (
		prog *vm.Program
	)
	if prog, err = expr.Compile(src, expr.Env(environment())); err != nil {
		return nil, fmt.Errorf("expression %q: %w", src, err)
	}
	return &Expression{Source: src, program: prog}, nil
}

// Eval evaluates e at x; missing coordinates are zero.
func (e *Expression) Eval(x []float64) (v float64, err error) {
	var (
		env = environment()
		out any
	)
	for d, c := range coordinates {
		if d < len(x) {
			env[c] = x[d]
		}
	}
	if out, err = expr.Run(e.program, env); err != nil {
		return 0, fmt.Errorf("expression %q: %w", e.Source, err)
	}
	switch val := out.(type) {
	case float64:
		v = val
	case int:
		v = float64(val)
	default:
		err = fmt.Errorf("expression %q: %T is not a number", e.Source, out)
	}
	return
}

// CompileField compiles one expression per component into a vector field.
// A component that fails to evaluate is NaN, which the assembly rejects as
// a non-finite value.
func CompileField(srcs []string) (fn func(x []float64) []float64, err error) {
	exprs := make([]*Expression, len(srcs))
	for i, src := range srcs {
		if exprs[i], err = Compile(src); err != nil {
			return
		}
	}
	fn = func(x []float64) (u []float64) {
		u = make([]float64, len(exprs))
		for i, e := range exprs {
			var err error
			if u[i], err = e.Eval(x); err != nil {
				u[i] = math.NaN()
			}
		}
		return
	}
	return
}
