package InputParameters

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/dgresidual/dg"
	"github.com/notargets/dgresidual/physics"
	"github.com/notargets/dgresidual/types"
)

var fileInput = []byte(`
Title: Warped convection diffusion
Dimension: 2
Subdivisions: [3, 2]
Lower: [0, 0]
Upper: [1, 2]
Periodic: [0]
GeometryDegree: 2
Warp: 0.05
Refine:
  - [1]
PDE: convection_diffusion
AdvectionSpeed: [1, 0.5]
DiffusionCoefficient: 0.1
PolynomialOrder: 2
ConvectiveFlux: central
BCs:
  2:
    Type: Dirichlet
    Value: ["sin(pi*x) + y"]
  3:
    Type: Neumann
InitialCondition: ["x*y + 1"]
`)

func TestParse(t *testing.T) {
	var input InputParameters
	require.NoError(t, input.Parse(fileInput))
	assert.Equal(t, "Warped convection diffusion", input.Title)
	assert.Equal(t, []int{3, 2}, input.Subdivisions)
	assert.Equal(t, []float64{1, 2}, input.Upper)
	assert.Equal(t, [][]int{{1}}, input.Refine)
	assert.Equal(t, "Dirichlet", input.BCs[2].Type)
	assert.Equal(t, []string{"sin(pi*x) + y"}, input.BCs[2].Value)
	assert.Empty(t, input.BCs[3].Value)
	assert.Equal(t, 0.1, input.DiffusionCoefficient)
	input.Print()
}

func TestBuild(t *testing.T) {
	var input InputParameters
	require.NoError(t, input.Parse(fileInput))

	m, err := input.Mesh()
	require.NoError(t, err)
	assert.Len(t, m.ActiveCells(), 9)

	p, err := input.DGParameters()
	require.NoError(t, err)
	assert.Equal(t, physics.PDE_ConvectionDiffusion, p.Physics.PDE)
	assert.Equal(t, 2, p.PolynomialOrder)
	require.Contains(t, p.Physics.BCs, 2)
	assert.Equal(t, types.BC_Dirichlet, p.Physics.BCs[2].Type)
	assert.InDelta(t, 1.0+0.5, p.Physics.BCs[2].Value([]float64{0.5, 0.5})[0], 1e-14)
	assert.Equal(t, types.BC_Neuman, p.Physics.BCs[3].Type)
	assert.Nil(t, p.Physics.BCs[3].Value)

	ic, err := input.Initializer()
	require.NoError(t, err)

	d, err := dg.NewDG(p, m)
	require.NoError(t, err)
	d.AllocateSystem()
	require.NoError(t, d.InitializeSolution(ic))
	require.NoError(t, d.AssembleResidual(dg.Flags{}))
	assert.False(t, math.IsNaN(d.ResidualNorm()))
}

func TestBuildErrors(t *testing.T) {
	var input InputParameters
	require.NoError(t, input.Parse(fileInput))

	bad := input
	bad.PDE = "navier_stokes"
	_, err := bad.DGParameters()
	assert.ErrorIs(t, err, physics.ErrUnsupportedPDE)

	bad = input
	bad.BCs = map[int]BoundaryInput{0: {Type: "dirichlet", Value: []string{"1", "2"}}}
	_, err = bad.DGParameters()
	assert.Error(t, err)

	bad = input
	bad.BCs = map[int]BoundaryInput{0: {Type: "dirichlet", Value: []string{"sin(x"}}}
	_, err = bad.DGParameters()
	assert.Error(t, err)

	bad = input
	bad.Periodic = []int{2}
	_, err = bad.Mesh()
	assert.Error(t, err)

	bad = input
	bad.Refine = [][]int{{1}, {1}}
	_, err = bad.Mesh()
	assert.Error(t, err)
}

func TestExpression(t *testing.T) {
	e, err := Compile("2")
	require.NoError(t, err)
	v, err := e.Eval(nil)
	require.NoError(t, err)
	assert.Equal(t, 2., v)

	e, err = Compile("exp(x) * cos(y) + sqrt(z)")
	require.NoError(t, err)
	v, err = e.Eval([]float64{0, math.Pi, 4})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, v, 1e-14)

	_, err = Compile("w + 1")
	assert.Error(t, err)

	e, err = Compile(`x > 0 ? "yes" : "no"`)
	require.NoError(t, err)
	_, err = e.Eval([]float64{1})
	assert.Error(t, err)

	fn, err := CompileField([]string{"x", `"s"`})
	require.NoError(t, err)
	u := fn([]float64{3})
	assert.Equal(t, 3., u[0])
	assert.True(t, math.IsNaN(u[1]))
}
