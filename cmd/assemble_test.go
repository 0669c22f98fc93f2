package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/dgresidual/dg"
)

var advectionInput = []byte(`
Title: Periodic advection
Dimension: 1
Subdivisions: [4]
Lower: [0]
Upper: [1]
Periodic: [0]
PDE: advection
AdvectionSpeed: [1]
PolynomialOrder: 1
ConvectiveFlux: lax_friedrichs
InitialCondition: ["sin(2*pi*x)"]
ParallelDegree: 2
`)

func writeInput(t *testing.T, data []byte) string {
	path := filepath.Join(t.TempDir(), "case.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRunAssemble(t *testing.T) {
	var (
		out, logs bytes.Buffer
		metrics   = filepath.Join(t.TempDir(), "pass.prom")
		opts      = &AssembleOptions{
			ICFile:      writeInput(t, advectionInput),
			Flags:       dg.Flags{DRdW: true},
			DualWeight:  1,
			Mass:        true,
			MetricsFile: metrics,
			Perf:        true,
			LogFormat:   "json",
			LogLevel:    "info",
		}
	)
	require.NoError(t, RunAssemble(&out, &logs, opts))
	table := out.String()
	assert.Contains(t, table, "dRdW")
	assert.Contains(t, table, "faces periodic")
	assert.Contains(t, table, "faces same_level")
	assert.Contains(t, table, "nnz mass")
	assert.Contains(t, logs.String(), `"msg":"assemble.done"`)

	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "dgresidual_")
}

func TestRunAssembleErrors(t *testing.T) {
	var (
		out, logs bytes.Buffer
		path      = writeInput(t, advectionInput)
	)
	err := RunAssemble(&out, &logs, &AssembleOptions{})
	assert.Error(t, err)

	err = RunAssemble(&out, &logs, &AssembleOptions{ICFile: path, Flags: dg.Flags{DRdW: true, D2R: true}})
	assert.ErrorIs(t, err, dg.ErrUnsupportedMode)

	err = RunAssemble(&out, &logs, &AssembleOptions{ICFile: path, Profile: "block", LogLevel: "info"})
	assert.Error(t, err)

	err = RunAssemble(&out, &logs, &AssembleOptions{ICFile: path, LogLevel: "loud"})
	assert.Error(t, err)

	err = RunAssemble(&out, &logs, &AssembleOptions{ICFile: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)

	bad := writeInput(t, []byte("PDE: advection\nDimension: 1\nAdvectionSpeed: [1]\nInitialCondition: [\"1/0 +\"]\n"))
	err = RunAssemble(&out, &logs, &AssembleOptions{ICFile: bad, LogLevel: "info"})
	assert.Error(t, err)
	assert.Empty(t, out.String())
}

func TestAssembleCommand(t *testing.T) {
	var (
		out  bytes.Buffer
		path = writeInput(t, advectionInput)
	)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"assemble", "-I", path, "--dRdX", "--parallelDegree", "3"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "nnz dRdX")
	assert.Contains(t, out.String(), "residual norm")
}
