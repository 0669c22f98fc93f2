package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, FormatJSON, "debug")
	require.NoError(t, err)
	logger.Debug("assemble.start", "cells", 4)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "assemble.start", rec["msg"])
	assert.Equal(t, "dgresidual", rec[attrService])
	assert.InDelta(t, 4, rec["cells"], 0)

	_, err = NewLogger(&buf, "xml", "info")
	assert.Error(t, err)
	_, err = NewLogger(&buf, FormatText, "loud")
	assert.Error(t, err)

	buf.Reset()
	logger, err = NewLogger(&buf, FormatText, "warn")
	require.NoError(t, err)
	logger.Info("hidden")
	assert.Empty(t, buf.String())
	assert.NotPanics(t, func() { Discard().Error("dropped") })
}

func TestAssemblyMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	am, err := NewAssemblyMetrics(reg)
	require.NoError(t, err)
	am.RecordPass(AssemblyStats{
		Mode:         "residual",
		KernelCalls:  map[string]int{"volume": 4, "face": 6},
		Faces:        map[string]int{"same_level": 6},
		Duration:     time.Millisecond,
		ResidualNorm: 0.5,
	})
	am.RecordPass(AssemblyStats{Mode: "residual", Err: errors.New("bad")})
	assert.InDelta(t, 1, testutil.ToFloat64(am.passes.WithLabelValues("residual", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(am.passes.WithLabelValues("residual", "error")), 0)
	assert.InDelta(t, 6, testutil.ToFloat64(am.kernelCalls.WithLabelValues("face")), 0)
	assert.InDelta(t, 0.5, testutil.ToFloat64(am.residualNorm), 0)

	_, err = NewAssemblyMetrics(reg)
	assert.Error(t, err, "second registration collides")

	path := filepath.Join(t.TempDir(), "dg.prom")
	require.NoError(t, WriteTextfile(path, reg))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "dgresidual_kernel_calls_total")
}
