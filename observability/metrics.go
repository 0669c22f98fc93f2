package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "dgresidual"

	labelMode   = "mode"
	labelKernel = "kernel"
	labelFace   = "configuration"
	labelResult = "result"
)

// AssemblyMetrics holds the prometheus instruments of the assembly engine.
type AssemblyMetrics struct {
	passes       *prometheus.CounterVec
	kernelCalls  *prometheus.CounterVec
	faces        *prometheus.CounterVec
	passDuration *prometheus.HistogramVec
	residualNorm prometheus.Gauge
}

// AssemblyStats is one pass worth of counts, decoupled from the engine types.
type AssemblyStats struct {
	Mode         string
	Cells        int
	KernelCalls  map[string]int
	Faces        map[string]int
	Duration     time.Duration
	ResidualNorm float64
	Err          error
}

func NewAssemblyMetrics(reg prometheus.Registerer) (am *AssemblyMetrics, err error) {
	am = &AssemblyMetrics{
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_total",
			Help:      "Assembly passes by differentiation mode and result.",
		}, []string{labelMode, labelResult}),
		kernelCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kernel_calls_total",
			Help:      "Local kernel evaluations by kernel.",
		}, []string{labelKernel}),
		faces: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "faces_total",
			Help:      "Faces visited by neighbor configuration.",
		}, []string{labelFace}),
		passDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Wall time of an assembly pass.",
			Buckets:   prometheus.ExponentialBuckets(1.e-4, 4, 10),
		}, []string{labelMode}),
		residualNorm: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "residual_norm",
			Help:      "l2 norm of the last assembled residual.",
		}),
	}
	for _, c := range []prometheus.Collector{am.passes, am.kernelCalls, am.faces,
		am.passDuration, am.residualNorm} {
		if err = reg.Register(c); err != nil {
			return nil, fmt.Errorf("register assembly metrics: %w", err)
		}
	}
	return
}

func (am *AssemblyMetrics) RecordPass(st AssemblyStats) {
	result := "ok"
	if st.Err != nil {
		result = "error"
	}
	am.passes.WithLabelValues(st.Mode, result).Inc()
	am.passDuration.WithLabelValues(st.Mode).Observe(st.Duration.Seconds())
	for k, n := range st.KernelCalls {
		am.kernelCalls.WithLabelValues(k).Add(float64(n))
	}
	for f, n := range st.Faces {
		am.faces.WithLabelValues(f).Add(float64(n))
	}
	if st.Err == nil {
		am.residualNorm.Set(st.ResidualNorm)
	}
}

// WriteTextfile dumps everything gathered by g in the node-exporter
// textfile format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
