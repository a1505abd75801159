package metrics

import (
	"time"

	"github.com/marmos91/afile/pkg/backend"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// backendMetrics is the Prometheus implementation of backend.Metrics.
//
// Collected series:
//   - operation counts by backend, operation and outcome
//   - operation latency
//   - bytes delivered to callers
//   - operations abandoned by their caller
type backendMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	bytesRead         *prometheus.CounterVec
	abandonedTotal    *prometheus.CounterVec
}

// NewBackendMetrics creates a Prometheus-backed backend.Metrics on the
// global registry.
//
// Returns nil if metrics are not enabled (InitRegistry not called), which
// makes backends fall back to backend.NoopMetrics.
func NewBackendMetrics() backend.Metrics {
	if !IsEnabled() {
		return nil
	}
	return newBackendMetrics(GetRegistry())
}

func newBackendMetrics(reg prometheus.Registerer) *backendMetrics {
	return &backendMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "afile_operations_total",
				Help: "Total number of file operations by backend, operation and outcome",
			},
			[]string{"backend", "operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "afile_operation_duration_seconds",
				Help: "Duration of file operations in seconds",
				Buckets: []float64{
					0.0001, // 100µs
					0.001,  // 1ms
					0.005,  // 5ms
					0.025,  // 25ms
					0.1,    // 100ms
					0.5,    // 500ms
					1.0,    // 1s
					5.0,    // 5s
					30.0,   // 30s
				},
			},
			[]string{"backend", "operation"},
		),
		bytesRead: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "afile_bytes_read_total",
				Help: "Total bytes delivered to callers",
			},
			[]string{"backend"},
		),
		abandonedTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "afile_abandoned_operations_total",
				Help: "Operations whose caller stopped waiting before completion",
			},
			[]string{"backend", "operation"},
		),
	}
}

// ObserveOperation implements backend.Metrics.ObserveOperation.
//
// The status label is "success", "cancelled", or the error kind
// ("not found", "permission denied", "i/o error", "other").
func (m *backendMetrics) ObserveOperation(name, operation string, duration time.Duration, err error) {
	m.operationsTotal.WithLabelValues(name, operation, status(err)).Inc()
	m.operationDuration.WithLabelValues(name, operation).Observe(duration.Seconds())
}

// RecordBytes implements backend.Metrics.RecordBytes.
func (m *backendMetrics) RecordBytes(name string, bytes int64) {
	m.bytesRead.WithLabelValues(name).Add(float64(bytes))
}

// RecordAbandoned implements backend.Metrics.RecordAbandoned.
func (m *backendMetrics) RecordAbandoned(name, operation string) {
	m.abandonedTotal.WithLabelValues(name, operation).Inc()
}

func status(err error) string {
	switch {
	case err == nil:
		return "success"
	case backend.IsContextError(err):
		return "cancelled"
	default:
		return backend.KindOf(err).String()
	}
}
