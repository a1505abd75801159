package backend

import "time"

// Metrics provides observability for backend operations.
//
// This is optional - backends given a nil Metrics use NoopMetrics. The
// Prometheus implementation lives in pkg/metrics.
type Metrics interface {
	// ObserveOperation records an operation with its duration and outcome.
	ObserveOperation(backend, operation string, duration time.Duration, err error)

	// RecordBytes records bytes delivered to callers.
	RecordBytes(backend string, bytes int64)

	// RecordAbandoned records an operation whose caller stopped waiting
	// before it completed.
	RecordAbandoned(backend, operation string)
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) ObserveOperation(backend, operation string, duration time.Duration, err error) {}
func (NoopMetrics) RecordBytes(backend string, bytes int64)                                        {}
func (NoopMetrics) RecordAbandoned(backend, operation string)                                      {}

// MetricsOrNoop returns m, or NoopMetrics when m is nil.
func MetricsOrNoop(m Metrics) Metrics {
	if m == nil {
		return NoopMetrics{}
	}
	return m
}
