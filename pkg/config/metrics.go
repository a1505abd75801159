package config

import (
	"github.com/marmos91/afile/pkg/backend"
	"github.com/marmos91/afile/pkg/metrics"
)

// MetricsResult contains all metrics-related components created from configuration.
type MetricsResult struct {
	// Server is the HTTP server exposing Prometheus metrics (nil if disabled)
	Server *metrics.Server

	// BackendMetrics is passed to CreateBackend (nil if disabled)
	BackendMetrics backend.Metrics
}

// InitializeMetrics creates the metrics components based on configuration.
//
// If metrics are enabled the global Prometheus registry is initialized and
// the /metrics server is bound to Metrics.Listen. If they are disabled both
// components are nil and backends skip instrumentation.
func InitializeMetrics(cfg *Config) (*MetricsResult, error) {
	if !cfg.Metrics.Enabled {
		return &MetricsResult{}, nil
	}

	metrics.InitRegistry()

	server, err := metrics.NewServer(cfg.Metrics.Listen)
	if err != nil {
		return nil, err
	}

	return &MetricsResult{
		Server:         server,
		BackendMetrics: metrics.NewBackendMetrics(),
	}, nil
}
