package config

import (
	"strings"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
//   - Defaults are filled for every backend section, not just the selected
//     one, so a generated config file documents all options
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyBackendDefaults(&cfg.Backend)
	applyMetricsDefaults(&cfg.Metrics)

	if cfg.Priority == "" {
		cfg.Priority = "default"
	}
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	// stdout carries file contents for the CLI
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
}

func applyBackendDefaults(cfg *BackendConfig) {
	if cfg.Type == "" {
		cfg.Type = "pool"
	}

	if cfg.Pool == nil {
		cfg.Pool = make(map[string]any)
	}
	setDefault(cfg.Pool, "workers", 16)
	setDefault(cfg.Pool, "queue_size", 1024)
	setDefault(cfg.Pool, "max_read_size", 64<<20)

	if cfg.Remote == nil {
		cfg.Remote = make(map[string]any)
	}
	setDefault(cfg.Remote, "origin", "")
	setDefault(cfg.Remote, "timeout", "30s")
	setDefault(cfg.Remote, "user_agent", "afile")
	setDefault(cfg.Remote, "requests_per_second", 0)
	setDefault(cfg.Remote, "burst", 0)

	s3, ok := cfg.Remote["s3"].(map[string]any)
	if !ok {
		s3 = make(map[string]any)
		cfg.Remote["s3"] = s3
	}
	setDefault(s3, "region", "us-east-1")
	setDefault(s3, "endpoint", "")
	setDefault(s3, "access_key_id", "")
	setDefault(s3, "secret_access_key", "")
	setDefault(s3, "max_retries", 1)
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Listen == "" {
		cfg.Listen = ":9090"
	}
}

func setDefault(m map[string]any, key string, value any) {
	if _, ok := m[key]; !ok {
		m[key] = value
	}
}

// GetDefaultConfig returns a fully defaulted configuration.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
