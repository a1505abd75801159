package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/marmos91/afile/pkg/priority"
	"github.com/spf13/viper"
)

// Config represents the complete afile configuration.
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (AFILE_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
//
// Backend Configuration Pattern:
// Each backend defines its own option set. The Backend section carries one
// map per backend type and only the map matching Type is decoded, by the
// factory, into that backend's options.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Backend selects and configures the execution strategy
	Backend BackendConfig `mapstructure:"backend" yaml:"backend"`

	// Metrics controls Prometheus metrics collection
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Priority is the default priority for CLI operations
	// Valid values: background, unit_test, default, user_initiated, highest, or 0-255
	Priority string `mapstructure:"priority" yaml:"priority" validate:"required"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" yaml:"output" validate:"required"`
}

// BackendConfig specifies the backend.
//
// The Type field determines which backend is created. Only the
// corresponding type-specific section is used.
type BackendConfig struct {
	// Type specifies which backend to use
	// Valid values: pool, remote
	Type string `mapstructure:"type" yaml:"type" validate:"required,oneof=pool remote"`

	// Pool contains blocking-pool options (workers, queue_size, max_read_size)
	// Only used when Type = "pool"
	Pool map[string]any `mapstructure:"pool" yaml:"pool"`

	// Remote contains remote-fetch options (origin, timeout, user_agent,
	// requests_per_second, burst, s3)
	// Only used when Type = "remote"
	Remote map[string]any `mapstructure:"remote" yaml:"remote"`
}

// MetricsConfig controls the metrics endpoint.
type MetricsConfig struct {
	// Enabled turns on Prometheus collection
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Listen is the address of the /metrics endpoint (e.g. ":9090")
	Listen string `mapstructure:"listen" yaml:"listen" validate:"required_if=Enabled true"`
}

// DefaultPriority returns the parsed Priority field, falling back to
// priority.Default when it does not parse.
func (c *Config) DefaultPriority() priority.Priority {
	p, err := priority.Parse(c.Priority)
	if err != nil {
		return priority.Default
	}
	return p
}

// envKeys are bound explicitly so environment overrides work without a
// config file.
var envKeys = []string{
	"logging.level",
	"logging.format",
	"logging.output",
	"backend.type",
	"metrics.enabled",
	"metrics.listen",
	"priority",
}

// Load loads configuration from file, environment, and defaults.
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Example: AFILE_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("AFILE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default location: $XDG_CONFIG_HOME/afile/config.yaml
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		// An explicit path that does not exist is treated like no file.
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "afile")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "afile")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// ConfigExists checks if a config file exists at the default location.
func ConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}
