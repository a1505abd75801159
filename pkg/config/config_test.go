package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/marmos91/afile/pkg/priority"
)

func TestLoad_DefaultConfig(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Write minimal config
	configContent := `
logging:
  level: "INFO"

backend:
  type: "pool"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify defaults were applied
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stderr" {
		t.Errorf("Expected default output 'stderr', got %q", cfg.Logging.Output)
	}
	if cfg.Backend.Pool["workers"] != 16 {
		t.Errorf("Expected default pool workers 16, got %v", cfg.Backend.Pool["workers"])
	}
	if cfg.Priority != "default" {
		t.Errorf("Expected default priority 'default', got %q", cfg.Priority)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	// A non-existent path keeps the user's ~/.config/afile out of the test
	tmpDir := t.TempDir()
	nonExistentPath := filepath.Join(tmpDir, "nonexistent.yaml")

	cfg, err := Load(nonExistentPath)
	if err != nil {
		t.Fatalf("Expected no error with missing config file, got: %v", err)
	}

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Backend.Type != "pool" {
		t.Errorf("Expected default backend type 'pool', got %q", cfg.Backend.Type)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	configContent := `
logging:
  level: INFO
  invalid yaml here [[[
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Expected error with invalid YAML, got nil")
	}
}

func TestLoad_TOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	configContent := `
priority = "background"

[logging]
level = "WARN"
format = "json"

[backend]
type = "remote"

[backend.remote]
origin = "https://example.com/files"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load TOML config: %v", err)
	}

	if cfg.Logging.Level != "WARN" {
		t.Errorf("Expected level 'WARN', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected format 'json', got %q", cfg.Logging.Format)
	}
	if cfg.Backend.Type != "remote" {
		t.Errorf("Expected backend type 'remote', got %q", cfg.Backend.Type)
	}
	if cfg.Backend.Remote["origin"] != "https://example.com/files" {
		t.Errorf("Expected remote origin to be preserved, got %v", cfg.Backend.Remote["origin"])
	}
	if cfg.DefaultPriority() != priority.Background {
		t.Errorf("Expected background priority, got %v", cfg.DefaultPriority())
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown backend", "backend:\n  type: ftp\n"},
		{"unknown priority", "priority: urgent\n"},
		{"unknown log format", "logging:\n  format: xml\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write config file: %v", err)
			}
			if _, err := Load(configPath); err == nil {
				t.Fatal("Expected validation error, got nil")
			}
		})
	}
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Backend.Type != "pool" {
		t.Errorf("Expected default backend type 'pool', got %q", cfg.Backend.Type)
	}
	if cfg.Backend.Remote["timeout"] != "30s" {
		t.Errorf("Expected default remote timeout '30s', got %v", cfg.Backend.Remote["timeout"])
	}
	if cfg.Metrics.Enabled {
		t.Error("Expected metrics to be disabled by default")
	}
	if cfg.Metrics.Listen != ":9090" {
		t.Errorf("Expected default metrics listen ':9090', got %q", cfg.Metrics.Listen)
	}
	if cfg.DefaultPriority() != priority.Default {
		t.Errorf("Expected default priority, got %v", cfg.DefaultPriority())
	}
}

func TestConfigExists(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if ConfigExists() {
		t.Fatal("Expected no config in an empty config dir")
	}
	if _, err := InitConfig(false); err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}
	if !ConfigExists() {
		t.Error("Expected config to exist after InitConfig")
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	path := GetDefaultConfigPath()
	expected := filepath.Join(xdg, "afile", "config.yaml")
	if path != expected {
		t.Errorf("Expected %q, got %q", expected, path)
	}
}

func TestGetConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", home)

	dir := getConfigDir()
	expected := filepath.Join(home, ".config", "afile")
	if dir != expected {
		t.Errorf("Expected %q, got %q", expected, dir)
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("AFILE_LOGGING_LEVEL", "debug")
	t.Setenv("AFILE_BACKEND_TYPE", "remote")
	t.Setenv("AFILE_PRIORITY", "user_initiated")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Level is normalized to uppercase by ApplyDefaults
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected level 'DEBUG' from env, got %q", cfg.Logging.Level)
	}
	if cfg.Backend.Type != "remote" {
		t.Errorf("Expected backend type 'remote' from env, got %q", cfg.Backend.Type)
	}
	if cfg.DefaultPriority() != priority.UserInitiated {
		t.Errorf("Expected user_initiated priority from env, got %v", cfg.DefaultPriority())
	}
}
