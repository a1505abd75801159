package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"debug", "INFO", "Warn", "ERROR"} {
		l, err := ParseLevel(name)
		require.NoError(t, err)
		assert.Equal(t, strings.ToUpper(name), l.String())
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestConfigureJSONFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "afile.log")
	require.NoError(t, Configure("WARN", "json", out))
	t.Cleanup(func() { _ = Configure("INFO", "text", "stdout") })

	Info("dropped %d", 1)
	Warn("kept %s", "warning")
	require.NoError(t, Sync())

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "kept warning", entry["msg"])
	assert.Contains(t, entry, "timestamp")
}

func TestConfigureRejectsUnknownFormat(t *testing.T) {
	assert.Error(t, Configure("INFO", "xml", "stdout"))
	assert.Error(t, Configure("LOUD", "text", "stdout"))
}

func TestSetLogger(t *testing.T) {
	Set(zaptest.NewLogger(t))
	t.Cleanup(func() { _ = Configure("INFO", "text", "stdout") })

	SetLevel("DEBUG")
	Debug("visible in test output %d", 42)
	SetLevel("INFO")
}
