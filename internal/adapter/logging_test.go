package adapter

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("WARNING"))
	assert.Equal(t, slog.LevelError, parseLogLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("bogus"))
}

func TestSetupLogger_WritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "shutter.log")

	logger, closer, err := SetupLogger(&LoggingConfig{File: path, Level: "INFO", MaxSizeMB: 1, MaxBackups: 1})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("poll cycle done", "outcome", "changed")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"poll cycle done"`)
	assert.Contains(t, string(data), `"outcome":"changed"`)
	assert.NotContains(t, string(data), "hidden")
}
