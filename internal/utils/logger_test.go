package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf).With("component", "test")

	logger.Info("analysis finished", "outcome", "success", "size_bytes", 42, "error", errors.New("none"), "dangling")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "analysis finished", entry["message"])
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, "success", entry["outcome"])
	assert.Equal(t, float64(42), entry["size_bytes"])
	assert.Equal(t, "none", entry["error"])
	assert.Equal(t, "!MISSING", entry["dangling"])
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	logger := NewLogger("warn", path)

	logger.Info("dropped")
	logger.Warn("kept")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
}

func TestNewLoggerReportsUnusableFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	var notice bytes.Buffer
	orig := stderr
	stderr = &notice
	t.Cleanup(func() { stderr = orig })

	logger := NewLogger("info", filepath.Join(blocker, "app.log"))
	logger.Info("still logs to stdout")

	assert.Nil(t, logger.file)
	assert.Contains(t, notice.String(), "file logging disabled")
	assert.Contains(t, notice.String(), "create log directory")
	require.NoError(t, logger.Close())
}
