package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerText(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Level: slog.LevelInfo, Format: "text"}, &buf)

	log.Info("test message", "key", "value")

	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, `msg="test message"`)
	assert.Contains(t, out, "key=value")
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Level: slog.LevelDebug, Format: "json"}, &buf)

	log.Debug("test message")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "test message", entry["msg"])
}

func TestNewLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Level: slog.LevelWarn, Format: "text"}, &buf)

	log.Info("filtered out")
	assert.Empty(t, buf.String())

	log.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNewLoggerConsole(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Level: slog.LevelInfo, Format: "console"}, &buf)

	log.Info("console message")
	assert.Contains(t, buf.String(), "console message")
}
