package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms/internal/platform/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelWarn+2, ParseLevel("WARN+2"))
	assert.Equal(t, slog.LevelDebug, ParseLevel("info-4"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("warning"))
}

func TestNewWritesJSONWithAppFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, config.Config{Environment: "test", LogLevel: "info"})

	logger.Debug("hidden")
	logger.Info("payroll run started", "month", 4)

	require.NotZero(t, buf.Len())
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "hrms", entry["app"])
	assert.Equal(t, "test", entry["env"])
	assert.EqualValues(t, 4, entry["month"])
}
