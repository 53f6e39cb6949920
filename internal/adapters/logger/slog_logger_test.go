package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestInfoEmitsJSONLine(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, slog.LevelInfo)

	l.Info(context.Background(), "permissions saved", "role_id", "role-frontdesk")

	entry := lastLine(t, &buf)
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "permissions saved", entry["msg"])
	assert.Equal(t, "role-frontdesk", entry["role_id"])
}

func TestDebugFilteredAtInfoLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, slog.LevelInfo)

	l.Debug(context.Background(), "provider consulted")
	assert.Zero(t, buf.Len())

	l.Warn(context.Background(), "remote write failed", "error", "throttled")
	entry := lastLine(t, &buf)
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "throttled", entry["error"])
}

func TestNoSegmentLeavesArgsUntouched(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, slog.LevelInfo)

	l.Error(context.Background(), "audit append failed", "user_id", "u1")

	entry := lastLine(t, &buf)
	assert.Equal(t, "u1", entry["user_id"])
	_, hasTrace := entry["trace_id"]
	assert.False(t, hasTrace)
}
