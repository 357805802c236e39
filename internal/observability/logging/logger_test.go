package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Output
	Output = &buf
	t.Cleanup(func() { Output = prev })
	return &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "", want: slog.LevelInfo},
		{in: "debug", want: slog.LevelDebug},
		{in: "DEBUG", want: slog.LevelDebug},
		{in: "warn", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "invalid", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewLogger_WritesJSON(t *testing.T) {
	// Arrange
	buf := captureOutput(t)
	t.Setenv("LOG_LEVEL", "info")

	// Act
	NewLogger().Info("collected", slog.Int("items", 3))

	// Assert
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "collected", entry["msg"])
	assert.Equal(t, float64(3), entry["items"])
}

func TestNewLogger_RespectsLevel(t *testing.T) {
	buf := captureOutput(t)
	t.Setenv("LOG_LEVEL", "warn")

	logger := NewLogger()
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewTextLogger(t *testing.T) {
	buf := captureOutput(t)
	t.Setenv("LOG_LEVEL", "debug")

	NewTextLogger().Debug("tier attempted", slog.String("tier", "cli"))

	out := buf.String()
	assert.Contains(t, out, "tier attempted")
	assert.Contains(t, out, "cli")
}

func TestNew_SelectsFormat(t *testing.T) {
	buf := captureOutput(t)

	New("json").Info("as json")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(buf.String()), "{"))

	buf.Reset()
	New("text").Info("as text")
	assert.False(t, strings.HasPrefix(strings.TrimSpace(buf.String()), "{"))
}

func TestNewWithLevel_IgnoresEnv(t *testing.T) {
	buf := captureOutput(t)
	t.Setenv("LOG_LEVEL", "debug")

	logger := NewWithLevel("json", "error")
	logger.Warn("hidden")
	logger.Error("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	Component("collect").Info("hello")

	assert.Contains(t, buf.String(), "component=collect")
}

func TestFromContext(t *testing.T) {
	t.Run("returns default logger when none stored", func(t *testing.T) {
		assert.Equal(t, slog.Default(), FromContext(context.Background()))
	})

	t.Run("returns stored logger with run id", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		ctx := WithRunID(WithLogger(context.Background(), logger), "run-123")

		FromContext(ctx).Info("stage")

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "run-123", entry["run_id"])
	})
}

func TestRunID(t *testing.T) {
	assert.Empty(t, RunID(context.Background()))
	assert.Equal(t, "abc", RunID(WithRunID(context.Background(), "abc")))
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := WithFields(slog.New(slog.NewJSONHandler(&buf, nil)), map[string]interface{}{
		"source": "reddit",
	})

	logger.Info("msg")

	assert.Contains(t, buf.String(), `"source":"reddit"`)
}
