package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level LogLevel, format string) (*StructuredLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := NewLogger(&LoggerConfig{
		Level:  level,
		Format: format,
		Output: buf,
	})
	return logger, buf
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(99).String())
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input    string
		expected LogLevel
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			level, err := ParseLevel(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, level)
		})
	}
}

func TestLoggerLevels(t *testing.T) {
	ctx := context.Background()
	logger, buf := newBufferLogger(LevelWarn, "text")

	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	assert.Empty(t, buf.String())

	logger.Warn(ctx, errors.New("careful"), "warn message", "template", "users")
	logger.Error(ctx, errors.New("broken"), "error message")

	out := buf.String()
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error=careful")
	assert.Contains(t, out, "template=users")
	assert.Contains(t, out, "error message")
}

func TestLoggerJSONFieldsAndComponent(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug, "json")

	logger.WithComponent("registry").
		With("template", "users", "ignored").
		Info(context.Background(), "registered", "variables", 2)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "registered", entry["msg"])
	assert.Equal(t, "registry", entry["component"])
	assert.Equal(t, "users", entry["template"])
	assert.Equal(t, float64(2), entry["variables"])
}

func TestWithDoesNotMutateParent(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug, "text")

	_ = logger.With("child", "yes")
	logger.Info(context.Background(), "parent")

	assert.NotContains(t, buf.String(), "child=yes")
}

func TestWithRequestID(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug, "text")

	reqLogger := logger.WithRequestID("run-1")
	assert.Equal(t, "run-1", reqLogger.RequestID())

	reqLogger.Info(context.Background(), "rendered")
	assert.Contains(t, buf.String(), "request_id=run-1")
}

func TestPerfLogger(t *testing.T) {
	ctx := context.Background()
	logger, buf := newBufferLogger(LevelDebug, "text")

	logger.StartOperation("render").End(ctx)
	assert.Contains(t, buf.String(), "operation=render")
	assert.Contains(t, buf.String(), "Operation completed")

	buf.Reset()
	logger.StartOperation("render").EndWithError(ctx, errors.New("unbound"))
	assert.Contains(t, buf.String(), "Operation failed")
	assert.Contains(t, buf.String(), "error=unbound")
}

func TestNopLogger(t *testing.T) {
	var logger Logger = NopLogger{}
	ctx := context.Background()

	assert.NotPanics(t, func() {
		logger.Debug(ctx, "x")
		logger.Info(ctx, "x")
		logger.Warn(ctx, nil, "x")
		logger.Error(ctx, nil, "x")
		logger.With("a", 1).WithComponent("c").Info(ctx, "y")
	})
}

func TestSanitizeForLog(t *testing.T) {
	assert.Equal(t, "[REDACTED]", SanitizeForLog("api_token", "abc"))
	assert.Equal(t, "[REDACTED]", SanitizeForLog("Password", "abc"))
	assert.Equal(t, "users", SanitizeForLog("collection", "users"))

	long := strings.Repeat("a", 300)
	sanitized := SanitizeForLog("path", long)
	assert.True(t, strings.HasSuffix(sanitized, "...[TRUNCATED]"))
	assert.Len(t, sanitized, 256+len("...[TRUNCATED]"))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, LevelWarn, cfg.Level)
	assert.Equal(t, "text", cfg.Format)
	assert.NotNil(t, cfg.Output)

	assert.NotNil(t, NewLogger(nil))
}
