package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/nextdose/pkg/config"
)

func TestNewLogger(t *testing.T) {
	t.Run("creates text logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelInfo, Format: LogFormatText, Output: &buf})
		require.NotNil(t, logger)

		logger.Info("test message", "key", "value")

		assert.Contains(t, buf.String(), "test message")
		assert.Contains(t, buf.String(), "key=value")
	})

	t.Run("creates JSON logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelInfo, Format: LogFormatJSON, Output: &buf})

		logger.Info("test message", "key", "value")

		var logEntry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
		assert.Equal(t, "test message", logEntry["msg"])
		assert.Equal(t, "value", logEntry["key"])
	})

	t.Run("respects log level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelWarn, Format: LogFormatText, Output: &buf})

		logger.Debug("debug message")
		logger.Info("info message")
		logger.Warn("warn message")
		logger.Error("error message")

		output := buf.String()
		assert.NotContains(t, output, "debug message")
		assert.NotContains(t, output, "info message")
		assert.Contains(t, output, "warn message")
		assert.Contains(t, output, "error message")
	})

	t.Run("adds service attributes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{
			Level:          LogLevelInfo,
			Format:         LogFormatJSON,
			Output:         &buf,
			ServiceName:    "test-service",
			ServiceVersion: "1.0.0",
		})

		logger.Info("test")

		var logEntry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
		assert.Equal(t, "test-service", logEntry["service"])
		assert.Equal(t, "1.0.0", logEntry["version"])
	})
}

func TestDefaultLogConfig(t *testing.T) {
	cfg := DefaultLogConfig()

	assert.Equal(t, LogLevelWarn, cfg.Level)
	assert.Equal(t, LogFormatText, cfg.Format)
	assert.Equal(t, "nextdose", cfg.ServiceName)
}

func TestLoggerFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "")

	logger := LoggerFromEnv("1.2.3")

	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestLoggerFromConfig(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{AppEnv: "development", LogLevel: "info", LogFormat: "json"}

	logger := LoggerFromConfig(cfg, "1.2.3", &buf)
	logger.Info("configured")

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "configured", logEntry["msg"])
	assert.Equal(t, "nextdose", logEntry["service"])
	assert.Equal(t, "1.2.3", logEntry["version"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestAttributeHandler(t *testing.T) {
	t.Run("WithAttrs returns new handler", func(t *testing.T) {
		var buf bytes.Buffer
		handler := &attributeHandler{
			handler: slog.NewJSONHandler(&buf, nil),
			attrs:   []slog.Attr{slog.String("default", "value")},
		}

		newHandler := handler.WithAttrs([]slog.Attr{slog.String("extra", "attr")})
		assert.NotEqual(t, handler, newHandler)
	})

	t.Run("Enabled delegates to base handler", func(t *testing.T) {
		var buf bytes.Buffer
		handler := &attributeHandler{
			handler: slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}),
		}

		assert.False(t, handler.Enabled(context.Background(), slog.LevelInfo))
		assert.True(t, handler.Enabled(context.Background(), slog.LevelWarn))
	})
}

func TestContextIntegration(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: LogLevelInfo, Format: LogFormatJSON, Output: &buf})

	ctx := context.Background()
	ctx = WithCorrelationID(ctx, "corr-123")
	ctx = WithRequestID(ctx, "req-456")
	ctx = WithOperation(ctx, "med next")

	logger.InfoContext(ctx, "test with context")

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "corr-123", logEntry[CorrelationIDKey])
	assert.Equal(t, "req-456", logEntry[RequestIDKey])
	assert.Equal(t, "med next", logEntry[OperationKey])
}

func TestWithCorrelationID_GeneratesWhenEmpty(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "")

	assert.Len(t, CorrelationIDFromContext(ctx), 36)
	assert.Empty(t, CorrelationIDFromContext(context.Background()))
}

func TestTimer_Stop(t *testing.T) {
	t.Run("logs completion", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

		StartTimer(logger, "med list").Stop(context.Background(), nil)

		assert.Contains(t, buf.String(), "operation completed")
		assert.Contains(t, buf.String(), `operation="med list"`)
		assert.Contains(t, buf.String(), DurationKey)
	})

	t.Run("logs failure", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

		StartTimer(logger, "med next").Stop(context.Background(), errors.New("boom"))

		assert.Contains(t, buf.String(), "operation failed")
		assert.Contains(t, buf.String(), "error=boom")
	})

	t.Run("nil logger only measures", func(t *testing.T) {
		timer := StartTimer(nil, "noop")

		assert.GreaterOrEqual(t, timer.Stop(context.Background(), nil).Nanoseconds(), int64(0))
	})
}
