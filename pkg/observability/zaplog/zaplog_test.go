package zaplog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
	"github.com/JailtonJunior94/devkit-tracing/pkg/observability/zaplog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerWritesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zaplog.New(zap.New(core)).With(observability.String("component", "interceptor"))

	boom := errors.New("boom")
	logger.Error(context.Background(), "call failed",
		observability.Error(boom),
		observability.Int("attempt", 2),
	)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "call failed", entry.Message)

	fields := entry.ContextMap()
	assert.Equal(t, "interceptor", fields["component"])
	assert.Equal(t, "boom", fields["error"])
	assert.Equal(t, int64(2), fields["attempt"])
	assert.NotContains(t, fields, "trace_id")
}

func TestLoggerAddsTraceContext(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zaplog.New(zap.New(core))

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	logger.Info(ctx, "inside span")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
}

func TestLoggerHonorsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := zaplog.New(zap.New(core))

	logger.Debug(context.Background(), "debug")
	logger.Info(context.Background(), "info")
	logger.Warn(context.Background(), "warn")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "warn", logs.All()[0].Message)
}

func TestNewProduction(t *testing.T) {
	logger, err := zaplog.NewProduction(observability.LogLevelDebug)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
