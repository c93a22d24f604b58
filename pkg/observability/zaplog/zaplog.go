// Package zaplog implements observability.Logger on go.uber.org/zap.
package zaplog

import (
	"context"
	"time"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type logger struct {
	zap *zap.Logger
}

// New wraps an existing zap logger.
func New(z *zap.Logger) observability.Logger {
	return &logger{zap: z}
}

// NewProduction builds a JSON zap logger at level, writing to stderr.
func NewProduction(level observability.LogLevel) (observability.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(convertLevel(level))
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return New(z), nil
}

func convertLevel(level observability.LogLevel) zapcore.Level {
	switch level {
	case observability.LogLevelDebug:
		return zapcore.DebugLevel
	case observability.LogLevelWarn:
		return zapcore.WarnLevel
	case observability.LogLevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *logger) Debug(ctx context.Context, msg string, fields ...observability.Field) {
	l.log(ctx, zapcore.DebugLevel, msg, fields)
}

func (l *logger) Info(ctx context.Context, msg string, fields ...observability.Field) {
	l.log(ctx, zapcore.InfoLevel, msg, fields)
}

func (l *logger) Warn(ctx context.Context, msg string, fields ...observability.Field) {
	l.log(ctx, zapcore.WarnLevel, msg, fields)
}

func (l *logger) Error(ctx context.Context, msg string, fields ...observability.Field) {
	l.log(ctx, zapcore.ErrorLevel, msg, fields)
}

func (l *logger) With(fields ...observability.Field) observability.Logger {
	return &logger{zap: l.zap.With(convertFields(fields)...)}
}

func (l *logger) log(ctx context.Context, level zapcore.Level, msg string, fields []observability.Field) {
	ce := l.zap.Check(level, msg)
	if ce == nil {
		return
	}

	zfs := convertFields(fields)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		zfs = append(zfs,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	ce.Write(zfs...)
}

func convertFields(fields []observability.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+2)
	for _, f := range fields {
		out = append(out, convertField(f))
	}
	return out
}

func convertField(f observability.Field) zap.Field {
	switch v := f.Value.(type) {
	case string:
		return zap.String(f.Key, v)
	case int:
		return zap.Int(f.Key, v)
	case int64:
		return zap.Int64(f.Key, v)
	case float64:
		return zap.Float64(f.Key, v)
	case bool:
		return zap.Bool(f.Key, v)
	case time.Duration:
		return zap.Duration(f.Key, v)
	case error:
		return zap.NamedError(f.Key, v)
	default:
		return zap.Any(f.Key, v)
	}
}
