package otel

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/trace"
)

// otelLogger writes to a slog console handler and emits the same record
// through the OTel log pipeline.
type otelLogger struct {
	otelLog     otellog.Logger
	slogLogger  *slog.Logger
	serviceName string
	fields      []observability.Field
}

func newOtelLogger(
	level observability.LogLevel,
	format observability.LogFormat,
	serviceName string,
	output io.Writer,
	otelLog otellog.Logger,
) *otelLogger {
	return &otelLogger{
		otelLog:     otelLog,
		slogLogger:  slog.New(newSlogHandler(format, output, &slog.HandlerOptions{Level: convertLogLevel(level)})),
		serviceName: serviceName,
	}
}

func newSlogHandler(format observability.LogFormat, output io.Writer, opts *slog.HandlerOptions) slog.Handler {
	if format == observability.LogFormatText {
		return slog.NewTextHandler(output, opts)
	}
	return slog.NewJSONHandler(output, opts)
}

func convertLogLevel(level observability.LogLevel) slog.Level {
	switch level {
	case observability.LogLevelDebug:
		return slog.LevelDebug
	case observability.LogLevelWarn:
		return slog.LevelWarn
	case observability.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *otelLogger) Debug(ctx context.Context, msg string, fields ...observability.Field) {
	l.log(ctx, slog.LevelDebug, msg, fields)
}

func (l *otelLogger) Info(ctx context.Context, msg string, fields ...observability.Field) {
	l.log(ctx, slog.LevelInfo, msg, fields)
}

func (l *otelLogger) Warn(ctx context.Context, msg string, fields ...observability.Field) {
	l.log(ctx, slog.LevelWarn, msg, fields)
}

func (l *otelLogger) Error(ctx context.Context, msg string, fields ...observability.Field) {
	l.log(ctx, slog.LevelError, msg, fields)
}

func (l *otelLogger) With(fields ...observability.Field) observability.Logger {
	merged := make([]observability.Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)

	return &otelLogger{
		otelLog:     l.otelLog,
		slogLogger:  l.slogLogger,
		serviceName: l.serviceName,
		fields:      merged,
	}
}

func (l *otelLogger) log(ctx context.Context, level slog.Level, msg string, fields []observability.Field) {
	if !l.slogLogger.Enabled(ctx, level) {
		return
	}

	all := make([]observability.Field, 0, len(l.fields)+len(fields)+3)
	all = append(all, l.fields...)
	all = append(all, fields...)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		all = append(all,
			observability.String("trace_id", sc.TraceID().String()),
			observability.String("span_id", sc.SpanID().String()),
		)
	}
	all = append(all, observability.String("service", l.serviceName))

	attrs := make([]slog.Attr, len(all))
	for i, f := range all {
		attrs[i] = convertFieldToSlogAttr(f)
	}
	l.slogLogger.LogAttrs(ctx, level, msg, attrs...)

	l.emit(ctx, level, msg, all)
}

// emit sends the record to the OTel logger provider; the SDK picks the span
// context up from ctx.
func (l *otelLogger) emit(ctx context.Context, level slog.Level, msg string, fields []observability.Field) {
	var record otellog.Record
	record.SetTimestamp(time.Now())
	record.SetBody(otellog.StringValue(msg))
	record.SetSeverity(convertSeverity(level))
	record.SetSeverityText(level.String())
	for _, f := range fields {
		record.AddAttributes(convertFieldToLogAttr(f))
	}
	l.otelLog.Emit(ctx, record)
}

func convertSeverity(level slog.Level) otellog.Severity {
	switch level {
	case slog.LevelDebug:
		return otellog.SeverityDebug
	case slog.LevelWarn:
		return otellog.SeverityWarn
	case slog.LevelError:
		return otellog.SeverityError
	default:
		return otellog.SeverityInfo
	}
}

func convertFieldToLogAttr(field observability.Field) otellog.KeyValue {
	switch v := field.Value.(type) {
	case string:
		return otellog.String(field.Key, v)
	case int:
		return otellog.Int(field.Key, v)
	case int64:
		return otellog.Int64(field.Key, v)
	case float64:
		return otellog.Float64(field.Key, v)
	case bool:
		return otellog.Bool(field.Key, v)
	case error:
		return otellog.String(field.Key, v.Error())
	default:
		return otellog.String(field.Key, fmt.Sprint(v))
	}
}

func convertFieldToSlogAttr(field observability.Field) slog.Attr {
	switch v := field.Value.(type) {
	case string:
		return slog.String(field.Key, v)
	case int:
		return slog.Int(field.Key, v)
	case int64:
		return slog.Int64(field.Key, v)
	case float64:
		return slog.Float64(field.Key, v)
	case bool:
		return slog.Bool(field.Key, v)
	case error:
		return slog.String(field.Key, v.Error())
	default:
		return slog.Any(field.Key, v)
	}
}
