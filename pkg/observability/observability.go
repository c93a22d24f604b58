// Package observability is the vendor-neutral facade the interceptor talks to.
// Backends live in the sub-packages: otel (OpenTelemetry SDK), zaplog (zap
// logger), prometheus (metrics), fake (capturing test doubles) and noop.
package observability

import "fmt"

// Observability bundles the three signals handed to instrumented code.
type Observability interface {
	Tracer() Tracer
	Logger() Logger
	Metrics() Metrics
}

// Field is a key-value pair used for log fields, span attributes and metric labels.
type Field struct {
	Key   string
	Value any
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an integer field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates an int64 field.
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Float64 creates a float64 field.
func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a boolean field.
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Error creates a field keyed "error".
func Error(err error) Field {
	return Field{Key: "error", Value: err}
}

// Any creates a field with an arbitrary value.
func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// StringValue renders the field value the way backends without typed
// attributes display it.
func (f Field) StringValue() string {
	switch v := f.Value.(type) {
	case string:
		return v
	case error:
		return v.Error()
	default:
		return fmt.Sprint(v)
	}
}

type bundle struct {
	tracer  Tracer
	logger  Logger
	metrics Metrics
}

// Compose bundles independently chosen backends, for example an OTel
// tracer with a zap logger and Prometheus metrics.
func Compose(tracer Tracer, logger Logger, metrics Metrics) Observability {
	return &bundle{tracer: tracer, logger: logger, metrics: metrics}
}

func (b *bundle) Tracer() Tracer {
	return b.tracer
}

func (b *bundle) Logger() Logger {
	return b.logger
}

func (b *bundle) Metrics() Metrics {
	return b.metrics
}
