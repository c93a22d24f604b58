package otel

import (
	"context"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
	"go.opentelemetry.io/otel/metric"
)

// otelMetrics implements observability.Metrics. The SDK deduplicates
// instruments by name, so repeated lookups return the same series.
type otelMetrics struct {
	meter metric.Meter
}

func newOtelMetrics(meter metric.Meter) *otelMetrics {
	return &otelMetrics{meter: meter}
}

// Counter falls back to a no-op instrument when the SDK rejects the definition.
func (m *otelMetrics) Counter(name, description, unit string) observability.Counter {
	counter, err := m.meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return noopInstrument{}
	}
	return &otelCounter{counter: counter}
}

func (m *otelMetrics) Histogram(name, description, unit string) observability.Histogram {
	histogram, err := m.meter.Float64Histogram(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return noopInstrument{}
	}
	return &otelHistogram{histogram: histogram}
}

func (m *otelMetrics) UpDownCounter(name, description, unit string) observability.UpDownCounter {
	counter, err := m.meter.Int64UpDownCounter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return noopInstrument{}
	}
	return &otelUpDownCounter{counter: counter}
}

func measurementOptions(fields []observability.Field) []metric.AddOption {
	attrs := convertFieldsToAttributes(fields)
	if attrs == nil {
		return nil
	}
	return []metric.AddOption{metric.WithAttributes(attrs...)}
}

type otelCounter struct {
	counter metric.Int64Counter
}

func (c *otelCounter) Add(ctx context.Context, value int64, fields ...observability.Field) {
	c.counter.Add(ctx, value, measurementOptions(fields)...)
}

func (c *otelCounter) Increment(ctx context.Context, fields ...observability.Field) {
	c.Add(ctx, 1, fields...)
}

type otelHistogram struct {
	histogram metric.Float64Histogram
}

func (h *otelHistogram) Record(ctx context.Context, value float64, fields ...observability.Field) {
	attrs := convertFieldsToAttributes(fields)
	if attrs == nil {
		h.histogram.Record(ctx, value)
		return
	}
	h.histogram.Record(ctx, value, metric.WithAttributes(attrs...))
}

type otelUpDownCounter struct {
	counter metric.Int64UpDownCounter
}

func (u *otelUpDownCounter) Add(ctx context.Context, value int64, fields ...observability.Field) {
	u.counter.Add(ctx, value, measurementOptions(fields)...)
}

type noopInstrument struct{}

func (noopInstrument) Add(context.Context, int64, ...observability.Field) {}
func (noopInstrument) Increment(context.Context, ...observability.Field) {}
func (noopInstrument) Record(context.Context, float64, ...observability.Field) {}
