// Package noop provides an observability backend that records nothing.
// Its tracer declines every ShouldStart, so intercepted calls run untouched.
package noop

import (
	"context"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
)

// Provider is a zero-overhead observability.Observability.
type Provider struct {
	tracer  tracer
	logger  logger
	metrics metrics
}

// NewProvider creates a no-op provider.
func NewProvider() *Provider {
	return &Provider{}
}

func (p *Provider) Tracer() observability.Tracer {
	return p.tracer
}

func (p *Provider) Logger() observability.Logger {
	return p.logger
}

func (p *Provider) Metrics() observability.Metrics {
	return p.metrics
}

type tracer struct{}

func (tracer) ShouldStart(context.Context, observability.Operation) bool {
	return false
}

func (tracer) Start(ctx context.Context, _ string, _ ...observability.SpanOption) (context.Context, observability.Span) {
	return ctx, span{}
}

func (tracer) SpanFromContext(context.Context) observability.Span {
	return span{}
}

func (tracer) ContextWithSpan(ctx context.Context, _ observability.Span) context.Context {
	return ctx
}

type span struct{}

func (span) End() {}
func (span) SetAttributes(...observability.Field) {}
func (span) SetStatus(observability.StatusCode, string) {}
func (span) RecordError(error, ...observability.Field) {}
func (span) AddEvent(string, ...observability.Field) {}
func (span) Context() observability.SpanContext { return spanContext{} }

type spanContext struct{}

func (spanContext) TraceID() string { return "" }
func (spanContext) SpanID() string { return "" }
func (spanContext) IsSampled() bool { return false }

type logger struct{}

func (logger) Debug(context.Context, string, ...observability.Field) {}
func (logger) Info(context.Context, string, ...observability.Field) {}
func (logger) Warn(context.Context, string, ...observability.Field) {}
func (logger) Error(context.Context, string, ...observability.Field) {}

func (l logger) With(...observability.Field) observability.Logger {
	return l
}

type metrics struct{}

func (metrics) Counter(string, string, string) observability.Counter {
	return instrument{}
}

func (metrics) Histogram(string, string, string) observability.Histogram {
	return instrument{}
}

func (metrics) UpDownCounter(string, string, string) observability.UpDownCounter {
	return instrument{}
}

type instrument struct{}

func (instrument) Add(context.Context, int64, ...observability.Field) {}
func (instrument) Increment(context.Context, ...observability.Field) {}
func (instrument) Record(context.Context, float64, ...observability.Field) {}
