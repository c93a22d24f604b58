package otel

import (
	"context"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// otelTracer implements observability.Tracer on an OpenTelemetry tracer.
type otelTracer struct {
	tracer     oteltrace.Tracer
	disabled   bool
	suppressed []string
}

func newOtelTracer(tracer oteltrace.Tracer, config *Config) *otelTracer {
	return &otelTracer{
		tracer:     tracer,
		disabled:   config.Disabled,
		suppressed: append([]string(nil), config.SuppressedOperations...),
	}
}

// ShouldStart declines when tracing is disabled or op matches a suppressed pattern.
// Sampling is left to the SDK sampler: an unsampled span is still started so
// the trace context keeps flowing.
func (t *otelTracer) ShouldStart(_ context.Context, op observability.Operation) bool {
	if t.disabled {
		return false
	}
	for _, pattern := range t.suppressed {
		if op.Matches(pattern) {
			return false
		}
	}
	return true
}

func (t *otelTracer) Start(ctx context.Context, spanName string, opts ...observability.SpanOption) (context.Context, observability.Span) {
	cfg := observability.NewSpanConfig(opts)

	startOpts := []oteltrace.SpanStartOption{oteltrace.WithSpanKind(convertSpanKind(cfg.Kind()))}
	if attrs := convertFieldsToAttributes(cfg.Attributes()); attrs != nil {
		startOpts = append(startOpts, oteltrace.WithAttributes(attrs...))
	}

	ctx, span := t.tracer.Start(ctx, spanName, startOpts...)
	return ctx, &otelSpan{span: span}
}

// SpanFromContext never returns nil; without an active span the result is non-recording.
func (t *otelTracer) SpanFromContext(ctx context.Context) observability.Span {
	return &otelSpan{span: oteltrace.SpanFromContext(ctx)}
}

func (t *otelTracer) ContextWithSpan(ctx context.Context, span observability.Span) context.Context {
	s, ok := span.(*otelSpan)
	if !ok {
		return ctx
	}
	return oteltrace.ContextWithSpan(ctx, s.span)
}

type otelSpan struct {
	span oteltrace.Span
}

func (s *otelSpan) End() {
	s.span.End()
}

func (s *otelSpan) SetAttributes(fields ...observability.Field) {
	if attrs := convertFieldsToAttributes(fields); attrs != nil {
		s.span.SetAttributes(attrs...)
	}
}

func (s *otelSpan) SetStatus(code observability.StatusCode, description string) {
	s.span.SetStatus(convertStatusCode(code), description)
}

func (s *otelSpan) RecordError(err error, fields ...observability.Field) {
	if attrs := convertFieldsToAttributes(fields); attrs != nil {
		s.span.RecordError(err, oteltrace.WithAttributes(attrs...))
		return
	}
	s.span.RecordError(err)
}

func (s *otelSpan) AddEvent(name string, fields ...observability.Field) {
	if attrs := convertFieldsToAttributes(fields); attrs != nil {
		s.span.AddEvent(name, oteltrace.WithAttributes(attrs...))
		return
	}
	s.span.AddEvent(name)
}

func (s *otelSpan) Context() observability.SpanContext {
	return spanContext{sc: s.span.SpanContext()}
}

type spanContext struct {
	sc oteltrace.SpanContext
}

func (c spanContext) TraceID() string {
	if !c.sc.HasTraceID() {
		return ""
	}
	return c.sc.TraceID().String()
}

func (c spanContext) SpanID() string {
	if !c.sc.HasSpanID() {
		return ""
	}
	return c.sc.SpanID().String()
}

func (c spanContext) IsSampled() bool {
	return c.sc.IsSampled()
}

func convertSpanKind(kind observability.SpanKind) oteltrace.SpanKind {
	switch kind {
	case observability.SpanKindServer:
		return oteltrace.SpanKindServer
	case observability.SpanKindClient:
		return oteltrace.SpanKindClient
	case observability.SpanKindProducer:
		return oteltrace.SpanKindProducer
	case observability.SpanKindConsumer:
		return oteltrace.SpanKindConsumer
	default:
		return oteltrace.SpanKindInternal
	}
}

func convertStatusCode(code observability.StatusCode) codes.Code {
	switch code {
	case observability.StatusCodeOK:
		return codes.Ok
	case observability.StatusCodeError:
		return codes.Error
	default:
		return codes.Unset
	}
}
