package observability

import "context"

// Tracer is the tracing facade consumed by the interceptor.
type Tracer interface {
	// ShouldStart reports whether a span for op may be started under ctx.
	// Implementations decline when tracing is disabled or op is suppressed.
	ShouldStart(ctx context.Context, op Operation) bool

	// Start creates a span and returns a context carrying it.
	// The caller owns the span and must End it exactly once.
	Start(ctx context.Context, spanName string, opts ...SpanOption) (context.Context, Span)

	// SpanFromContext returns the span carried by ctx, or a non-recording span.
	SpanFromContext(ctx context.Context) Span

	// ContextWithSpan returns a copy of ctx carrying span.
	ContextWithSpan(ctx context.Context, span Span) context.Context
}

// SpanContext exposes the identifiers propagated with a span.
type SpanContext interface {
	TraceID() string
	SpanID() string
	IsSampled() bool
}

// Span represents an active trace span.
type Span interface {
	// End finishes the span. Nothing else may be recorded afterwards.
	End()

	SetAttributes(fields ...Field)
	SetStatus(code StatusCode, description string)
	RecordError(err error, fields ...Field)
	AddEvent(name string, fields ...Field)
	Context() SpanContext
}

// StatusCode is the canonical status of a span.
type StatusCode int

const (
	StatusCodeUnset StatusCode = iota
	StatusCodeOK
	StatusCodeError
)

// SpanKind is the role of a span in a trace.
type SpanKind int

const (
	SpanKindInternal SpanKind = iota
	SpanKindServer
	SpanKindClient
	SpanKindProducer
	SpanKindConsumer
)

// SpanOption configures span creation.
type SpanOption interface {
	apply(*spanConfig)
}

type spanConfig struct {
	kind       SpanKind
	attributes []Field
}

type spanOptionFunc func(*spanConfig)

func (f spanOptionFunc) apply(c *spanConfig) {
	f(c)
}

// WithSpanKind sets the span kind.
func WithSpanKind(kind SpanKind) SpanOption {
	return spanOptionFunc(func(c *spanConfig) {
		c.kind = kind
	})
}

// WithAttributes sets attributes recorded when the span starts.
func WithAttributes(fields ...Field) SpanOption {
	return spanOptionFunc(func(c *spanConfig) {
		c.attributes = append(c.attributes, fields...)
	})
}

// SpanConfig is the resolved form of a SpanOption list, for backend implementations.
type SpanConfig interface {
	Kind() SpanKind
	Attributes() []Field
}

// NewSpanConfig resolves opts into a SpanConfig.
func NewSpanConfig(opts []SpanOption) SpanConfig {
	cfg := &spanConfig{kind: SpanKindInternal}
	for _, opt := range opts {
		opt.apply(cfg)
	}
	return cfg
}

func (c *spanConfig) Kind() SpanKind {
	return c.kind
}

func (c *spanConfig) Attributes() []Field {
	return c.attributes
}
