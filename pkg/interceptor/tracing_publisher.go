package interceptor

import (
	"context"
	"errors"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
	"github.com/JailtonJunior94/devkit-tracing/pkg/observability/noop"
	"github.com/JailtonJunior94/devkit-tracing/pkg/stream"
)

// PublisherConfig configures a TracingPublisher.
type PublisherConfig struct {
	Tracer observability.Tracer

	// Operation names the span started per subscription. Nil continues the
	// trace carried by Context without starting a span.
	Operation *observability.Operation

	// Context is the trace position the stream was obtained in. Its span
	// parents every subscription.
	Context context.Context

	SpanKind observability.SpanKind

	// OnSubscribe runs with the subscription context before the source is
	// subscribed.
	OnSubscribe func(ctx context.Context)

	metrics *instruments
}

// TracingPublisher decorates a publisher with a span per subscription. It
// does nothing until subscribed.
type TracingPublisher[T any] struct {
	source stream.Publisher[T]
	cfg    PublisherConfig
}

// NewTracingPublisher wraps source. Wrapping a *TracingPublisher returns it
// unchanged.
func NewTracingPublisher[T any](source stream.Publisher[T], cfg PublisherConfig) *TracingPublisher[T] {
	if traced, ok := source.(*TracingPublisher[T]); ok {
		return traced
	}
	if cfg.Tracer == nil {
		cfg.Tracer = noop.NewProvider().Tracer()
	}
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	return &TracingPublisher[T]{source: source, cfg: cfg}
}

// Source returns the wrapped publisher.
func (p *TracingPublisher[T]) Source() stream.Publisher[T] {
	return p.source
}

func (p *TracingPublisher[T]) Subscribe(ctx context.Context, subscriber stream.Subscriber[T]) {
	tracer := p.cfg.Tracer
	if parent := tracer.SpanFromContext(p.cfg.Context); parent.Context().SpanID() != "" {
		ctx = tracer.ContextWithSpan(ctx, parent)
	}

	traced := &tracingSubscriber[T]{
		downstream: subscriber,
		active:     tracer.SpanFromContext(ctx),
		metrics:    p.cfg.metrics,
	}

	if op := p.cfg.Operation; op != nil && tracer.ShouldStart(ctx, *op) {
		ctx, traced.span = startSpan(ctx, tracer, *op, p.cfg.SpanKind, p.cfg.metrics)
		traced.active = traced.span
	}
	traced.ctx = ctx

	if p.cfg.OnSubscribe != nil {
		p.cfg.OnSubscribe(ctx)
	}

	p.source.Subscribe(ctx, traced)
}

// tracingSubscriber ends the subscription's span before forwarding the
// terminal signal downstream.
type tracingSubscriber[T any] struct {
	ctx        context.Context
	downstream stream.Subscriber[T]
	active     observability.Span
	span       *trackedSpan
	metrics    *instruments
}

func (s *tracingSubscriber[T]) OnSubscribe(subscription stream.Subscription) {
	s.downstream.OnSubscribe(&tracingSubscription{Subscription: subscription, end: s.end})
}

func (s *tracingSubscriber[T]) OnNext(item T) {
	s.downstream.OnNext(item)
}

func (s *tracingSubscriber[T]) OnError(err error) {
	// A subscriber that leaves by cancelling its context is not a failure.
	if ctxErr := s.ctx.Err(); ctxErr == nil || !errors.Is(err, ctxErr) {
		recordError(s.ctx, s.active, s.metrics, errorKindStream, err)
	}
	s.end()
	s.downstream.OnError(err)
}

func (s *tracingSubscriber[T]) OnComplete() {
	s.end()
	s.downstream.OnComplete()
}

func (s *tracingSubscriber[T]) end() {
	if s.span != nil {
		s.span.End()
	}
}

// tracingSubscription treats cancellation as a terminal signal.
type tracingSubscription struct {
	stream.Subscription
	end func()
}

func (s *tracingSubscription) Cancel() {
	s.end()
	s.Subscription.Cancel()
}
