package interceptor

import (
	"context"

	"github.com/JailtonJunior94/devkit-tracing/pkg/future"
	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
	"github.com/JailtonJunior94/devkit-tracing/pkg/observability/noop"
	"github.com/JailtonJunior94/devkit-tracing/pkg/stream"
)

// Interceptor starts or continues spans around intercepted calls. It holds no
// per-call state and is safe for concurrent use.
type Interceptor struct {
	tracer   observability.Tracer
	logger   observability.Logger
	meter    observability.Metrics
	metrics  *instruments
	spanKind observability.SpanKind
}

// Option configures an Interceptor.
type Option func(*Interceptor)

// WithLogger replaces the provider's logger.
func WithLogger(logger observability.Logger) Option {
	return func(i *Interceptor) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithMetrics replaces the provider's metrics. Passing nil disables the
// interceptor's own metrics.
func WithMetrics(metrics observability.Metrics) Option {
	return func(i *Interceptor) {
		i.meter = metrics
	}
}

// WithSpanKind sets the kind of the spans the interceptor starts.
// Defaults to internal.
func WithSpanKind(kind observability.SpanKind) Option {
	return func(i *Interceptor) {
		i.spanKind = kind
	}
}

// New creates an interceptor on top of obs. A nil obs falls back to the
// no-op provider.
func New(obs observability.Observability, opts ...Option) *Interceptor {
	if obs == nil {
		obs = noop.NewProvider()
	}

	i := &Interceptor{
		tracer:   obs.Tracer(),
		logger:   obs.Logger(),
		meter:    obs.Metrics(),
		spanKind: observability.SpanKindInternal,
	}
	for _, opt := range opts {
		opt(i)
	}

	i.logger = i.logger.With(observability.String("component", "interceptor"))
	i.metrics = newInstruments(i.meter)
	return i
}

// Intercept runs inv.Target according to the method's intent and the shape
// of its result. Errors from the target are returned unchanged.
func (i *Interceptor) Intercept(ctx context.Context, inv Invocation) (any, error) {
	if inv.Target == nil {
		return nil, ErrNilTarget
	}

	intent := inv.Method.Intent()
	if intent == IntentSkip {
		return inv.Target.Proceed(ctx)
	}

	op := inv.Method.Operation()
	shape := inv.Target.Shape()
	i.metrics.invoked(ctx, intent, shape)

	tag := func(tagCtx context.Context) {
		i.tagArguments(tagCtx, inv.Method, inv.Args)
	}

	switch shape {
	case ShapeSynchronous:
		return i.interceptSync(ctx, op, intent, tag, inv.Target)
	case ShapeDeferred:
		if target, ok := inv.Target.(DeferredTarget); ok {
			return i.interceptDeferred(ctx, op, intent, tag, target)
		}
	case ShapeStream:
		if target, ok := inv.Target.(StreamTarget); ok {
			return i.interceptStream(ctx, op, intent, tag, target)
		}
	}

	i.logger.Debug(ctx, "result type cannot be instrumented",
		observability.String("operation", op.String()),
		observability.String("shape", shape.String()),
	)
	return nil, &UnsupportedResultTypeError{Operation: op, Shape: shape}
}

// shouldStart asks the tracer and logs declined starts.
func (i *Interceptor) shouldStart(ctx context.Context, op observability.Operation) bool {
	if i.tracer.ShouldStart(ctx, op) {
		return true
	}
	i.logger.Debug(ctx, "span start declined", observability.String("operation", op.SpanName()))
	return false
}

// Invoke intercepts a call returning a plain value.
func Invoke[T any](ctx context.Context, i *Interceptor, m *Method, fn func(context.Context) (T, error), args ...any) (T, error) {
	result, err := i.Intercept(ctx, Invocation{Method: m, Args: args, Target: Sync(fn)})
	value, _ := result.(T)
	return value, err
}

// InvokeDeferred intercepts a call returning a future. A span started for it
// ends when the returned future settles.
func InvokeDeferred[T any](ctx context.Context, i *Interceptor, m *Method, fn func(context.Context) (*future.Future[T], error), args ...any) (*future.Future[T], error) {
	result, err := i.Intercept(ctx, Invocation{Method: m, Args: args, Target: Deferred(fn)})
	f, _ := result.(*future.Future[T])
	return f, err
}

// InvokeStream intercepts a call returning a publisher. The returned
// publisher starts a span on every subscription.
func InvokeStream[T any](ctx context.Context, i *Interceptor, m *Method, fn func(context.Context) (stream.Publisher[T], error), args ...any) (stream.Publisher[T], error) {
	result, err := i.Intercept(ctx, Invocation{Method: m, Args: args, Target: Stream(fn)})
	p, _ := result.(stream.Publisher[T])
	return p, err
}
