package interceptor

import (
	"context"

	"github.com/JailtonJunior94/devkit-tracing/pkg/future"
	"github.com/JailtonJunior94/devkit-tracing/pkg/stream"
)

// Invocation is one intercepted call.
type Invocation struct {
	Method *Method
	Args   []any
	Target Target
}

// Target runs the underlying method and reports the shape of its result.
type Target interface {
	Shape() Shape
	Proceed(ctx context.Context) (any, error)
}

// DeferredTarget is a Target whose result settles later.
type DeferredTarget interface {
	Target
	// Observe attaches fn to the settlement of result and returns the value
	// handed back to the caller. It reports false when result cannot be
	// observed, in which case fn is never called.
	Observe(result any, fn func(error)) (any, bool)
}

// StreamTarget is a Target whose result is a publisher.
type StreamTarget interface {
	Target
	// Traced reports whether result is already wrapped.
	Traced(result any) bool
	// Wrap decorates result with a TracingPublisher.
	Wrap(result any, cfg PublisherConfig) any
}

// Sync adapts a function returning a plain value.
func Sync[T any](fn func(context.Context) (T, error)) Target {
	return syncTarget[T](fn)
}

// Deferred adapts a function returning a future.
func Deferred[T any](fn func(context.Context) (*future.Future[T], error)) DeferredTarget {
	return deferredTarget[T](fn)
}

// Stream adapts a function returning a publisher.
func Stream[T any](fn func(context.Context) (stream.Publisher[T], error)) StreamTarget {
	return streamTarget[T](fn)
}

// Unsupported adapts a call whose result cannot be instrumented. Intercepting
// it with a span intent fails with ErrUnsupportedResultType.
func Unsupported(fn func(context.Context) (any, error)) Target {
	return unsupportedTarget(fn)
}

type syncTarget[T any] func(context.Context) (T, error)

func (t syncTarget[T]) Shape() Shape { return ShapeSynchronous }

func (t syncTarget[T]) Proceed(ctx context.Context) (any, error) {
	return t(ctx)
}

type deferredTarget[T any] func(context.Context) (*future.Future[T], error)

func (t deferredTarget[T]) Shape() Shape { return ShapeDeferred }

func (t deferredTarget[T]) Proceed(ctx context.Context) (any, error) {
	return t(ctx)
}

func (t deferredTarget[T]) Observe(result any, fn func(error)) (any, bool) {
	f, ok := result.(*future.Future[T])
	if !ok || f == nil {
		return result, false
	}
	return f.WhenComplete(func(_ T, err error) { fn(err) }), true
}

type streamTarget[T any] func(context.Context) (stream.Publisher[T], error)

func (t streamTarget[T]) Shape() Shape { return ShapeStream }

func (t streamTarget[T]) Proceed(ctx context.Context) (any, error) {
	return t(ctx)
}

func (t streamTarget[T]) Traced(result any) bool {
	_, ok := result.(*TracingPublisher[T])
	return ok
}

func (t streamTarget[T]) Wrap(result any, cfg PublisherConfig) any {
	p, ok := result.(stream.Publisher[T])
	if !ok || p == nil {
		return result
	}
	return NewTracingPublisher(p, cfg)
}

type unsupportedTarget func(context.Context) (any, error)

func (t unsupportedTarget) Shape() Shape { return ShapeUnsupported }

func (t unsupportedTarget) Proceed(ctx context.Context) (any, error) {
	return t(ctx)
}
