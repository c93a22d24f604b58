package interceptor

import (
	"context"
	"time"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
)

const (
	errorKindCall       = "call"
	errorKindSettlement = "settlement"
	errorKindStream     = "stream"
)

// instruments are the interceptor's own metrics. A nil *instruments records nothing.
type instruments struct {
	invocations observability.Counter
	started     observability.Counter
	ended       observability.Counter
	active      observability.UpDownCounter
	errors      observability.Counter
	duration    observability.Histogram
}

func newInstruments(m observability.Metrics) *instruments {
	if m == nil {
		return nil
	}
	return &instruments{
		invocations: m.Counter("interceptor.invocations", "Intercepted calls with a span intent", "1"),
		started:     m.Counter("interceptor.spans.started", "Spans started by the interceptor", "1"),
		ended:       m.Counter("interceptor.spans.ended", "Spans ended by the interceptor", "1"),
		active:      m.UpDownCounter("interceptor.spans.active", "Spans started and not yet ended", "1"),
		errors:      m.Counter("interceptor.errors", "Errors recorded on spans", "1"),
		duration:    m.Histogram("interceptor.span.duration", "Lifetime of interceptor spans", "ms"),
	}
}

func (m *instruments) invoked(ctx context.Context, intent Intent, shape Shape) {
	if m == nil {
		return
	}
	m.invocations.Increment(ctx,
		observability.String("intent", intent.String()),
		observability.String("shape", shape.String()),
	)
}

func (m *instruments) spanStarted(ctx context.Context, op observability.Operation) {
	if m == nil {
		return
	}
	m.started.Increment(ctx, observability.String("operation", op.SpanName()))
	m.active.Add(ctx, 1)
}

func (m *instruments) spanEnded(ctx context.Context, op observability.Operation, elapsed time.Duration) {
	if m == nil {
		return
	}
	name := observability.String("operation", op.SpanName())
	m.ended.Increment(ctx, name)
	m.active.Add(ctx, -1)
	m.duration.Record(ctx, float64(elapsed.Microseconds())/1000, name)
}

func (m *instruments) errorRecorded(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.errors.Increment(ctx, observability.String("kind", kind))
}
