package interceptor

import (
	"context"
	"sync"
	"time"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
)

// trackedSpan is a span started by the interceptor. End is idempotent, so
// racing exit paths still end the underlying span once.
type trackedSpan struct {
	observability.Span

	ctx     context.Context
	op      observability.Operation
	started time.Time
	metrics *instruments
	once    sync.Once
}

func startSpan(
	ctx context.Context,
	tracer observability.Tracer,
	op observability.Operation,
	kind observability.SpanKind,
	metrics *instruments,
) (context.Context, *trackedSpan) {
	spanCtx, span := tracer.Start(ctx, op.SpanName(),
		observability.WithSpanKind(kind),
		observability.WithAttributes(op.Fields()...),
	)
	metrics.spanStarted(spanCtx, op)

	return spanCtx, &trackedSpan{
		Span:    span,
		ctx:     spanCtx,
		op:      op,
		started: time.Now(),
		metrics: metrics,
	}
}

func (s *trackedSpan) End() {
	s.once.Do(func() {
		s.Span.End()
		s.metrics.spanEnded(s.ctx, s.op, time.Since(s.started))
	})
}

// recordError records err on span. Only spans the interceptor started get
// status Error; a continued span's status belongs to its owner. err itself is
// never altered.
func recordError(ctx context.Context, span observability.Span, metrics *instruments, kind string, err error) {
	span.RecordError(err)
	if _, owned := span.(*trackedSpan); owned {
		span.SetStatus(observability.StatusCodeError, err.Error())
	}
	metrics.errorRecorded(ctx, kind)
}
