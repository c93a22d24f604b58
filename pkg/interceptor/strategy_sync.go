package interceptor

import (
	"context"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
)

func (i *Interceptor) interceptSync(
	ctx context.Context,
	op observability.Operation,
	intent Intent,
	tag func(context.Context),
	target Target,
) (any, error) {
	if intent == IntentContinue {
		tag(ctx)
		result, err := target.Proceed(ctx)
		if err != nil {
			recordError(ctx, i.tracer.SpanFromContext(ctx), i.metrics, errorKindCall, err)
		}
		return result, err
	}

	if !i.shouldStart(ctx, op) {
		return target.Proceed(ctx)
	}

	spanCtx, span := startSpan(ctx, i.tracer, op, i.spanKind, i.metrics)
	defer span.End()

	tag(spanCtx)
	result, err := target.Proceed(spanCtx)
	if err != nil {
		recordError(spanCtx, span, i.metrics, errorKindCall, err)
	}
	return result, err
}
