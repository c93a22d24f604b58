package interceptor

import (
	"context"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
)

// interceptStream never starts a span itself: the returned publisher starts
// one per subscription.
func (i *Interceptor) interceptStream(
	ctx context.Context,
	op observability.Operation,
	intent Intent,
	tag func(context.Context),
	target StreamTarget,
) (any, error) {
	result, err := target.Proceed(ctx)
	if err != nil {
		if intent == IntentContinue {
			recordError(ctx, i.tracer.SpanFromContext(ctx), i.metrics, errorKindCall, err)
		}
		return result, err
	}

	if target.Traced(result) {
		return result, nil
	}

	cfg := PublisherConfig{
		Tracer:      i.tracer,
		Context:     ctx,
		SpanKind:    i.spanKind,
		OnSubscribe: tag,
		metrics:     i.metrics,
	}
	if intent == IntentNew {
		cfg.Operation = &op
	}
	return target.Wrap(result, cfg), nil
}
