package interceptor

import (
	"context"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
)

// interceptDeferred only gates the new-span intent on ShouldStart; the
// continue intent always observes settlement on the ambient span.
func (i *Interceptor) interceptDeferred(
	ctx context.Context,
	op observability.Operation,
	intent Intent,
	tag func(context.Context),
	target DeferredTarget,
) (any, error) {
	if intent == IntentContinue {
		ambient := i.tracer.SpanFromContext(ctx)
		tag(ctx)

		result, err := target.Proceed(ctx)
		if err != nil {
			recordError(ctx, ambient, i.metrics, errorKindCall, err)
			return result, err
		}

		observed, _ := target.Observe(result, func(err error) {
			if err != nil {
				recordError(ctx, ambient, i.metrics, errorKindSettlement, err)
			}
		})
		return observed, nil
	}

	if !i.shouldStart(ctx, op) {
		return target.Proceed(ctx)
	}

	spanCtx, span := startSpan(ctx, i.tracer, op, i.spanKind, i.metrics)
	tag(spanCtx)

	result, err := i.proceedGuarded(spanCtx, span, target)
	if err != nil {
		recordError(spanCtx, span, i.metrics, errorKindCall, err)
		span.End()
		return result, err
	}

	// spanCtx is captured here; the settlement callback runs on whichever
	// goroutine settles the future.
	observed, ok := target.Observe(result, func(err error) {
		if err != nil {
			recordError(spanCtx, span, i.metrics, errorKindSettlement, err)
		}
		span.End()
	})
	if !ok {
		span.End()
	}
	return observed, nil
}

// proceedGuarded ends span if the target panics, then re-panics.
func (i *Interceptor) proceedGuarded(ctx context.Context, span *trackedSpan, target Target) (result any, err error) {
	panicking := true
	defer func() {
		if panicking {
			span.End()
		}
	}()

	result, err = target.Proceed(ctx)
	panicking = false
	return result, err
}
