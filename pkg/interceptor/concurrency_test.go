package interceptor_test

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/JailtonJunior94/devkit-tracing/pkg/future"
	"github.com/JailtonJunior94/devkit-tracing/pkg/interceptor"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentCallsHaveIndependentSpans(t *testing.T) {
	icpt, provider := newInterceptor(t)
	m := interceptor.NewMethod("OrderService", "placeOrder",
		interceptor.NewSpan(""),
		interceptor.Params("orderId"),
		interceptor.SpanTag(0, ""),
	)

	const calls = 50
	var wg sync.WaitGroup
	wg.Add(calls)
	for n := 0; n < calls; n++ {
		go func(n int) {
			defer wg.Done()
			got, err := interceptor.Invoke(context.Background(), icpt, m, func(ctx context.Context) (string, error) {
				span := provider.Tracer().SpanFromContext(ctx)
				return span.Context().SpanID(), nil
			}, n)
			assert.NoError(t, err)
			assert.NotEmpty(t, got)
		}(n)
	}
	wg.Wait()

	spans := provider.FakeTracer().GetSpans()
	require.Len(t, spans, calls)

	want := make([]string, calls)
	got := make([]string, 0, calls)
	for n := 0; n < calls; n++ {
		want[n] = strconv.Itoa(n)
	}
	for _, span := range spans {
		assert.Equal(t, 1, span.Ended())
		attrs := span.AttributeMap()
		got = append(got, attrs["orderId"].(string))
	}
	sort.Strings(want)
	sort.Strings(got)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tag values mismatch (-want +got):\n%s", diff)
	}
}

func TestConcurrentDeferredSettlement(t *testing.T) {
	icpt, provider := newInterceptor(t)
	m := interceptor.NewMethod("OrderService", "reserveStock", interceptor.NewSpan(""))

	const calls = 20
	futures := make([]*future.Future[int], calls)
	for n := 0; n < calls; n++ {
		n := n // per-iteration copy; go.mod targets Go 1.21 loop semantics
		f, err := interceptor.InvokeDeferred(context.Background(), icpt, m, func(ctx context.Context) (*future.Future[int], error) {
			return future.Go(ctx, func(context.Context) (int, error) { return n, nil }), nil
		})
		require.NoError(t, err)
		futures[n] = f
	}

	for n, f := range futures {
		got, err := f.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}

	spans := provider.FakeTracer().GetSpans()
	require.Len(t, spans, calls)
	for _, span := range spans {
		assert.Equal(t, 1, span.Ended())
	}
	assert.Equal(t, int64(0), provider.FakeMetrics().GetCounter("interceptor.spans.active").Total())
}
