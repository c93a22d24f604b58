package fake_test

import (
	"context"
	"errors"
	"testing"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
	"github.com/JailtonJunior94/devkit-tracing/pkg/observability/fake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeTracer(t *testing.T) {
	provider := fake.NewProvider()
	tracer := provider.FakeTracer()

	t.Run("captures spans and parent links", func(t *testing.T) {
		tracer.Reset()
		ctx := context.Background()

		ctx, parent := tracer.Start(ctx, "parent",
			observability.WithSpanKind(observability.SpanKindServer),
			observability.WithAttributes(observability.String("key", "value")),
		)
		_, child := tracer.Start(ctx, "child")
		child.SetAttributes(observability.Int("count", 42))
		child.End()
		parent.End()

		spans := tracer.GetSpans()
		require.Len(t, spans, 2)
		assert.Equal(t, "parent", spans[0].Name)
		assert.Equal(t, observability.SpanKindServer, spans[0].Kind)
		assert.Equal(t, spans[0].ID, spans[1].ParentID)
		assert.Equal(t, 1, spans[1].Ended())

		value, ok := spans[1].Attribute("count")
		require.True(t, ok)
		assert.Equal(t, 42, value)
	})

	t.Run("SpanFromContext returns the carried span", func(t *testing.T) {
		tracer.Reset()
		ctx, span := tracer.Start(context.Background(), "carried")

		assert.Same(t, span, tracer.SpanFromContext(ctx))
		assert.Empty(t, tracer.SpanFromContext(context.Background()).Context().SpanID())
	})

	t.Run("ContextWithSpan reattaches a span", func(t *testing.T) {
		tracer.Reset()
		_, span := tracer.Start(context.Background(), "detached")

		ctx := tracer.ContextWithSpan(context.Background(), span)
		assert.Same(t, span, tracer.SpanFromContext(ctx))
	})

	t.Run("records errors in order", func(t *testing.T) {
		tracer.Reset()
		_, span := tracer.Start(context.Background(), "error-span")
		first, second := errors.New("first"), errors.New("second")
		span.RecordError(first)
		span.RecordError(second)

		fs, ok := tracer.SpanByName("error-span")
		require.True(t, ok)
		assert.Equal(t, []error{first, second}, fs.RecordedErrors())
	})

	t.Run("ShouldStart decision is configurable", func(t *testing.T) {
		tracer.Reset()
		op := observability.NewOperation("OrderService", "Place", "")
		assert.True(t, tracer.ShouldStart(context.Background(), op))

		tracer.SetShouldStart(func(context.Context, observability.Operation) bool { return false })
		defer tracer.SetShouldStart(nil)
		assert.False(t, tracer.ShouldStart(context.Background(), op))
		assert.Equal(t, []observability.Operation{op, op}, tracer.Decisions())
	})
}

func TestFakeLogger(t *testing.T) {
	logger := fake.NewFakeLogger()
	ctx := context.Background()

	child := logger.With(observability.String("component", "test"))
	logger.Debug(ctx, "debug message")
	child.Info(ctx, "info message", observability.Int("n", 1))
	child.Warn(ctx, "warn message")
	logger.Error(ctx, "error message")

	entries := logger.GetEntries()
	require.Len(t, entries, 4)
	assert.Equal(t, observability.LogLevelDebug, entries[0].Level)
	assert.Equal(t, observability.LogLevelInfo, entries[1].Level)
	assert.Equal(t, []observability.Field{
		observability.String("component", "test"),
		observability.Int("n", 1),
	}, entries[1].Fields)

	logger.Reset()
	assert.Empty(t, logger.GetEntries())
}

func TestFakeMetrics(t *testing.T) {
	metrics := fake.NewFakeMetrics()
	ctx := context.Background()

	metrics.Counter("calls", "", "1").Increment(ctx)
	metrics.Counter("calls", "", "1").Add(ctx, 2)
	metrics.UpDownCounter("active", "", "1").Add(ctx, 1)
	metrics.UpDownCounter("active", "", "1").Add(ctx, -1)
	metrics.Histogram("latency", "", "ms").Record(ctx, 12.5)

	assert.Equal(t, int64(3), metrics.GetCounter("calls").Total())
	assert.Equal(t, int64(0), metrics.GetCounter("active").Total())
	assert.Equal(t, []float64{12.5}, metrics.GetHistogram("latency").GetValues())
	assert.Nil(t, metrics.GetCounter("missing"))
}
