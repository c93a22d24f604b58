package otel_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
	"github.com/JailtonJunior94/devkit-tracing/pkg/observability/otel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type harness struct {
	provider *otel.Provider
	spans    *tracetest.InMemoryExporter
	reader   *sdkmetric.ManualReader
	logs     *bytes.Buffer
}

func newHarness(t *testing.T, mutate func(*otel.Config)) *harness {
	t.Helper()

	cfg := otel.DefaultConfig("orders-test")
	cfg.Exporter = otel.ExporterNone
	cfg.LogLevel = observability.LogLevelDebug
	if mutate != nil {
		mutate(cfg)
	}

	h := &harness{
		spans:  tracetest.NewInMemoryExporter(),
		reader: sdkmetric.NewManualReader(),
		logs:   &bytes.Buffer{},
	}

	provider, err := otel.NewProvider(context.Background(), cfg,
		otel.WithSpanExporter(h.spans),
		otel.WithMetricReader(h.reader),
		otel.WithLogOutput(h.logs),
		otel.WithoutGlobals(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	h.provider = provider
	return h
}

func TestNewProviderRejectsInvalidConfig(t *testing.T) {
	_, err := otel.NewProvider(context.Background(), nil)
	require.Error(t, err)

	cfg := otel.DefaultConfig("")
	_, err = otel.NewProvider(context.Background(), cfg, otel.WithoutGlobals())
	require.ErrorIs(t, err, otel.ErrEmptyServiceName)
}

func TestTracerStartAndRecord(t *testing.T) {
	h := newHarness(t, nil)
	tracer := h.provider.Tracer()
	op := observability.NewOperation("OrderService", "Place", "checkout")

	ctx, parent := tracer.Start(context.Background(), "root")
	childCtx, child := tracer.Start(ctx, op.SpanName(),
		observability.WithSpanKind(observability.SpanKindClient),
		observability.WithAttributes(op.Fields()...),
	)

	assert.Equal(t, child.Context().SpanID(), tracer.SpanFromContext(childCtx).Context().SpanID())
	assert.Equal(t, parent.Context().TraceID(), child.Context().TraceID())
	assert.True(t, child.Context().IsSampled())

	boom := errors.New("boom")
	child.SetAttributes(observability.String("userId", "42"))
	child.RecordError(boom)
	child.SetStatus(observability.StatusCodeError, boom.Error())
	child.End()
	parent.End()

	spans := h.spans.GetSpans()
	require.Len(t, spans, 2)

	got := spans[0]
	assert.Equal(t, "OrderService.Place#checkout", got.Name)
	assert.Equal(t, parent.Context().SpanID(), got.Parent.SpanID().String())
	assert.Equal(t, codes.Error, got.Status.Code)
	assert.Contains(t, got.Attributes, attribute.String("code.namespace", "OrderService"))
	assert.Contains(t, got.Attributes, attribute.String("code.function", "Place#checkout"))
	assert.Contains(t, got.Attributes, attribute.String("userId", "42"))
	require.Len(t, got.Events, 1)
	assert.Equal(t, "exception", got.Events[0].Name)
}

func TestTracerContextWithSpan(t *testing.T) {
	h := newHarness(t, nil)
	tracer := h.provider.Tracer()

	_, span := tracer.Start(context.Background(), "detached")
	defer span.End()

	ctx := tracer.ContextWithSpan(context.Background(), span)
	assert.Equal(t, span.Context().SpanID(), tracer.SpanFromContext(ctx).Context().SpanID())
	assert.Empty(t, tracer.SpanFromContext(context.Background()).Context().SpanID())
}

func TestTracerShouldStart(t *testing.T) {
	place := observability.NewOperation("OrderService", "Place", "")
	cancel := observability.NewOperation("OrderService", "Cancel", "")
	refund := observability.NewOperation("PaymentService", "Refund", "")

	t.Run("enabled accepts everything", func(t *testing.T) {
		tracer := newHarness(t, nil).provider.Tracer()
		assert.True(t, tracer.ShouldStart(context.Background(), place))
		assert.True(t, tracer.ShouldStart(context.Background(), refund))
	})

	t.Run("disabled declines everything", func(t *testing.T) {
		tracer := newHarness(t, func(c *otel.Config) { c.Disabled = true }).provider.Tracer()
		assert.False(t, tracer.ShouldStart(context.Background(), place))
	})

	t.Run("suppressed patterns", func(t *testing.T) {
		tracer := newHarness(t, func(c *otel.Config) {
			c.SuppressedOperations = []string{"OrderService.Cancel", "PaymentService.*"}
		}).provider.Tracer()

		assert.True(t, tracer.ShouldStart(context.Background(), place))
		assert.False(t, tracer.ShouldStart(context.Background(), cancel))
		assert.False(t, tracer.ShouldStart(context.Background(), refund))
	})
}

func TestMetricsAreCollected(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	metrics := h.provider.Metrics()
	metrics.Counter("interceptor.invocations", "calls", "1").Increment(ctx, observability.String("intent", "new"))
	metrics.Counter("interceptor.invocations", "calls", "1").Add(ctx, 2, observability.String("intent", "new"))
	metrics.UpDownCounter("interceptor.spans.active", "active", "1").Add(ctx, 1)
	metrics.Histogram("interceptor.duration", "duration", "ms").Record(ctx, 3.5)

	var rm metricdata.ResourceMetrics
	require.NoError(t, h.reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := map[string]metricdata.Metrics{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		byName[m.Name] = m
	}

	sum, ok := byName["interceptor.invocations"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(3), sum.DataPoints[0].Value)
	assert.Contains(t, byName, "interceptor.spans.active")
	assert.Contains(t, byName, "interceptor.duration")
}

func TestLoggerAddsTraceContext(t *testing.T) {
	h := newHarness(t, nil)
	ctx, span := h.provider.Tracer().Start(context.Background(), "logged")
	defer span.End()

	h.provider.Logger().With(observability.String("component", "interceptor")).
		Info(ctx, "span started", observability.Int("attempt", 1))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(h.logs.Bytes(), &entry))
	assert.Equal(t, "span started", entry["msg"])
	assert.Equal(t, "interceptor", entry["component"])
	assert.Equal(t, float64(1), entry["attempt"])
	assert.Equal(t, span.Context().TraceID(), entry["trace_id"])
	assert.Equal(t, span.Context().SpanID(), entry["span_id"])
	assert.Equal(t, "orders-test", entry["service"])
}

func TestLoggerRespectsLevel(t *testing.T) {
	h := newHarness(t, func(c *otel.Config) {
		c.LogLevel = observability.LogLevelWarn
		c.LogFormat = observability.LogFormatText
	})

	h.provider.Logger().Debug(context.Background(), "hidden")
	h.provider.Logger().Warn(context.Background(), "visible")

	assert.NotContains(t, h.logs.String(), "hidden")
	assert.Contains(t, h.logs.String(), "msg=visible")
}
