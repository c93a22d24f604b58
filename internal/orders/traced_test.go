package orders_test

import (
	"context"
	"testing"
	"time"

	"github.com/JailtonJunior94/devkit-tracing/internal/orders"
	"github.com/JailtonJunior94/devkit-tracing/pkg/interceptor"
	"github.com/JailtonJunior94/devkit-tracing/pkg/observability/fake"
	"github.com/JailtonJunior94/devkit-tracing/pkg/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTraced(t *testing.T) (orders.Service, *fake.Provider) {
	t.Helper()
	provider := fake.NewProvider()

	registry := interceptor.NewRegistry()
	registry.MustRegister(orders.Methods()...)

	base := orders.NewService(orders.NewStore(time.Hour), provider.Logger(), orders.Config{PaymentLimit: 100})
	svc, err := orders.NewTracedService(base, interceptor.New(provider), registry)
	require.NoError(t, err)
	return svc, provider
}

func TestTracedServiceSpans(t *testing.T) {
	svc, provider := newTraced(t)
	tracer := provider.FakeTracer()
	ctx, root := tracer.Start(context.Background(), "request")

	order, err := svc.PlaceOrder(ctx, "alice", 500)
	require.NoError(t, err)

	f, err := svc.ProcessPayment(ctx, order.ID)
	require.NoError(t, err)
	_, err = f.Await(ctx)
	assert.ErrorIs(t, err, orders.ErrPaymentDeclined)

	pub, err := svc.ListOrders(ctx, "alice")
	require.NoError(t, err)
	_, err = stream.Collect(context.Background(), pub)
	require.NoError(t, err)

	_, err = svc.CancelOrder(ctx, order.ID)
	require.NoError(t, err)
	root.End()

	rootSpan, ok := tracer.SpanByName("request")
	require.True(t, ok)

	place, ok := tracer.SpanByName("OrderService.PlaceOrder#checkout")
	require.True(t, ok)
	assert.Equal(t, rootSpan.ID, place.ParentID)
	assert.Equal(t, "alice", place.AttributeMap()["customer"])
	assert.Equal(t, "500", place.AttributeMap()["order.amount"])

	payment, ok := tracer.SpanByName("OrderService.ProcessPayment")
	require.True(t, ok)
	assert.Equal(t, order.ID, payment.AttributeMap()["order.id"])
	require.Len(t, payment.RecordedErrors(), 1)
	assert.ErrorIs(t, payment.RecordedErrors()[0], orders.ErrPaymentDeclined)
	assert.Equal(t, 1, payment.Ended())

	list, ok := tracer.SpanByName("OrderService.ListOrders")
	require.True(t, ok)
	assert.Equal(t, rootSpan.ID, list.ParentID)
	assert.Equal(t, 1, list.Ended())

	_, ok = tracer.SpanByName("OrderService.CancelOrder")
	assert.False(t, ok, "cancel continues the request span")
	assert.Equal(t, order.ID, rootSpan.AttributeMap()["order.id"])
}

func TestNewTracedServiceRequiresDescriptors(t *testing.T) {
	provider := fake.NewProvider()
	base := orders.NewService(orders.NewStore(0), provider.Logger(), orders.Config{PaymentLimit: 1})

	_, err := orders.NewTracedService(base, interceptor.New(provider), interceptor.NewRegistry())
	assert.ErrorIs(t, err, interceptor.ErrMethodNotFound)
}
