package orders

import (
	"context"

	"github.com/JailtonJunior94/devkit-tracing/pkg/future"
	"github.com/JailtonJunior94/devkit-tracing/pkg/interceptor"
	"github.com/JailtonJunior94/devkit-tracing/pkg/stream"
)

// TypeName is the declaring type the service's spans are named after.
const TypeName = "OrderService"

// Methods describes the instrumented methods of Service.
func Methods() []*interceptor.Method {
	return []*interceptor.Method{
		interceptor.NewMethod(TypeName, "PlaceOrder",
			interceptor.NewSpan("checkout"),
			interceptor.Params("customer", "amount"),
			interceptor.SpanTag(0, ""),
			interceptor.SpanTag(1, "order.amount"),
		),
		interceptor.NewMethod(TypeName, "ProcessPayment",
			interceptor.NewSpan(""),
			interceptor.Params("orderID"),
			interceptor.SpanTag(0, "order.id"),
		),
		interceptor.NewMethod(TypeName, "ListOrders",
			interceptor.WithSpan(""),
			interceptor.Params("customer"),
			interceptor.SpanTag(0, ""),
		),
		interceptor.NewMethod(TypeName, "CancelOrder",
			interceptor.ContinueSpan(),
			interceptor.Params("orderID"),
			interceptor.SpanTag(0, "order.id"),
		),
	}
}

type tracedService struct {
	next Service
	icpt *interceptor.Interceptor

	placeOrder     *interceptor.Method
	processPayment *interceptor.Method
	listOrders     *interceptor.Method
	cancelOrder    *interceptor.Method
}

// NewTracedService wraps next so every call goes through icpt, using the
// descriptors registered for TypeName.
func NewTracedService(next Service, icpt *interceptor.Interceptor, registry *interceptor.Registry) (Service, error) {
	s := &tracedService{next: next, icpt: icpt}

	lookups := []struct {
		name   string
		target **interceptor.Method
	}{
		{"PlaceOrder", &s.placeOrder},
		{"ProcessPayment", &s.processPayment},
		{"ListOrders", &s.listOrders},
		{"CancelOrder", &s.cancelOrder},
	}
	for _, l := range lookups {
		m, err := registry.Lookup(TypeName, l.name)
		if err != nil {
			return nil, err
		}
		*l.target = m
	}
	return s, nil
}

func (s *tracedService) PlaceOrder(ctx context.Context, customer string, amount float64) (Order, error) {
	return interceptor.Invoke(ctx, s.icpt, s.placeOrder, func(ctx context.Context) (Order, error) {
		return s.next.PlaceOrder(ctx, customer, amount)
	}, customer, amount)
}

func (s *tracedService) ProcessPayment(ctx context.Context, orderID string) (*future.Future[Payment], error) {
	return interceptor.InvokeDeferred(ctx, s.icpt, s.processPayment, func(ctx context.Context) (*future.Future[Payment], error) {
		return s.next.ProcessPayment(ctx, orderID)
	}, orderID)
}

func (s *tracedService) ListOrders(ctx context.Context, customer string) (stream.Publisher[Order], error) {
	return interceptor.InvokeStream(ctx, s.icpt, s.listOrders, func(ctx context.Context) (stream.Publisher[Order], error) {
		return s.next.ListOrders(ctx, customer)
	}, customer)
}

func (s *tracedService) CancelOrder(ctx context.Context, orderID string) (Order, error) {
	return interceptor.Invoke(ctx, s.icpt, s.cancelOrder, func(ctx context.Context) (Order, error) {
		return s.next.CancelOrder(ctx, orderID)
	}, orderID)
}
