// Package interceptor wraps calls to instrumented methods with tracing spans.
//
// A method is described once, at setup time, by a Method descriptor that
// declares its span intent (new span, continue the ambient trace, or none)
// and which arguments to tag. At call time an Invocation pairs the
// descriptor with the argument values and a Target that knows the shape of
// the result: a plain value, a *future.Future or a stream.Publisher.
//
//	placeOrder := interceptor.NewMethod("OrderService", "PlaceOrder",
//		interceptor.NewSpan("checkout"),
//		interceptor.Params("customerID", "amount"),
//		interceptor.SpanTag(0, "customer.id"),
//	)
//
//	order, err := interceptor.Invoke(ctx, icpt, placeOrder, svc.placeOrder, customerID, amount)
//
// Spans started for the synchronous shape end when the call returns. For the
// deferred shape they end when the future settles, and for streams a span is
// started per subscription and ends on completion, error or cancellation.
package interceptor
