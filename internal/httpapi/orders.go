package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/JailtonJunior94/devkit-tracing/internal/orders"
	"github.com/JailtonJunior94/devkit-tracing/pkg/interceptor"
	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
	"github.com/JailtonJunior94/devkit-tracing/pkg/stream"
	"github.com/go-chi/chi/v5"
)

// APITypeName names the spans opened for incoming requests.
const APITypeName = "OrdersAPI"

// APIMethods describes the traced HTTP handlers. Each request opens a new
// span that becomes the parent of the service spans.
func APIMethods() []*interceptor.Method {
	route := func(name string) *interceptor.Method {
		return interceptor.NewMethod(APITypeName, name,
			interceptor.NewSpan(""),
			interceptor.Params("http.method", "http.target"),
			interceptor.SpanTag(0, ""),
			interceptor.SpanTag(1, ""),
		)
	}
	return []*interceptor.Method{route("Create"), route("Pay"), route("List"), route("Cancel")}
}

type createOrderRequest struct {
	Customer string  `json:"customer"`
	Amount   float64 `json:"amount"`
}

// OrdersHandler serves the order routes.
type OrdersHandler struct {
	service orders.Service
	icpt    *interceptor.Interceptor
	methods map[string]*interceptor.Method
}

// NewOrdersHandler resolves its descriptors from registry. icpt is usually
// configured with a server span kind.
func NewOrdersHandler(service orders.Service, icpt *interceptor.Interceptor, registry *interceptor.Registry) (*OrdersHandler, error) {
	h := &OrdersHandler{service: service, icpt: icpt, methods: make(map[string]*interceptor.Method)}
	for _, name := range []string{"Create", "Pay", "List", "Cancel"} {
		m, err := registry.Lookup(APITypeName, name)
		if err != nil {
			return nil, err
		}
		h.methods[name] = m
	}
	return h, nil
}

// Routes returns the order routes.
func (h *OrdersHandler) Routes() []Route {
	return []Route{
		NewRoute(http.MethodPost, "/orders", h.traced("Create", h.create)),
		NewRoute(http.MethodPost, "/orders/{id}/payment", h.traced("Pay", h.pay)),
		NewRoute(http.MethodGet, "/orders", h.traced("List", h.list)),
		NewRoute(http.MethodDelete, "/orders/{id}", h.traced("Cancel", h.cancel)),
	}
}

func (h *OrdersHandler) traced(name string, next Handler) Handler {
	method := h.methods[name]
	return func(w http.ResponseWriter, r *http.Request) error {
		_, err := interceptor.Invoke(r.Context(), h.icpt, method, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, next(w, r.WithContext(ctx))
		}, r.Method, r.URL.Path)
		return err
	}
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) error {
	var body createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: %v", orders.ErrInvalidOrder, err)
	}

	order, err := h.service.PlaceOrder(r.Context(), body.Customer, body.Amount)
	if err != nil {
		return err
	}
	return JSON(w, http.StatusCreated, order)
}

func (h *OrdersHandler) pay(w http.ResponseWriter, r *http.Request) error {
	pending, err := h.service.ProcessPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	payment, err := pending.Await(r.Context())
	if err != nil {
		return err
	}
	return JSON(w, http.StatusOK, payment)
}

func (h *OrdersHandler) cancel(w http.ResponseWriter, r *http.Request) error {
	order, err := h.service.CancelOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	return JSON(w, http.StatusOK, order)
}

// list writes one JSON document per line, requesting items one at a time
// so a slow client slows the producer down. An error after the first line
// is written as a final {"message": ...} line.
func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) error {
	customer := r.URL.Query().Get("customer")
	if customer == "" {
		return fmt.Errorf("%w: customer is required", orders.ErrInvalidOrder)
	}

	pub, err := h.service.ListOrders(r.Context(), customer)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	sub := &ndjsonSubscriber{w: w, enc: json.NewEncoder(w), done: make(chan struct{})}
	if f, ok := w.(http.Flusher); ok {
		sub.flusher = f
	}
	pub.Subscribe(r.Context(), sub)

	select {
	case <-sub.done:
		return sub.headerErr()
	case <-r.Context().Done():
		sub.cancel()
		<-sub.done
		return nil
	}
}

type ndjsonSubscriber struct {
	w       http.ResponseWriter
	enc     *json.Encoder
	flusher http.Flusher

	mu      sync.Mutex
	sub     stream.Subscription
	written bool
	closed  bool
	err     error
	once    sync.Once
	done    chan struct{}
}

func (s *ndjsonSubscriber) OnSubscribe(sub stream.Subscription) {
	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()
	sub.Request(1)
}

func (s *ndjsonSubscriber) OnNext(order orders.Order) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if !s.written {
		s.w.WriteHeader(http.StatusOK)
		s.written = true
	}
	err := s.enc.Encode(order)
	if err == nil && s.flusher != nil {
		s.flusher.Flush()
	}
	sub := s.sub
	s.mu.Unlock()

	if err != nil {
		sub.Cancel()
		s.finish()
		return
	}
	sub.Request(1)
}

func (s *ndjsonSubscriber) OnError(err error) {
	s.mu.Lock()
	switch {
	case s.closed:
	case s.written:
		_ = s.enc.Encode(errorBody{Message: err.Error()})
	default:
		s.err = err
	}
	s.mu.Unlock()
	s.finish()
}

func (s *ndjsonSubscriber) OnComplete() {
	s.mu.Lock()
	if !s.closed && !s.written {
		s.w.WriteHeader(http.StatusOK)
		s.written = true
	}
	s.mu.Unlock()
	s.finish()
}

// cancel stops the subscription and any further writes. No terminal signal
// follows a cancel, so it also releases the waiting handler.
func (s *ndjsonSubscriber) cancel() {
	s.mu.Lock()
	s.closed = true
	sub := s.sub
	s.mu.Unlock()
	if sub != nil {
		sub.Cancel()
	}
	s.finish()
}

func (s *ndjsonSubscriber) finish() {
	s.once.Do(func() { close(s.done) })
}

// headerErr is the error to report when the stream failed before any item
// was written, so the status code can still reflect it.
func (s *ndjsonSubscriber) headerErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// NewErrorHandler maps order errors onto status codes.
func NewErrorHandler(logger observability.Logger) ErrorHandler {
	return func(ctx context.Context, w http.ResponseWriter, err error) {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			logger.Error(ctx, "request failed",
				observability.String("request_id", RequestIDFrom(ctx)),
				observability.Error(err),
			)
			_ = Error(w, status, http.StatusText(status))
			return
		}
		_ = Error(w, status, err.Error())
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, orders.ErrInvalidOrder):
		return http.StatusBadRequest
	case errors.Is(err, orders.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, orders.ErrPaymentDeclined):
		return http.StatusPaymentRequired
	case errors.Is(err, orders.ErrAlreadyCancelled), errors.Is(err, orders.ErrAlreadyPaid):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
