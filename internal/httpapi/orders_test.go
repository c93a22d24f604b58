package httpapi_test

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JailtonJunior94/devkit-tracing/internal/httpapi"
	"github.com/JailtonJunior94/devkit-tracing/internal/orders"
	"github.com/JailtonJunior94/devkit-tracing/pkg/interceptor"
	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
	"github.com/JailtonJunior94/devkit-tracing/pkg/observability/fake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type api struct {
	server   *httpapi.Server
	provider *fake.Provider
}

func newAPI(t *testing.T) *api {
	t.Helper()
	provider := fake.NewProvider()

	registry := interceptor.NewRegistry()
	registry.MustRegister(orders.Methods()...)
	registry.MustRegister(httpapi.APIMethods()...)

	base := orders.NewService(orders.NewStore(time.Hour), provider.Logger(), orders.Config{PaymentLimit: 100})
	svc, err := orders.NewTracedService(base, interceptor.New(provider), registry)
	require.NoError(t, err)

	handler, err := httpapi.NewOrdersHandler(svc,
		interceptor.New(provider, interceptor.WithSpanKind(observability.SpanKindServer)), registry)
	require.NoError(t, err)

	server := httpapi.New(
		httpapi.WithMiddlewares(httpapi.RequestID),
		httpapi.WithRoutes(handler.Routes()...),
		httpapi.WithErrorHandler(httpapi.NewErrorHandler(provider.Logger())),
	)
	return &api{server: server, provider: provider}
}

func (a *api) do(method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.server.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func (a *api) place(t *testing.T, customer string, amount float64) orders.Order {
	t.Helper()
	body, err := json.Marshal(map[string]any{"customer": customer, "amount": amount})
	require.NoError(t, err)

	rec := a.do(http.MethodPost, "/orders", string(body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var order orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	return order
}

func TestCreateOrder(t *testing.T) {
	a := newAPI(t)
	order := a.place(t, "alice", 40)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, orders.StatusPending, order.Status)

	server, ok := a.provider.FakeTracer().SpanByName("OrdersAPI.Create")
	require.True(t, ok)
	assert.Equal(t, observability.SpanKindServer, server.Kind)
	assert.Equal(t, "/orders", server.AttributeMap()["http.target"])

	place, ok := a.provider.FakeTracer().SpanByName("OrderService.PlaceOrder#checkout")
	require.True(t, ok)
	assert.Equal(t, server.ID, place.ParentID)
	assert.Equal(t, observability.SpanKindInternal, place.Kind)
}

func TestCreateOrderRejectsBadInput(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/orders", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, "/orders", `{"customer":"alice","amount":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "amount must be positive")

	span, ok := a.provider.FakeTracer().SpanByName("OrdersAPI.Create")
	require.True(t, ok)
	assert.Equal(t, observability.StatusCodeError, span.Status)
}

func TestPayOrder(t *testing.T) {
	a := newAPI(t)

	t.Run("accepted", func(t *testing.T) {
		order := a.place(t, "alice", 40)
		rec := a.do(http.MethodPost, "/orders/"+order.ID+"/payment", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var payment orders.Payment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payment))
		assert.Equal(t, order.ID, payment.OrderID)
		assert.NotEmpty(t, payment.TransactionID)

		rec = a.do(http.MethodPost, "/orders/"+order.ID+"/payment", "")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("declined", func(t *testing.T) {
		order := a.place(t, "bob", 400)
		rec := a.do(http.MethodPost, "/orders/"+order.ID+"/payment", "")
		assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	})

	t.Run("unknown", func(t *testing.T) {
		rec := a.do(http.MethodPost, "/orders/missing/payment", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCancelOrder(t *testing.T) {
	a := newAPI(t)
	order := a.place(t, "alice", 40)

	rec := a.do(http.MethodDelete, "/orders/"+order.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var cancelled orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cancelled))
	assert.Equal(t, orders.StatusCancelled, cancelled.Status)

	rec = a.do(http.MethodDelete, "/orders/"+order.ID, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	// CancelOrder continues the request span instead of opening its own.
	_, ok := a.provider.FakeTracer().SpanByName("OrderService.CancelOrder")
	assert.False(t, ok)
}

func TestListOrdersStreamsNDJSON(t *testing.T) {
	a := newAPI(t)
	first := a.place(t, "alice", 10)
	second := a.place(t, "alice", 20)
	a.place(t, "bob", 30)

	rec := a.do(http.MethodGet, "/orders?customer=alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-ndjson", rec.Header().Get("Content-Type"))

	var ids []string
	scanner := bufio.NewScanner(rec.Body)
	for scanner.Scan() {
		var order orders.Order
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &order))
		assert.Equal(t, "alice", order.Customer)
		ids = append(ids, order.ID)
	}
	assert.ElementsMatch(t, []string{first.ID, second.ID}, ids)

	list, ok := a.provider.FakeTracer().SpanByName("OrderService.ListOrders")
	require.True(t, ok)
	assert.Equal(t, 1, list.Ended())
}

func TestListOrdersRequiresCustomer(t *testing.T) {
	a := newAPI(t)
	rec := a.do(http.MethodGet, "/orders", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListOrdersEmpty(t *testing.T) {
	a := newAPI(t)
	rec := a.do(http.MethodGet, "/orders?customer=nobody", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}
