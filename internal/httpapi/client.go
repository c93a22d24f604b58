package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JailtonJunior94/devkit-tracing/internal/orders"
	"github.com/JailtonJunior94/devkit-tracing/pkg/future"
	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
	"github.com/JailtonJunior94/devkit-tracing/pkg/stream"
)

const defaultClientTimeout = 30 * time.Second

// ErrStreamAborted is returned when the server reports a failure in the
// middle of a ListOrders stream.
var ErrStreamAborted = errors.New("order stream aborted by server")

// StatusError is a non-2xx answer from the order API. It unwraps to the
// matching orders error when there is one.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Code, e.Message)
}

func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusBadRequest:
		return orders.ErrInvalidOrder
	case http.StatusNotFound:
		return orders.ErrOrderNotFound
	case http.StatusPaymentRequired:
		return orders.ErrPaymentDeclined
	case http.StatusConflict:
		if strings.Contains(e.Message, orders.ErrAlreadyPaid.Error()) {
			return orders.ErrAlreadyPaid
		}
		return orders.ErrAlreadyCancelled
	}
	return nil
}

type (
	ClientOption   func(c clientSettings) clientSettings
	clientSettings struct {
		timeout   time.Duration
		transport http.RoundTripper
		metrics   observability.Metrics
	}
)

// WithClientTimeout bounds unary calls. Streams are bounded by their context only.
func WithClientTimeout(timeout time.Duration) ClientOption {
	return func(c clientSettings) clientSettings {
		c.timeout = timeout
		return c
	}
}

// WithTransport replaces http.DefaultTransport.
func WithTransport(transport http.RoundTripper) ClientOption {
	return func(c clientSettings) clientSettings {
		c.transport = transport
		return c
	}
}

// WithClientMetrics records http.client.request.* metrics.
func WithClientMetrics(metrics observability.Metrics) ClientOption {
	return func(c clientSettings) clientSettings {
		c.metrics = metrics
		return c
	}
}

// Client is an orders.Service backed by the HTTP API.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
}

var _ orders.Service = (*Client)(nil)

// NewClient creates a client for the API served at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	settings := clientSettings{timeout: defaultClientTimeout}
	for _, opt := range opts {
		settings = opt(settings)
	}

	transport := settings.transport
	if settings.metrics != nil {
		transport = newMetricsTransport(transport, settings.metrics)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: settings.timeout,
		http:    &http.Client{Transport: transport},
	}
}

func (c *Client) PlaceOrder(ctx context.Context, customer string, amount float64) (orders.Order, error) {
	var order orders.Order
	err := c.call(ctx, http.MethodPost, "/orders", createOrderRequest{Customer: customer, Amount: amount}, &order)
	return order, err
}

// ProcessPayment starts the request in the background. Every failure,
// including an unknown order, settles the future.
func (c *Client) ProcessPayment(ctx context.Context, orderID string) (*future.Future[orders.Payment], error) {
	path := "/orders/" + url.PathEscape(orderID) + "/payment"
	return future.Go(ctx, func(ctx context.Context) (orders.Payment, error) {
		var payment orders.Payment
		err := c.call(ctx, http.MethodPost, path, nil, &payment)
		return payment, err
	}), nil
}

func (c *Client) CancelOrder(ctx context.Context, orderID string) (orders.Order, error) {
	var order orders.Order
	err := c.call(ctx, http.MethodDelete, "/orders/"+url.PathEscape(orderID), nil, &order)
	return order, err
}

// ListOrders is cold: each subscription issues its own request.
func (c *Client) ListOrders(_ context.Context, customer string) (stream.Publisher[orders.Order], error) {
	target := c.baseURL + "/orders?" + url.Values{"customer": {customer}}.Encode()
	return stream.Create(func(ctx context.Context, emit stream.Emitter[orders.Order]) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return decodeStatusError(resp)
		}

		dec := json.NewDecoder(resp.Body)
		for {
			var line struct {
				orders.Order
				Message string `json:"message"`
			}
			if err := dec.Decode(&line); err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
			if line.ID == "" && line.Message != "" {
				return fmt.Errorf("%w: %s", ErrStreamAborted, line.Message)
			}
			if !emit.Next(line.Order) {
				return nil
			}
		}
	}), nil
}

func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeStatusError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeStatusError(resp *http.Response) error {
	var body errorBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil || body.Message == "" {
		body.Message = http.StatusText(resp.StatusCode)
	}
	return &StatusError{Code: resp.StatusCode, Message: body.Message}
}
