package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
)

// metricsTransport records request count, errors and latency for every
// round trip. Spans come from the interceptor wrapping the client.
type metricsTransport struct {
	base     http.RoundTripper
	requests observability.Counter
	errors   observability.Counter
	latency  observability.Histogram
}

func newMetricsTransport(base http.RoundTripper, metrics observability.Metrics) *metricsTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &metricsTransport{
		base:     base,
		requests: metrics.Counter("http.client.request.count", "Total number of HTTP client requests", "{request}"),
		errors:   metrics.Counter("http.client.request.errors", "Total number of HTTP client request errors", "{error}"),
		latency:  metrics.Histogram("http.client.request.duration", "Duration of HTTP client requests", "ms"),
	}
}

func (t *metricsTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	// Recorded on a fresh context so cancelled requests are still counted.
	ctx := context.Background()
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	fields := []observability.Field{
		observability.String("http.method", req.Method),
		observability.Int("http.status_code", status),
	}

	t.requests.Increment(ctx, fields...)
	t.latency.Record(ctx, elapsed, fields...)
	if err != nil {
		t.errors.Increment(ctx,
			observability.String("http.method", req.Method),
			observability.String("error.type", classifyError(err)),
		)
	}
	return resp, err
}

func classifyError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "network_timeout"
		}
		return "network_error"
	}
	return "unknown"
}
