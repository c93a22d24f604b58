// Package app wires configuration, telemetry backends, the interceptor and
// the order service into a runnable application.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/JailtonJunior94/devkit-tracing/internal/config"
	"github.com/JailtonJunior94/devkit-tracing/internal/httpapi"
	"github.com/JailtonJunior94/devkit-tracing/internal/orders"
	"github.com/JailtonJunior94/devkit-tracing/pkg/interceptor"
	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
	"github.com/JailtonJunior94/devkit-tracing/pkg/observability/otel"
	promobs "github.com/JailtonJunior94/devkit-tracing/pkg/observability/prometheus"
	"github.com/JailtonJunior94/devkit-tracing/pkg/observability/zaplog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// App holds the wired components.
type App struct {
	Config   config.Config
	Logger   observability.Logger
	Registry *interceptor.Registry
	Orders   orders.Service
	Handler  *httpapi.OrdersHandler

	obs        observability.Observability
	provider   *otel.Provider
	prometheus *prometheus.Registry
}

// New builds the application. opts are passed to the OpenTelemetry provider.
func New(ctx context.Context, cfg config.Config, opts ...otel.Option) (*App, error) {
	provider, err := otel.NewProvider(ctx, cfg.OTel(), opts...)
	if err != nil {
		return nil, fmt.Errorf("creating telemetry provider: %w", err)
	}

	a := &App{Config: cfg, provider: provider}
	if err := a.wire(cfg); err != nil {
		_ = provider.Shutdown(ctx)
		return nil, err
	}
	return a, nil
}

func (a *App) wire(cfg config.Config) error {
	logger := a.provider.Logger()
	if cfg.Telemetry.Logger == config.LoggerZap {
		zl, err := zaplog.NewProduction(observability.ParseLogLevel(cfg.Telemetry.LogLevel))
		if err != nil {
			return fmt.Errorf("creating zap logger: %w", err)
		}
		logger = zl.With(observability.String("service", cfg.Service.Name))
	}
	a.Logger = logger

	metrics := a.provider.Metrics()
	if cfg.Telemetry.Metrics == config.MetricsPrometheus {
		a.prometheus = prometheus.NewRegistry()
		metrics = promobs.New(cfg.Telemetry.MetricPrefix, a.prometheus)
	}

	obs := observability.Compose(a.provider.Tracer(), a.Logger, metrics)
	a.obs = obs

	a.Registry = interceptor.NewRegistry()
	if err := a.Registry.Register(orders.Methods()...); err != nil {
		return err
	}
	if err := a.Registry.Register(httpapi.APIMethods()...); err != nil {
		return err
	}

	store := orders.NewStore(cfg.Orders.Retention)
	base := orders.NewService(store, a.Logger, orders.Config{
		PaymentLimit:   cfg.Orders.PaymentLimit,
		PaymentLatency: cfg.Orders.PaymentLatency,
		StreamInterval: cfg.Orders.StreamInterval,
	})

	svc, err := orders.NewTracedService(base, interceptor.New(obs), a.Registry)
	if err != nil {
		return err
	}
	a.Orders = svc

	a.Handler, err = httpapi.NewOrdersHandler(svc,
		interceptor.New(obs, interceptor.WithSpanKind(observability.SpanKindServer)), a.Registry)
	return err
}

// HTTPServer builds the HTTP server. /metrics is mounted when the
// Prometheus backend is selected.
func (a *App) HTTPServer() *httpapi.Server {
	opts := []httpapi.Option{
		httpapi.WithAddr(a.Config.HTTP.Addr),
		httpapi.WithReadTimeout(a.Config.HTTP.ReadTimeout),
		httpapi.WithWriteTimeout(a.Config.HTTP.WriteTimeout),
		httpapi.WithLogger(a.Logger),
		httpapi.WithMiddlewares(httpapi.RequestID, httpapi.Recovery(a.Logger)),
		httpapi.WithRoutes(a.Handler.Routes()...),
		httpapi.WithErrorHandler(httpapi.NewErrorHandler(a.Logger)),
		httpapi.WithHandler("/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = httpapi.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})),
	}
	if a.prometheus != nil {
		opts = append(opts, httpapi.WithHandler("/metrics", promhttp.HandlerFor(a.prometheus, promhttp.HandlerOpts{})))
	}
	return httpapi.New(opts...)
}

// Remote returns a traced orders.Service that calls the API at baseURL.
// Its spans use the client kind.
func (a *App) Remote(baseURL string) (orders.Service, error) {
	client := httpapi.NewClient(baseURL,
		httpapi.WithClientTimeout(a.Config.HTTP.WriteTimeout),
		httpapi.WithClientMetrics(a.obs.Metrics()),
	)
	return orders.NewTracedService(client,
		interceptor.New(a.obs, interceptor.WithSpanKind(observability.SpanKindClient)), a.Registry)
}

// Shutdown flushes and stops the telemetry provider.
func (a *App) Shutdown(ctx context.Context) error {
	if err := a.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down telemetry: %w", err)
	}
	return nil
}

// Tracer is the tracer the interceptors start spans with.
func (a *App) Tracer() observability.Tracer {
	return a.provider.Tracer()
}
