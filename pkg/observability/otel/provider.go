package otel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc/credentials"
)

const instrumentationName = "github.com/JailtonJunior94/devkit-tracing"

// Option customizes provider construction.
type Option func(*options)

type options struct {
	spanExporters []sdktrace.SpanExporter
	metricReaders []sdkmetric.Reader
	logOutput     io.Writer
	global        bool
}

// WithSpanExporter adds an exporter that receives spans synchronously as
// they end, in addition to the configured one. Tests pair it with
// tracetest.NewInMemoryExporter.
func WithSpanExporter(exporter sdktrace.SpanExporter) Option {
	return func(o *options) {
		o.spanExporters = append(o.spanExporters, exporter)
	}
}

// WithMetricReader adds a metric reader, e.g. sdkmetric.NewManualReader.
func WithMetricReader(reader sdkmetric.Reader) Option {
	return func(o *options) {
		o.metricReaders = append(o.metricReaders, reader)
	}
}

// WithLogOutput redirects console logs. Defaults to stdout.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) {
		o.logOutput = w
	}
}

// WithoutGlobals keeps the providers out of the otel global registry.
func WithoutGlobals() Option {
	return func(o *options) {
		o.global = false
	}
}

// Provider implements observability.Observability on the OpenTelemetry SDK.
type Provider struct {
	config         *Config
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	loggerProvider *sdklog.LoggerProvider
	tracer         *otelTracer
	logger         *otelLogger
	metrics        *otelMetrics
	shutdownFuncs  []func(context.Context) error
}

// NewProvider validates config and builds the tracer, meter and logger providers.
func NewProvider(ctx context.Context, config *Config, opts ...Option) (*Provider, error) {
	if config == nil {
		return nil, errors.New("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry configuration: %w", err)
	}
	if config.Insecure {
		log.Printf("WARNING: using insecure OTLP connection to %s (environment: %s)", config.OTLPEndpoint, config.Environment)
	}

	o := &options{logOutput: os.Stdout, global: true}
	for _, opt := range opts {
		opt(o)
	}

	p := &Provider{config: config}

	res, err := p.createResource(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if err := p.initTracerProvider(ctx, res, o); err != nil {
		return nil, fmt.Errorf("failed to initialize tracer provider: %w", err)
	}
	if err := p.initMeterProvider(ctx, res, o); err != nil {
		p.shutdownQuietly(ctx)
		return nil, fmt.Errorf("failed to initialize meter provider: %w", err)
	}
	if err := p.initLoggerProvider(ctx, res); err != nil {
		p.shutdownQuietly(ctx)
		return nil, fmt.Errorf("failed to initialize logger provider: %w", err)
	}

	if o.global {
		otel.SetTracerProvider(p.tracerProvider)
		otel.SetMeterProvider(p.meterProvider)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	}

	p.tracer = newOtelTracer(p.tracerProvider.Tracer(instrumentationName), config)
	p.logger = newOtelLogger(config.LogLevel, config.LogFormat, config.ServiceName, o.logOutput,
		p.loggerProvider.Logger(instrumentationName))
	p.metrics = newOtelMetrics(p.meterProvider.Meter(instrumentationName))

	return p, nil
}

func (p *Provider) createResource(ctx context.Context) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(p.config.ServiceName),
		semconv.ServiceVersion(p.config.ServiceVersion),
		semconv.DeploymentEnvironment(p.config.Environment),
	}
	for k, v := range p.config.ResourceAttributes {
		attrs = append(attrs, attribute.String(k, v))
	}

	return resource.New(ctx, resource.WithAttributes(attrs...))
}

func (p *Provider) initTracerProvider(ctx context.Context, res *resource.Resource, o *options) error {
	providerOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(p.createTraceSampler()),
	}

	exporter, err := p.createTraceExporter(ctx)
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}
	if exporter != nil {
		providerOpts = append(providerOpts, sdktrace.WithBatcher(exporter))
	}
	for _, extra := range o.spanExporters {
		providerOpts = append(providerOpts, sdktrace.WithSyncer(extra))
	}

	p.tracerProvider = sdktrace.NewTracerProvider(providerOpts...)
	p.shutdownFuncs = append(p.shutdownFuncs, p.tracerProvider.Shutdown)
	return nil
}

// createTraceExporter returns nil when spans stay in process.
func (p *Provider) createTraceExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	switch p.config.Exporter {
	case ExporterNone:
		return nil, nil
	case ExporterStdout:
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}

	if p.config.OTLPProtocol == ProtocolHTTP {
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(p.config.OTLPEndpoint)}
		if p.config.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		} else if p.config.TLSConfig != nil {
			opts = append(opts, otlptracehttp.WithTLSClientConfig(p.config.TLSConfig))
		}
		return otlptracehttp.New(ctx, opts...)
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(p.config.OTLPEndpoint)}
	if p.config.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	} else if p.config.TLSConfig != nil {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewTLS(p.config.TLSConfig)))
	}
	return otlptracegrpc.New(ctx, opts...)
}

// createTraceSampler honors the parent's decision and samples new roots by rate.
func (p *Provider) createTraceSampler() sdktrace.Sampler {
	switch {
	case p.config.TraceSampleRate >= 1.0:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case p.config.TraceSampleRate <= 0.0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(p.config.TraceSampleRate))
	}
}

func (p *Provider) initMeterProvider(ctx context.Context, res *resource.Resource, o *options) error {
	providerOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	if p.config.Exporter == ExporterOTLP {
		exporter, err := p.createMetricExporter(ctx)
		if err != nil {
			return fmt.Errorf("failed to create metrics exporter: %w", err)
		}
		providerOpts = append(providerOpts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)))
	}
	for _, reader := range o.metricReaders {
		providerOpts = append(providerOpts, sdkmetric.WithReader(reader))
	}

	p.meterProvider = sdkmetric.NewMeterProvider(providerOpts...)
	p.shutdownFuncs = append(p.shutdownFuncs, p.meterProvider.Shutdown)
	return nil
}

func (p *Provider) createMetricExporter(ctx context.Context) (sdkmetric.Exporter, error) {
	if p.config.OTLPProtocol == ProtocolHTTP {
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(p.config.OTLPEndpoint)}
		if p.config.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		} else if p.config.TLSConfig != nil {
			opts = append(opts, otlpmetrichttp.WithTLSClientConfig(p.config.TLSConfig))
		}
		return otlpmetrichttp.New(ctx, opts...)
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(p.config.OTLPEndpoint)}
	if p.config.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	} else if p.config.TLSConfig != nil {
		opts = append(opts, otlpmetricgrpc.WithTLSCredentials(credentials.NewTLS(p.config.TLSConfig)))
	}
	return otlpmetricgrpc.New(ctx, opts...)
}

func (p *Provider) initLoggerProvider(ctx context.Context, res *resource.Resource) error {
	providerOpts := []sdklog.LoggerProviderOption{sdklog.WithResource(res)}

	if p.config.Exporter == ExporterOTLP {
		exporter, err := p.createLogExporter(ctx)
		if err != nil {
			return fmt.Errorf("failed to create log exporter: %w", err)
		}
		providerOpts = append(providerOpts, sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)))
	}

	p.loggerProvider = sdklog.NewLoggerProvider(providerOpts...)
	p.shutdownFuncs = append(p.shutdownFuncs, p.loggerProvider.Shutdown)
	return nil
}

func (p *Provider) createLogExporter(ctx context.Context) (sdklog.Exporter, error) {
	if p.config.OTLPProtocol == ProtocolHTTP {
		opts := []otlploghttp.Option{otlploghttp.WithEndpoint(p.config.OTLPEndpoint)}
		if p.config.Insecure {
			opts = append(opts, otlploghttp.WithInsecure())
		} else if p.config.TLSConfig != nil {
			opts = append(opts, otlploghttp.WithTLSClientConfig(p.config.TLSConfig))
		}
		return otlploghttp.New(ctx, opts...)
	}

	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(p.config.OTLPEndpoint)}
	if p.config.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	} else if p.config.TLSConfig != nil {
		opts = append(opts, otlploggrpc.WithTLSCredentials(credentials.NewTLS(p.config.TLSConfig)))
	}
	return otlploggrpc.New(ctx, opts...)
}

func (p *Provider) Tracer() observability.Tracer {
	return p.tracer
}

func (p *Provider) Logger() observability.Logger {
	return p.logger
}

func (p *Provider) Metrics() observability.Metrics {
	return p.metrics
}

// ForceFlush exports every span that has ended so far.
func (p *Provider) ForceFlush(ctx context.Context) error {
	return p.tracerProvider.ForceFlush(ctx)
}

// Shutdown flushes pending telemetry and releases exporters.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	for _, shutdown := range p.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Provider) shutdownQuietly(ctx context.Context) {
	if err := p.Shutdown(ctx); err != nil {
		log.Printf("failed to shutdown telemetry after initialization failure: %v", err)
	}
}
