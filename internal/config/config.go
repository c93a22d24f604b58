// Package config loads the tracedemo configuration from defaults, an
// optional YAML file, TRACEDEMO_* environment variables and bound flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
	"github.com/JailtonJunior94/devkit-tracing/pkg/observability/otel"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TRACEDEMO_HTTP_ADDR.
const EnvPrefix = "TRACEDEMO"

const (
	LoggerSlog = "slog"
	LoggerZap  = "zap"

	MetricsOTel       = "otel"
	MetricsPrometheus = "prometheus"
)

var (
	ErrUnknownLogger  = errors.New("config: unknown logger backend")
	ErrUnknownMetrics = errors.New("config: unknown metrics backend")
	ErrInvalidOrders  = errors.New("config: invalid orders settings")
)

// Config holds all tracedemo settings.
type Config struct {
	Service   ServiceConfig   `mapstructure:"service"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Orders    OrdersConfig    `mapstructure:"orders"`
}

type ServiceConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type TelemetryConfig struct {
	Exporter     string   `mapstructure:"exporter"` // otlp, stdout or none
	Endpoint     string   `mapstructure:"endpoint"`
	Protocol     string   `mapstructure:"protocol"` // grpc or http
	Insecure     bool     `mapstructure:"insecure"`
	SampleRate   float64  `mapstructure:"sample_rate"`
	Disabled     bool     `mapstructure:"disabled"`
	Suppressed   []string `mapstructure:"suppressed"`
	Logger       string   `mapstructure:"logger"`  // slog or zap
	Metrics      string   `mapstructure:"metrics"` // otel or prometheus
	LogLevel     string   `mapstructure:"log_level"`
	LogFormat    string   `mapstructure:"log_format"`
	MetricPrefix string   `mapstructure:"metric_prefix"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type OrdersConfig struct {
	PaymentLimit   float64       `mapstructure:"payment_limit"`
	PaymentLatency time.Duration `mapstructure:"payment_latency"`
	StreamInterval time.Duration `mapstructure:"stream_interval"`
	Retention      time.Duration `mapstructure:"retention"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Service: ServiceConfig{
			Name:        "tracedemo",
			Version:     "dev",
			Environment: "development",
		},
		Telemetry: TelemetryConfig{
			Exporter:     string(otel.ExporterStdout),
			Endpoint:     "localhost:4317",
			Protocol:     string(otel.ProtocolGRPC),
			Insecure:     true,
			SampleRate:   1.0,
			Logger:       LoggerSlog,
			Metrics:      MetricsOTel,
			LogLevel:     string(observability.LogLevelInfo),
			LogFormat:    string(observability.LogFormatText),
			MetricPrefix: "tracedemo",
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Orders: OrdersConfig{
			PaymentLimit:   1000,
			PaymentLatency: 50 * time.Millisecond,
			StreamInterval: 0,
			Retention:      time.Hour,
		},
	}
}

// SetDefaults registers Defaults on v so that environment variables can
// override keys that appear in no file. List keys without a default are
// bound to the environment instead.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("service.name", d.Service.Name)
	v.SetDefault("service.version", d.Service.Version)
	v.SetDefault("service.environment", d.Service.Environment)
	v.SetDefault("telemetry.exporter", d.Telemetry.Exporter)
	v.SetDefault("telemetry.endpoint", d.Telemetry.Endpoint)
	v.SetDefault("telemetry.protocol", d.Telemetry.Protocol)
	v.SetDefault("telemetry.insecure", d.Telemetry.Insecure)
	v.SetDefault("telemetry.sample_rate", d.Telemetry.SampleRate)
	v.SetDefault("telemetry.disabled", d.Telemetry.Disabled)
	_ = v.BindEnv("telemetry.suppressed")
	v.SetDefault("telemetry.logger", d.Telemetry.Logger)
	v.SetDefault("telemetry.metrics", d.Telemetry.Metrics)
	v.SetDefault("telemetry.log_level", d.Telemetry.LogLevel)
	v.SetDefault("telemetry.log_format", d.Telemetry.LogFormat)
	v.SetDefault("telemetry.metric_prefix", d.Telemetry.MetricPrefix)
	v.SetDefault("http.addr", d.HTTP.Addr)
	v.SetDefault("http.read_timeout", d.HTTP.ReadTimeout)
	v.SetDefault("http.write_timeout", d.HTTP.WriteTimeout)
	v.SetDefault("http.shutdown_timeout", d.HTTP.ShutdownTimeout)
	v.SetDefault("orders.payment_limit", d.Orders.PaymentLimit)
	v.SetDefault("orders.payment_latency", d.Orders.PaymentLatency)
	v.SetDefault("orders.stream_interval", d.Orders.StreamInterval)
	v.SetDefault("orders.retention", d.Orders.Retention)
}

// Load reads the configuration into a Config. An empty path skips the file.
func Load(v *viper.Viper, path string) (Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings the telemetry config does not cover.
func (c Config) Validate() error {
	switch c.Telemetry.Logger {
	case LoggerSlog, LoggerZap:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLogger, c.Telemetry.Logger)
	}
	switch c.Telemetry.Metrics {
	case MetricsOTel, MetricsPrometheus:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMetrics, c.Telemetry.Metrics)
	}
	if c.Orders.PaymentLimit <= 0 {
		return fmt.Errorf("%w: payment_limit must be positive", ErrInvalidOrders)
	}
	if c.Orders.PaymentLatency < 0 || c.Orders.StreamInterval < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidOrders)
	}
	return c.OTel().Validate()
}

// OTel maps the telemetry section onto the provider configuration.
func (c Config) OTel() *otel.Config {
	cfg := otel.DefaultConfig(c.Service.Name)
	cfg.ServiceVersion = c.Service.Version
	cfg.Environment = c.Service.Environment
	cfg.Exporter = otel.Exporter(c.Telemetry.Exporter)
	cfg.OTLPEndpoint = c.Telemetry.Endpoint
	cfg.OTLPProtocol = otel.OTLPProtocol(c.Telemetry.Protocol)
	cfg.Insecure = c.Telemetry.Insecure
	cfg.TraceSampleRate = c.Telemetry.SampleRate
	cfg.Disabled = c.Telemetry.Disabled
	cfg.SuppressedOperations = append([]string(nil), c.Telemetry.Suppressed...)
	cfg.LogLevel = observability.ParseLogLevel(c.Telemetry.LogLevel)
	cfg.LogFormat = observability.LogFormat(c.Telemetry.LogFormat)
	return cfg
}
