package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JailtonJunior94/devkit-tracing/internal/config"
	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
	"github.com/JailtonJunior94/devkit-tracing/pkg/observability/otel"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, config.Defaults(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracedemo.yaml")
	content := `
service:
  name: orders
  environment: staging
telemetry:
  exporter: none
  logger: zap
  metrics: prometheus
  suppressed:
    - HealthService.*
    - OrderService.ListOrders
http:
  addr: ":9090"
orders:
  payment_limit: 250
  payment_latency: 5ms
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "orders", cfg.Service.Name)
	assert.Equal(t, "staging", cfg.Service.Environment)
	assert.Equal(t, "dev", cfg.Service.Version, "unset keys keep their default")
	assert.Equal(t, config.LoggerZap, cfg.Telemetry.Logger)
	assert.Equal(t, config.MetricsPrometheus, cfg.Telemetry.Metrics)
	assert.Equal(t, []string{"HealthService.*", "OrderService.ListOrders"}, cfg.Telemetry.Suppressed)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, 250.0, cfg.Orders.PaymentLimit)
	assert.Equal(t, 5*time.Millisecond, cfg.Orders.PaymentLatency)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("TRACEDEMO_HTTP_ADDR", ":7070")
	t.Setenv("TRACEDEMO_TELEMETRY_EXPORTER", "none")
	t.Setenv("TRACEDEMO_ORDERS_PAYMENT_LIMIT", "10")

	cfg, err := config.Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
	assert.Equal(t, "none", cfg.Telemetry.Exporter)
	assert.Equal(t, 10.0, cfg.Orders.PaymentLimit)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr error
	}{
		{name: "defaults", mutate: func(*config.Config) {}},
		{name: "unknown logger", mutate: func(c *config.Config) { c.Telemetry.Logger = "logrus" }, wantErr: config.ErrUnknownLogger},
		{name: "unknown metrics", mutate: func(c *config.Config) { c.Telemetry.Metrics = "statsd" }, wantErr: config.ErrUnknownMetrics},
		{name: "zero payment limit", mutate: func(c *config.Config) { c.Orders.PaymentLimit = 0 }, wantErr: config.ErrInvalidOrders},
		{name: "negative latency", mutate: func(c *config.Config) { c.Orders.PaymentLatency = -time.Second }, wantErr: config.ErrInvalidOrders},
		{name: "unknown exporter", mutate: func(c *config.Config) { c.Telemetry.Exporter = "zipkin" }, wantErr: otel.ErrUnknownExporter},
		{name: "bad sample rate", mutate: func(c *config.Config) { c.Telemetry.SampleRate = 2 }, wantErr: otel.ErrInvalidSampleRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestOTelMapping(t *testing.T) {
	cfg := config.Defaults()
	cfg.Telemetry.Suppressed = []string{"OrderService.*"}
	cfg.Telemetry.LogLevel = "debug"

	otelCfg := cfg.OTel()
	assert.Equal(t, "tracedemo", otelCfg.ServiceName)
	assert.Equal(t, otel.ExporterStdout, otelCfg.Exporter)
	assert.Equal(t, []string{"OrderService.*"}, otelCfg.SuppressedOperations)
	assert.Equal(t, observability.LogLevelDebug, otelCfg.LogLevel)
	assert.Equal(t, observability.LogFormatText, otelCfg.LogFormat)
}
