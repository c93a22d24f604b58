package main

import (
	"context"

	"github.com/JailtonJunior94/devkit-tracing/internal/app"
	"github.com/JailtonJunior94/devkit-tracing/internal/config"
	"github.com/JailtonJunior94/devkit-tracing/pkg/observability/otel"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type rootOptions struct {
	configFile string
	viper      *viper.Viper
	appOptions []otel.Option
}

func newRootCmd(appOptions ...otel.Option) *cobra.Command {
	opts := &rootOptions{viper: viper.New(), appOptions: appOptions}

	root := &cobra.Command{
		Use:   "tracedemo",
		Short: "Order service instrumented by the tracing interceptor",
		Long: `tracedemo exercises the tracing interceptor against a small order service:
- PlaceOrder returns a value and opens a "checkout" span
- ProcessPayment returns a future; its span ends when the payment settles
- ListOrders returns a stream; a span covers each subscription
- CancelOrder continues the caller's span

Configuration comes from defaults, an optional YAML file (--config),
TRACEDEMO_* environment variables and flags, in increasing precedence.`,
		Version:      version,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "config file (YAML)")
	flags.String("exporter", "", "telemetry exporter: otlp, stdout or none")
	flags.String("logger", "", "logger backend: slog or zap")
	flags.String("metrics", "", "metrics backend: otel or prometheus")
	flags.String("log-level", "", "debug, info, warn or error")
	_ = opts.viper.BindPFlag("telemetry.exporter", flags.Lookup("exporter"))
	_ = opts.viper.BindPFlag("telemetry.logger", flags.Lookup("logger"))
	_ = opts.viper.BindPFlag("telemetry.metrics", flags.Lookup("metrics"))
	_ = opts.viper.BindPFlag("telemetry.log_level", flags.Lookup("log-level"))

	root.AddCommand(newRunCmd(opts), newServeCmd(opts))
	return root
}

// build loads the configuration and wires the application.
func (o *rootOptions) build(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(o.viper, o.configFile)
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, o.appOptions...)
}
