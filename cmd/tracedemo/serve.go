package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the order API over HTTP",
		Long: `Serves the order API:
  POST   /orders               place an order
  POST   /orders/{id}/payment  pay for an order and wait for the result
  GET    /orders?customer=     stream a customer's orders as NDJSON
  DELETE /orders/{id}          cancel an order
  GET    /health               liveness
  GET    /metrics              Prometheus metrics (with --metrics prometheus)`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := opts.build(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Shutdown(context.Background()) }()

			server := a.HTTPServer()
			shutdown := server.Run()
			a.Logger.Info(ctx, "http server started", observability.String("addr", a.Config.HTTP.Addr))

			select {
			case err := <-server.ShutdownListener():
				if err != nil {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			a.Logger.Info(context.Background(), "shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.HTTP.ShutdownTimeout)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("http shutdown: %w", err)
			}
			return <-server.ShutdownListener()
		},
	}

	cmd.Flags().String("addr", "", "listen address, e.g. :8080")
	_ = opts.viper.BindPFlag("http.addr", cmd.Flags().Lookup("addr"))
	return cmd
}
