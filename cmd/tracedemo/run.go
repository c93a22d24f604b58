package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/JailtonJunior94/devkit-tracing/internal/app"
	"github.com/JailtonJunior94/devkit-tracing/internal/orders"
	"github.com/JailtonJunior94/devkit-tracing/pkg/stream"
	"github.com/spf13/cobra"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	var customer, remote string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Place, pay, list and cancel a few orders, then exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := opts.build(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Shutdown(context.Background()) }()

			svc := a.Orders
			if remote != "" {
				if svc, err = a.Remote(remote); err != nil {
					return err
				}
			}
			return walkthrough(ctx, a, svc, customer, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&customer, "customer", "demo", "customer the orders are placed for")
	cmd.Flags().StringVar(&remote, "remote", "", "base URL of a running 'tracedemo serve'; the local service is used when empty")
	return cmd
}

// walkthrough drives every call shape once inside a single root span.
func walkthrough(ctx context.Context, a *app.App, svc orders.Service, customer string, out io.Writer) error {
	tracer := a.Tracer()
	ctx, root := tracer.Start(ctx, "tracedemo.run")
	defer root.End()

	small, err := svc.PlaceOrder(ctx, customer, a.Config.Orders.PaymentLimit/2)
	if err != nil {
		return err
	}
	large, err := svc.PlaceOrder(ctx, customer, a.Config.Orders.PaymentLimit*2)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "placed %s (%.2f) and %s (%.2f)\n", small.ID, small.Amount, large.ID, large.Amount)

	for _, order := range []orders.Order{small, large} {
		pending, err := svc.ProcessPayment(ctx, order.ID)
		if err != nil {
			return err
		}
		payment, err := pending.Await(ctx)
		switch {
		case errors.Is(err, orders.ErrPaymentDeclined):
			fmt.Fprintf(out, "payment for %s declined\n", order.ID)
		case err != nil:
			return err
		default:
			fmt.Fprintf(out, "payment for %s accepted: %s\n", order.ID, payment.TransactionID)
		}
	}

	if _, err := svc.CancelOrder(ctx, large.ID); err != nil {
		return err
	}
	fmt.Fprintf(out, "cancelled %s\n", large.ID)

	pub, err := svc.ListOrders(ctx, customer)
	if err != nil {
		return err
	}
	listed, err := stream.Collect(ctx, pub)
	if err != nil {
		return err
	}
	for _, order := range listed {
		fmt.Fprintf(out, "%s %s %.2f\n", order.ID, order.Status, order.Amount)
	}
	return nil
}
