package orders

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/JailtonJunior94/devkit-tracing/pkg/future"
	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
	"github.com/JailtonJunior94/devkit-tracing/pkg/stream"
	"github.com/google/uuid"
)

// Service manages orders.
type Service interface {
	PlaceOrder(ctx context.Context, customer string, amount float64) (Order, error)
	ProcessPayment(ctx context.Context, orderID string) (*future.Future[Payment], error)
	ListOrders(ctx context.Context, customer string) (stream.Publisher[Order], error)
	CancelOrder(ctx context.Context, orderID string) (Order, error)
}

// Config tunes the simulated backend.
type Config struct {
	// PaymentLimit is the largest amount a payment is approved for.
	PaymentLimit float64
	// PaymentLatency delays every payment.
	PaymentLatency time.Duration
	// StreamInterval spaces the items of ListOrders.
	StreamInterval time.Duration
}

type service struct {
	store  *Store
	logger observability.Logger
	config Config

	// mu serialises status transitions.
	mu  sync.Mutex
	now func() time.Time
}

// NewService creates the untraced service.
func NewService(store *Store, logger observability.Logger, config Config) Service {
	return &service{
		store:  store,
		logger: logger.With(observability.String("component", "orders")),
		config: config,
		now:    time.Now,
	}
}

func (s *service) PlaceOrder(ctx context.Context, customer string, amount float64) (Order, error) {
	customer = strings.TrimSpace(customer)
	if customer == "" {
		return Order{}, fmt.Errorf("%w: customer is required", ErrInvalidOrder)
	}
	if amount <= 0 {
		return Order{}, fmt.Errorf("%w: amount must be positive", ErrInvalidOrder)
	}

	order := Order{
		ID:        uuid.NewString(),
		Customer:  customer,
		Amount:    amount,
		Status:    StatusPending,
		CreatedAt: s.now(),
	}
	s.store.Save(order)

	s.logger.Info(ctx, "order placed",
		observability.String("order_id", order.ID),
		observability.Float64("amount", amount),
	)
	return order, nil
}

func (s *service) ProcessPayment(ctx context.Context, orderID string) (*future.Future[Payment], error) {
	order, ok := s.store.Get(orderID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	switch order.Status {
	case StatusCancelled:
		return nil, ErrAlreadyCancelled
	case StatusPaid:
		return nil, ErrAlreadyPaid
	}

	return future.Go(ctx, func(ctx context.Context) (Payment, error) {
		if err := sleep(ctx, s.config.PaymentLatency); err != nil {
			return Payment{}, err
		}
		if order.Amount > s.config.PaymentLimit {
			s.logger.Warn(ctx, "payment declined",
				observability.String("order_id", order.ID),
				observability.Float64("amount", order.Amount),
			)
			return Payment{}, fmt.Errorf("%w: %.2f exceeds limit %.2f", ErrPaymentDeclined, order.Amount, s.config.PaymentLimit)
		}

		paid, err := s.transition(order.ID, StatusPaid)
		if err != nil {
			return Payment{}, err
		}
		payment := Payment{
			OrderID:       paid.ID,
			TransactionID: uuid.NewString(),
			Amount:        paid.Amount,
			ProcessedAt:   s.now(),
		}
		s.logger.Info(ctx, "payment processed",
			observability.String("order_id", paid.ID),
			observability.String("transaction_id", payment.TransactionID),
		)
		return payment, nil
	}), nil
}

func (s *service) ListOrders(_ context.Context, customer string) (stream.Publisher[Order], error) {
	interval := s.config.StreamInterval
	return stream.Create(func(ctx context.Context, emit stream.Emitter[Order]) error {
		for i, order := range s.store.ByCustomer(customer) {
			if i > 0 {
				if err := sleep(ctx, interval); err != nil {
					return err
				}
			}
			if !emit.Next(order) {
				return nil
			}
		}
		return nil
	}), nil
}

func (s *service) CancelOrder(ctx context.Context, orderID string) (Order, error) {
	order, err := s.transition(orderID, StatusCancelled)
	if err != nil {
		return Order{}, err
	}
	s.logger.Info(ctx, "order cancelled", observability.String("order_id", order.ID))
	return order, nil
}

func (s *service) transition(orderID string, to Status) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.store.Get(orderID)
	if !ok {
		return Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	switch order.Status {
	case StatusCancelled:
		return Order{}, ErrAlreadyCancelled
	case StatusPaid:
		return Order{}, ErrAlreadyPaid
	}

	order.Status = to
	s.store.Save(order)
	return order, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
