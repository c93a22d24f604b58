// Package orders is a small order service used to demonstrate the
// interceptor: placing an order returns a value, paying for it returns a
// future and listing orders returns a stream.
package orders

import (
	"errors"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrInvalidOrder     = errors.New("invalid order")
	ErrPaymentDeclined  = errors.New("payment declined")
	ErrAlreadyCancelled = errors.New("order already cancelled")
	ErrAlreadyPaid      = errors.New("order already paid")
)

type Order struct {
	ID        string    `json:"id"`
	Customer  string    `json:"customer"`
	Amount    float64   `json:"amount"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Payment struct {
	OrderID       string    `json:"order_id"`
	TransactionID string    `json:"transaction_id"`
	Amount        float64   `json:"amount"`
	ProcessedAt   time.Time `json:"processed_at"`
}
