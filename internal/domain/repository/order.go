package repository

import (
	"context"

	"github.com/caterlane/caterpay/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
//
// SetPaymentStatus applies a compare-and-set on the payment status column:
// the update is performed only when the current status is one of
// allowedPrior, and reports whether a row matched. The target status itself
// is expected in allowedPrior so redelivered events stay idempotent.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*model.Order, error)
	SetPaymentStatus(ctx context.Context, orderID int64, status model.PaymentStatus, allowedPrior []model.PaymentStatus) (bool, error)
	SetFulfilmentStatus(ctx context.Context, orderID int64, status model.FulfilmentStatus, allowedPrior []model.FulfilmentStatus) (bool, error)
}
