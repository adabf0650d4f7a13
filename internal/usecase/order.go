package usecase

import (
	"context"
	"errors"

	domainErrors "github.com/caterlane/caterpay/internal/domain/errors"
	"github.com/caterlane/caterpay/internal/domain/model"
	"github.com/caterlane/caterpay/internal/domain/repository"
)

// OrderUseCase covers order intake and the admin fulfilment axis. Payment
// status is owned by the reconciler and is deliberately out of reach here.
type OrderUseCase struct {
	orders repository.OrderRepository
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository) *OrderUseCase {
	return &OrderUseCase{orders: orders}
}

// Create persists a completed-checkout order with payment status PENDING.
func (u *OrderUseCase) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	if order.Payment.TransactionID == "" || len(order.Lines) == 0 {
		return nil, domainErrors.ErrInvalidOrder
	}
	for _, line := range order.Lines {
		if line.Quantity <= 0 || line.Size == "" {
			return nil, domainErrors.ErrInvalidOrder
		}
	}
	return u.orders.Create(ctx, order)
}

// Get returns an order by internal id.
func (u *OrderUseCase) Get(ctx context.Context, id int64) (*model.Order, error) {
	return u.orders.GetByID(ctx, id)
}

// SetFulfilment moves an order along the fulfilment axis. Only
// PENDING -> {COMPLETED, CANCELLED} transitions are allowed; repeating the
// current status is a no-op.
func (u *OrderUseCase) SetFulfilment(ctx context.Context, id int64, status model.FulfilmentStatus) error {
	if status != model.FulfilmentStatusCompleted && status != model.FulfilmentStatusCancelled {
		return domainErrors.ErrInvalidTransition
	}

	allowed := []model.FulfilmentStatus{model.FulfilmentStatusPending, status}
	applied, err := u.orders.SetFulfilmentStatus(ctx, id, status, allowed)
	if err != nil {
		return err
	}
	if applied {
		return nil
	}

	if _, err := u.orders.GetByID(ctx, id); err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return domainErrors.ErrNotFound
		}
		return err
	}
	return domainErrors.ErrInvalidTransition
}
