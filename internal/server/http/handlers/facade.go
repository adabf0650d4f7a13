package handlers

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/caterlane/caterpay/internal/domain/model"
)

// CheckoutFacade is the advisory price gate consulted before the payment UI.
type CheckoutFacade interface {
	Authorize(ctx context.Context, lines []model.OrderLine, claimedTotal decimal.Decimal) error
}

// OrderFacade covers order intake and the admin fulfilment axis.
type OrderFacade interface {
	CreateOrder(ctx context.Context, order *model.Order) (*model.Order, error)
	Order(ctx context.Context, id int64) (*model.Order, error)
	SetFulfilment(ctx context.Context, id int64, status model.FulfilmentStatus) error
}

// NotificationSink accepts parsed processor notifications for asynchronous
// verification and reconciliation.
type NotificationSink interface {
	Submit(n model.Notification) bool
}

// HealthFacade reports backing store health.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// CateringFacade aggregates the synchronous operations used across handlers.
type CateringFacade interface {
	CheckoutFacade
	OrderFacade
}
