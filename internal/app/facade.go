package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/caterlane/caterpay/internal/adapter/processor"
	"github.com/caterlane/caterpay/internal/domain/model"
	"github.com/caterlane/caterpay/internal/usecase"
)

// VerificationProvider performs the handshake with the payment processor.
type VerificationProvider interface {
	Verify(ctx context.Context, payload string) (processor.VerificationResult, error)
}

// CateringFacade aggregates the subsystem's use cases behind one surface
// consumed by the HTTP handlers and the notification dispatcher.
type CateringFacade struct {
	pricing   *usecase.PricingUseCase
	reconcile *usecase.ReconcileUseCase
	orders    *usecase.OrderUseCase
	verifier  VerificationProvider
}

// NewCateringFacade constructs CateringFacade.
func NewCateringFacade(pricing *usecase.PricingUseCase, reconcile *usecase.ReconcileUseCase, orders *usecase.OrderUseCase, verifier VerificationProvider) *CateringFacade {
	return &CateringFacade{pricing: pricing, reconcile: reconcile, orders: orders, verifier: verifier}
}

// Authorize recomputes the price for the proposed lines against a fresh
// catalog snapshot and checks the claimed total.
func (f *CateringFacade) Authorize(ctx context.Context, lines []model.OrderLine, claimedTotal decimal.Decimal) error {
	catalog, err := f.pricing.Snapshot(ctx)
	if err != nil {
		return err
	}
	return f.pricing.Validate(catalog, lines, claimedTotal)
}

// CreateOrder persists a completed-checkout order.
func (f *CateringFacade) CreateOrder(ctx context.Context, order *model.Order) (*model.Order, error) {
	return f.orders.Create(ctx, order)
}

// Order returns an order by internal id.
func (f *CateringFacade) Order(ctx context.Context, id int64) (*model.Order, error) {
	return f.orders.Get(ctx, id)
}

// SetFulfilment applies an admin fulfilment transition.
func (f *CateringFacade) SetFulfilment(ctx context.Context, id int64, status model.FulfilmentStatus) error {
	return f.orders.SetFulfilment(ctx, id, status)
}

// VerifyNotification echoes the received payload bytes back to the processor.
func (f *CateringFacade) VerifyNotification(ctx context.Context, payload string) (processor.VerificationResult, error) {
	return f.verifier.Verify(ctx, payload)
}

// Reconcile applies a verified notification to the order store.
func (f *CateringFacade) Reconcile(ctx context.Context, n model.Notification, verified bool) error {
	return f.reconcile.Apply(ctx, n, verified)
}
