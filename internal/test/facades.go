package test

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/caterlane/caterpay/internal/adapter/processor"
	"github.com/caterlane/caterpay/internal/domain/model"
)

// CheckoutFacadeStub provides controllable behaviour for the checkout gate.
type CheckoutFacadeStub struct {
	AuthorizeFn func(context.Context, []model.OrderLine, decimal.Decimal) error
}

// Authorize delegates to the provided function or approves everything.
func (s CheckoutFacadeStub) Authorize(ctx context.Context, lines []model.OrderLine, claimedTotal decimal.Decimal) error {
	if s.AuthorizeFn != nil {
		return s.AuthorizeFn(ctx, lines, claimedTotal)
	}
	return nil
}

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	CreateFn        func(context.Context, *model.Order) (*model.Order, error)
	OrderFn         func(context.Context, int64) (*model.Order, error)
	SetFulfilmentFn func(context.Context, int64, model.FulfilmentStatus) error
}

// CreateOrder delegates or returns the order with an id assigned.
func (s OrderFacadeStub) CreateOrder(ctx context.Context, order *model.Order) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order)
	}
	created := *order
	created.ID = 1
	created.Payment.Status = model.PaymentStatusPending
	created.Fulfilment = model.FulfilmentStatusPending
	return &created, nil
}

// Order delegates or returns a minimal pending order.
func (s OrderFacadeStub) Order(ctx context.Context, id int64) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, id)
	}
	return &model.Order{ID: id, Payment: model.Payment{Status: model.PaymentStatusPending}, Fulfilment: model.FulfilmentStatusPending}, nil
}

// SetFulfilment delegates or succeeds.
func (s OrderFacadeStub) SetFulfilment(ctx context.Context, id int64, status model.FulfilmentStatus) error {
	if s.SetFulfilmentFn != nil {
		return s.SetFulfilmentFn(ctx, id, status)
	}
	return nil
}

// CateringFacadeStub aggregates facade stubs for HTTP layer tests.
type CateringFacadeStub struct {
	CheckoutFacadeStub
	OrderFacadeStub
}

// SinkStub records submitted notifications.
type SinkStub struct {
	mu        sync.Mutex
	Submitted []model.Notification
	Reject    bool
}

// Submit stores the notification unless configured to report a full queue.
func (s *SinkStub) Submit(n model.Notification) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Reject {
		return false
	}
	s.Submitted = append(s.Submitted, n)
	return true
}

// SubmittedCount reports how many notifications were accepted.
func (s *SinkStub) SubmittedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Submitted)
}

// Last returns the most recently accepted notification.
func (s *SinkStub) Last() model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Submitted[len(s.Submitted)-1]
}

// ReconcileCall stores information about Reconcile invocations.
type ReconcileCall struct {
	Notification model.Notification
	Verified     bool
}

// ReconcilerFacadeStub mimics dispatcher interactions with the facade.
type ReconcilerFacadeStub struct {
	mu          sync.Mutex
	VerifyFn    func(context.Context, string) (processor.VerificationResult, error)
	ReconcileFn func(context.Context, model.Notification, bool) error
	Calls       []ReconcileCall
}

// VerifyNotification delegates or reports a verified payload.
func (s *ReconcilerFacadeStub) VerifyNotification(ctx context.Context, payload string) (processor.VerificationResult, error) {
	if s.VerifyFn != nil {
		return s.VerifyFn(ctx, payload)
	}
	return processor.ResultVerified, nil
}

// Reconcile records the call and delegates when configured.
func (s *ReconcilerFacadeStub) Reconcile(ctx context.Context, n model.Notification, verified bool) error {
	s.mu.Lock()
	s.Calls = append(s.Calls, ReconcileCall{Notification: n, Verified: verified})
	s.mu.Unlock()
	if s.ReconcileFn != nil {
		return s.ReconcileFn(ctx, n, verified)
	}
	return nil
}

// CallCount reports recorded reconcile invocations.
func (s *ReconcilerFacadeStub) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Calls)
}

// LastCall returns the most recent reconcile invocation.
func (s *ReconcilerFacadeStub) LastCall() ReconcileCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Calls[len(s.Calls)-1]
}

// AlertCall stores one delivered alert.
type AlertCall struct {
	Kind    string
	Payload map[string]any
}

// AlertRecorder captures alerts emitted during reconciliation.
type AlertRecorder struct {
	mu    sync.Mutex
	Calls []AlertCall
}

// Notify records the alert.
func (a *AlertRecorder) Notify(_ context.Context, kind string, payload map[string]any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Calls = append(a.Calls, AlertCall{Kind: kind, Payload: payload})
}

// CallCount reports recorded alerts.
func (a *AlertRecorder) CallCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.Calls)
}

// HealthFacadeStub reports configured health state.
type HealthFacadeStub struct {
	Err error
}

// HealthCheck returns the configured error.
func (s HealthFacadeStub) HealthCheck(context.Context) error {
	return s.Err
}
