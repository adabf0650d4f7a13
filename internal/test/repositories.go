package test

import (
	"context"
	"sync"

	domainErrors "github.com/caterlane/caterpay/internal/domain/errors"
	"github.com/caterlane/caterpay/internal/domain/model"
)

// PaymentTransition records one applied payment status change.
type PaymentTransition struct {
	OrderID int64
	Status  model.PaymentStatus
}

// OrderRepositoryStub keeps orders in memory and mimics the storage layer's
// compare-and-set semantics, including under concurrent use.
type OrderRepositoryStub struct {
	mu     sync.Mutex
	ByID   map[int64]*model.Order
	ByTxn  map[string]int64
	NextID int64

	CreateFn        func(context.Context, *model.Order) (*model.Order, error)
	GetByIDFn       func(context.Context, int64) (*model.Order, error)
	GetByTxnFn      func(context.Context, string) (*model.Order, error)
	SetPaymentFn    func(context.Context, int64, model.PaymentStatus, []model.PaymentStatus) (bool, error)
	SetFulfilmentFn func(context.Context, int64, model.FulfilmentStatus, []model.FulfilmentStatus) (bool, error)

	Applied []PaymentTransition
}

// NewOrderRepositoryStub constructs stub repository with initialized maps.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{
		ByID:   make(map[int64]*model.Order),
		ByTxn:  make(map[string]int64),
		NextID: 1,
	}
}

// Seed stores an order directly, bypassing Create bookkeeping.
func (s *OrderRepositoryStub) Seed(order model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.ID == 0 {
		order.ID = s.NextID
		s.NextID++
	}
	copied := order
	s.ByID[copied.ID] = &copied
	s.ByTxn[copied.Payment.TransactionID] = copied.ID
}

// Create stores the order with a fresh id and PENDING statuses.
func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.ByTxn[order.Payment.TransactionID]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	created := *order
	created.ID = s.NextID
	s.NextID++
	created.Payment.Status = model.PaymentStatusPending
	created.Fulfilment = model.FulfilmentStatusPending
	s.ByID[created.ID] = &created
	s.ByTxn[created.Payment.TransactionID] = created.ID
	result := created
	return &result, nil
}

// GetByID returns a copy of the stored order or not found.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if order, ok := s.ByID[id]; ok {
		copied := *order
		return &copied, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByTransactionID returns a copy of the matching order or not found.
func (s *OrderRepositoryStub) GetByTransactionID(ctx context.Context, transactionID string) (*model.Order, error) {
	if s.GetByTxnFn != nil {
		return s.GetByTxnFn(ctx, transactionID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.ByTxn[transactionID]; ok {
		copied := *s.ByID[id]
		return &copied, nil
	}
	return nil, domainErrors.ErrNotFound
}

// SetPaymentStatus applies the same conditional update contract as the real
// storage: only rows whose current status is allowed are touched.
func (s *OrderRepositoryStub) SetPaymentStatus(ctx context.Context, orderID int64, status model.PaymentStatus, allowedPrior []model.PaymentStatus) (bool, error) {
	if s.SetPaymentFn != nil {
		return s.SetPaymentFn(ctx, orderID, status, allowedPrior)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.ByID[orderID]
	if !ok {
		return false, nil
	}
	for _, prior := range allowedPrior {
		if order.Payment.Status == prior {
			order.Payment.Status = status
			s.Applied = append(s.Applied, PaymentTransition{OrderID: orderID, Status: status})
			return true, nil
		}
	}
	return false, nil
}

// SetFulfilmentStatus mirrors SetPaymentStatus for the fulfilment axis.
func (s *OrderRepositoryStub) SetFulfilmentStatus(ctx context.Context, orderID int64, status model.FulfilmentStatus, allowedPrior []model.FulfilmentStatus) (bool, error) {
	if s.SetFulfilmentFn != nil {
		return s.SetFulfilmentFn(ctx, orderID, status, allowedPrior)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.ByID[orderID]
	if !ok {
		return false, nil
	}
	for _, prior := range allowedPrior {
		if order.Fulfilment == prior {
			order.Fulfilment = status
			return true, nil
		}
	}
	return false, nil
}

// PaymentStatusOf reports the current stored status for assertions.
func (s *OrderRepositoryStub) PaymentStatusOf(orderID int64) model.PaymentStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order, ok := s.ByID[orderID]; ok {
		return order.Payment.Status
	}
	return ""
}

// MenuRepositoryStub serves a fixed catalog.
type MenuRepositoryStub struct {
	Items []model.MenuItem
	Err   error
}

// GetAllItems returns the configured items or error.
func (s MenuRepositoryStub) GetAllItems(context.Context) ([]model.MenuItem, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Items, nil
}
