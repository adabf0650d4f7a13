package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/caterlane/caterpay/internal/adapter/processor"
	domainErrors "github.com/caterlane/caterpay/internal/domain/errors"
	"github.com/caterlane/caterpay/internal/domain/model"
	testhelpers "github.com/caterlane/caterpay/internal/test"
	"github.com/caterlane/caterpay/internal/usecase"
)

type verifierStub struct {
	result processor.VerificationResult
	err    error
	seen   string
}

func (v *verifierStub) Verify(_ context.Context, payload string) (processor.VerificationResult, error) {
	v.seen = payload
	return v.result, v.err
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newFacade() (*CateringFacade, *testhelpers.OrderRepositoryStub, *testhelpers.AlertRecorder, *verifierStub) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	menu := testhelpers.MenuRepositoryStub{Items: []model.MenuItem{{
		ID:   1,
		Name: "Sandwich Platter",
		SizePrices: map[string]decimal.Decimal{
			"small": money("10.00"),
		},
	}}}
	pricing := usecase.NewPricingUseCase(menu, money("0.0775"), money("20"))

	orderRepo := testhelpers.NewOrderRepositoryStub()
	alerts := &testhelpers.AlertRecorder{}
	reconcile := usecase.NewReconcileUseCase(orderRepo, alerts, "orders@caterlane.example", logger)
	orders := usecase.NewOrderUseCase(orderRepo)

	verifier := &verifierStub{result: processor.ResultVerified}
	facade := NewCateringFacade(pricing, reconcile, orders, verifier)
	return facade, orderRepo, alerts, verifier
}

func TestFacadeAuthorize(t *testing.T) {
	facade, _, _, _ := newFacade()
	lines := []model.OrderLine{{ItemID: 1, Quantity: 2, Size: "small"}}

	if err := facade.Authorize(context.Background(), lines, money("21.55")); err != nil {
		t.Fatalf("expected approval, got %v", err)
	}
	if err := facade.Authorize(context.Background(), lines, money("20.00")); !errors.Is(err, domainErrors.ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder, got %v", err)
	}
	if err := facade.Authorize(context.Background(), []model.OrderLine{{ItemID: 1, Quantity: 1, Size: "small"}}, money("10.78")); !errors.Is(err, domainErrors.ErrBelowMinimum) {
		t.Fatalf("expected ErrBelowMinimum, got %v", err)
	}
}

func TestFacadeOrderLifecycle(t *testing.T) {
	facade, _, _, _ := newFacade()

	created, err := facade.CreateOrder(context.Background(), &model.Order{
		Lines: []model.OrderLine{{ItemID: 1, Quantity: 2, Size: "small"}},
		Payment: model.Payment{
			ClaimedAmount: money("21.55"),
			TransactionID: "TXN-1",
		},
	})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}

	fetched, err := facade.Order(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("order lookup returned error: %v", err)
	}
	if fetched.Payment.TransactionID != "TXN-1" {
		t.Fatalf("unexpected order: %+v", fetched)
	}

	if err := facade.SetFulfilment(context.Background(), created.ID, model.FulfilmentStatusCompleted); err != nil {
		t.Fatalf("set fulfilment returned error: %v", err)
	}
	fetched, _ = facade.Order(context.Background(), created.ID)
	if fetched.Fulfilment != model.FulfilmentStatusCompleted {
		t.Fatalf("expected COMPLETED fulfilment, got %s", fetched.Fulfilment)
	}
}

func TestFacadeVerifyNotification(t *testing.T) {
	facade, _, _, verifier := newFacade()
	payload := "z_last=1&txn_id=TXN-1&a_first=2"

	result, err := facade.VerifyNotification(context.Background(), payload)
	if err != nil {
		t.Fatalf("verify returned error: %v", err)
	}
	if result != processor.ResultVerified {
		t.Fatalf("expected VERIFIED, got %v", result)
	}
	if verifier.seen != payload {
		t.Fatalf("expected payload forwarded verbatim, got %q", verifier.seen)
	}
}

func TestFacadeReconcile(t *testing.T) {
	facade, repo, alerts, _ := newFacade()
	repo.Seed(model.Order{
		Payment: model.Payment{
			ClaimedAmount: money("21.55"),
			TransactionID: "TXN-1",
			Status:        model.PaymentStatusPending,
		},
	})

	n := model.Notification{
		TransactionID: "TXN-1",
		Status:        model.ProcessorStatusCompleted,
		Receiver:      "orders@caterlane.example",
		Gross:         money("21.55"),
	}
	if err := facade.Reconcile(context.Background(), n, true); err != nil {
		t.Fatalf("reconcile returned error: %v", err)
	}
	if got := repo.PaymentStatusOf(1); got != model.PaymentStatusApproved {
		t.Fatalf("expected APPROVED, got %s", got)
	}
	if alerts.CallCount() != 0 {
		t.Fatalf("expected no alerts, got %d", alerts.CallCount())
	}
}
