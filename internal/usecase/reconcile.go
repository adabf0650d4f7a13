package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	domainErrors "github.com/caterlane/caterpay/internal/domain/errors"
	"github.com/caterlane/caterpay/internal/domain/model"
	"github.com/caterlane/caterpay/internal/domain/repository"
)

// AlertNotifier is the fire-and-forget anomaly channel. Implementations must
// not block reconciliation on delivery problems.
type AlertNotifier interface {
	Notify(ctx context.Context, kind string, payload map[string]any)
}

// Alert kinds emitted during reconciliation.
const (
	AlertAmountMismatch     = "amount_mismatch"
	AlertFailedVerification = "failed_verification"
)

// Allowed prior states per target status. Each target includes itself so a
// redelivered event lands as an idempotent no-op instead of a failure.
// REFUNDED is terminal and never appears in another target's prior set;
// REJECTED is sticky and can only move to REFUNDED.
var (
	priorForApproved = []model.PaymentStatus{model.PaymentStatusPending, model.PaymentStatusApproved}
	priorForRejected = []model.PaymentStatus{model.PaymentStatusPending, model.PaymentStatusApproved, model.PaymentStatusRejected}
	priorForRefunded = []model.PaymentStatus{model.PaymentStatusPending, model.PaymentStatusApproved, model.PaymentStatusRejected, model.PaymentStatusRefunded}
)

// ReconcileUseCase applies processor notifications to stored orders per the
// payment transition table. It is the authoritative trust boundary: the
// checkout gate is advisory and a client can bypass it entirely.
type ReconcileUseCase struct {
	orders   repository.OrderRepository
	alerts   AlertNotifier
	receiver string
	logger   *slog.Logger
}

// NewReconcileUseCase constructs ReconcileUseCase. receiver is the merchant
// identity expected on every notification.
func NewReconcileUseCase(orders repository.OrderRepository, alerts AlertNotifier, receiver string, logger *slog.Logger) *ReconcileUseCase {
	return &ReconcileUseCase{orders: orders, alerts: alerts, receiver: receiver, logger: logger}
}

// Apply reconciles one notification whose handshake produced the given
// verification result. An error is returned only for storage failures;
// every anomaly in the transition table resolves to a status change, an
// alert, or a logged no-op.
func (u *ReconcileUseCase) Apply(ctx context.Context, n model.Notification, verified bool) error {
	if !strings.EqualFold(n.Receiver, u.receiver) {
		// Not necessarily about this merchant at all. Rejecting here would
		// let anyone flip arbitrary transactions via receiver probing.
		u.logger.Info("notification for foreign receiver ignored",
			slog.String("receiver", n.Receiver),
			slog.String("transaction", n.TransactionID),
		)
		return nil
	}

	order, err := u.orders.GetByTransactionID(ctx, n.TransactionID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			// The order-creation path may simply not have committed yet, or
			// the event is spurious. Redelivery will retry either way.
			u.logger.Warn("notification for unknown transaction",
				slog.String("transaction", n.TransactionID),
				slog.String("status", string(n.Status)),
			)
			return nil
		}
		return err
	}

	if !verified {
		return u.reject(ctx, order, AlertFailedVerification, map[string]any{
			"transactionId": n.TransactionID,
			"verified":      false,
		})
	}

	switch n.Status {
	case model.ProcessorStatusRefunded:
		if _, err := u.orders.SetPaymentStatus(ctx, order.ID, model.PaymentStatusRefunded, priorForRefunded); err != nil {
			return err
		}
		return nil
	case model.ProcessorStatusCompleted:
		expected := order.Payment.ClaimedAmount.Round(2)
		actual := n.Gross.Round(2)
		if !expected.Equal(actual) {
			return u.reject(ctx, order, AlertAmountMismatch, map[string]any{
				"transactionId": n.TransactionID,
				"expected":      expected.StringFixed(2),
				"actual":        actual.StringFixed(2),
			})
		}
		applied, err := u.orders.SetPaymentStatus(ctx, order.ID, model.PaymentStatusApproved, priorForApproved)
		if err != nil {
			return err
		}
		if !applied {
			u.logger.Info("approval skipped for sticky status",
				slog.String("transaction", n.TransactionID),
				slog.String("current", string(order.Payment.Status)),
			)
		}
		return nil
	default:
		u.logger.Info("notification status not actionable",
			slog.String("transaction", n.TransactionID),
			slog.String("status", string(n.Status)),
		)
		return nil
	}
}

func (u *ReconcileUseCase) reject(ctx context.Context, order *model.Order, kind string, payload map[string]any) error {
	applied, err := u.orders.SetPaymentStatus(ctx, order.ID, model.PaymentStatusRejected, priorForRejected)
	if err != nil {
		return err
	}
	if !applied {
		// Only a REFUNDED order refuses this transition, and refunded is
		// terminal: nothing is left to act on, so no alert either.
		u.logger.Info("rejection skipped for terminal status",
			slog.String("kind", kind),
			slog.String("current", string(order.Payment.Status)),
		)
		return nil
	}
	u.alerts.Notify(ctx, kind, payload)
	return nil
}
