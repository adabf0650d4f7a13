package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/caterlane/caterpay/internal/config"
	"github.com/caterlane/caterpay/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	newPricingUseCase,
	newReconcileUseCase,
	NewOrderUseCase,
)

type pricingParams struct {
	fx.In

	Menu   repository.MenuRepository
	Config *config.Config
}

func newPricingUseCase(p pricingParams) *PricingUseCase {
	return NewPricingUseCase(p.Menu, p.Config.TaxRate, p.Config.MinOrderTotal)
}

type reconcileParams struct {
	fx.In

	Orders repository.OrderRepository
	Alerts AlertNotifier
	Config *config.Config
	Logger *slog.Logger
}

func newReconcileUseCase(p reconcileParams) *ReconcileUseCase {
	return NewReconcileUseCase(p.Orders, p.Alerts, p.Config.MerchantReceiver, p.Logger)
}
