package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	domainErrors "github.com/caterlane/caterpay/internal/domain/errors"
	"github.com/caterlane/caterpay/internal/domain/model"
	"github.com/caterlane/caterpay/internal/domain/repository"
)

// PricingUseCase independently recomputes what a proposed order should cost.
// It never trusts a client-submitted total and never mutates anything.
type PricingUseCase struct {
	menu          repository.MenuRepository
	taxRate       decimal.Decimal
	minOrderTotal decimal.Decimal
}

// NewPricingUseCase constructs PricingUseCase.
func NewPricingUseCase(menu repository.MenuRepository, taxRate, minOrderTotal decimal.Decimal) *PricingUseCase {
	return &PricingUseCase{menu: menu, taxRate: taxRate, minOrderTotal: minOrderTotal}
}

// Snapshot loads one consistent catalog view. A validation call prices all
// of its lines against the same snapshot, so a concurrent menu edit cannot
// produce mixed pricing inside a single order.
func (u *PricingUseCase) Snapshot(ctx context.Context) (model.Catalog, error) {
	items, err := u.menu.GetAllItems(ctx)
	if err != nil {
		return nil, err
	}
	catalog := make(model.Catalog, len(items))
	for _, item := range items {
		catalog[item.ID] = item
	}
	return catalog, nil
}

// ExpectedTotal recomputes subtotal, tax and total for the given lines.
// The running subtotal is rounded to cents after every line, matching how
// existing stored orders were priced.
func (u *PricingUseCase) ExpectedTotal(catalog model.Catalog, lines []model.OrderLine) (subtotal, tax, total decimal.Decimal, err error) {
	subtotal = decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			return decimal.Zero, decimal.Zero, decimal.Zero, domainErrors.ErrInvalidOrder
		}
		item, ok := catalog.Item(line.ItemID)
		if !ok {
			return decimal.Zero, decimal.Zero, decimal.Zero, domainErrors.ErrInvalidOrder
		}
		unit, ok := item.SizePrices[line.Size]
		if !ok {
			return decimal.Zero, decimal.Zero, decimal.Zero, domainErrors.ErrInvalidOrder
		}
		for _, desc := range line.Accommodations {
			price, ok := item.AccommodationPrice(desc)
			if !ok {
				return decimal.Zero, decimal.Zero, decimal.Zero, domainErrors.ErrInvalidOrder
			}
			unit = unit.Add(price)
		}
		subtotal = subtotal.Add(unit.Mul(decimal.NewFromInt(int64(line.Quantity)))).Round(2)
	}
	tax = subtotal.Mul(u.taxRate).Round(2)
	total = subtotal.Add(tax).Round(2)
	return subtotal, tax, total, nil
}

// Validate checks a claimed total against the recomputed price. It returns
// nil when the claim is exact and the pre-tax subtotal meets the minimum,
// ErrInvalidOrder on any catalog or price mismatch, and ErrBelowMinimum when
// the price matches but the order is too small.
func (u *PricingUseCase) Validate(catalog model.Catalog, lines []model.OrderLine, claimedTotal decimal.Decimal) error {
	subtotal, _, total, err := u.ExpectedTotal(catalog, lines)
	if err != nil {
		return err
	}
	if !total.Equal(claimedTotal.Round(2)) {
		return domainErrors.ErrInvalidOrder
	}
	if subtotal.LessThan(u.minOrderTotal) {
		return domainErrors.ErrBelowMinimum
	}
	return nil
}
