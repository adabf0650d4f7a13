package repository

import (
	"context"

	"github.com/caterlane/caterpay/internal/domain/model"
)

// MenuRepository provides read-only access to the canonical menu catalog.
type MenuRepository interface {
	GetAllItems(ctx context.Context) ([]model.MenuItem, error)
}
