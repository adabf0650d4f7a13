package model

import "github.com/shopspring/decimal"

// Accommodation is a priced add-on offered for a menu item.
type Accommodation struct {
	Description string
	Price       decimal.Decimal
}

// MenuItem is a canonical catalog record with per-size prices and add-ons.
type MenuItem struct {
	ID             int64
	Name           string
	SizePrices     map[string]decimal.Decimal
	Accommodations []Accommodation
}

// AccommodationPrice returns the price for a named add-on if the item offers it.
func (m MenuItem) AccommodationPrice(description string) (decimal.Decimal, bool) {
	for _, a := range m.Accommodations {
		if a.Description == description {
			return a.Price, true
		}
	}
	return decimal.Decimal{}, false
}

// Catalog is a consistent snapshot of the menu keyed by item id.
// Pricing reads a single snapshot per validation call.
type Catalog map[int64]MenuItem

// Item looks up a menu item by id.
func (c Catalog) Item(id int64) (MenuItem, bool) {
	item, ok := c[id]
	return item, ok
}
