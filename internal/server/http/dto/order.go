package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerRequest holds contact details for order intake.
type CustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// CreateOrderRequest is the body of POST /api/orders, written by the
// checkout-completion flow after the customer paid.
type CreateOrderRequest struct {
	Customer      CustomerRequest    `json:"customer"`
	PickupAt      time.Time          `json:"pickup_at"`
	TransactionID string             `json:"transaction_id"`
	ClaimedTotal  decimal.Decimal    `json:"claimed_total"`
	Lines         []OrderLineRequest `json:"lines"`
}

// OrderResponse is the externally visible order state.
type OrderResponse struct {
	ID               int64     `json:"id"`
	PaymentStatus    string    `json:"payment_status"`
	FulfilmentStatus string    `json:"fulfilment_status"`
	ClaimedTotal     string    `json:"claimed_total"`
	TransactionID    string    `json:"transaction_id"`
	PickupAt         time.Time `json:"pickup_at"`
	CreatedAt        time.Time `json:"created_at"`
}

// FulfilmentRequest is the body of POST /api/orders/:id/fulfilment.
type FulfilmentRequest struct {
	Status string `json:"status"`
}
