package dto

import "github.com/shopspring/decimal"

// Rejection reasons surfaced by the checkout gate.
const (
	ReasonInvalidOrder = "INVALID_ORDER"
	ReasonBelowMinimum = "BELOW_MINIMUM"
)

// OrderLineRequest mirrors one order line submitted by the client.
type OrderLineRequest struct {
	ItemID         int64    `json:"item_id"`
	Quantity       int      `json:"quantity"`
	Size           string   `json:"size"`
	Accommodations []string `json:"accommodations,omitempty"`
	Instructions   string   `json:"instructions,omitempty"`
}

// CheckoutRequest is the body of POST /api/checkout/authorize.
type CheckoutRequest struct {
	Lines        []OrderLineRequest `json:"lines"`
	ClaimedTotal decimal.Decimal    `json:"claimed_total"`
}

// CheckoutResponse reports the gate's advisory decision.
type CheckoutResponse struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason,omitempty"`
}
