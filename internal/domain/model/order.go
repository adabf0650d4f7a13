package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus describes the trust status of an order's payment.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusApproved PaymentStatus = "APPROVED"
	PaymentStatusRejected PaymentStatus = "REJECTED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// FulfilmentStatus describes kitchen-side progress, independent of payment.
type FulfilmentStatus string

const (
	FulfilmentStatusPending   FulfilmentStatus = "PENDING"
	FulfilmentStatusCompleted FulfilmentStatus = "COMPLETED"
	FulfilmentStatusCancelled FulfilmentStatus = "CANCELLED"
)

// OrderLine is one priced position of an order.
type OrderLine struct {
	ItemID         int64
	Quantity       int
	Size           string
	Accommodations []string
	Instructions   string
}

// Customer holds contact details captured at checkout.
type Customer struct {
	Name  string
	Email string
	Phone string
}

// Payment is the processor-facing sub-record of an order. ClaimedAmount is
// what the client asserted it paid; it stays untrusted until reconciled.
type Payment struct {
	ClaimedAmount decimal.Decimal
	TransactionID string
	Status        PaymentStatus
}

// Order is the aggregate owned by the order store.
type Order struct {
	ID         int64
	Customer   Customer
	PickupAt   time.Time
	Lines      []OrderLine
	Payment    Payment
	Fulfilment FulfilmentStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
