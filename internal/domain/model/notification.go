package model

import (
	"github.com/shopspring/decimal"
)

// ProcessorStatus is the transaction state reported by the payment processor.
// Only Completed and Refunded are actionable; everything else is ignored.
type ProcessorStatus string

const (
	ProcessorStatusCompleted ProcessorStatus = "Completed"
	ProcessorStatusRefunded  ProcessorStatus = "Refunded"
)

// Notification is one IPN push from the payment processor. Raw keeps the
// received body exactly as it arrived on the wire; the verification
// handshake re-posts those bytes untouched, so no re-encoded form of the
// payload may ever stand in for them.
type Notification struct {
	TransactionID string
	Status        ProcessorStatus
	Receiver      string
	Gross         decimal.Decimal
	Raw           string
}
