package errors

import "errors"

var (
	ErrAlreadyExists = errors.New("already exists")
	ErrNotFound      = errors.New("not found")

	// Checkout gate outcomes.
	ErrInvalidOrder = errors.New("invalid order")
	ErrBelowMinimum = errors.New("below minimum order total")

	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidPayload    = errors.New("invalid payload")
)
