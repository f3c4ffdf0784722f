package order

import "errors"

var (
	// -- Lookup --
	ErrOrderNotFound = errors.New("order not found")
	ErrItemNotFound  = errors.New("order item not found")
	ErrUnauthorized  = errors.New("unauthorized")

	// -- State --
	ErrAlreadyCompleted  = errors.New("order is already completed")
	ErrNotReceived       = errors.New("order has not been received yet")
	ErrNotInstalment     = errors.New("order is not paid in instalments")
	ErrPaymentInProgress = errors.New("an instalment payment for this order is already in progress")

	// -- Input --
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrInvalidDraft  = errors.New("invalid order")
)
