package cart

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidItem = errors.New("invalid cart item")

	// -- Resource State --
	ErrCartItemNotFound = errors.New("cart item not found")

	// -- Persistence --
	// ErrPersistFailed is a warning: the change is kept in memory and
	// written with the owner's next change, but the slot is stale until then.
	ErrPersistFailed = errors.New("cart changed but could not be saved")
	ErrMalformedCart = errors.New("stored cart is malformed")
)
