package instalment

import "errors"

var (
	ErrAlreadyPaid         = errors.New("order is already fully paid")
	ErrNotStarted          = errors.New("instalment plan not started")
	ErrInvalidPlan         = errors.New("invalid instalment plan")
	ErrMissingConfirmation = errors.New("payer email and account reference are required")
)
