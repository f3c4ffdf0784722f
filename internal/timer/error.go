package timer

import "errors"

var (
	ErrUnknownOrder = errors.New("order is not being tracked")
	ErrInvalidOrder = errors.New("order id is required")
	ErrNotRetryable = errors.New("arrival notification has not failed")
	ErrStopped      = errors.New("timer tracker stopped")
)
