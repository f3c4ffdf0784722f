package pricing

import "errors"

var (
	ErrUnknownCurrency    = errors.New("unknown currency")
	ErrUnknownPaymentType = errors.New("unknown payment type")
	ErrUnknownDelivery    = errors.New("unknown delivery option")
	ErrInvalidMonths      = errors.New("instalment months must be 3, 6 or 12")
	ErrInvalidRate        = errors.New("invalid conversion rate")
	ErrInvalidFee         = errors.New("invalid delivery fee")
)
