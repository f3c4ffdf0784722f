package checkout

import "errors"

var (
	ErrLoginRequired = errors.New("please log in to complete your purchase")
	ErrCartEmpty     = errors.New("cart is empty")
)
