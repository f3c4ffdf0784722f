package cart

import (
	"github.com/shopspring/decimal"
)

// Item is one line of a cart. Price is the unit price in the base
// currency (ZAR); Quantity is never below 1.
type Item struct {
	ID       string          `json:"id"`
	Brand    string          `json:"brand"`
	Model    string          `json:"model"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image,omitempty"`
	Quantity int             `json:"quantity"`
}

func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// DecreasePolicy decides what happens when a quantity would drop below 1.
// Each surface picks one and sticks to it.
type DecreasePolicy int

const (
	// FloorAtOne keeps the item at quantity 1. Used by the cart screen.
	FloorAtOne DecreasePolicy = iota
	// RemoveAtZero drops the item instead. Used by the mini-cart list.
	RemoveAtZero
)

func (p DecreasePolicy) String() string {
	switch p {
	case FloorAtOne:
		return "floor_at_one"
	case RemoveAtZero:
		return "remove_at_zero"
	}
	return "unknown"
}

// Changed is broadcast after every mutation of a cart.
type Changed struct {
	Owner string
	Count int
	Items []Item
}
