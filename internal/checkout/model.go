package checkout

import (
	"nextgen-storefront/internal/order"
	"nextgen-storefront/internal/payment"
	"nextgen-storefront/internal/pricing"

	"github.com/shopspring/decimal"
)

const (
	msgFirstInstalment = "First instalment payment successful!"
	msgPurchaseDone    = "Purchase Complete!"
)

type Request struct {
	Config pricing.Config `json:"config"`
	Form   payment.Form   `json:"form"`
}

// Line is a cart line priced in the chosen currency.
type Line struct {
	ID             string          `json:"id"`
	Brand          string          `json:"brand"`
	Model          string          `json:"model"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	ConvertedPrice decimal.Decimal `json:"convertedPrice"`
}

type Quote struct {
	Lines   []Line          `json:"lines"`
	Totals  *pricing.Totals `json:"totals"`
	Display string          `json:"display"`
	Monthly string          `json:"monthly,omitempty"`
}

type Receipt struct {
	Order        *order.Order    `json:"order"`
	Totals       *pricing.Totals `json:"totals"`
	Message      string          `json:"message"`
	Reference    string          `json:"reference"`
	Instructions []string        `json:"instructions"`
	// Warning is set when the order went through but the cart could not
	// be cleared from storage.
	Warning string `json:"warning,omitempty"`
}
