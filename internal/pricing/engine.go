package pricing

import (
	"fmt"

	"nextgen-storefront/internal/cart"

	"github.com/shopspring/decimal"
)

// DefaultDeliveryFee is charged in the base currency when the order is
// delivered.
var DefaultDeliveryFee = decimal.NewFromInt(75)

type Engine struct {
	rates       RateTable
	deliveryFee decimal.Decimal
}

func NewEngine(rates RateTable, deliveryFee decimal.Decimal) *Engine {
	if rates == nil {
		rates = DefaultRates()
	}
	return &Engine{rates: rates, deliveryFee: deliveryFee}
}

func DefaultEngine() *Engine {
	return NewEngine(DefaultRates(), DefaultDeliveryFee)
}

// FromSettings builds an engine from raw configuration values.
func FromSettings(rateOverrides map[string]string, deliveryFee string) (*Engine, error) {
	rates, err := NewRateTable(rateOverrides)
	if err != nil {
		return nil, err
	}
	fee := DefaultDeliveryFee
	if deliveryFee != "" {
		fee, err = decimal.NewFromString(deliveryFee)
		if err != nil || fee.IsNegative() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFee, deliveryFee)
		}
	}
	return NewEngine(rates, fee), nil
}

// ComputeTotals prices items under cfg. Intermediate values keep full
// precision; rounding happens once per output value.
func (e *Engine) ComputeTotals(items []cart.Item, cfg Config) (*Totals, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rate, err := e.rates.Rate(cfg.Currency)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
	}

	fee := decimal.Zero
	if cfg.Delivery == HomeDelivery {
		fee = e.deliveryFee
	}

	totalBase := subtotal.Add(fee)
	totalConverted := round(totalBase.Mul(rate))

	totals := &Totals{
		Subtotal:       round(subtotal),
		DeliveryFee:    round(fee),
		TotalBase:      round(totalBase),
		TotalConverted: totalConverted,
		Currency:       cfg.Currency,
		Symbol:         cfg.Currency.Symbol(),
	}
	if cfg.PaymentType == Instalment {
		monthly := round(totalConverted.Div(decimal.NewFromInt(int64(cfg.Months))))
		totals.MonthlyInstalment = &monthly
	}
	return totals, nil
}

// Convert prices a base-currency amount in c, e.g. a single line's unit
// price on the checkout screen.
func (e *Engine) Convert(amount decimal.Decimal, c Currency) (decimal.Decimal, error) {
	rate, err := e.rates.Rate(c)
	if err != nil {
		return decimal.Zero, err
	}
	return round(amount.Mul(rate)), nil
}

func (e *Engine) DeliveryFee() decimal.Decimal {
	return e.deliveryFee
}

// round is half-up to two decimals. Amounts here are never negative, so
// decimal's half-away-from-zero is the same thing.
func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FormatAmount renders an amount the way the storefront shows it, e.g.
// "R34075.00" or "$1870.00".
func FormatAmount(amount decimal.Decimal, c Currency) string {
	return c.Symbol() + amount.StringFixed(2)
}
