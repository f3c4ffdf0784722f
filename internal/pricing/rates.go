package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RateTable maps a currency to how many units of it one ZAR buys. The
// default table is a fixed approximation, not a live feed.
type RateTable map[Currency]decimal.Decimal

func DefaultRates() RateTable {
	return RateTable{
		ZAR: decimal.NewFromInt(1),
		USD: decimal.RequireFromString("0.055"),
		GBP: decimal.RequireFromString("0.043"),
		EUR: decimal.RequireFromString("0.05"),
	}
}

// NewRateTable starts from DefaultRates and applies overrides keyed by
// currency code. The base currency always stays at 1.
func NewRateTable(overrides map[string]string) (RateTable, error) {
	table := DefaultRates()
	for code, raw := range overrides {
		c, err := ParseCurrency(code)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", err, code)
		}
		if c == BaseCurrency {
			continue
		}
		rate, err := decimal.NewFromString(raw)
		if err != nil || !rate.IsPositive() {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidRate, code, raw)
		}
		table[c] = rate
	}
	return table, nil
}

func (t RateTable) Rate(c Currency) (decimal.Decimal, error) {
	rate, ok := t[c]
	if !ok {
		return decimal.Zero, ErrUnknownCurrency
	}
	return rate, nil
}
