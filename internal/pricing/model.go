package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Currency string

const (
	ZAR Currency = "ZAR"
	USD Currency = "USD"
	GBP Currency = "GBP"
	EUR Currency = "EUR"

	// BaseCurrency is the currency catalog prices and the delivery fee are
	// quoted in.
	BaseCurrency = ZAR
)

var symbols = map[Currency]string{
	ZAR: "R",
	USD: "$",
	GBP: "£",
	EUR: "€",
}

func ParseCurrency(s string) (Currency, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return BaseCurrency, nil
	}
	c := Currency(s)
	if _, ok := symbols[c]; !ok {
		return "", ErrUnknownCurrency
	}
	return c, nil
}

func (c Currency) Symbol() string {
	return symbols[c]
}

type PaymentType string

const (
	Instalment PaymentType = "instalment"
	Card       PaymentType = "card"
	EFT        PaymentType = "eft"
)

func ParsePaymentType(s string) (PaymentType, error) {
	switch p := PaymentType(strings.ToLower(strings.TrimSpace(s))); p {
	case Instalment, Card, EFT:
		return p, nil
	case "":
		return Card, nil
	}
	return "", ErrUnknownPaymentType
}

type Delivery string

const (
	Pickup       Delivery = "pickup"
	HomeDelivery Delivery = "delivery"
)

func ParseDelivery(s string) (Delivery, error) {
	switch d := Delivery(strings.ToLower(strings.TrimSpace(s))); d {
	case Pickup, HomeDelivery:
		return d, nil
	case "":
		return Pickup, nil
	}
	return "", ErrUnknownDelivery
}

// AllowedMonths are the instalment plans on offer.
var AllowedMonths = []int{3, 6, 12}

// Config is what the shopper picks on the checkout screen.
type Config struct {
	Currency    Currency    `json:"currency"`
	PaymentType PaymentType `json:"paymentType"`
	Months      int         `json:"instalmentMonths,omitempty"`
	Delivery    Delivery    `json:"delivery"`
}

// Validate rejects configurations the engine cannot price. Months only
// matter for instalment payments, where they must be one of AllowedMonths.
func (c Config) Validate() error {
	if _, ok := symbols[c.Currency]; !ok {
		return ErrUnknownCurrency
	}
	switch c.PaymentType {
	case Instalment:
		if !allowedMonths(c.Months) {
			return ErrInvalidMonths
		}
	case Card, EFT:
	default:
		return ErrUnknownPaymentType
	}
	switch c.Delivery {
	case Pickup, HomeDelivery:
	default:
		return ErrUnknownDelivery
	}
	return nil
}

func allowedMonths(m int) bool {
	for _, v := range AllowedMonths {
		if v == m {
			return true
		}
	}
	return false
}

// Totals are rounded to two decimals. TotalConverted and MonthlyInstalment
// are in Currency; the rest are in the base currency.
type Totals struct {
	Subtotal          decimal.Decimal  `json:"subtotal"`
	DeliveryFee       decimal.Decimal  `json:"deliveryFee"`
	TotalBase         decimal.Decimal  `json:"totalBase"`
	TotalConverted    decimal.Decimal  `json:"totalConverted"`
	MonthlyInstalment *decimal.Decimal `json:"monthlyInstalment,omitempty"`
	Currency          Currency         `json:"currency"`
	Symbol            string           `json:"symbol"`
}
