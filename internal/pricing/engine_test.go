package pricing

import (
	"testing"

	"nextgen-storefront/internal/cart"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleCart() []cart.Item {
	return []cart.Item{
		{ID: "a", Brand: "ASUS", Model: "ROG", Price: dec("10000"), Quantity: 1},
		{ID: "b", Brand: "MSI", Model: "Katana", Price: dec("12000"), Quantity: 2},
	}
}

func TestEngine_ComputeTotals(t *testing.T) {
	engine := DefaultEngine()

	tests := []struct {
		name      string
		items     []cart.Item
		cfg       Config
		subtotal  string
		fee       string
		converted string
		monthly   string
	}{
		{
			name:      "ZAR pickup",
			items:     sampleCart(),
			cfg:       Config{Currency: ZAR, PaymentType: Card, Delivery: Pickup},
			subtotal:  "34000",
			fee:       "0",
			converted: "34000.00",
		},
		{
			name:      "USD conversion",
			items:     sampleCart(),
			cfg:       Config{Currency: USD, PaymentType: Card, Delivery: Pickup},
			subtotal:  "34000",
			fee:       "0",
			converted: "1870.00",
		},
		{
			name:      "Delivery fee before conversion",
			items:     sampleCart(),
			cfg:       Config{Currency: ZAR, PaymentType: EFT, Delivery: HomeDelivery},
			subtotal:  "34000",
			fee:       "75",
			converted: "34075.00",
		},
		{
			name:      "GBP with delivery rounds once",
			items:     sampleCart(),
			cfg:       Config{Currency: GBP, PaymentType: Card, Delivery: HomeDelivery},
			subtotal:  "34000",
			fee:       "75",
			converted: "1465.23",
		},
		{
			name:      "Instalment split",
			items:     sampleCart(),
			cfg:       Config{Currency: ZAR, PaymentType: Instalment, Months: 3, Delivery: Pickup},
			subtotal:  "34000",
			fee:       "0",
			converted: "34000.00",
			monthly:   "11333.33",
		},
		{
			name:      "Empty instalment cart",
			items:     nil,
			cfg:       Config{Currency: EUR, PaymentType: Instalment, Months: 12, Delivery: Pickup},
			subtotal:  "0",
			fee:       "0",
			converted: "0",
			monthly:   "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals, err := engine.ComputeTotals(tt.items, tt.cfg)
			require.NoError(t, err)

			assert.True(t, totals.Subtotal.Equal(dec(tt.subtotal)), "subtotal %s", totals.Subtotal)
			assert.True(t, totals.DeliveryFee.Equal(dec(tt.fee)), "fee %s", totals.DeliveryFee)
			assert.True(t, totals.TotalConverted.Equal(dec(tt.converted)), "converted %s", totals.TotalConverted)
			assert.Equal(t, tt.cfg.Currency, totals.Currency)

			if tt.monthly == "" {
				assert.Nil(t, totals.MonthlyInstalment)
				return
			}
			require.NotNil(t, totals.MonthlyInstalment)
			assert.True(t, totals.MonthlyInstalment.Equal(dec(tt.monthly)), "monthly %s", totals.MonthlyInstalment)
		})
	}
}

func TestEngine_ComputeTotals_RejectsBadConfig(t *testing.T) {
	engine := DefaultEngine()

	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"zero months", Config{Currency: ZAR, PaymentType: Instalment, Months: 0, Delivery: Pickup}, ErrInvalidMonths},
		{"odd months", Config{Currency: ZAR, PaymentType: Instalment, Months: 5, Delivery: Pickup}, ErrInvalidMonths},
		{"currency", Config{Currency: "JPY", PaymentType: Card, Delivery: Pickup}, ErrUnknownCurrency},
		{"payment", Config{Currency: ZAR, PaymentType: "cash", Delivery: Pickup}, ErrUnknownPaymentType},
		{"delivery", Config{Currency: ZAR, PaymentType: Card, Delivery: "drone"}, ErrUnknownDelivery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals, err := engine.ComputeTotals(sampleCart(), tt.cfg)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, totals)
		})
	}
}

func TestEngine_ComputeTotals_DoesNotMutateItems(t *testing.T) {
	items := sampleCart()
	_, err := DefaultEngine().ComputeTotals(items, Config{Currency: USD, PaymentType: Card, Delivery: HomeDelivery})
	require.NoError(t, err)
	assert.Equal(t, sampleCart(), items)
}

func TestFromSettings(t *testing.T) {
	t.Run("Overrides", func(t *testing.T) {
		engine, err := FromSettings(map[string]string{"usd": "0.06", "ZAR": "2"}, "100")
		require.NoError(t, err)

		totals, err := engine.ComputeTotals(sampleCart(), Config{Currency: USD, PaymentType: Card, Delivery: HomeDelivery})
		require.NoError(t, err)
		assert.True(t, totals.TotalConverted.Equal(dec("2046")))

		zar, err := engine.Convert(dec("10"), ZAR)
		require.NoError(t, err)
		assert.True(t, zar.Equal(dec("10")))
	})

	t.Run("Bad rate", func(t *testing.T) {
		_, err := FromSettings(map[string]string{"USD": "-1"}, "")
		assert.ErrorIs(t, err, ErrInvalidRate)
	})

	t.Run("Unknown code", func(t *testing.T) {
		_, err := FromSettings(map[string]string{"JPY": "16"}, "")
		assert.ErrorIs(t, err, ErrUnknownCurrency)
	})

	t.Run("Bad fee", func(t *testing.T) {
		_, err := FromSettings(nil, "abc")
		assert.ErrorIs(t, err, ErrInvalidFee)
	})
}

func TestParsers(t *testing.T) {
	c, err := ParseCurrency(" usd ")
	require.NoError(t, err)
	assert.Equal(t, USD, c)

	c, err = ParseCurrency("")
	require.NoError(t, err)
	assert.Equal(t, ZAR, c)

	p, err := ParsePaymentType("Instalment")
	require.NoError(t, err)
	assert.Equal(t, Instalment, p)

	d, err := ParseDelivery("")
	require.NoError(t, err)
	assert.Equal(t, Pickup, d)

	_, err = ParseDelivery("teleport")
	assert.ErrorIs(t, err, ErrUnknownDelivery)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "R34075.00", FormatAmount(dec("34075"), ZAR))
	assert.Equal(t, "$1870.00", FormatAmount(dec("1870"), USD))
	assert.Equal(t, "£1465.23", FormatAmount(dec("1465.225"), GBP))
	assert.Equal(t, "€0.00", FormatAmount(decimal.Zero, EUR))
}
