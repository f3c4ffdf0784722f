package checkout

import (
	"context"
	"errors"
	"strings"
	"testing"

	"nextgen-storefront/internal/cart"
	"nextgen-storefront/internal/instalment"
	"nextgen-storefront/internal/order"
	"nextgen-storefront/internal/payment"
	"nextgen-storefront/internal/pricing"
	"nextgen-storefront/internal/product"
	"nextgen-storefront/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) List(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, id string) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Place(ctx context.Context, userID string, d order.Draft) (*order.Order, error) {
	args := m.Called(ctx, userID, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) MarkReceived(ctx context.Context, userID, id string) (*order.Order, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) PayInstalment(ctx context.Context, userID, id string, conf instalment.Confirmation) (*order.InstalmentResult, error) {
	args := m.Called(ctx, userID, id, conf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.InstalmentResult), args.Error(1)
}

func (m *MockOrderService) Rate(ctx context.Context, userID, id, itemID string, stars int) (*order.Order, error) {
	args := m.Called(ctx, userID, id, itemID, stars)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Arrived(ctx context.Context, userID, id string) {
	m.Called(ctx, userID, id)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func setup(t *testing.T) (Service, cart.Service, *MockOrderService) {
	t.Helper()
	carts := cart.NewService(cart.NewRepository(storage.NewMemoryStore()), nil)
	orders := new(MockOrderService)
	return NewService(carts, orders, pricing.DefaultEngine()), carts, orders
}

func fillCart(t *testing.T, carts cart.Service, owner string) {
	t.Helper()
	ctx := context.Background()
	rog := product.Product{ID: "p1", Brand: "ASUS", Model: "ROG", Price: dec("10000")}
	katana := product.Product{ID: "p2", Brand: "MSI", Model: "Katana", Price: dec("12000")}
	for _, p := range []product.Product{rog, katana, katana} {
		_, err := carts.Add(ctx, owner, p)
		require.NoError(t, err)
	}
}

func validForm() payment.Form {
	return payment.Form{
		Card:       payment.CardDetails{Number: "4111111111111111", Expiry: "12/28", CVV: "123"},
		EFT:        payment.EFTDetails{Bank: "FNB", AccountNumber: "62000000001", Holder: "T Mokoena"},
		Instalment: payment.InstalmentDetails{Name: "Thabo", Email: "thabo@example.com", IDNumber: "9001015009087", BankName: "Capitec", AccountNumber: "1234567890"},
		Delivery:   payment.DeliveryDetails{Address: "1 Long Street"},
	}
}

func TestService_Quote(t *testing.T) {
	svc, carts, _ := setup(t)
	fillCart(t, carts, "u1")

	q, err := svc.Quote(context.Background(), "u1", pricing.Config{
		Currency: pricing.USD, PaymentType: pricing.Instalment, Months: 6, Delivery: pricing.Pickup,
	})
	require.NoError(t, err)

	assert.True(t, q.Totals.TotalConverted.Equal(dec("1870")))
	assert.Equal(t, "$1870.00", q.Display)
	assert.Equal(t, "$311.67", q.Monthly)
	require.Len(t, q.Lines, 2)
	assert.True(t, q.Lines[1].ConvertedPrice.Equal(dec("660")))
	assert.Equal(t, 2, q.Lines[1].Quantity)
}

func TestService_Purchase(t *testing.T) {
	ctx := context.Background()

	t.Run("Instalment purchase", func(t *testing.T) {
		svc, carts, orders := setup(t)
		fillCart(t, carts, "u1")

		orders.On("Place", ctx, "u1", mock.MatchedBy(func(d order.Draft) bool {
			return len(d.Items) == 2 &&
				d.TotalAmount.Equal(dec("34075")) &&
				d.Instalment != nil &&
				d.Instalment.MonthlyAmount.Equal(dec("11358.33")) &&
				d.Instalment.Paid.Equal(dec("11358.33")) &&
				d.Instalment.PaymentsMade == 1
		})).Return(&order.Order{ID: "o1"}, nil)

		receipt, err := svc.Purchase(ctx, "u1", Request{
			Config: pricing.Config{Currency: pricing.ZAR, PaymentType: pricing.Instalment, Months: 3, Delivery: pricing.HomeDelivery},
			Form:   validForm(),
		})
		require.NoError(t, err)

		assert.Equal(t, "First instalment payment successful!", receipt.Message)
		assert.Equal(t, "o1", receipt.Order.ID)
		assert.Contains(t, receipt.Instructions[0], "R11358.33")
		assert.Contains(t, receipt.Instructions[1], "2 more")
		assert.Contains(t, receipt.Instructions[len(receipt.Instructions)-1], "1 Long Street")
		assert.Empty(t, carts.Items(ctx, "u1"))
		orders.AssertExpectations(t)
	})

	t.Run("Card purchase", func(t *testing.T) {
		svc, carts, orders := setup(t)
		fillCart(t, carts, "u1")
		orders.On("Place", ctx, "u1", mock.MatchedBy(func(d order.Draft) bool {
			return d.Instalment == nil && d.Currency == pricing.GBP && d.TotalAmount.Equal(dec("1462"))
		})).Return(&order.Order{ID: "o2"}, nil)

		receipt, err := svc.Purchase(ctx, "u1", Request{
			Config: pricing.Config{Currency: pricing.GBP, PaymentType: pricing.Card, Delivery: pricing.Pickup},
			Form:   validForm(),
		})
		require.NoError(t, err)
		assert.Equal(t, "Purchase Complete!", receipt.Message)
		assert.True(t, strings.HasPrefix(receipt.Reference, "NG-"))
		assert.Contains(t, strings.Join(receipt.Instructions, "\n"), receipt.Reference)
	})

	t.Run("Guests must log in", func(t *testing.T) {
		svc, carts, orders := setup(t)
		fillCart(t, carts, "")

		_, err := svc.Purchase(ctx, "", Request{
			Config: pricing.Config{Currency: pricing.ZAR, PaymentType: pricing.Card, Delivery: pricing.Pickup},
			Form:   validForm(),
		})
		assert.ErrorIs(t, err, ErrLoginRequired)
		assert.Len(t, carts.Items(ctx, ""), 2)
		orders.AssertNotCalled(t, "Place", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Invalid form is rejected before the network", func(t *testing.T) {
		svc, carts, orders := setup(t)
		fillCart(t, carts, "u1")
		form := validForm()
		form.Card.CVV = "1"

		_, err := svc.Purchase(ctx, "u1", Request{
			Config: pricing.Config{Currency: pricing.ZAR, PaymentType: pricing.Card, Delivery: pricing.Pickup},
			Form:   form,
		})
		var verr *payment.ValidationError
		assert.ErrorAs(t, err, &verr)
		orders.AssertNotCalled(t, "Place", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Zero months rejected", func(t *testing.T) {
		svc, carts, _ := setup(t)
		fillCart(t, carts, "u1")

		_, err := svc.Purchase(ctx, "u1", Request{
			Config: pricing.Config{Currency: pricing.ZAR, PaymentType: pricing.Instalment, Delivery: pricing.Pickup},
			Form:   validForm(),
		})
		assert.ErrorIs(t, err, pricing.ErrInvalidMonths)
	})

	t.Run("Empty cart", func(t *testing.T) {
		svc, _, _ := setup(t)

		_, err := svc.Purchase(ctx, "u1", Request{
			Config: pricing.Config{Currency: pricing.ZAR, PaymentType: pricing.EFT, Delivery: pricing.Pickup},
			Form:   validForm(),
		})
		assert.ErrorIs(t, err, ErrCartEmpty)
	})

	t.Run("Backend failure keeps the cart", func(t *testing.T) {
		svc, carts, orders := setup(t)
		fillCart(t, carts, "u1")
		orders.On("Place", ctx, "u1", mock.Anything).Return(nil, errors.New("timeout"))

		_, err := svc.Purchase(ctx, "u1", Request{
			Config: pricing.Config{Currency: pricing.ZAR, PaymentType: pricing.EFT, Delivery: pricing.Pickup},
			Form:   validForm(),
		})
		assert.Error(t, err)
		assert.Len(t, carts.Items(ctx, "u1"), 2)
	})
}
