package order

import (
	"time"

	"nextgen-storefront/internal/instalment"
	"nextgen-storefront/internal/pricing"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusCompleted OrderStatus = "completed"
	StatusDelivered OrderStatus = "delivered"
)

// Item is a frozen copy of a cart line at purchase time.
type Item struct {
	ID       string          `json:"id"`
	Brand    string          `json:"brand"`
	Model    string          `json:"model"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image,omitempty"`
	Quantity int             `json:"quantity"`
	Rating   int             `json:"rating,omitempty"`
}

func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Instalment struct {
	Months        int             `json:"months"`
	MonthlyAmount decimal.Decimal `json:"monthlyAmount"`
	Paid          decimal.Decimal `json:"paid"`
	PaymentsMade  int             `json:"paymentsMade"`
}

type Order struct {
	ID             string              `json:"id"`
	Items          []Item              `json:"items"`
	Delivery       pricing.Delivery    `json:"delivery"`
	PaymentType    pricing.PaymentType `json:"paymentType"`
	Currency       pricing.Currency    `json:"currency"`
	TotalAmount    decimal.Decimal     `json:"totalAmount"`
	Instalment     *Instalment         `json:"instalment,omitempty"`
	Status         OrderStatus         `json:"status"`
	CreatedAt      time.Time           `json:"createdAt"`
	CompletionDate *time.Time          `json:"completionDate,omitempty"`
}

func (o *Order) IsCompleted() bool {
	return o.Status == StatusCompleted || o.Status == StatusDelivered
}

// Plan returns the order's instalment plan, or nil for other payment types.
func (o *Order) Plan() *instalment.Plan {
	if o.PaymentType != pricing.Instalment || o.Instalment == nil {
		return nil
	}
	in := o.Instalment
	return instalment.Restore(o.TotalAmount, in.MonthlyAmount, in.Paid, in.Months, in.PaymentsMade)
}

func (o *Order) applyPlan(p *instalment.Plan) {
	o.Instalment = &Instalment{
		Months:        p.Months,
		MonthlyAmount: p.Monthly,
		Paid:          p.Paid,
		PaymentsMade:  p.PaymentsMade,
	}
}

// ReceiveLabel is the wording of the "mark as received" action.
func (o *Order) ReceiveLabel() string {
	if o.Delivery == pricing.HomeDelivery {
		return "Mark as Delivered"
	}
	return "Mark as Picked Up"
}

// Draft is an order that has not been sent to the backend yet.
type Draft struct {
	Items       []Item
	Delivery    pricing.Delivery
	PaymentType pricing.PaymentType
	Currency    pricing.Currency
	TotalAmount decimal.Decimal
	Instalment  *Instalment
}

// InstalmentResult is the outcome of one PayInstalment.
type InstalmentResult struct {
	Order   *Order             `json:"order"`
	Payment instalment.Payment `json:"payment"`
	State   instalment.State   `json:"state"`
	Message string             `json:"message"`
}
