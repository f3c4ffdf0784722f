package order

import (
	"strings"

	"nextgen-storefront/internal/backend"
	"nextgen-storefront/internal/cart"
	"nextgen-storefront/internal/instalment"
	"nextgen-storefront/internal/pricing"

	"github.com/shopspring/decimal"
)

// FromRecord normalizes a backend order. Paid is clamped into
// [0, TotalAmount] and quantities floor at 1.
func FromRecord(r backend.OrderRecord) *Order {
	o := &Order{
		ID:          firstNonEmpty(r.MongoID.String(), r.ID.String()),
		Items:       make([]Item, 0, len(r.Items)),
		Delivery:    normalizeDelivery(r.Delivery),
		PaymentType: pricing.PaymentType(strings.ToLower(strings.TrimSpace(r.PaymentType))),
		Currency:    pricing.BaseCurrency,
		TotalAmount: nonNegative(r.TotalAmount),
		Status:      normalizeStatus(r.Status),
		CreatedAt:   r.CreatedAt.Time,
	}
	if c, err := pricing.ParseCurrency(r.Currency); err == nil {
		o.Currency = c
	}
	for _, it := range r.Items {
		o.Items = append(o.Items, itemFromRecord(it))
	}
	if !r.CompletionDate.IsZero() {
		t := r.CompletionDate.Time
		o.CompletionDate = &t
	}
	if in := r.Instalment; in != nil {
		// Older orders were stored without a payment count.
		made := in.PaymentsMade
		if made == 0 && in.Paid.IsPositive() {
			made = 1
		}
		o.applyPlan(instalment.Restore(o.TotalAmount, in.MonthlyAmount, in.Paid, in.Months, made))
	}
	return o
}

func FromRecords(records []backend.OrderRecord) []*Order {
	out := make([]*Order, 0, len(records))
	for _, r := range records {
		out = append(out, FromRecord(r))
	}
	return out
}

func itemFromRecord(r backend.OrderItemRecord) Item {
	model := firstNonEmpty(r.Model, r.ProductName, r.Name)
	id := firstNonEmpty(r.ID.String(), r.MongoID.String())
	if id == "" {
		id = firstNonEmpty(r.Brand, "unknown") + "-" + firstNonEmpty(model, "item")
	}
	qty := r.Quantity
	if qty < 1 {
		qty = 1
	}
	rating := r.Rating
	if rating < 0 || rating > 5 {
		rating = 0
	}
	return Item{
		ID:       id,
		Brand:    firstNonEmpty(r.Brand, "Unknown Brand"),
		Model:    firstNonEmpty(model, "Unknown Model"),
		Price:    nonNegative(r.Price),
		Image:    firstNonEmpty(r.ImageURL, r.Image),
		Quantity: qty,
		Rating:   rating,
	}
}

// ItemsFromCart freezes cart lines into order items.
func ItemsFromCart(items []cart.Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		out = append(out, Item{
			ID:       it.ID,
			Brand:    it.Brand,
			Model:    it.Model,
			Price:    it.Price,
			Image:    it.Image,
			Quantity: it.Quantity,
		})
	}
	return out
}

// ToPayload renders a draft as the POST /orders body.
func ToPayload(d Draft) backend.OrderPayload {
	p := backend.OrderPayload{
		Items:       make([]backend.OrderItemRecord, 0, len(d.Items)),
		Delivery:    string(d.Delivery),
		PaymentType: string(d.PaymentType),
		Currency:    string(d.Currency),
		TotalAmount: d.TotalAmount,
	}
	for _, it := range d.Items {
		p.Items = append(p.Items, backend.OrderItemRecord{
			ID:       backend.FlexString(it.ID),
			Brand:    it.Brand,
			Model:    it.Model,
			Price:    it.Price,
			Image:    it.Image,
			Quantity: it.Quantity,
		})
	}
	if d.Instalment != nil {
		p.Instalment = &backend.InstalmentRecord{
			Months:        d.Instalment.Months,
			MonthlyAmount: d.Instalment.MonthlyAmount,
			Paid:          d.Instalment.Paid,
			PaymentsMade:  d.Instalment.PaymentsMade,
		}
	}
	return p
}

func normalizeStatus(s string) OrderStatus {
	switch st := OrderStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusCompleted, StatusDelivered:
		return st
	}
	return StatusPending
}

func normalizeDelivery(s string) pricing.Delivery {
	if d, err := pricing.ParseDelivery(s); err == nil {
		return d
	}
	return pricing.Pickup
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
