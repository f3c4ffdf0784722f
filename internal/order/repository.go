package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nextgen-storefront/internal/backend"
	"nextgen-storefront/internal/instalment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository reads and writes orders through the storefront backend. The
// caller's token travels in ctx.
type Repository interface {
	List(ctx context.Context) ([]*Order, error)
	// Create returns the stored order. When the backend only acknowledges,
	// the order is built from the draft under a fresh id.
	Create(ctx context.Context, d Draft) (*Order, error)
	// Receive and CompleteInstalment return nil when the backend answers
	// without an order.
	Receive(ctx context.Context, id string) (*Order, error)
	CompleteInstalment(ctx context.Context, id string, conf instalment.Confirmation, amount decimal.Decimal) (*Order, error)
	Rate(ctx context.Context, id, itemID string, rating int) error
}

type repository struct {
	client backend.Client
	now    func() time.Time
}

func NewRepository(client backend.Client) Repository {
	return &repository{client: client, now: time.Now}
}

func (r *repository) List(ctx context.Context) ([]*Order, error) {
	records, err := r.client.ListOrders(ctx)
	if err != nil {
		return nil, mapBackendError(err)
	}
	return FromRecords(records), nil
}

func (r *repository) Create(ctx context.Context, d Draft) (*Order, error) {
	rec, err := r.client.CreateOrder(ctx, ToPayload(d))
	if err != nil {
		return nil, mapBackendError(err)
	}
	if rec != nil {
		o := FromRecord(*rec)
		fillFromDraft(o, d)
		if o.CreatedAt.IsZero() {
			o.CreatedAt = r.now().UTC()
		}
		return o, nil
	}

	return &Order{
		ID:          uuid.NewString(),
		Items:       append([]Item(nil), d.Items...),
		Delivery:    d.Delivery,
		PaymentType: d.PaymentType,
		Currency:    d.Currency,
		TotalAmount: d.TotalAmount,
		Instalment:  copyInstalment(d.Instalment),
		Status:      StatusPending,
		CreatedAt:   r.now().UTC(),
	}, nil
}

// fillFromDraft restores what a terse backend answer left out.
func fillFromDraft(o *Order, d Draft) {
	if len(o.Items) == 0 {
		o.Items = append([]Item(nil), d.Items...)
	}
	if o.PaymentType == "" {
		o.PaymentType = d.PaymentType
	}
	if o.TotalAmount.IsZero() {
		o.TotalAmount = d.TotalAmount
	}
	if o.Instalment == nil {
		o.Instalment = copyInstalment(d.Instalment)
	}
	if d.Currency != "" {
		o.Currency = d.Currency
	}
	o.Delivery = d.Delivery
}

func copyInstalment(in *Instalment) *Instalment {
	if in == nil {
		return nil
	}
	cp := *in
	return &cp
}

func (r *repository) Receive(ctx context.Context, id string) (*Order, error) {
	rec, err := r.client.ReceiveOrder(ctx, id)
	if err != nil {
		return nil, mapBackendError(err)
	}
	if rec == nil {
		return nil, nil
	}
	return FromRecord(*rec), nil
}

func (r *repository) CompleteInstalment(ctx context.Context, id string, conf instalment.Confirmation, amount decimal.Decimal) (*Order, error) {
	rec, err := r.client.CompleteInstalment(ctx, id, backend.InstalmentPayment{
		Email:            conf.PayerEmail,
		AccountReference: conf.AccountReference,
		Amount:           amount,
	})
	if err != nil {
		return nil, mapBackendError(err)
	}
	if rec == nil {
		return nil, nil
	}
	return FromRecord(*rec), nil
}

func (r *repository) Rate(ctx context.Context, id, itemID string, rating int) error {
	if err := r.client.RateItem(ctx, id, itemID, rating); err != nil {
		return mapBackendError(err)
	}
	return nil
}

func mapBackendError(err error) error {
	switch {
	case errors.Is(err, backend.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrOrderNotFound, err)
	case errors.Is(err, backend.ErrUnauthorized):
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return err
}
