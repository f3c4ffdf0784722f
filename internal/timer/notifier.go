package timer

import (
	"context"

	"nextgen-storefront/internal/backend"
)

type Notifier interface {
	NotifyArrival(ctx context.Context, a Arrival) error
}

type NotifierFunc func(ctx context.Context, a Arrival) error

func (f NotifierFunc) NotifyArrival(ctx context.Context, a Arrival) error {
	return f(ctx, a)
}

// BackendNotifier asks the backend to email the customer.
func BackendNotifier(client backend.Client) Notifier {
	return NotifierFunc(func(ctx context.Context, a Arrival) error {
		return client.SendOrderEmail(ctx, backend.OrderEmail{
			UserEmail: a.UserEmail,
			OrderID:   a.OrderID,
			Delivery:  a.DeliveryMode(),
		})
	})
}
