package order

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"nextgen-storefront/internal/event"
	"nextgen-storefront/internal/instalment"
	"nextgen-storefront/internal/logger"
	"nextgen-storefront/internal/metrics"
	"nextgen-storefront/internal/pricing"

	"go.uber.org/zap"
)

const (
	msgInstalmentPaid = "Instalment payment successful!"
	msgFullyPaid      = "Order fully paid! It is ready for pickup."
	msgFullyPaidDeliv = "Order fully paid! It is on its way."
)

type Service interface {
	List(ctx context.Context) ([]*Order, error)
	Get(ctx context.Context, id string) (*Order, error)
	Place(ctx context.Context, userID string, d Draft) (*Order, error)
	MarkReceived(ctx context.Context, userID, id string) (*Order, error)
	// PayInstalment charges the next instalment. Only one payment per
	// order may be in flight; a concurrent call gets ErrPaymentInProgress.
	PayInstalment(ctx context.Context, userID, id string, conf instalment.Confirmation) (*InstalmentResult, error)
	Rate(ctx context.Context, userID, id, itemID string, stars int) (*Order, error)
	// Arrived records that an order's countdown finished and the customer
	// was told.
	Arrived(ctx context.Context, userID, id string)
}

type service struct {
	repo      Repository
	publisher event.Publisher
	counters  *metrics.Counters
	now       func() time.Time

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewService(repo Repository, publisher event.Publisher, counters *metrics.Counters) Service {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	if counters == nil {
		counters = metrics.NewCounters()
	}
	return &service{
		repo:      repo,
		publisher: publisher,
		counters:  counters,
		now:       time.Now,
		inflight:  make(map[string]struct{}),
	}
}

func (s *service) List(ctx context.Context) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "List"),
	)

	orders, err := s.repo.List(ctx)
	if err != nil {
		log.Warn("failed to list orders", zap.Error(err))
		return nil, err
	}
	log.Debug("orders listed", zap.Int("count", len(orders)))
	return orders, nil
}

func (s *service) Get(ctx context.Context, id string) (*Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrOrderNotFound
	}
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (s *service) Place(ctx context.Context, userID string, d Draft) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Place"),
		zap.Int("item_count", len(d.Items)),
		zap.String("payment_type", string(d.PaymentType)),
	)

	if err := validateDraft(d); err != nil {
		log.Warn("rejected order draft", zap.Error(err))
		return nil, err
	}

	o, err := s.repo.Create(ctx, d)
	if err != nil {
		log.Error("failed to create order", zap.Error(err))
		return nil, err
	}

	s.counters.Inc(metrics.OrdersPlaced)
	s.publish(ctx, event.New(event.OrderPlaced, o.ID, userID, map[string]any{
		"total_amount": o.TotalAmount,
		"currency":     o.Currency,
		"payment_type": o.PaymentType,
		"delivery":     o.Delivery,
	}))
	log.Info("order placed", zap.String("order_id", o.ID))
	return o, nil
}

func validateDraft(d Draft) error {
	if len(d.Items) == 0 || d.TotalAmount.IsNegative() {
		return ErrInvalidDraft
	}
	switch d.PaymentType {
	case pricing.Instalment:
		if d.Instalment == nil {
			return ErrInvalidDraft
		}
	case pricing.Card, pricing.EFT:
	default:
		return ErrInvalidDraft
	}
	return nil
}

func (s *service) MarkReceived(ctx context.Context, userID, id string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "MarkReceived"),
		zap.String("order_id", id),
	)

	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.IsCompleted() {
		return nil, ErrAlreadyCompleted
	}

	updated, err := s.repo.Receive(ctx, id)
	if err != nil {
		log.Warn("failed to mark order received", zap.Error(err))
		return nil, err
	}
	if updated == nil {
		updated = o
	}
	if !updated.IsCompleted() {
		updated.Status = StatusCompleted
	}
	if updated.CompletionDate == nil {
		t := s.now().UTC()
		updated.CompletionDate = &t
	}

	s.publish(ctx, event.New(event.OrderReceived, id, userID, nil))
	log.Info("order received")
	return updated, nil
}

func (s *service) acquire(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[id]; busy {
		return false
	}
	s.inflight[id] = struct{}{}
	return true
}

func (s *service) release(id string) {
	s.mu.Lock()
	delete(s.inflight, id)
	s.mu.Unlock()
}

func (s *service) PayInstalment(ctx context.Context, userID, id string, conf instalment.Confirmation) (*InstalmentResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PayInstalment"),
		zap.String("order_id", id),
	)

	if !s.acquire(id) {
		log.Warn("duplicate instalment payment rejected")
		return nil, ErrPaymentInProgress
	}
	defer s.release(id)

	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	plan := o.Plan()
	if plan == nil {
		return nil, ErrNotInstalment
	}

	pay, err := plan.Preview(conf)
	if err != nil {
		log.Info("instalment payment refused", zap.Error(err))
		return nil, err
	}

	updated, err := s.repo.CompleteInstalment(ctx, id, conf, pay.Amount)
	if err != nil {
		log.Warn("instalment payment failed", zap.Error(err))
		return nil, err
	}

	// The backend's figures win when it sends them; otherwise apply the
	// payment we just made.
	if updated == nil || updated.Plan() == nil {
		if _, err := plan.PayNext(conf); err != nil {
			return nil, err
		}
		o.applyPlan(plan)
		updated = o
	}

	after := updated.Plan()
	result := &InstalmentResult{
		Order:   updated,
		Payment: pay,
		State:   after.State(),
		Message: msgInstalmentPaid,
	}
	result.Payment.JustCompleted = after.State() == instalment.Completed

	s.counters.Inc(metrics.InstalmentPayments)
	s.publish(ctx, event.New(event.OrderInstalmentPaid, id, userID, map[string]any{
		"amount":        pay.Amount,
		"paid":          after.Paid,
		"payments_made": after.PaymentsMade,
	}))

	if result.Payment.JustCompleted {
		result.Message = msgFullyPaid
		if updated.Delivery == pricing.HomeDelivery {
			result.Message = msgFullyPaidDeliv
		}
		s.publish(ctx, event.New(event.OrderFullyPaid, id, userID, map[string]any{
			"total_amount": updated.TotalAmount,
		}))
		log.Info("order fully paid")
	}

	log.Info("instalment paid",
		zap.String("amount", pay.Amount.StringFixed(2)),
		zap.Int("payments_made", after.PaymentsMade),
	)
	return result, nil
}

func (s *service) Rate(ctx context.Context, userID, id, itemID string, stars int) (*Order, error) {
	if stars < 1 || stars > 5 {
		return nil, ErrInvalidRating
	}

	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.IsCompleted() {
		return nil, ErrNotReceived
	}
	idx := -1
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrItemNotFound
	}

	if err := s.repo.Rate(ctx, id, itemID, stars); err != nil {
		logger.FromCtx(ctx).Warn("failed to rate item",
			zap.String("order_id", id),
			zap.String("item_id", itemID),
			zap.Error(err),
		)
		return nil, err
	}

	o.Items[idx].Rating = stars
	s.publish(ctx, event.New(event.OrderRated, id, userID, map[string]any{
		"item_id": itemID,
		"rating":  stars,
	}))
	return o, nil
}

func (s *service) Arrived(ctx context.Context, userID, id string) {
	s.publish(ctx, event.New(event.OrderArrived, id, userID, nil))
}

// publish never fails the caller; the order change already happened.
func (s *service) publish(ctx context.Context, ev event.Event) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		logger.FromCtx(ctx).Warn("failed to publish order event",
			zap.String("type", ev.Type),
			zap.String("order_id", ev.OrderID),
			zap.Error(err),
		)
	}
}

// IsConflict reports errors caused by the order's current state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyCompleted) ||
		errors.Is(err, ErrPaymentInProgress) ||
		errors.Is(err, ErrNotReceived) ||
		errors.Is(err, instalment.ErrAlreadyPaid)
}
