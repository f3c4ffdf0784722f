package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"nextgen-storefront/internal/event"
	"nextgen-storefront/internal/logger"
	"nextgen-storefront/internal/metrics"
	"nextgen-storefront/internal/product"

	"go.uber.org/zap"
)

// Service defines the cart operations of one storefront process.
//
// Every mutating call returns the resulting items. When the returned error
// wraps ErrPersistFailed the mutation still happened in memory.
type Service interface {
	Items(ctx context.Context, owner string) []Item
	Count(ctx context.Context, owner string) int
	Add(ctx context.Context, owner string, p product.Product) ([]Item, error)
	Increase(ctx context.Context, owner, itemID string) ([]Item, error)
	Decrease(ctx context.Context, owner, itemID string, policy DecreasePolicy) ([]Item, error)
	Remove(ctx context.Context, owner, itemID string) ([]Item, error)
	Clear(ctx context.Context, owner string) error
	Subscribe(fn func(Changed)) (unsubscribe func())
}

// service reads the owner's slot on every call, so several processes can
// share one store. unsaved holds carts whose last write failed; those stay
// authoritative until a write for the owner succeeds.
type service struct {
	repo     Repository
	changes  *event.Subject[Changed]
	counters *metrics.Counters

	mu      sync.Mutex
	unsaved map[string][]Item
}

func NewService(repo Repository, counters *metrics.Counters) Service {
	if counters == nil {
		counters = metrics.NewCounters()
	}
	return &service{
		repo:     repo,
		changes:  event.NewSubject[Changed](),
		counters: counters,
		unsaved:  make(map[string][]Item),
	}
}

func normalizeOwner(owner string) string {
	return strings.TrimSpace(owner)
}

// loadLocked returns owner's cart: the unsaved copy if there is one,
// otherwise the stored slot. Callers hold s.mu.
func (s *service) loadLocked(ctx context.Context, owner string) []Item {
	if items, ok := s.unsaved[owner]; ok {
		return cloneItems(items)
	}

	items, err := s.repo.Load(ctx, owner)
	if err != nil {
		logger.FromCtx(ctx).Warn("stored cart unusable, starting empty",
			zap.String("owner", ownerLabel(owner)),
			zap.Error(err),
		)
	}
	return items
}

// settleLocked records the outcome of a write for owner. Callers hold s.mu.
func (s *service) settleLocked(owner string, items []Item, writeErr error) {
	if writeErr != nil {
		s.unsaved[owner] = cloneItems(items)
		return
	}
	delete(s.unsaved, owner)
}

func (s *service) Items(ctx context.Context, owner string) []Item {
	owner = normalizeOwner(owner)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx, owner)
}

// Count is the number of distinct lines, which is what the cart badge shows.
func (s *service) Count(ctx context.Context, owner string) int {
	return len(s.Items(ctx, owner))
}

func (s *service) Add(ctx context.Context, owner string, p product.Product) ([]Item, error) {
	item := FromProduct(p)
	if item.ID == "" || item.Price.IsNegative() {
		return nil, ErrInvalidItem
	}
	return s.mutate(ctx, owner, "add", func(items []Item) ([]Item, error) {
		return add(items, item), nil
	})
}

func (s *service) Increase(ctx context.Context, owner, itemID string) ([]Item, error) {
	return s.mutate(ctx, owner, "increase", func(items []Item) ([]Item, error) {
		return increase(items, itemID)
	})
}

func (s *service) Decrease(ctx context.Context, owner, itemID string, policy DecreasePolicy) ([]Item, error) {
	return s.mutate(ctx, owner, "decrease", func(items []Item) ([]Item, error) {
		return decrease(items, itemID, policy)
	})
}

func (s *service) Remove(ctx context.Context, owner, itemID string) ([]Item, error) {
	return s.mutate(ctx, owner, "remove", func(items []Item) ([]Item, error) {
		return remove(items, itemID)
	})
}

// Clear empties the cart and deletes its slot. Used after a purchase and on
// logout.
func (s *service) Clear(ctx context.Context, owner string) error {
	owner = normalizeOwner(owner)

	s.mu.Lock()
	err := s.repo.Clear(ctx, owner)
	s.settleLocked(owner, []Item{}, err)
	s.mu.Unlock()

	s.counters.Inc(metrics.CartMutations)
	s.changes.Publish(Changed{Owner: owner, Count: 0, Items: []Item{}})

	if err != nil {
		logger.FromCtx(ctx).Warn("cart cleared in memory only",
			zap.String("owner", ownerLabel(owner)),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}
	return nil
}

func (s *service) Subscribe(fn func(Changed)) func() {
	return s.changes.Subscribe(fn)
}

func (s *service) mutate(ctx context.Context, owner, op string, fn func([]Item) ([]Item, error)) ([]Item, error) {
	owner = normalizeOwner(owner)
	log := logger.FromCtx(ctx).With(
		zap.String("owner", ownerLabel(owner)),
		zap.String("op", op),
	)

	s.mu.Lock()
	next, err := fn(s.loadLocked(ctx, owner))
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	persistErr := s.repo.Save(ctx, owner, next)
	s.settleLocked(owner, next, persistErr)
	s.mu.Unlock()

	s.counters.Inc(metrics.CartMutations)
	s.changes.Publish(Changed{Owner: owner, Count: len(next), Items: cloneItems(next)})

	if persistErr != nil {
		log.Warn("cart changed in memory only", zap.Error(persistErr))
		return cloneItems(next), fmt.Errorf("%w: %w", ErrPersistFailed, persistErr)
	}
	log.Debug("cart updated", zap.Int("lines", len(next)))
	return cloneItems(next), nil
}

func ownerLabel(owner string) string {
	if owner == "" {
		return "guest"
	}
	return owner
}

// IsWarning reports whether err only signals a failed write.
func IsWarning(err error) bool {
	return errors.Is(err, ErrPersistFailed)
}
