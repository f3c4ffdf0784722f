package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"nextgen-storefront/internal/storage"
)

// Repository persists whole carts, one slot per owner. Slot names come from
// storage.CartKey.
type Repository interface {
	// Load always returns a usable (possibly empty) cart. A non-nil error
	// explains why the stored cart could not be used.
	Load(ctx context.Context, owner string) ([]Item, error)
	Save(ctx context.Context, owner string, items []Item) error
	Clear(ctx context.Context, owner string) error
}

type repository struct {
	store storage.Store
}

func NewRepository(store storage.Store) Repository {
	return &repository{store: store}
}

func (r *repository) Load(ctx context.Context, owner string) ([]Item, error) {
	data, err := r.store.Get(ctx, storage.CartKey(owner))
	if errors.Is(err, storage.ErrNotFound) {
		return []Item{}, nil
	}
	if err != nil {
		return []Item{}, fmt.Errorf("failed to read cart: %w", err)
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return []Item{}, fmt.Errorf("%w: %w", ErrMalformedCart, err)
	}
	return sanitize(items), nil
}

func (r *repository) Save(ctx context.Context, owner string, items []Item) error {
	if items == nil {
		items = []Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := r.store.Set(ctx, storage.CartKey(owner), data); err != nil {
		return fmt.Errorf("failed to write cart: %w", err)
	}
	return nil
}

func (r *repository) Clear(ctx context.Context, owner string) error {
	if err := r.store.Delete(ctx, storage.CartKey(owner)); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
