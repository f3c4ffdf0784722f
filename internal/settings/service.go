// Package settings keeps UI preferences per user or guest session.
package settings

import (
	"context"
	"encoding/json"
	"errors"

	"nextgen-storefront/internal/logger"
	"nextgen-storefront/internal/storage"

	"go.uber.org/zap"
)

type Service interface {
	// DarkMode is false when unset or unreadable.
	DarkMode(ctx context.Context, owner string) bool
	SetDarkMode(ctx context.Context, owner string, on bool) error
}

type service struct {
	store storage.Store
}

func NewService(store storage.Store) Service {
	return &service{store: store}
}

func (s *service) DarkMode(ctx context.Context, owner string) bool {
	raw, err := s.store.Get(ctx, storage.DarkModeKey(owner))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.FromCtx(ctx).Warn("dark mode preference unreadable", zap.Error(err))
		}
		return false
	}

	var on bool
	if err := json.Unmarshal(raw, &on); err != nil {
		logger.FromCtx(ctx).Warn("dark mode preference malformed", zap.ByteString("value", raw))
		return false
	}
	return on
}

func (s *service) SetDarkMode(ctx context.Context, owner string, on bool) error {
	raw, _ := json.Marshal(on)
	if err := s.store.Set(ctx, storage.DarkModeKey(owner), raw); err != nil {
		logger.FromCtx(ctx).Error("failed to save dark mode preference", zap.Error(err))
		return err
	}
	return nil
}
