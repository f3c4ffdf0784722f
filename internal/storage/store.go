// Package storage keeps the storefront's keyed slots: carts, timer start
// instants and preferences. Values are opaque bytes, usually JSON.
package storage

import (
	"context"
	"errors"
	"strings"
)

const (
	guestCartKey     = "cart_guest"
	darkModeKey      = "darkMode"
	guestOwnerPrefix = "guest:"
)

var (
	ErrNotFound   = errors.New("storage: key not found")
	ErrInvalidKey = errors.New("storage: invalid key")
)

// Store is a flat key-value namespace.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// GuestOwner names the owner of an anonymous browser session.
func GuestOwner(sessionID string) string {
	return guestOwnerPrefix + sessionID
}

// IsGuestOwner reports whether owner is anonymous: empty, or a guest session.
func IsGuestOwner(owner string) bool {
	owner = strings.TrimSpace(owner)
	return owner == "" || strings.HasPrefix(owner, guestOwnerPrefix)
}

// ownerSuffix maps an owner to the part of a key after the slot name.
func ownerSuffix(owner string) string {
	owner = strings.TrimSpace(owner)
	if session, ok := strings.CutPrefix(owner, guestOwnerPrefix); ok {
		return "guest_" + session
	}
	return owner
}

// CartKey returns the slot of owner: cart_<userId> for users,
// cart_guest_<session> for guest sessions, and cart_guest when there is
// no session at all.
func CartKey(owner string) string {
	if suffix := ownerSuffix(owner); suffix != "" {
		return "cart_" + suffix
	}
	return guestCartKey
}

// DarkModeKey returns the preference slot of owner, shaped like CartKey.
func DarkModeKey(owner string) string {
	if suffix := ownerSuffix(owner); suffix != "" {
		return darkModeKey + "_" + suffix
	}
	return darkModeKey
}

func TimerKey(orderID string) string {
	return "timer_start_" + orderID
}

func validKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	return nil
}
