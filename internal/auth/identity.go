package auth

import (
	"context"
	"time"

	"nextgen-storefront/internal/storage"
)

var timeNow = time.Now

// Identity is the logged-in caller. A nil Identity is a guest.
type Identity struct {
	UserID   string
	Email    string
	Username string
	Token    string
}

type ctxKey string

const (
	identityKey ctxKey = "identity"
	guestKey    ctxKey = "guest_session"
)

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok && id != nil
}

// WithGuest records the anonymous browser session of a guest request.
func WithGuest(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, guestKey, sessionID)
}

func GuestFrom(ctx context.Context) string {
	session, _ := ctx.Value(guestKey).(string)
	return session
}

// OwnerFrom returns the owner of the caller's cart and preferences: the
// user id, the guest session, or "" when the request has neither.
func OwnerFrom(ctx context.Context) string {
	if id, ok := IdentityFrom(ctx); ok {
		return id.UserID
	}
	if session := GuestFrom(ctx); session != "" {
		return storage.GuestOwner(session)
	}
	return ""
}

// Label is the identity as it appears in logs.
func Label(ctx context.Context) string {
	if id, ok := IdentityFrom(ctx); ok {
		return "user:" + id.UserID
	}
	return "guest"
}
