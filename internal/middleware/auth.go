package middleware

import (
	"net/http"
	"time"

	"nextgen-storefront/internal/auth"
	"nextgen-storefront/internal/backend"
	"nextgen-storefront/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const guestSessionTTL = 30 * 24 * time.Hour

// Auth resolves the caller's identity from the access token. Requests
// without a usable token continue as guests.
func Auth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := auth.ExtractAccessToken(r)
			if token == "" {
				next.ServeHTTP(w, r.WithContext(logger.WithIdentity(ctx, "guest")))
				return
			}

			id, err := auth.ParseToken(token, secret)
			if err != nil {
				logger.FromCtx(ctx).Debug("ignoring unusable token", zap.Error(err))
				next.ServeHTTP(w, r.WithContext(logger.WithIdentity(ctx, "guest")))
				return
			}

			ctx = auth.WithIdentity(ctx, id)
			ctx = backend.WithToken(ctx, id.Token)
			ctx = logger.WithIdentity(ctx, auth.Label(ctx))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GuestSession gives every anonymous caller its own session so guests never
// share a cart. A session arrives in the guest_session cookie or the
// X-Device-ID header; callers with neither are issued a new cookie.
// Runs after Auth.
func GuestSession(secureCookies bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := auth.IdentityFrom(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}

			session := auth.ExtractGuestSession(r)
			if session == "" {
				session = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     auth.GuestCookieName,
					Value:    session,
					Path:     "/",
					MaxAge:   int(guestSessionTTL.Seconds()),
					HttpOnly: true,
					Secure:   secureCookies,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(auth.WithGuest(r.Context(), session)))
		})
	}
}

// RequireUser rejects guests with 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.IdentityFrom(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"login required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
