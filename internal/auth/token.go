package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const CookieName = "access_token"

var ErrInvalidToken = errors.New("invalid access token")

// ExtractAccessToken reads the access_token cookie, falling back to the
// Authorization header.
func ExtractAccessToken(r *http.Request) string {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// ParseToken reads the identity out of a backend-issued JWT. With a secret
// the signature is checked; without one the claims are read as is and the
// backend stays the judge of the token on every call made with it.
func ParseToken(tokenStr string, secret []byte) (*Identity, error) {
	claims := jwt.MapClaims{}

	if len(secret) > 0 {
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	} else {
		if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && exp.Before(timeNow()) {
			return nil, fmt.Errorf("%w: token expired", ErrInvalidToken)
		}
	}

	id := claimString(claims, "id", "_id", "user_id", "userId", "sub")
	if id == "" {
		return nil, fmt.Errorf("%w: no user id claim", ErrInvalidToken)
	}
	return &Identity{
		UserID:   id,
		Email:    claimString(claims, "email"),
		Username: claimString(claims, "username"),
		Token:    tokenStr,
	}, nil
}

func claimString(claims jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		switch v := claims[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}
