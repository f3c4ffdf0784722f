package backend

import "context"

type ctxKey string

const tokenKey ctxKey = "access_token"

// WithToken attaches the caller's bearer token to outgoing backend calls.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

func TokenFrom(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey).(string)
	return t
}
