package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"nextgen-storefront/internal/auth"
	"nextgen-storefront/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Tier is one rate policy.
type Tier struct {
	Name  string
	Limit rate.Limit
	Burst int
}

// Strict covers login, signup and anything that moves money. Frontend
// covers timer polling and cart clicks from a busy storefront tab.
var (
	TierStrict   = Tier{Name: "strict", Limit: rate.Limit(2), Burst: 5}
	TierGeneral  = Tier{Name: "general", Limit: rate.Limit(10), Burst: 20}
	TierFrontend = Tier{Name: "frontend", Limit: rate.Limit(20), Burst: 40}
	TierInternal = Tier{Name: "internal", Limit: rate.Limit(100), Burst: 200}
)

const (
	visitorTTL      = 3 * time.Minute
	cleanupInterval = time.Minute
)

// visitor holds the rate limiter and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type Limiter struct {
	internalKey string
	now         func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
}

// NewLimiter builds a per-caller limiter. Callers presenting internalKey
// in X-Service-Auth get the internal tier.
func NewLimiter(internalKey string) *Limiter {
	return &Limiter{
		internalKey: internalKey,
		now:         time.Now,
		visitors:    make(map[string]*visitor),
	}
}

// Run evicts idle visitors until ctx is done.
func (l *Limiter) Run(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *Limiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, v := range l.visitors {
		if l.now().Sub(v.lastSeen) > visitorTTL {
			delete(l.visitors, key)
		}
	}
}

func (l *Limiter) get(key string, tier Tier) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(tier.Limit, tier.Burst)}
		l.visitors[key] = v
	}
	v.lastSeen = l.now()
	return v.limiter
}

func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tier := l.tierFor(r)
		key := fmt.Sprintf("%s:%s", callerKey(r), tier.Name)

		if !l.get(key, tier).Allow() {
			logger.FromCtx(r.Context()).Warn("rate limited",
				zap.String("tier", tier.Name),
				zap.String("path", r.URL.Path),
			)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"too many requests"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *Limiter) tierFor(r *http.Request) Tier {
	if l.internalKey != "" && r.Header.Get("X-Service-Auth") == l.internalKey {
		return TierInternal
	}

	path := r.URL.Path
	switch {
	case path == "/login", path == "/signup", path == "/checkout":
		return TierStrict
	case strings.HasPrefix(path, "/orders/") && strings.HasSuffix(path, "/instalments"):
		return TierStrict
	case r.Method == http.MethodGet && path == "/orders":
		return TierFrontend
	case strings.HasPrefix(path, "/cart"), strings.HasPrefix(path, "/mini-cart"):
		return TierFrontend
	}
	return TierGeneral
}

// callerKey prefers the user, then a client-supplied device id, then the IP.
func callerKey(r *http.Request) string {
	if id, ok := auth.IdentityFrom(r.Context()); ok {
		return "user:" + id.UserID
	}
	if deviceID := r.Header.Get("X-Device-ID"); deviceID != "" {
		return "device:" + deviceID
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return "ip:" + ip
}
