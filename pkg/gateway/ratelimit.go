package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/andrew/ai-gateway/pkg/cache"
)

// RateLimiter enforces per-(client, route) request-count limits over
// one-minute windows, with a stricter limit on generation-triggering routes.
// Counters live in the shared cache so enforcement holds across instances.
type RateLimiter struct {
	cache         cache.Cache
	perMinute     int64
	generateLimit int64
	now           func() time.Time
}

// NewRateLimiter returns a limiter with the general and generation-route
// per-minute limits.
func NewRateLimiter(c cache.Cache, perMinute, generateLimit int64) *RateLimiter {
	return &RateLimiter{cache: c, perMinute: perMinute, generateLimit: generateLimit, now: time.Now}
}

// SetClock overrides the limiter's notion of time for tests.
func (l *RateLimiter) SetClock(now func() time.Time) { l.now = now }

// Allow counts one request against the (client, route) window and reports
// whether it stays within the limit.
func (l *RateLimiter) Allow(ctx context.Context, clientID, route string) (bool, error) {
	limit := l.perMinute
	if route == routeGenerate {
		limit = l.generateLimit
	}
	key := fmt.Sprintf("ratelimit:%s:%s:%s", clientID, route, l.now().UTC().Format("200601021504"))
	count, err := l.cache.IncrBy(ctx, key, 1, 2*time.Minute)
	if err != nil {
		return false, err
	}
	return count <= limit, nil
}

// withRateLimit rejects requests exceeding the window limit before any
// handler logic runs. Limiter errors fail open: a cache outage must not take
// the gateway down with it.
func withRateLimit(next http.Handler, limiter *RateLimiter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			writeError(w, Errorf(CodeUnauthenticated, "missing identity"))
			return
		}
		allowed, err := limiter.Allow(r.Context(), identity.ClientID, r.URL.Path)
		if err == nil && !allowed {
			writeError(w, Errorf(CodeRateLimited, "rate limit exceeded"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
