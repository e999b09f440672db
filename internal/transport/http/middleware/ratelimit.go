package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"hrms/internal/transport/http/api"
)

const limiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type keyedLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	visitors map[string]*visitor
	lastGC   time.Time
}

func newKeyedLimiter(perMinute int) *keyedLimiter {
	return &keyedLimiter{
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		visitors: map[string]*visitor{},
	}
}

func (k *keyedLimiter) get(key string, now time.Time) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	if now.Sub(k.lastGC) > limiterIdleTTL {
		for id, v := range k.visitors {
			if now.Sub(v.lastSeen) > limiterIdleTTL {
				delete(k.visitors, id)
			}
		}
		k.lastGC = now
	}

	v, ok := k.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// RateLimit allows perMinute requests per authenticated user, or per client IP
// for anonymous requests, with bursts up to the same amount.
func RateLimit(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiters := newKeyedLimiter(perMinute)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := actorOrIPKey(r)
			limiter := limiters.get(key, time.Now())

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(perMinute))
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "60")
				slog.Warn("rate limit exceeded", "key", key, "path", r.URL.Path, "method", r.Method)
				api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(int(limiter.Tokens()), 0)))
			next.ServeHTTP(w, r)
		})
	}
}

func actorOrIPKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.UserID
	}
	return "ip:" + ClientIP(r)
}
