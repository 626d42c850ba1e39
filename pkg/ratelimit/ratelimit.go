// Package ratelimit throttles requests per key with token buckets.
//
// Limiters are kept in a bounded LRU, so idle keys are forgotten without a
// cleanup goroutine.
//
//	limiter := ratelimit.New(ratelimit.Config{Rate: 10.0 / 60.0, Burst: 10})
//	r.With(limiter.Middleware(ratelimit.ByClientIP)).Post("/auth/login", h.login)
package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmitrymomot/summarist/pkg/cache"
	"github.com/dmitrymomot/summarist/pkg/clientip"
)

// Config sets the refill rate (tokens per second), the bucket size and how
// many keys are tracked at once.
type Config struct {
	Rate     rate.Limit `env:"AUTH_RATE_LIMIT" envDefault:"0.1666"`
	Burst    int        `env:"AUTH_RATE_BURST" envDefault:"10"`
	Capacity int        `env:"AUTH_RATE_KEYS" envDefault:"10000"`
}

// Limiter hands out one token bucket per key.
type Limiter struct {
	cfg      Config
	limiters *cache.LRUCache[string, *rate.Limiter]
}

// New creates a limiter from cfg.
func New(cfg Config) *Limiter {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = 10_000
	}
	return &Limiter{
		cfg:      cfg,
		limiters: cache.NewLRUCache[string, *rate.Limiter](cfg.Capacity),
	}
}

// Allow takes a token from key's bucket and reports whether one was available.
func (l *Limiter) Allow(key string) bool {
	lim, _ := l.limiters.GetOrCreate(key, func() *rate.Limiter {
		return rate.NewLimiter(l.cfg.Rate, l.cfg.Burst)
	})
	return lim.Allow()
}

// RetryAfter estimates how long until one token is refilled.
func (l *Limiter) RetryAfter() time.Duration {
	if l.cfg.Rate <= 0 || l.cfg.Rate == rate.Inf {
		return time.Second
	}
	secs := math.Ceil(1 / float64(l.cfg.Rate))
	return time.Duration(max(secs, 1)) * time.Second
}

// KeyFunc derives the bucket key of a request.
type KeyFunc func(r *http.Request) string

// ByClientIP keys requests by client address.
func ByClientIP(r *http.Request) string {
	if ip := clientip.FromContext(r.Context()); ip != "" {
		return ip
	}
	return clientip.FromRequest(r)
}

// Middleware rejects requests over the limit with onLimit, or with a bare 429
// when onLimit is nil. Retry-After is always set.
func (l *Limiter) Middleware(key KeyFunc, onLimit ...http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.Allow(key(r)) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Retry-After", strconv.Itoa(int(l.RetryAfter()/time.Second)))
			if len(onLimit) > 0 && onLimit[0] != nil {
				onLimit[0](w, r)
				return
			}
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		})
	}
}
