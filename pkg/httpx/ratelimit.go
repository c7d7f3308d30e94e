package httpx

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig defines the rate limiting parameters for an endpoint.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed in the time window.
	RequestsPerWindow int
	// Window is the time window for rate limiting.
	Window time.Duration
	// Burst allows temporary bursts above the steady rate.
	Burst int
}

// Rate limit profiles for the bridge endpoints.
var (
	// StrictLimit for token issuance/verification and login endpoints.
	StrictLimit = RateLimitConfig{
		RequestsPerWindow: 10,
		Window:            time.Minute,
		Burst:             10,
	}

	// LenientLimit for health and landing endpoints.
	LenientLimit = RateLimitConfig{
		RequestsPerWindow: 100,
		Window:            time.Minute,
		Burst:             100,
	}
)

// keyedLimiter holds one token bucket per key, pruning idle buckets on the
// request path so ephemeral keys cannot accumulate without bound.
type keyedLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	cfg       RateLimitConfig
	lastPrune time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newKeyedLimiter(cfg RateLimitConfig) *keyedLimiter {
	return &keyedLimiter{
		limiters:  make(map[string]*limiterEntry),
		cfg:       cfg,
		lastPrune: time.Now(),
	}
}

func (kl *keyedLimiter) allow(key string) bool {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	kl.maybePrune()

	entry, ok := kl.limiters[key]
	if !ok {
		limit := rate.Every(kl.cfg.Window / time.Duration(kl.cfg.RequestsPerWindow))
		entry = &limiterEntry{limiter: rate.NewLimiter(limit, kl.cfg.Burst)}
		kl.limiters[key] = entry
	}
	entry.lastSeen = time.Now()

	return entry.limiter.Allow()
}

// maybePrune drops buckets idle for two full windows. Time-gated to at most
// once per window; caller holds mu.
func (kl *keyedLimiter) maybePrune() {
	now := time.Now()
	if now.Sub(kl.lastPrune) < kl.cfg.Window {
		return
	}
	kl.lastPrune = now

	cutoff := now.Add(-2 * kl.cfg.Window)
	for key, entry := range kl.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(kl.limiters, key)
		}
	}
}

// RateLimitByIP limits requests per client IP with the given profile.
// Limited requests receive 429 with a Retry-After hint.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	kl := newKeyedLimiter(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !kl.allow(ip) {
				w.Header().Set("Retry-After", cfg.Window.String())
				WriteJSON(w, http.StatusTooManyRequests, map[string]any{
					"success": false,
					"message": "rate limit exceeded",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
