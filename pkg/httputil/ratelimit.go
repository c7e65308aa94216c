package httputil

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// maxTrackedKeys bounds how many per-client buckets are kept
const maxTrackedKeys = 4096

// RateLimiter keeps a token bucket per key. Buckets idle for longer than
// the refill window are evicted.
type RateLimiter struct {
	perMinute int
	burst     int

	mu      sync.Mutex
	buckets *expirable.LRU[string, *rate.Limiter]
}

// NewRateLimiter allows perMinute requests per key with bursts of burst.
// perMinute <= 0 disables limiting.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		perMinute: perMinute,
		burst:     burst,
		buckets:   expirable.NewLRU[string, *rate.Limiter](maxTrackedKeys, nil, 2*time.Minute),
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	lim, ok := rl.buckets.Get(key)
	if !ok {
		lim = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rl.perMinute)), rl.burst)
		rl.buckets.Add(key, lim)
	}
	return lim
}

// Allow reports whether a request for key may proceed now
func (rl *RateLimiter) Allow(key string) bool {
	if rl == nil || rl.perMinute <= 0 {
		return true
	}
	return rl.limiter(key).Allow()
}

// retryAfter is how long until key gets its next token
func (rl *RateLimiter) retryAfter(key string) time.Duration {
	lim := rl.limiter(key)
	tokens := lim.Tokens()
	if tokens >= 1 {
		return 0
	}
	return time.Duration((1 - tokens) / float64(lim.Limit()) * float64(time.Second))
}

// Middleware rejects requests over the limit with 429, keyed by client IP
func (rl *RateLimiter) Middleware(message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientIP(r)
			if rl.Allow(key) {
				next.ServeHTTP(w, r)
				return
			}

			seconds := int(math.Ceil(rl.retryAfter(key).Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.perMinute))
			w.Header().Set("X-RateLimit-Remaining", "0")
			WriteErrorMessage(w, http.StatusTooManyRequests, message)
		})
	}
}

// ClientIP returns the first X-Forwarded-For hop, then X-Real-IP, then the
// remote host
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
