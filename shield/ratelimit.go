package shield

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

type bucket struct {
	count   int
	resetAt time.Time
}

// RateLimiter provides per-IP fixed-window rate limiting. Limits apply per
// endpoint (method + path) so a burst of uploads cannot starve health checks.
// Counting is approximate under concurrency, which is acceptable for abuse
// protection.
type RateLimiter struct {
	max     int
	window  time.Duration
	buckets sync.Map
	exclude []string // path prefixes excluded from rate limiting
}

// NewRateLimiter creates a limiter allowing max requests per window from one
// IP to one endpoint. Call StartGC to reclaim expired buckets.
func NewRateLimiter(max int, window time.Duration, excludePrefixes ...string) *RateLimiter {
	return &RateLimiter{max: max, window: window, exclude: excludePrefixes}
}

// StartGC starts a background goroutine that drops expired buckets every
// 5 minutes. Stops when done is closed.
func (rl *RateLimiter) StartGC(done <-chan struct{}) {
	gcTick := time.NewTicker(5 * time.Minute)
	go func() {
		defer gcTick.Stop()
		for {
			select {
			case <-done:
				return
			case <-gcTick.C:
				rl.gc()
			}
		}
	}()
}

func (rl *RateLimiter) gc() {
	now := time.Now()
	rl.buckets.Range(func(key, value any) bool {
		b := value.(*bucket)
		if now.After(b.resetAt) {
			rl.buckets.Delete(key)
		}
		return true
	})
}

func (rl *RateLimiter) allow(ip, endpoint string) bool {
	key := ip + ":" + endpoint
	now := time.Now()

	val, loaded := rl.buckets.LoadOrStore(key, &bucket{
		count:   1,
		resetAt: now.Add(rl.window),
	})
	if !loaded {
		return true
	}

	b := val.(*bucket)
	if now.After(b.resetAt) {
		b.count = 1
		b.resetAt = now.Add(rl.window)
		return true
	}

	b.count++
	return b.count <= rl.max
}

// Middleware is the HTTP middleware that enforces rate limits. Blocked
// requests get a 429 JSON response with a Retry-After header.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, prefix := range rl.exclude {
			if strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}

		endpoint := r.Method + " " + r.URL.Path
		ip := ExtractIP(r)

		if rl.allow(ip, endpoint) {
			next.ServeHTTP(w, r)
			return
		}

		GetLogger(r.Context()).Warn("ratelimit: request blocked", "ip", ip, "endpoint", endpoint)

		w.Header().Set("Retry-After", strconv.Itoa(int(rl.window/time.Second)))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "rate limit exceeded",
		})
	})
}

// ExtractIP returns the client IP from X-Forwarded-For or RemoteAddr.
func ExtractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return strings.TrimSpace(xff[:i])
			}
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
