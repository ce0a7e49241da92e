package web

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/JonMunkholm/alumnicsv/internal/core"
)

// visitorTTL is how long an idle client keeps its token bucket.
const visitorTTL = 10 * time.Minute

// rateLimiter keeps one token bucket per client IP.
type rateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newRateLimiter allows perMinute sustained requests per IP with the given burst.
func newRateLimiter(perMinute, burst int) *rateLimiter {
	return &rateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    burst,
		now:      time.Now,
	}
}

// allow reports whether ip may make a request now.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// sweep drops idle visitors at most once per TTL. Caller holds mu.
func (rl *rateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < visitorTTL {
		return
	}
	rl.lastSweep = now
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(rl.visitors, ip)
		}
	}
}

// retryAfter is the whole number of seconds until one token refills.
func (rl *rateLimiter) retryAfter() string {
	if rl.limit <= 0 {
		return "60"
	}
	secs := int(1/float64(rl.limit)) + 1
	return strconv.Itoa(secs)
}

// middleware returns an HTTP middleware that rate limits by client IP.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			msg := core.MapError(errRateLimited)
			w.Header().Set("Retry-After", rl.retryAfter())
			writeJSON(w, http.StatusTooManyRequests, ErrorResponse{
				Error:  msg.Message,
				Code:   msg.Code,
				Action: msg.Action,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP returns the host part of RemoteAddr, which TrustedRealIP has
// already replaced with the forwarded address when the proxy is trusted.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
