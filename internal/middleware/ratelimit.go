package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	apierrors "licensegate/internal/errors"
)

// visitor is one client's limiter plus its last activity for pruning.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter limits requests per client IP. Each IP gets its own
// token bucket; stale buckets are pruned so a scan of the key space
// does not grow the map forever.
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
	ttl      time.Duration
	logger   *slog.Logger
}

// NewIPRateLimiter creates a per-IP limiter. Buckets idle longer than
// ttl are dropped by the prune loop.
func NewIPRateLimiter(rps float64, burst int, ttl time.Duration, logger *slog.Logger) *IPRateLimiter {
	return &IPRateLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		ttl:      ttl,
		logger:   logger.With(slog.String("component", "rate_limiter")),
	}
}

// Start runs the prune loop until the stop channel closes.
func (rl *IPRateLimiter) Start(stop <-chan struct{}) {
	ticker := time.NewTicker(rl.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			rl.prune()
		}
	}
}

func (rl *IPRateLimiter) prune() {
	cutoff := time.Now().Add(-rl.ttl)
	rl.mu.Lock()
	for ip, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, ip)
		}
	}
	rl.mu.Unlock()
}

func (rl *IPRateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	rl.mu.Unlock()
	return v.limiter.Allow()
}

// Handler rejects over-limit requests with 429 and a Retry-After hint.
func (rl *IPRateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.allow(ip) {
			rl.logger.WarnContext(r.Context(), "rate limit exceeded",
				"remote_addr", ip,
				"path", r.URL.Path,
			)
			w.Header().Set("Retry-After", "60")
			apierrors.WriteError(w, apierrors.ErrRateLimitExceeded)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port; RealIP has already rewritten RemoteAddr
// from forwarding headers when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
