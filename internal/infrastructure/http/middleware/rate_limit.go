package middleware

import (
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/mrops-br/product-catalog-api/internal/infrastructure/http/response"
	"golang.org/x/time/rate"
)

// idleLimiterTTL is how long a client's bucket survives without requests
const idleLimiterTTL = 10 * time.Minute

var errRateLimited = errors.New("rate limit exceeded")

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP. Buckets idle for longer
// than the TTL are swept on a later request.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	rate      rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter creates a limiter allowing r requests per second with the given burst
func NewRateLimiter(r float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters:  make(map[string]*clientLimiter),
		rate:      rate.Limit(r),
		burst:     burst,
		ttl:       idleLimiterTTL,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.ttl {
		rl.sweep(now)
	}

	cl, ok := rl.limiters[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

// sweep drops buckets not used within the TTL; callers hold mu
func (rl *RateLimiter) sweep(now time.Time) {
	for ip, cl := range rl.limiters {
		if now.Sub(cl.lastSeen) >= rl.ttl {
			delete(rl.limiters, ip)
		}
	}
	rl.lastSweep = now
}

// Middleware rejects requests over the limit with 429
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.getLimiter(clientIP(r)).Allow() {
			w.Header().Set("Retry-After", "1")
			response.Error(w, http.StatusTooManyRequests, errRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP expects RemoteAddr to have been rewritten by chi's RealIP middleware
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
