package http

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/light-bringer/storefront-filters/internal/app/filter/contracts"
	"github.com/light-bringer/storefront-filters/internal/pkg/clock"
)

// limiterIdleTTL is how long an idle client's bucket is kept.
const limiterIdleTTL = 5 * time.Minute

// RateLimiterOptions configures a RateLimiter.
type RateLimiterOptions struct {
	RequestsPerSecond float64
	Burst             int
	// Policy decides the status of a throttled response: 429 under
	// StatusMapped, 200 with an ok:false envelope under StatusAlwaysOK.
	Policy StatusPolicy
	// TrustForwardedFor keys clients by the first X-Forwarded-For address.
	// Enable it only behind a proxy that overwrites the header.
	TrustForwardedFor bool
	Clock             clock.Clock
}

// RateLimiter throttles requests per client IP with a token bucket.
type RateLimiter struct {
	mu             sync.Mutex
	clients        map[string]*clientLimiter
	limit          rate.Limit
	burst          int
	policy         StatusPolicy
	trustForwarded bool
	clk            clock.Clock
	lastSweep      time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a per-client limiter.
func NewRateLimiter(opts RateLimiterOptions) *RateLimiter {
	clk := opts.Clock
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &RateLimiter{
		clients:        make(map[string]*clientLimiter),
		limit:          rate.Limit(opts.RequestsPerSecond),
		burst:          opts.Burst,
		policy:         opts.Policy,
		trustForwarded: opts.TrustForwardedFor,
		clk:            clk,
		lastSweep:      clk.Now(),
	}
}

// Reserve consumes a token for key. When none is available it returns false
// with the time to wait before the next token.
func (rl *RateLimiter) Reserve(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clk.Now()
	rl.sweep(now)

	c, ok := rl.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = now

	if c.limiter.AllowN(now, 1) {
		return true, 0
	}
	r := c.limiter.ReserveN(now, 1)
	wait := r.DelayFrom(now)
	r.CancelAt(now)
	return false, wait
}

func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < limiterIdleTTL {
		return
	}
	for key, c := range rl.clients {
		if now.Sub(c.lastSeen) > limiterIdleTTL {
			delete(rl.clients, key)
		}
	}
	rl.lastSweep = now
}

// Middleware rejects over-limit clients with an ok:false envelope and a
// Retry-After header; the status follows the configured policy.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := rl.Reserve(clientIP(r, rl.trustForwarded))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			writeJSON(w, rl.policy.StatusFor(contracts.ClassThrottled), contracts.NewErrorResponse("too many requests", "", ""))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request, trustForwarded bool) string {
	if fwd := r.Header.Get("X-Forwarded-For"); trustForwarded && fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
