package middleware

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/markethub-essentials/backend/internal/errs"
	"github.com/markethub-essentials/backend/internal/metrics"
	"github.com/markethub-essentials/backend/internal/server"
)

const (
	// burstIdleTTL is how long an idle client's bucket is kept.
	burstIdleTTL    = 10 * time.Minute
	burstPruneEvery = time.Minute
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware is a per-IP token bucket in front of the form routes.
// It only absorbs bursts; the hourly submission quota is enforced by the
// service layer.
type RateLimitMiddleware struct {
	server *server.Server

	mu        sync.Mutex
	buckets   map[string]*bucket
	rate      rate.Limit
	burst     int
	lastPrune time.Time
	now       func() time.Time
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		server:  s,
		buckets: make(map[string]*bucket),
		rate:    rate.Limit(s.Config.RateLimit.BurstRPS),
		burst:   s.Config.RateLimit.Burst,
		now:     time.Now,
	}
}

// BurstGuard rejects a client with 429 once its bucket is empty.
func (r *RateLimitMiddleware) BurstGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !r.allow(c.RealIP()) {
				r.RecordRateLimitHit(c.Path())
				return errs.NewRateLimitError()
			}
			return next(c)
		}
	}
}

func (r *RateLimitMiddleware) allow(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if now.Sub(r.lastPrune) >= burstPruneEvery {
		for key, b := range r.buckets {
			if now.Sub(b.lastSeen) > burstIdleTTL {
				delete(r.buckets, key)
			}
		}
		r.lastPrune = now
	}

	b, ok := r.buckets[ip]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(r.rate, r.burst)}
		r.buckets[ip] = b
	}
	b.lastSeen = now

	return b.limiter.AllowN(now, 1)
}

// RecordRateLimitHit counts a burst rejection and, with APM on, records a
// RateLimitHit custom event.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	r.server.Metrics.RateLimited(metrics.LimiterBurst)

	if app := r.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("RateLimitHit", map[string]any{
			"endpoint": endpoint,
			"limiter":  metrics.LimiterBurst,
		})
	}
}
