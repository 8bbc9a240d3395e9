// Package ratelimit implements the fixed-window submission quota.
//
// A client identifier gets MaxRequests allowed calls per window. The first
// call (or the first call after the window has elapsed) opens a new window
// with a count of 1. Calls inside an open window are allowed and counted
// while the count is below the cap; once the cap is reached they are denied
// without counting further.
package ratelimit

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultMaxRequests   = 5
	DefaultWindow        = time.Hour
	DefaultSweepInterval = 2 * time.Hour
)

// Store keeps the per-identifier counters.
//
// Hit records one call for key and reports whether it is allowed under
// limit calls per window.
type Store interface {
	Hit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Limiter applies the quota on top of a Store.
type Limiter struct {
	store       Store
	maxRequests int
	window      time.Duration
	logger      *zerolog.Logger
}

// New creates a Limiter. Non-positive maxRequests or window fall back to the
// defaults (5 per hour).
func New(store Store, maxRequests int, window time.Duration, logger *zerolog.Logger) *Limiter {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Limiter{
		store:       store,
		maxRequests: maxRequests,
		window:      window,
		logger:      logger,
	}
}

// Allow records a call for identifier and reports whether it is within
// quota.
//
// A store failure (only possible with a remote backend) admits the call and
// logs a warning.
func (l *Limiter) Allow(ctx context.Context, identifier string) bool {
	allowed, err := l.store.Hit(ctx, identifier, l.maxRequests, l.window)
	if err != nil {
		l.logger.Warn().
			Err(err).
			Str("identifier", identifier).
			Msg("rate limit store unavailable, admitting request")
		return true
	}
	return allowed
}

// MaxRequests returns the per-window cap.
func (l *Limiter) MaxRequests() int { return l.maxRequests }

// Window returns the window length.
func (l *Limiter) Window() time.Duration { return l.window }
