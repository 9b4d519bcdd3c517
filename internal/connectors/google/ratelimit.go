package google

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

// RateLimitConfig holds rate limiting configuration for a service.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultDriveRateLimit stays below Drive's 10 requests/sec/user quota.
var DefaultDriveRateLimit = RateLimitConfig{RequestsPerSecond: 8.0, BurstSize: 10}

// Backoff bounds after quota errors, doubling per consecutive 429.
const (
	MinBackoff = time.Second
	MaxBackoff = 64 * time.Second
)

// RateLimiter paces Google API calls with a token bucket and applies
// truncated exponential backoff while the API keeps answering 429.
type RateLimiter struct {
	limiter *rate.Limiter

	mu      sync.Mutex
	backoff time.Duration
	retryAt time.Time
}

// NewRateLimiter creates a rate limiter. A zero config uses DefaultDriveRateLimit.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.RequestsPerSecond <= 0 {
		cfg = DefaultDriveRateLimit
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
	}
}

// Wait sits out any pending backoff, then takes a token.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	delay := time.Until(r.retryAt)
	r.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: google: %w", domain.ErrRateLimited, err)
	}
	return nil
}

// Throttled records a quota error and returns the backoff now in force.
func (r *RateLimiter) Throttled() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.backoff == 0:
		r.backoff = MinBackoff
	case r.backoff < MaxBackoff:
		r.backoff = min(2*r.backoff, MaxBackoff)
	}
	r.retryAt = time.Now().Add(r.backoff)
	return r.backoff
}

// Succeeded clears the backoff after a call got through.
func (r *RateLimiter) Succeeded() {
	r.mu.Lock()
	r.backoff = 0
	r.mu.Unlock()
}
