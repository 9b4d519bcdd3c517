package github

import (
	"context"
	"fmt"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/time/rate"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

const (
	// GitHubRateLimit is the authenticated hourly quota.
	GitHubRateLimit = 5000

	// ProactiveRate is the default request rate, about 4320 requests an hour.
	ProactiveRate = 1.2

	// MinBuffer is how many requests are kept in reserve before the
	// limiter waits for the quota window to reset.
	MinBuffer = 100
)

// RateLimiter paces requests with a token bucket and backs off when the
// quota reported by GitHub runs low.
type RateLimiter struct {
	bucket *rate.Limiter

	mu    sync.Mutex
	quota gh.Rate
}

// NewRateLimiter creates a rate limiter allowing rps requests per second.
// A non-positive rps uses ProactiveRate.
func NewRateLimiter(rps float64) *RateLimiter {
	if rps <= 0 {
		rps = ProactiveRate
	}
	return &RateLimiter{
		bucket: rate.NewLimiter(rate.Limit(rps), 1),
		quota:  gh.Rate{Limit: GitHubRateLimit, Remaining: GitHubRateLimit},
	}
}

// Wait blocks until the next request may be sent.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return fmt.Errorf("%w: github: %w", domain.ErrRateLimited, err)
	}

	r.mu.Lock()
	remaining, reset := r.quota.Remaining, r.quota.Reset.Time
	r.mu.Unlock()

	if remaining >= MinBuffer || !time.Now().Before(reset) {
		return nil
	}

	timer := time.NewTimer(time.Until(reset))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Observe records the quota go-github parsed from a response. Responses
// without rate headers leave the last known quota in place.
func (r *RateLimiter) Observe(resp *gh.Response) {
	if resp == nil || resp.Rate.Limit == 0 {
		return
	}
	r.mu.Lock()
	r.quota = resp.Rate
	r.mu.Unlock()
}

// Remaining returns the last reported number of requests left.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.quota.Remaining
}

// Limit returns the last reported quota size.
func (r *RateLimiter) Limit() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.quota.Limit
}

// ResetTime returns when the quota window resets.
func (r *RateLimiter) ResetTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.quota.Reset.Time
}
