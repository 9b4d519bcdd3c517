// Package ratelimit wraps an embedding service with client-side throttling.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
	"github.com/Hmv123/RAG-Application/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	// DefaultBackoff is the pause after the provider reports rate limiting.
	DefaultBackoff = 2 * time.Second

	// MaxBackoff caps the doubling backoff.
	MaxBackoff = 30 * time.Second

	// DefaultRetries is how many times a rate-limited call is retried.
	DefaultRetries = 2
)

// Config holds throttling settings.
type Config struct {
	// RequestsPerSecond is the sustained request rate.
	RequestsPerSecond float64

	// Burst is the token bucket size (default: 1).
	Burst int

	// Retries is the number of retries after domain.ErrRateLimited.
	Retries int

	// Backoff is the initial pause after a rate-limited response.
	Backoff time.Duration
}

// EmbeddingService throttles calls to an inner service with a token bucket
// and backs off when the provider answers with a rate-limit error.
type EmbeddingService struct {
	inner   driven.EmbeddingService
	limiter *rate.Limiter
	retries int
	backoff time.Duration

	mu      sync.Mutex
	retryAt time.Time
	current time.Duration
}

// Wrap returns inner unchanged when RequestsPerSecond is not positive.
func Wrap(inner driven.EmbeddingService, cfg Config) driven.EmbeddingService {
	if cfg.RequestsPerSecond <= 0 {
		return inner
	}
	return New(inner, cfg)
}

// New creates a throttled embedding service.
func New(inner driven.EmbeddingService, cfg Config) *EmbeddingService {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	} else if cfg.Retries == 0 {
		cfg.Retries = DefaultRetries
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &EmbeddingService{
		inner:   inner,
		limiter: rate.NewLimiter(limit, cfg.Burst),
		retries: cfg.Retries,
		backoff: cfg.Backoff,
	}
}

// Embed waits for a token, then delegates.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := s.do(ctx, func() error {
		var err error
		out, err = s.inner.Embed(ctx, text)
		return err
	})
	return out, err
}

// EmbedBatch waits for a single token, then delegates the whole batch.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := s.do(ctx, func() error {
		var err error
		out, err = s.inner.EmbedBatch(ctx, texts)
		return err
	})
	return out, err
}

func (s *EmbeddingService) do(ctx context.Context, call func() error) error {
	for attempt := 0; ; attempt++ {
		if err := s.wait(ctx); err != nil {
			return errors.Join(domain.ErrProvider, err)
		}

		err := call()
		if err == nil {
			s.recordSuccess()
			return nil
		}
		if !errors.Is(err, domain.ErrRateLimited) || attempt >= s.retries {
			return err
		}
		pause := s.recordRateLimit()
		logger.Debug("Embedding provider rate limited, retrying in %s", pause)
	}
}

// wait honours any backoff, then the token bucket.
func (s *EmbeddingService) wait(ctx context.Context) error {
	s.mu.Lock()
	retryAt := s.retryAt
	s.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return s.limiter.Wait(ctx)
}

func (s *EmbeddingService) recordRateLimit() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == 0 {
		s.current = s.backoff
	} else {
		s.current = min(s.current*2, MaxBackoff)
	}
	s.retryAt = time.Now().Add(s.current)
	return s.current
}

func (s *EmbeddingService) recordSuccess() {
	s.mu.Lock()
	s.current = 0
	s.mu.Unlock()
}

// Dimensions returns the inner service's vector size.
func (s *EmbeddingService) Dimensions() int { return s.inner.Dimensions() }

// ModelName returns the inner service's model.
func (s *EmbeddingService) ModelName() string { return s.inner.ModelName() }

// Ping is not throttled.
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }

// Close closes the inner service.
func (s *EmbeddingService) Close() error { return s.inner.Close() }
