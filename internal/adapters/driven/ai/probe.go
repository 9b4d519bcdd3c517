package ai

import (
	"context"
	"time"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
)

var _ driven.ProviderProbe = Probe{}

// Probe builds a throwaway service for the settings, pings it and closes
// it again. A zero Timeout uses the ping timeout of the factory.
type Probe struct {
	Timeout time.Duration
}

// ProbeEmbedding reports whether the embedding provider answers.
func (p Probe) ProbeEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(ctx, settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()
	return svc.Ping(ctx)
}

// ProbeLLM reports whether the generation provider answers.
func (p Probe) ProbeLLM(ctx context.Context, settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(ctx, settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()
	return svc.Ping(ctx)
}

func (p Probe) timeout() time.Duration {
	if p.Timeout > 0 {
		return p.Timeout
	}
	return pingTimeout
}
