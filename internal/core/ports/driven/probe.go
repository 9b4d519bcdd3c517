package driven

import (
	"context"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

// ProviderProbe checks that provider settings reach a working service
// without building a pipeline.
type ProviderProbe interface {
	ProbeEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) error
	ProbeLLM(ctx context.Context, settings *domain.LLMSettings) error
}
