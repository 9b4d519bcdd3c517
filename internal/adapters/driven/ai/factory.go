// Package ai builds the embedding and generation adapters named by the
// settings, optionally checking that the provider answers before use.
package ai

import (
	"context"
	"fmt"
	"time"

	geminiembed "github.com/Hmv123/RAG-Application/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/Hmv123/RAG-Application/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/Hmv123/RAG-Application/internal/adapters/driven/embedding/openai"
	"github.com/Hmv123/RAG-Application/internal/adapters/driven/embedding/ratelimit"
	anthropicllm "github.com/Hmv123/RAG-Application/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/Hmv123/RAG-Application/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/Hmv123/RAG-Application/internal/adapters/driven/llm/ollama"
	openaillm "github.com/Hmv123/RAG-Application/internal/adapters/driven/llm/openai"
	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
)

// pingTimeout bounds the reachability check of a freshly built adapter.
const pingTimeout = 5 * time.Second

const fixHint = "Run 'ragapp config list' to review provider settings"

type (
	embedBuilder func(context.Context, *domain.EmbeddingSettings) (driven.EmbeddingService, error)
	llmBuilder   func(context.Context, *domain.LLMSettings) (driven.LLMService, error)
)

var embedBuilders = map[domain.AIProvider]embedBuilder{
	domain.AIProviderOllama: func(_ context.Context, s *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
		// Zero dimensions for an unknown model: the size is learned from
		// the first response.
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    s.BaseURL,
			Model:      s.Model,
			Dimensions: domain.EmbeddingDimensions()[s.Model],
		}), nil
	},
	domain.AIProviderOpenAI: openAIEmbedding,
	domain.AIProviderAzure:  openAIEmbedding,
	domain.AIProviderGemini: func(ctx context.Context, s *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
		return geminiembed.NewEmbeddingService(ctx, geminiembed.Config{
			APIKey:     s.APIKey,
			Model:      s.Model,
			Dimensions: domain.EmbeddingDimensions()[s.Model],
		})
	},
}

func openAIEmbedding(_ context.Context, s *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     s.APIKey,
		BaseURL:    s.BaseURL,
		Model:      s.Model,
		Azure:      s.Provider == domain.AIProviderAzure,
		APIVersion: s.APIVersion,
	})
}

var llmBuilders = map[domain.AIProvider]llmBuilder{
	domain.AIProviderOllama: func(_ context.Context, s *domain.LLMSettings) (driven.LLMService, error) {
		return ollamallm.NewLLMService(ollamallm.LLMConfig{BaseURL: s.BaseURL, Model: s.Model}), nil
	},
	domain.AIProviderOpenAI: openAILLM,
	domain.AIProviderAzure:  openAILLM,
	domain.AIProviderAnthropic: func(_ context.Context, s *domain.LLMSettings) (driven.LLMService, error) {
		return anthropicllm.NewLLMService(anthropicllm.Config{APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model})
	},
	domain.AIProviderGemini: func(ctx context.Context, s *domain.LLMSettings) (driven.LLMService, error) {
		return geminillm.NewLLMService(ctx, geminillm.Config{APIKey: s.APIKey, Model: s.Model})
	},
}

func openAILLM(_ context.Context, s *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.Config{
		APIKey:     s.APIKey,
		BaseURL:    s.BaseURL,
		Model:      s.Model,
		Azure:      s.Provider == domain.AIProviderAzure,
		APIVersion: s.APIVersion,
	})
}

// CreateEmbeddingService builds the embedding adapter for the configured
// provider. A positive requests_per_second wraps it in a limiter.
func CreateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: embedding settings missing", domain.ErrConfiguration)
	}
	if settings.Provider == domain.AIProviderAnthropic {
		return nil, fmt.Errorf("%w: anthropic does not offer embeddings, use openai, azure, gemini or ollama",
			domain.ErrConfiguration)
	}
	build, ok := embedBuilders[settings.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported embedding provider: %s", domain.ErrConfiguration, settings.Provider)
	}
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: embedding provider %s is not configured", domain.ErrConfiguration, settings.Provider)
	}

	svc, err := build(ctx, settings)
	if err != nil {
		return nil, err
	}
	return ratelimit.Wrap(svc, ratelimit.Config{RequestsPerSecond: settings.RequestsPerSecond}), nil
}

// CreateLLMService builds the generation adapter for the configured provider.
func CreateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: llm settings missing", domain.ErrConfiguration)
	}
	build, ok := llmBuilders[settings.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s", domain.ErrConfiguration, settings.Provider)
	}
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: llm provider %s is not configured", domain.ErrConfiguration, settings.Provider)
	}

	svc, err := build(ctx, settings)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// pinger is what both adapter kinds share for validation.
type pinger interface {
	Ping(ctx context.Context) error
	Close() error
}

// validated pings a freshly built adapter and closes it when the provider
// does not answer. Every failure wraps unavailable and carries the fix hint.
func validated[S pinger](ctx context.Context, svc S, err error, unavailable error) (S, error) {
	var zero S
	if err != nil {
		return zero, fmt.Errorf("%w: %w. %s", unavailable, err, fixHint)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(pingCtx); err != nil {
		_ = svc.Close()
		return zero, fmt.Errorf("%w: service unreachable (%w). %s", unavailable, err, fixHint)
	}
	return svc, nil
}

// CreateAndValidateEmbeddingService is CreateEmbeddingService followed by
// a reachability check.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(ctx, settings)
	return validated(ctx, svc, err, domain.ErrEmbeddingUnavailable)
}

// CreateAndValidateLLMService is CreateLLMService followed by a
// reachability check.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(ctx, settings)
	return validated(ctx, svc, err, domain.ErrLLMUnavailable)
}
