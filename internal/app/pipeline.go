// Package app assembles the ingestion and answering pipeline from settings.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/Hmv123/RAG-Application/internal/adapters/driven/ai"
	"github.com/Hmv123/RAG-Application/internal/adapters/driven/storage"
	"github.com/Hmv123/RAG-Application/internal/connectors"
	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
	"github.com/Hmv123/RAG-Application/internal/core/services"
	"github.com/Hmv123/RAG-Application/internal/extractors"
	"github.com/Hmv123/RAG-Application/internal/logger"
)

// Needs selects which services a command builds. The index store is
// always opened.
type Needs struct {
	// Ingest builds the ingestion service and its embedding provider.
	Ingest bool

	// Answer builds the answering service and its generation provider.
	Answer bool

	// Validate pings providers before returning.
	Validate bool

	// Progress is called once per finished document during ingestion.
	Progress func(domain.DocumentResult)
}

// Pipeline holds the services built for one command.
type Pipeline struct {
	Settings   domain.AppSettings
	Extractors *extractors.Registry
	Index      driven.IndexStore
	Embedder   driven.EmbeddingService
	LLM        driven.LLMService
	Ingest     *services.IngestService
	Answer     *services.AnswerService
}

// Builder creates pipelines with optional shared collaborators.
type Builder struct {
	// Prompts supplies the answer system prompt when the setting is empty.
	Prompts driven.PromptStore
}

// Build opens the index store and creates the requested services using a
// zero Builder.
func Build(ctx context.Context, settings *domain.AppSettings, needs Needs) (*Pipeline, error) {
	return Builder{}.Build(ctx, settings, needs)
}

// Build opens the index store and creates the requested services.
// Anything already opened is closed when a later step fails.
func (b Builder) Build(ctx context.Context, settings *domain.AppSettings, needs Needs) (_ *Pipeline, err error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: nil settings", domain.ErrConfiguration)
	}

	p := &Pipeline{
		Settings:   *settings,
		Extractors: extractors.Default(),
	}
	defer func() {
		if err != nil {
			_ = p.Close()
		}
	}()

	// 1. Index store
	p.Index, err = storage.NewIndexStore(ctx, settings.Index)
	if err != nil {
		return nil, err
	}

	// 2. Embedding provider. Required for ingestion, optional for answering
	if needs.Ingest || needs.Answer {
		if err := p.buildEmbedder(ctx, needs); err != nil {
			return nil, err
		}
	}

	// 3. Ingestion
	if needs.Ingest {
		p.Ingest, err = services.NewIngestService(p.Extractors, p.Embedder, p.Index, services.IngestConfig{
			Chunking:      settings.Chunking,
			Workers:       settings.Ingest.Workers,
			Mode:          settings.Embedding.Mode,
			FailurePolicy: settings.Embedding.FailurePolicy,
			Dedup:         settings.Ingest.Dedup,
			Progress:      needs.Progress,
		})
		if err != nil {
			return nil, err
		}
	}

	// 4. Generation provider and answering
	if needs.Answer {
		if needs.Validate {
			p.LLM, err = ai.CreateAndValidateLLMService(ctx, &settings.LLM)
		} else {
			p.LLM, err = ai.CreateLLMService(ctx, &settings.LLM)
		}
		if err != nil {
			return nil, err
		}

		p.Answer, err = services.NewAnswerService(p.Index, p.LLM, p.Embedder, services.AnswerConfig{
			TopK: settings.Answer.TopK,
			Sampling: domain.SamplingParams{
				Temperature: settings.Answer.Temperature,
				MaxTokens:   settings.Answer.MaxTokens,
			},
			SystemPrompt:      b.systemPrompt(settings.Answer.SystemPrompt),
			RetrievalTimeout:  settings.Answer.RetrievalTimeout,
			GenerationTimeout: settings.Answer.GenerationTimeout,
		})
		if err != nil {
			return nil, err
		}
	}

	return p, nil
}

func (p *Pipeline) buildEmbedder(ctx context.Context, needs Needs) error {
	settings := &p.Settings.Embedding

	if !needs.Ingest && !settings.IsConfigured() {
		logger.Warn("Embedding provider %s is not configured, answers use keyword retrieval", settings.Provider)
		return nil
	}

	var err error
	if needs.Validate {
		p.Embedder, err = ai.CreateAndValidateEmbeddingService(ctx, settings)
	} else {
		p.Embedder, err = ai.CreateEmbeddingService(ctx, settings)
	}
	return err
}

// systemPrompt prefers the configured prompt, then the prompt store. An
// empty result lets the answering service apply its default.
func (b Builder) systemPrompt(configured string) string {
	if configured != "" || b.Prompts == nil {
		return configured
	}
	prompt, err := b.Prompts.Load(driven.PromptAnswerSystem)
	if err != nil {
		logger.Warn("Using the default system prompt: %v", err)
		return ""
	}
	return prompt
}

// OpenSource resolves a source reference, accepting only files some
// extractor can read.
func (p *Pipeline) OpenSource(ctx context.Context, ref string) (driven.DocumentSource, error) {
	return connectors.Open(ctx, ref, p.Settings.Sources, connectors.Options{
		Accept: p.Extractors.Supports,
	})
}

// Close releases providers and the index store. A nil pipeline is a no-op.
func (p *Pipeline) Close() error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.Embedder != nil {
		errs = append(errs, p.Embedder.Close())
	}
	if p.LLM != nil {
		errs = append(errs, p.LLM.Close())
	}
	if p.Index != nil {
		errs = append(errs, p.Index.Close())
	}
	return errors.Join(errs...)
}
