// Package gemini provides an embedding service adapter for Google Gemini.
package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "text-embedding-004"
	DefaultDimensions = 768

	// maxBatch is the request limit of batchEmbedContents.
	maxBatch = 100
)

// Config holds configuration for the Gemini embedding service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the embedding model (default: text-embedding-004).
	Model string

	// Dimensions is the embedding vector size.
	Dimensions int
}

// embedClient is the subset of the Gemini API used here.
type embedClient interface {
	embed(ctx context.Context, text string) ([]float32, error)
	embedBatch(ctx context.Context, texts []string) ([][]float32, error)
	close() error
}

// EmbeddingService generates embeddings using Gemini.
type EmbeddingService struct {
	client     embedClient
	model      string
	dimensions int
}

// NewEmbeddingService creates a Gemini embedding service.
func NewEmbeddingService(ctx context.Context, cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini: API key is required", domain.ErrConfiguration)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("%w: gemini: create client: %w", domain.ErrProvider, err)
	}

	return newWithClient(&genaiEmbedder{client: client, model: client.EmbeddingModel(cfg.Model)}, cfg), nil
}

func newWithClient(client embedClient, cfg Config) *EmbeddingService {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}
	return &EmbeddingService{client: client, model: cfg.Model, dimensions: cfg.Dimensions}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := s.client.embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini: %w", domain.ErrProvider, err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: gemini: empty embedding", domain.ErrProvider)
	}
	return vec, nil
}

// EmbedBatch generates embeddings in requests of at most 100 texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatch {
		end := min(start+maxBatch, len(texts))
		vectors, err := s.client.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("%w: gemini: embed texts %d-%d: %w", domain.ErrProvider, start, end-1, err)
		}
		if len(vectors) != end-start {
			return nil, fmt.Errorf("%w: gemini: got %d embeddings for %d inputs",
				domain.ErrProvider, len(vectors), end-start)
		}
		out = append(out, vectors...)
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping embeds a short input to validate the key and model.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.Embed(ctx, "ping"); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *EmbeddingService) Close() error {
	return s.client.close()
}

// genaiEmbedder adapts the genai SDK to embedClient.
type genaiEmbedder struct {
	client *genai.Client
	model  *genai.EmbeddingModel
}

func (g *genaiEmbedder) embed(ctx context.Context, text string) ([]float32, error) {
	res, err := g.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}
	if res.Embedding == nil {
		return nil, nil
	}
	return res.Embedding.Values, nil
}

func (g *genaiEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	batch := g.model.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}
	res, err := g.model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, err
	}
	out := make([][]float32, len(res.Embeddings))
	for i, e := range res.Embeddings {
		if e != nil {
			out[i] = e.Values
		}
	}
	return out, nil
}

func (g *genaiEmbedder) close() error {
	return g.client.Close()
}
