// Package openai provides an embedding service adapter for OpenAI and Azure
// OpenAI deployments.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel   = "text-embedding-3-small"
	DefaultTimeout = 60 * time.Second

	// maxBatchInputs is the largest input array the embeddings endpoint accepts.
	maxBatchInputs = 2048
)

// Model dimensions for OpenAI embedding models.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Config holds configuration for the OpenAI embedding service.
type Config struct {
	// APIKey is the OpenAI or Azure API key (required).
	APIKey string

	// BaseURL overrides the API endpoint. For Azure this is the resource
	// endpoint, e.g. https://name.openai.azure.com/.
	BaseURL string

	// Model is the embedding model, or the deployment name for Azure.
	Model string

	// Azure selects Azure OpenAI authentication and URL layout.
	Azure bool

	// APIVersion is the Azure API version.
	APIVersion string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// Dimensions overrides the default dimension for the model.
	// Only applicable to text-embedding-3-* models.
	Dimensions int
}

// EmbeddingService generates embeddings using the OpenAI API.
type EmbeddingService struct {
	client     *goopenai.Client
	model      string
	dimensions int
	shorten    bool
}

// NewEmbeddingService creates a new OpenAI embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openai: API key is required", domain.ErrConfiguration)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	clientCfg, err := clientConfig(cfg)
	if err != nil {
		return nil, err
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	dims := cfg.Dimensions
	shorten := dims > 0
	if dims == 0 {
		dims = modelDimensions[cfg.Model]
	}
	if dims == 0 {
		dims = modelDimensions[DefaultModel]
	}

	return &EmbeddingService{
		client:     goopenai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		dimensions: dims,
		shorten:    shorten,
	}, nil
}

func clientConfig(cfg Config) (goopenai.ClientConfig, error) {
	if !cfg.Azure {
		c := goopenai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			c.BaseURL = cfg.BaseURL
		}
		return c, nil
	}

	if cfg.BaseURL == "" {
		return goopenai.ClientConfig{}, fmt.Errorf("%w: azure: endpoint is required", domain.ErrConfiguration)
	}
	c := goopenai.DefaultAzureConfig(cfg.APIKey, cfg.BaseURL)
	if cfg.APIVersion != "" {
		c.APIVersion = cfg.APIVersion
	}
	// Model names are deployment names and must not be rewritten.
	c.AzureModelMapperFunc = func(model string) string { return model }
	return c, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.create(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for multiple texts, splitting into
// requests of at most 2048 inputs.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatchInputs {
		end := min(start+maxBatchInputs, len(texts))
		vectors, err := s.create(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed texts %d-%d: %w", start, end-1, err)
		}
		out = append(out, vectors...)
	}
	return out, nil
}

func (s *EmbeddingService) create(ctx context.Context, input []string) ([][]float32, error) {
	req := goopenai.EmbeddingRequest{
		Input: input,
		Model: goopenai.EmbeddingModel(s.model),
	}
	if s.shorten {
		req.Dimensions = s.dimensions
	}

	resp, err := s.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, wrapError(err)
	}
	if len(resp.Data) != len(input) {
		return nil, fmt.Errorf("%w: openai: got %d embeddings for %d inputs",
			domain.ErrProvider, len(resp.Data), len(input))
	}

	// The API may return items out of order; Index is authoritative.
	vectors := make([][]float32, len(input))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(input) {
			return nil, fmt.Errorf("%w: openai: embedding index %d out of range", domain.ErrProvider, d.Index)
		}
		v := make([]float32, len(d.Embedding))
		for i, x := range d.Embedding {
			v[i] = float32(x)
		}
		vectors[d.Index] = v
	}
	return vectors, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the key and model by embedding a single short input.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.create(ctx, []string{"ping"}); err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// wrapError maps client errors to domain errors.
func wrapError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w: openai: %w", domain.ErrProvider, domain.ErrRateLimited, err)
	}
	return fmt.Errorf("%w: openai: %w", domain.ErrProvider, err)
}
