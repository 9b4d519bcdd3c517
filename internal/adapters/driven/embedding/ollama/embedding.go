// Package ollama embeds text with a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Hmv123/RAG-Application/internal/adapters/driven/ollamaapi"
	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultModel      = "nomic-embed-text"
	DefaultTimeout    = 30 * time.Second
	DefaultDimensions = 768
)

// Config configures the adapter. Ollama picks the vector size from the
// model; when Dimensions is set every result is checked against it,
// otherwise the size is taken from the first response.
type Config struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Dimensions int

	// Truncate lets the server cut inputs that exceed the model context
	// instead of failing the request.
	Truncate bool
}

// EmbeddingService implements driven.EmbeddingService over /api/embed.
type EmbeddingService struct {
	api        *ollamaapi.Client
	model      string
	dimensions atomic.Int64
	strict     bool
	truncate   bool
}

// embedRequest takes a list, so one call covers a whole batch.
type embedRequest struct {
	Model    string   `json:"model"`
	Input    []string `json:"input"`
	Truncate *bool    `json:"truncate,omitempty"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func NewEmbeddingService(cfg Config) *EmbeddingService {
	svc := &EmbeddingService{
		model:    cfg.Model,
		strict:   cfg.Dimensions > 0,
		truncate: cfg.Truncate,
	}
	if svc.model == "" {
		svc.model = DefaultModel
	}
	if svc.strict {
		svc.dimensions.Store(int64(cfg.Dimensions))
	} else {
		svc.dimensions.Store(DefaultDimensions)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	svc.api = ollamaapi.New(cfg.BaseURL, timeout)
	return svc
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch returns one vector per text, in order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req := embedRequest{Model: s.model, Input: texts}
	if !s.truncate {
		off := false
		req.Truncate = &off
	}

	var resp embedResponse
	if err := s.api.Post(ctx, "/api/embed", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: ollama: %d embeddings for %d inputs",
			domain.ErrProvider, len(resp.Embeddings), len(texts))
	}
	if !s.strict {
		s.dimensions.Store(int64(len(resp.Embeddings[0])))
	}
	want := s.Dimensions()
	for i, v := range resp.Embeddings {
		if len(v) != want {
			return nil, fmt.Errorf("%w: ollama: %s returned %d dimensions for input %d, expected %d",
				domain.ErrProvider, s.model, len(v), i, want)
		}
	}
	return resp.Embeddings, nil
}

// Dimensions returns the configured size, or the observed one once a
// request has succeeded.
func (s *EmbeddingService) Dimensions() int {
	return int(s.dimensions.Load())
}

func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping fails when the server is down or the model has not been pulled.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.api.Ping(ctx, s.model)
}

func (s *EmbeddingService) Close() error {
	return nil
}
