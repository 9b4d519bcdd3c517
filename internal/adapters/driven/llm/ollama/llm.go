// Package ollama answers chat requests with a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Hmv123/RAG-Application/internal/adapters/driven/ollamaapi"
	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig configures the adapter. Zero values fall back to the defaults
// above and ollamaapi.DefaultBaseURL.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration

	// KeepAlive tells the server how long to hold the model in memory after
	// a request, e.g. "10m". Empty leaves the server default.
	KeepAlive string
}

// LLMService implements driven.LLMService over /api/chat.
type LLMService struct {
	api       *ollamaapi.Client
	model     string
	keepAlive string
}

type sampling struct {
	Temperature float32 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string    `json:"model"`
	Messages  []turn    `json:"messages"`
	Stream    bool      `json:"stream"`
	KeepAlive string    `json:"keep_alive,omitempty"`
	Options   *sampling `json:"options,omitempty"`
}

type chatResponse struct {
	Message    turn   `json:"message"`
	DoneReason string `json:"done_reason,omitempty"`
}

func NewLLMService(cfg LLMConfig) *LLMService {
	model := cfg.Model
	if model == "" {
		model = DefaultLLMModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultLLMTimeout
	}
	return &LLMService{
		api:       ollamaapi.New(cfg.BaseURL, timeout),
		model:     model,
		keepAlive: cfg.KeepAlive,
	}
}

// Chat sends the whole conversation in one non-streaming request. Ollama
// accepts system turns anywhere in the list, so roles pass through as is.
func (s *LLMService) Chat(ctx context.Context, messages []domain.Message, params domain.SamplingParams) (string, error) {
	req := chatRequest{
		Model:     s.model,
		Messages:  make([]turn, 0, len(messages)),
		KeepAlive: s.keepAlive,
		Options:   &sampling{Temperature: params.Temperature, NumPredict: params.MaxTokens},
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, turn{Role: m.Role.String(), Content: m.Content})
	}

	var resp chatResponse
	if err := s.api.Post(ctx, "/api/chat", req, &resp); err != nil {
		return "", err
	}

	answer := strings.TrimSpace(resp.Message.Content)
	if answer == "" {
		return "", fmt.Errorf("%w: ollama: %s returned no content (done_reason %q)",
			domain.ErrProvider, s.model, resp.DoneReason)
	}
	return answer, nil
}

func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists pulled models and fails when the configured one is absent.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Ping(ctx, s.model)
}

func (s *LLMService) Close() error {
	return nil
}
