// Package anthropic generates answers with the Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
	"github.com/Hmv123/RAG-Application/internal/logger"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultModel   = "claude-3-5-sonnet-latest"
	DefaultTimeout = 120 * time.Second

	// max_tokens is mandatory on this API.
	fallbackMaxTokens = 1024
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type LLMService struct {
	api   *client
	model string
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature *float32  `json:"temperature,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

// NewLLMService fails with domain.ErrConfiguration when no key is given.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic: llm.api_key is not set", domain.ErrConfiguration)
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &LLMService{
		api: &client{
			http:    &http.Client{Timeout: timeout},
			baseURL: baseURL,
			apiKey:  cfg.APIKey,
		},
		model: model,
	}, nil
}

func (s *LLMService) Chat(ctx context.Context, messages []domain.Message, params domain.SamplingParams) (string, error) {
	system, turns := toTurns(messages)
	if len(turns) == 0 {
		return "", fmt.Errorf("%w: anthropic: conversation has no user turn", domain.ErrProvider)
	}

	req := messagesRequest{
		Model:       s.model,
		System:      system,
		Messages:    turns,
		MaxTokens:   params.MaxTokens,
		Temperature: &params.Temperature,
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = fallbackMaxTokens
	}

	var resp messagesResponse
	if err := s.api.call(ctx, http.MethodPost, "/v1/messages", req, &resp); err != nil {
		return "", err
	}
	if resp.StopReason == "max_tokens" {
		logger.Debug("anthropic: answer truncated at %d tokens", req.MaxTokens)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	answer := strings.TrimSpace(text.String())
	if answer == "" {
		return "", fmt.Errorf("%w: anthropic: reply had no text (stop_reason %q)", domain.ErrProvider, resp.StopReason)
	}
	return answer, nil
}

// toTurns moves system messages into the top-level system prompt. The API
// wants strictly alternating turns opening with the user, so leading
// assistant turns are dropped and repeated roles are merged.
func toTurns(messages []domain.Message) (string, []message) {
	var system []string
	turns := make([]message, 0, len(messages))
	for _, m := range messages {
		switch {
		case m.Role == domain.RoleSystem:
			system = append(system, m.Content)
		case len(turns) == 0 && m.Role != domain.RoleUser:
		case len(turns) > 0 && turns[len(turns)-1].Role == m.Role.String():
			turns[len(turns)-1].Content += "\n\n" + m.Content
		default:
			turns = append(turns, message{Role: m.Role.String(), Content: m.Content})
		}
	}
	return strings.Join(system, "\n\n"), turns
}

func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the key without spending tokens.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.call(ctx, http.MethodGet, "/v1/models?limit=1", nil, nil)
}

func (s *LLMService) Close() error {
	return nil
}
