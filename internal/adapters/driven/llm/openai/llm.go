// Package openai provides an LLM service adapter for OpenAI chat completions
// and Azure OpenAI chat deployments.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the OpenAI LLM service.
type Config struct {
	// APIKey is the OpenAI or Azure API key (required).
	APIKey string

	// BaseURL overrides the API endpoint. Required for Azure.
	BaseURL string

	// Model is the chat model, or the deployment name for Azure.
	Model string

	// Azure selects Azure OpenAI authentication and URL layout.
	Azure bool

	// APIVersion is the Azure API version.
	APIVersion string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService provides chat completions using the OpenAI API.
type LLMService struct {
	client *goopenai.Client
	model  string
	azure  bool
}

// NewLLMService creates a new OpenAI LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openai: API key is required", domain.ErrConfiguration)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	var clientCfg goopenai.ClientConfig
	if cfg.Azure {
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("%w: azure: endpoint is required", domain.ErrConfiguration)
		}
		clientCfg = goopenai.DefaultAzureConfig(cfg.APIKey, cfg.BaseURL)
		if cfg.APIVersion != "" {
			clientCfg.APIVersion = cfg.APIVersion
		}
		clientCfg.AzureModelMapperFunc = func(model string) string { return model }
	} else {
		clientCfg = goopenai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &LLMService{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		azure:  cfg.Azure,
	}, nil
}

// Chat sends the messages in order and returns the first choice.
func (s *LLMService) Chat(ctx context.Context, messages []domain.Message, params domain.SamplingParams) (string, error) {
	chatMessages := make([]goopenai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		chatMessages[i] = goopenai.ChatCompletionMessage{
			Role:    msg.Role.String(),
			Content: msg.Content,
		}
	}

	resp, err := s.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    chatMessages,
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
	})
	if err != nil {
		return "", wrapError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai: no response generated", domain.ErrProvider)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: openai: empty response (finish reason %q)",
			domain.ErrProvider, resp.Choices[0].FinishReason)
	}
	return content, nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the key. OpenAI lists models; Azure deployments are
// checked with a one-token completion because the models list is not
// scoped to deployments.
func (s *LLMService) Ping(ctx context.Context) error {
	if s.azure {
		_, err := s.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
			Model:     s.model,
			Messages:  []goopenai.ChatCompletionMessage{{Role: goopenai.ChatMessageRoleUser, Content: "ping"}},
			MaxTokens: 1,
		})
		if err != nil {
			return fmt.Errorf("azure: ping failed: %w", wrapError(err))
		}
		return nil
	}

	if _, err := s.client.ListModels(ctx); err != nil {
		return fmt.Errorf("openai: ping failed: %w", wrapError(err))
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

func wrapError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w: openai: %w", domain.ErrProvider, domain.ErrRateLimited, err)
	}
	return fmt.Errorf("%w: openai: %w", domain.ErrProvider, err)
}
