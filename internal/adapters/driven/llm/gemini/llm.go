// Package gemini provides an LLM service adapter for Google Gemini.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-1.5-flash"

// Config holds configuration for the Gemini LLM service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the generative model (default: gemini-1.5-flash).
	Model string
}

// chatRequest is one generation call in Gemini terms.
type chatRequest struct {
	System  string
	History []*genai.Content
	Prompt  string
	Params  domain.SamplingParams
}

// chatClient is the subset of the Gemini API used here.
type chatClient interface {
	send(ctx context.Context, req chatRequest) (string, error)
	info(ctx context.Context) error
	close() error
}

// LLMService generates replies using Gemini.
type LLMService struct {
	client chatClient
	model  string
}

// NewLLMService creates a Gemini LLM service.
func NewLLMService(ctx context.Context, cfg Config) (*LLMService, error) {
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
	return &LLMService{client: &genaiChat{client: client, model: cfg.Model}, model: cfg.Model}, nil
}

// Chat maps system messages to the system instruction, earlier turns to
// chat history, and sends the final user message.
func (s *LLMService) Chat(ctx context.Context, messages []domain.Message, params domain.SamplingParams) (string, error) {
	req, err := buildRequest(messages)
	if err != nil {
		return "", err
	}
	req.Params = params

	text, err := s.client.send(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %w", domain.ErrProvider, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: gemini: no response generated", domain.ErrProvider)
	}
	return text, nil
}

func buildRequest(messages []domain.Message) (chatRequest, error) {
	var system []string
	var turns []domain.Message
	for _, m := range messages {
		if m.Role == domain.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, m)
	}

	if len(turns) == 0 || turns[len(turns)-1].Role != domain.RoleUser {
		return chatRequest{}, fmt.Errorf("%w: gemini: conversation must end with a user message", domain.ErrProvider)
	}

	history := make([]*genai.Content, 0, len(turns)-1)
	for _, m := range turns[:len(turns)-1] {
		role := "user"
		if m.Role == domain.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Parts: []genai.Part{genai.Text(m.Content)},
			Role:  role,
		})
	}

	return chatRequest{
		System:  strings.Join(system, "\n\n"),
		History: history,
		Prompt:  turns[len(turns)-1].Content,
	}, nil
}

// ModelName returns the name of the model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping fetches the model description to validate the key and model name.
func (s *LLMService) Ping(ctx context.Context) error {
	if err := s.client.info(ctx); err != nil {
		return fmt.Errorf("%w: gemini: ping failed: %w", domain.ErrProvider, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *LLMService) Close() error {
	return s.client.close()
}

// genaiChat adapts the genai SDK to chatClient. A model handle is created
// per call because its settings are not safe to share.
type genaiChat struct {
	client *genai.Client
	model  string
}

func (g *genaiChat) send(ctx context.Context, req chatRequest) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(req.Params.Temperature)
	if req.Params.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.Params.MaxTokens))
	}
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	chat := model.StartChat()
	chat.History = req.History

	resp, err := chat.SendMessage(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		break
	}
	return b.String(), nil
}

func (g *genaiChat) info(ctx context.Context) error {
	_, err := g.client.GenerativeModel(g.model).Info(ctx)
	return err
}

func (g *genaiChat) close() error {
	return g.client.Close()
}
