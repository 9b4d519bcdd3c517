package driven

import (
	"context"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

// LLMService generates replies from a message sequence.
//
// Implementations include OpenAI, Azure OpenAI, Anthropic, Gemini and
// Ollama. Every failure, including timeouts and empty replies, is reported
// wrapped in domain.ErrProvider.
type LLMService interface {
	// Chat sends the messages in order and returns the assistant's reply.
	// System messages may appear anywhere; providers without a system role
	// lift them into their own instruction field.
	Chat(ctx context.Context, messages []domain.Message, params domain.SamplingParams) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
