package driving

import (
	"context"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

// AnswerService answers questions from indexed context.
type AnswerService interface {
	// Answer returns the answer text and the caller's history extended with
	// the bare query and the answer. The input history is never modified.
	// Provider and store failures are folded into the answer; the error is
	// reserved for invalid input and cancellation.
	Answer(ctx context.Context, query string, history domain.ConversationHistory, topK int) (
		string, domain.ConversationHistory, error)

	// AnswerTurn is Answer with the retrieved context and failure details.
	AnswerTurn(ctx context.Context, query string, history domain.ConversationHistory, topK int) (*domain.Turn, error)

	// Retrieve returns the records that would be used as context for query.
	Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievedRecord, error)
}
