// Package messages defines Bubbletea message types for the chat TUI.
package messages

import (
	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

// AnswerRequested is sent when the user submits a question.
type AnswerRequested struct {
	Question string
}

// AnswerCompleted carries a finished turn back to the model.
// Err is set only for invalid input or cancellation; provider failures
// arrive as a turn whose GenerationErr is set.
type AnswerCompleted struct {
	Turn *domain.Turn
	Err  error
}

// ConversationReset is sent after the history has been cleared.
type ConversationReset struct{}
