package services

import (
	"fmt"
	"strings"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

// DefaultSystemPrompt instructs the model to stay within the supplied context.
const DefaultSystemPrompt = "You are a helpful assistant. Use the provided context to answer " +
	"questions accurately. If the context is insufficient, give the most careful, " +
	"concise answer possible. Do not hallucinate beyond the context."

// BuildContext joins the content of retrieved records with newlines, in the
// order the store returned them. Records with empty content are skipped.
func BuildContext(records []domain.RetrievedRecord) string {
	parts := make([]string, 0, len(records))
	for _, r := range records {
		if r.Content == "" {
			continue
		}
		parts = append(parts, r.Content)
	}
	return strings.Join(parts, "\n")
}

// BuildUserPrompt formats the context block and the question sent to the model.
func BuildUserPrompt(context, query string) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s", context, query)
}

// BuildMessages returns a working copy of history followed by the system
// instruction and the contextualised user message. history is not modified.
func BuildMessages(history domain.ConversationHistory, systemPrompt, context, query string) []domain.Message {
	msgs := history.WorkingCopy()
	msgs = append(msgs,
		domain.SystemMessage(systemPrompt),
		domain.UserMessage(BuildUserPrompt(context, query)),
	)
	return msgs
}

// FallbackAnswer is the visible answer used when generation fails.
func FallbackAnswer(err error) string {
	return fmt.Sprintf("Error generating response: %v", err)
}
