package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

// MessageInput is one prior conversation message.
type MessageInput struct {
	Role    string `json:"role" jsonschema:"user or assistant"`
	Content string `json:"content" jsonschema:"message text"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string         `json:"question" jsonschema:"the question to answer from the indexed documents"`
	History  []MessageInput `json:"history,omitempty" jsonschema:"earlier user and assistant messages, oldest first"`
	TopK     int            `json:"top_k,omitempty" jsonschema:"number of context chunks to retrieve (default 10)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string            `json:"answer"`
	History []MessageInput    `json:"history"`
	Sources []RetrievedOutput `json:"sources"`
	Failed  bool              `json:"failed,omitempty"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the text to find relevant chunks for"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of chunks to return (default 10)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Results []RetrievedOutput `json:"results"`
	Count   int               `json:"count"`
}

// RetrievedOutput represents one retrieved chunk.
type RetrievedOutput struct {
	ID       string  `json:"id"`
	Document string  `json:"document,omitempty"`
	Score    float64 `json:"score"`
	Content  string  `json:"content"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using the indexed documents as context",
	}, s.handleAsk)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "retrieve",
		Description: "Return the indexed chunks most relevant to a query",
	}, s.handleRetrieve)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, AskOutput{}, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}

	history, err := toHistory(input.History)
	if err != nil {
		return nil, AskOutput{}, err
	}

	turn, err := s.ports.Answer.AnswerTurn(ctx, input.Question, history, input.TopK)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:  turn.Answer,
		History: fromHistory(turn.History),
		Sources: toRetrievedOutputs(turn.Context),
		Failed:  turn.Failed(),
	}
	return nil, output, nil
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	records, err := s.ports.Answer.Retrieve(ctx, input.Query, input.TopK)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	results := toRetrievedOutputs(records)
	return nil, RetrieveOutput{Results: results, Count: len(results)}, nil
}

func toHistory(in []MessageInput) (domain.ConversationHistory, error) {
	history := make(domain.ConversationHistory, 0, len(in))
	for i, m := range in {
		role := domain.Role(m.Role)
		if role != domain.RoleUser && role != domain.RoleAssistant {
			return nil, fmt.Errorf("%w: history[%d]: role must be user or assistant", domain.ErrInvalidInput, i)
		}
		history = append(history, domain.Message{Role: role, Content: m.Content})
	}
	return history, nil
}

func fromHistory(h domain.ConversationHistory) []MessageInput {
	out := make([]MessageInput, len(h))
	for i, m := range h {
		out[i] = MessageInput{Role: m.Role.String(), Content: m.Content}
	}
	return out
}

func toRetrievedOutputs(records []domain.RetrievedRecord) []RetrievedOutput {
	out := make([]RetrievedOutput, len(records))
	for i := range records {
		out[i] = RetrievedOutput{
			ID:       records[i].ID,
			Document: records[i].DocumentName,
			Score:    records[i].Score,
			Content:  records[i].Content,
		}
	}
	return out
}
