package mcp

import (
	"context"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer     string
	records    []domain.RetrievedRecord
	genErr     error
	err        error
	gotQuery   string
	gotTopK    int
	gotHistory domain.ConversationHistory
}

func (m *mockAnswerService) Answer(
	ctx context.Context,
	query string,
	history domain.ConversationHistory,
	topK int,
) (string, domain.ConversationHistory, error) {
	turn, err := m.AnswerTurn(ctx, query, history, topK)
	if err != nil {
		return "", nil, err
	}
	return turn.Answer, turn.History, nil
}

func (m *mockAnswerService) AnswerTurn(
	_ context.Context,
	query string,
	history domain.ConversationHistory,
	topK int,
) (*domain.Turn, error) {
	m.gotQuery, m.gotTopK, m.gotHistory = query, topK, history
	if m.err != nil {
		return nil, m.err
	}
	answer := m.answer
	if m.genErr != nil {
		answer = "Error generating response: " + m.genErr.Error()
	}
	return &domain.Turn{
		Query:         query,
		Answer:        answer,
		Context:       m.records,
		History:       history.Extend(domain.UserMessage(query), domain.AssistantMessage(answer)),
		GenerationErr: m.genErr,
	}, nil
}

func (m *mockAnswerService) Retrieve(_ context.Context, query string, topK int) ([]domain.RetrievedRecord, error) {
	m.gotQuery, m.gotTopK = query, topK
	return m.records, m.err
}

// mockCounter is a mock RecordCounter.
type mockCounter struct {
	n   int
	err error
}

func (m *mockCounter) Count(_ context.Context) (int, error) {
	return m.n, m.err
}
