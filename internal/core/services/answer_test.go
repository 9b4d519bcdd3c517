package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

func newTestAnswer(t *testing.T, store *mockStore, llm *mockLLM, emb *mockEmbedder, cfg AnswerConfig) *AnswerService {
	t.Helper()
	var svc *AnswerService
	var err error
	if emb == nil {
		svc, err = NewAnswerService(store, llm, nil, cfg)
	} else {
		svc, err = NewAnswerService(store, llm, emb, cfg)
	}
	require.NoError(t, err)
	return svc
}

func TestNewAnswerService_Defaults(t *testing.T) {
	svc := newTestAnswer(t, &mockStore{}, &mockLLM{}, nil, AnswerConfig{})

	cfg := svc.Config()
	assert.Equal(t, 10, cfg.TopK)
	assert.InDelta(t, 0.2, cfg.Sampling.Temperature, 1e-6)
	assert.Equal(t, 1000, cfg.Sampling.MaxTokens)
	assert.Equal(t, DefaultSystemPrompt, cfg.SystemPrompt)
	assert.Equal(t, domain.DefaultRetrievalTimeout, cfg.RetrievalTimeout)
	assert.Equal(t, domain.DefaultGenerationTimeout, cfg.GenerationTimeout)
}

func TestNewAnswerService_MissingCollaborators(t *testing.T) {
	_, err := NewAnswerService(nil, &mockLLM{}, nil, AnswerConfig{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = NewAnswerService(&mockStore{}, nil, nil, AnswerConfig{})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestAnswer_BuildsPromptFromContext(t *testing.T) {
	store := &mockStore{results: []domain.RetrievedRecord{
		{ID: "1", Content: "Paris is the capital of France."},
		{ID: "2", Content: ""},
		{ID: "3", Content: "France is in Europe."},
	}}
	llm := &mockLLM{reply: "Paris."}
	svc := newTestAnswer(t, store, llm, nil, AnswerConfig{})

	answer, history, err := svc.Answer(context.Background(), "What is the capital?", nil, 0)

	require.NoError(t, err)
	assert.Equal(t, "Paris.", answer)
	assert.Equal(t, 10, store.lastQuery.TopK)
	assert.Nil(t, store.lastQuery.Vector)

	require.Len(t, llm.received, 2)
	assert.Equal(t, domain.SystemMessage(DefaultSystemPrompt), llm.received[0])
	assert.Equal(t, domain.UserMessage(
		"Context:\nParis is the capital of France.\nFrance is in Europe.\n\nQuestion: What is the capital?"),
		llm.received[1])
	assert.Equal(t, domain.SamplingParams{Temperature: 0.2, MaxTokens: 1000}, llm.params)

	assert.Equal(t, domain.ConversationHistory{
		domain.UserMessage("What is the capital?"),
		domain.AssistantMessage("Paris."),
	}, history)
}

func TestAnswer_HistoryIsNotMutated(t *testing.T) {
	original := make(domain.ConversationHistory, 2, 10)
	original[0] = domain.UserMessage("earlier")
	original[1] = domain.AssistantMessage("reply")
	llm := &mockLLM{reply: "now"}
	svc := newTestAnswer(t, &mockStore{}, llm, nil, AnswerConfig{})

	_, history, err := svc.Answer(context.Background(), "next", original, 3)

	require.NoError(t, err)
	assert.Len(t, original, 2)
	assert.Equal(t, domain.UserMessage("earlier"), original[0])
	assert.Equal(t, domain.Message{}, original[:3][2], "spare capacity must stay untouched")

	require.Len(t, history, 4)
	assert.Equal(t, domain.UserMessage("next"), history[2])
	assert.Equal(t, domain.AssistantMessage("now"), history[3])

	// The prompt carries history, system, then user. System never reaches history.
	require.Len(t, llm.received, 4)
	assert.Equal(t, domain.RoleSystem, llm.received[2].Role)
	for _, m := range history {
		assert.NotEqual(t, domain.RoleSystem, m.Role)
	}
}

func TestAnswer_NoResults(t *testing.T) {
	llm := &mockLLM{reply: "I don't know."}
	svc := newTestAnswer(t, &mockStore{}, llm, nil, AnswerConfig{})

	turn, err := svc.AnswerTurn(context.Background(), "anything?", nil, 5)

	require.NoError(t, err)
	assert.Empty(t, turn.Context)
	assert.Nil(t, turn.RetrievalErr)
	assert.Equal(t, "Context:\n\n\nQuestion: anything?", llm.received[1].Content)
}

func TestAnswer_GenerationFailure(t *testing.T) {
	llm := &mockLLM{err: errors.New("rate limited")}
	svc := newTestAnswer(t, &mockStore{}, llm, nil, AnswerConfig{})

	turn, err := svc.AnswerTurn(context.Background(), "q", nil, 0)

	require.NoError(t, err)
	assert.True(t, turn.Failed())
	assert.ErrorIs(t, turn.GenerationErr, domain.ErrProvider)
	assert.Contains(t, turn.Answer, "Error generating response: ")
	assert.Contains(t, turn.Answer, "rate limited")

	last, ok := turn.History.Last()
	require.True(t, ok)
	assert.Equal(t, domain.AssistantMessage(turn.Answer), last)
}

func TestAnswer_GenerationTimeoutIsProviderError(t *testing.T) {
	llm := &mockLLM{block: true}
	svc := newTestAnswer(t, &mockStore{}, llm, nil, AnswerConfig{GenerationTimeout: 20 * time.Millisecond})

	turn, err := svc.AnswerTurn(context.Background(), "q", nil, 0)

	require.NoError(t, err)
	assert.ErrorIs(t, turn.GenerationErr, domain.ErrProvider)
	assert.ErrorIs(t, turn.GenerationErr, context.DeadlineExceeded)
	assert.Contains(t, turn.Answer, "Error generating response: ")
}

func TestAnswer_StoreFailureDegradesToEmptyContext(t *testing.T) {
	store := &mockStore{queryErr: errors.New("connection refused")}
	llm := &mockLLM{reply: "best effort"}
	svc := newTestAnswer(t, store, llm, nil, AnswerConfig{})

	turn, err := svc.AnswerTurn(context.Background(), "q", nil, 0)

	require.NoError(t, err)
	assert.ErrorIs(t, turn.RetrievalErr, domain.ErrStore)
	assert.Empty(t, turn.Context)
	assert.Equal(t, "best effort", turn.Answer)
	assert.Equal(t, "Context:\n\n\nQuestion: q", llm.received[1].Content)
}

func TestAnswer_RetrievalTimeout(t *testing.T) {
	store := &mockStore{queryBlock: true}
	llm := &mockLLM{reply: "ok"}
	svc := newTestAnswer(t, store, llm, nil, AnswerConfig{RetrievalTimeout: 20 * time.Millisecond})

	turn, err := svc.AnswerTurn(context.Background(), "q", nil, 0)

	require.NoError(t, err)
	assert.ErrorIs(t, turn.RetrievalErr, domain.ErrProvider)
	assert.Equal(t, "ok", turn.Answer)
}

func TestAnswer_EmptyQuery(t *testing.T) {
	svc := newTestAnswer(t, &mockStore{}, &mockLLM{}, nil, AnswerConfig{})

	_, history, err := svc.Answer(context.Background(), "   ", domain.ConversationHistory{domain.UserMessage("x")}, 0)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Len(t, history, 1)
}

func TestAnswer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := newTestAnswer(t, &mockStore{}, &mockLLM{}, nil, AnswerConfig{})

	_, err := svc.AnswerTurn(ctx, "q", nil, 0)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetrieve_UsesQueryEmbedding(t *testing.T) {
	store := &mockStore{results: []domain.RetrievedRecord{{Content: "a"}, {Content: "b"}, {Content: "c"}}}
	emb := &mockEmbedder{}
	svc := newTestAnswer(t, store, &mockLLM{}, emb, AnswerConfig{})

	records, err := svc.Retrieve(context.Background(), "hello", 2)

	require.NoError(t, err)
	assert.Len(t, records, 2, "results are capped at top_k")
	assert.Equal(t, []float32{5, 1}, store.lastQuery.Vector)
	assert.Equal(t, "hello", store.lastQuery.Text)
}

func TestRetrieve_EmbeddingFailureFallsBackToText(t *testing.T) {
	store := &mockStore{results: []domain.RetrievedRecord{{Content: "a"}}}
	svc := newTestAnswer(t, store, &mockLLM{}, &mockEmbedder{embedErr: errors.New("down")}, AnswerConfig{})

	records, err := svc.Retrieve(context.Background(), "hello", 0)

	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Nil(t, store.lastQuery.Vector)
	assert.Equal(t, 10, store.lastQuery.TopK)
}
