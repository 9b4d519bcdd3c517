package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

type fakeChat struct {
	reply   string
	err     error
	got     chatRequest
	infoErr error
}

func (f *fakeChat) send(_ context.Context, req chatRequest) (string, error) {
	f.got = req
	return f.reply, f.err
}

func (f *fakeChat) info(_ context.Context) error { return f.infoErr }
func (f *fakeChat) close() error                 { return nil }

func TestNewLLMService_RequiresKey(t *testing.T) {
	_, err := NewLLMService(t.Context(), Config{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestBuildRequest(t *testing.T) {
	req, err := buildRequest([]domain.Message{
		domain.UserMessage("first"),
		domain.AssistantMessage("answer"),
		domain.SystemMessage("be careful"),
		domain.UserMessage("Context:\nc\n\nQuestion: q"),
	})

	require.NoError(t, err)
	assert.Equal(t, "be careful", req.System)
	assert.Equal(t, "Context:\nc\n\nQuestion: q", req.Prompt)
	require.Len(t, req.History, 2)
	assert.Equal(t, "user", req.History[0].Role)
	assert.Equal(t, "model", req.History[1].Role)
	assert.Equal(t, genai.Text("answer"), req.History[1].Parts[0])
}

func TestBuildRequest_MustEndWithUser(t *testing.T) {
	_, err := buildRequest([]domain.Message{domain.UserMessage("a"), domain.AssistantMessage("b")})
	assert.ErrorIs(t, err, domain.ErrProvider)

	_, err = buildRequest([]domain.Message{domain.SystemMessage("only")})
	assert.ErrorIs(t, err, domain.ErrProvider)
}

func TestLLMService_Chat(t *testing.T) {
	fake := &fakeChat{reply: " ok "}
	svc := &LLMService{client: fake, model: DefaultModel}

	answer, err := svc.Chat(t.Context(), []domain.Message{domain.UserMessage("q")},
		domain.SamplingParams{Temperature: 0.2, MaxTokens: 1000})

	require.NoError(t, err)
	assert.Equal(t, "ok", answer)
	assert.Equal(t, 1000, fake.got.Params.MaxTokens)
}

func TestLLMService_Errors(t *testing.T) {
	svc := &LLMService{client: &fakeChat{err: errors.New("blocked")}, model: DefaultModel}
	_, err := svc.Chat(t.Context(), []domain.Message{domain.UserMessage("q")}, domain.SamplingParams{})
	assert.ErrorIs(t, err, domain.ErrProvider)

	empty := &LLMService{client: &fakeChat{}, model: DefaultModel}
	_, err = empty.Chat(t.Context(), []domain.Message{domain.UserMessage("q")}, domain.SamplingParams{})
	assert.ErrorIs(t, err, domain.ErrProvider)

	pingFail := &LLMService{client: &fakeChat{infoErr: errors.New("bad key")}, model: DefaultModel}
	assert.ErrorIs(t, pingFail.Ping(t.Context()), domain.ErrProvider)
}
