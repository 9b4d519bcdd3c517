package openai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func chatServer(t *testing.T, reply string, seen *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/models":
			_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
		case "/v1/chat/completions":
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":      "x",
				"object":  "chat.completion",
				"choices": []map[string]any{{"index": 0, "message": map[string]string{"role": "assistant", "content": reply}, "finish_reason": "stop"}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewLLMService_Validation(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = NewLLMService(Config{APIKey: "k", Azure: true})
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	svc, err := NewLLMService(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
}

func TestLLMService_Chat(t *testing.T) {
	var seen chatRequest
	srv := chatServer(t, " Paris. ", &seen)

	svc, err := NewLLMService(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1", Model: "gpt-test"})
	require.NoError(t, err)

	answer, err := svc.Chat(t.Context(), []domain.Message{
		domain.UserMessage("earlier"),
		domain.AssistantMessage("reply"),
		domain.SystemMessage("be helpful"),
		domain.UserMessage("Context:\nx\n\nQuestion: y"),
	}, domain.SamplingParams{Temperature: 0.2, MaxTokens: 1000})

	require.NoError(t, err)
	assert.Equal(t, "Paris.", answer)
	assert.Equal(t, "gpt-test", seen.Model)
	assert.InDelta(t, 0.2, seen.Temperature, 1e-6)
	assert.Equal(t, 1000, seen.MaxTokens)
	require.Len(t, seen.Messages, 4)
	assert.Equal(t, "system", seen.Messages[2].Role)
	assert.Equal(t, "user", seen.Messages[3].Role)

	assert.NoError(t, svc.Ping(t.Context()))
}

func TestLLMService_EmptyReply(t *testing.T) {
	var seen chatRequest
	srv := chatServer(t, "  ", &seen)

	svc, err := NewLLMService(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	_, err = svc.Chat(t.Context(), []domain.Message{domain.UserMessage("q")}, domain.SamplingParams{})
	assert.ErrorIs(t, err, domain.ErrProvider)
}

func TestLLMService_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	svc, err := NewLLMService(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1", Timeout: 20 * time.Millisecond})
	require.NoError(t, err)

	_, err = svc.Chat(t.Context(), []domain.Message{domain.UserMessage("q")}, domain.SamplingParams{})
	assert.ErrorIs(t, err, domain.ErrProvider)
}

func TestLLMService_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	svc, err := NewLLMService(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	_, err = svc.Chat(t.Context(), []domain.Message{domain.UserMessage("q")}, domain.SamplingParams{})
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestLLMService_AzurePing(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"p"}}]}`))
	}))
	defer srv.Close()

	svc, err := NewLLMService(Config{APIKey: "az", BaseURL: srv.URL, Model: "chat", Azure: true})
	require.NoError(t, err)

	require.NoError(t, svc.Ping(t.Context()))
	assert.Equal(t, "/openai/deployments/chat/chat/completions", path)
}
