package mcp

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

func TestNewServer(t *testing.T) {
	t.Run("nil answer service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingAnswerService)
	})

	t.Run("nil ports returns error", func(t *testing.T) {
		_, err := NewServer(nil)
		assert.ErrorIs(t, err, ErrMissingAnswerService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}})
		require.NoError(t, err)
		assert.NotNil(t, server)
		assert.NotNil(t, server.Handler())
	})
}

func TestPorts_Validate(t *testing.T) {
	assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingAnswerService)
	assert.NoError(t, (&Ports{Answer: &mockAnswerService{}}).Validate())
	assert.NoError(t, (&Ports{Answer: &mockAnswerService{}, Index: &mockCounter{}}).Validate())
}

// connect runs the server and a client over in-memory transports.
func connect(t *testing.T, ports *Ports) *mcp.ClientSession {
	t.Helper()

	server, err := NewServer(ports)
	require.NoError(t, err)

	serverT, clientT := mcp.NewInMemoryTransports()
	ss, err := server.Connect(t.Context(), serverT)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0"}, nil)
	cs, err := client.Connect(t.Context(), clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func TestServer_Session(t *testing.T) {
	answers := &mockAnswerService{
		answer:  "Paris",
		records: []domain.RetrievedRecord{{ID: "r1", Content: "Paris is the capital", DocumentName: "geo.txt", Score: 0.9}},
	}
	cs := connect(t, &Ports{Answer: answers, Index: &mockCounter{n: 7}})

	t.Run("lists tools", func(t *testing.T) {
		res, err := cs.ListTools(t.Context(), nil)
		require.NoError(t, err)
		names := make([]string, 0, len(res.Tools))
		for _, tool := range res.Tools {
			names = append(names, tool.Name)
		}
		assert.ElementsMatch(t, []string{"ask", "retrieve"}, names)
	})

	t.Run("calls ask", func(t *testing.T) {
		res, err := cs.CallTool(t.Context(), &mcp.CallToolParams{
			Name:      "ask",
			Arguments: map[string]any{"question": "capital of France?", "top_k": 3},
		})
		require.NoError(t, err)
		require.False(t, res.IsError)

		data, err := json.Marshal(res.StructuredContent)
		require.NoError(t, err)
		var out AskOutput
		require.NoError(t, json.Unmarshal(data, &out))

		assert.Equal(t, "Paris", out.Answer)
		assert.Len(t, out.History, 2)
		assert.Len(t, out.Sources, 1)
		assert.Equal(t, 3, answers.gotTopK)
	})

	t.Run("reads stats resource", func(t *testing.T) {
		res, err := cs.ReadResource(t.Context(), &mcp.ReadResourceParams{URI: "ragapp://index/stats"})
		require.NoError(t, err)
		require.Len(t, res.Contents, 1)

		var stats IndexStats
		require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &stats))
		assert.Equal(t, IndexStats{Records: 7, Available: true}, stats)
	})
}

func TestServer_Healthz(t *testing.T) {
	server, err := NewServer(&Ports{Answer: &mockAnswerService{}})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestServer_ServeStopsWithContext(t *testing.T) {
	server, err := NewServer(&Ports{Answer: &mockAnswerService{}})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz") //nolint:noctx
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
