package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
)

// --- Mock implementations shared by service tests ---

// mockExtractors implements driven.ExtractorRegistry, returning the content
// as text unless the document name is listed in fail.
type mockExtractors struct {
	fail map[string]error
}

func (m *mockExtractors) Extract(_ context.Context, doc *domain.SourceDocument) (string, error) {
	if err, ok := m.fail[doc.Name]; ok {
		return "", err
	}
	return string(doc.Content), nil
}

func (m *mockExtractors) Register(driven.Extractor)      {}
func (m *mockExtractors) SupportedExtensions() []string { return []string{".txt"} }

// mockEmbedder implements driven.EmbeddingService.
// Texts containing failOn fail; batchErr fails every EmbedBatch call.
type mockEmbedder struct {
	mu         sync.Mutex
	failOn     string
	batchErr   error
	embedErr   error
	calls      int
	batchCalls int
	texts      []string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	m.texts = append(m.texts, text)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if m.failOn != "" && strings.Contains(text, m.failOn) {
		return nil, errors.New("embedding rejected")
	}
	return []float32{float32(len(text)), 1}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batchCalls++
	m.mu.Unlock()

	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1}
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return 2 }
func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockStore implements driven.IndexStore.
type mockStore struct {
	mu          sync.Mutex
	records     []domain.IndexedRecord
	upsertCalls int
	upsertErr   error
	results     []domain.RetrievedRecord
	queryErr    error
	queryBlock  bool
	lastQuery   domain.IndexQuery
}

func (m *mockStore) Upsert(_ context.Context, records []domain.IndexedRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertCalls++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.records = append(m.records, records...)
	return nil
}

func (m *mockStore) Query(ctx context.Context, q domain.IndexQuery) ([]domain.RetrievedRecord, error) {
	m.mu.Lock()
	m.lastQuery = q
	m.mu.Unlock()

	if m.queryBlock {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.results, nil
}

func (m *mockStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records), nil
}

func (m *mockStore) Close() error { return nil }

func (m *mockStore) byDocument(name string) []domain.IndexedRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.IndexedRecord
	for _, r := range m.records {
		if r.DocumentName == name {
			out = append(out, r)
		}
	}
	return out
}

// mockLLM implements driven.LLMService and records the messages it was sent.
type mockLLM struct {
	reply    string
	err      error
	block    bool
	received []domain.Message
	params   domain.SamplingParams
}

func (m *mockLLM) Chat(ctx context.Context, messages []domain.Message, params domain.SamplingParams) (string, error) {
	m.received = append([]domain.Message(nil), messages...)
	m.params = params
	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockSource implements driven.DocumentSource.
type mockSource struct {
	docs []domain.SourceDocument
	err  error
}

func (m *mockSource) Name() string { return "mock" }

func (m *mockSource) List(_ context.Context) ([]domain.SourceDocument, error) {
	return m.docs, m.err
}

// mockProbe implements driven.ProviderProbe.
type mockProbe struct {
	embedErr error
	llmErr   error
}

func (m *mockProbe) ProbeEmbedding(context.Context, *domain.EmbeddingSettings) error {
	return m.embedErr
}

func (m *mockProbe) ProbeLLM(context.Context, *domain.LLMSettings) error {
	return m.llmErr
}

func words(n int, prefix string) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = prefix
	}
	return strings.Join(parts, " ")
}
