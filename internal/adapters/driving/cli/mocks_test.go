package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	configmem "github.com/Hmv123/RAG-Application/internal/adapters/driven/config/memory"
	"github.com/Hmv123/RAG-Application/internal/adapters/driven/storage/memory"
	"github.com/Hmv123/RAG-Application/internal/adapters/driving/oauth"
	"github.com/Hmv123/RAG-Application/internal/app"
	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/services"
	"github.com/Hmv123/RAG-Application/internal/extractors"
)

// mockEmbedder returns the same vector for every text unless the text
// contains failOn.
type mockEmbedder struct {
	failOn string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.failOn != "" && strings.Contains(text, m.failOn) {
		return nil, domain.ErrProvider
	}
	return []float32{1, 0, 0}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return 3 }
func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockLLM echoes the last user message, or fails with err.
type mockLLM struct {
	mu    sync.Mutex
	err   error
	calls [][]domain.Message
}

func (m *mockLLM) Chat(_ context.Context, messages []domain.Message, _ domain.SamplingParams) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, messages)
	if m.err != nil {
		return "", m.err
	}
	last := messages[len(messages)-1].Content
	_, question, _ := strings.Cut(last, "Question: ")
	return "answer to " + question, nil
}

func (m *mockLLM) lastCall() []domain.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	return m.calls[len(m.calls)-1]
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// testEnv is an in-process pipeline shared by every command of one test.
type testEnv struct {
	index    *memory.IndexStore
	embedder *mockEmbedder
	llm      *mockLLM
	config   *configmem.ConfigStore
	builds   []*domain.AppSettings
}

// setupTestServices wires the CLI to in-memory collaborators. The previous
// wiring is restored when the test ends.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		index:    memory.NewIndexStore(),
		embedder: &mockEmbedder{},
		llm:      &mockLLM{},
		config:   configmem.NewConfigStore(),
	}

	oldSettings, oldPath, oldBuild := settingsService, configPath, buildPipeline
	t.Cleanup(func() {
		settingsService, configPath, buildPipeline = oldSettings, oldPath, oldBuild
	})

	SetDependencies(Dependencies{
		Settings:   services.NewSettingsService(env.config, nil).WithEnv(nil),
		ConfigPath: "/tmp/ragapp/config.toml",
		Build:      env.build,
	})
	return env
}

func (e *testEnv) build(_ context.Context, settings *domain.AppSettings, needs app.Needs) (*app.Pipeline, error) {
	e.builds = append(e.builds, settings)

	p := &app.Pipeline{
		Settings:   *settings,
		Extractors: extractors.Default(),
		Index:      e.index,
		Embedder:   e.embedder,
	}

	if needs.Ingest {
		ingest, err := services.NewIngestService(p.Extractors, e.embedder, e.index, services.IngestConfig{
			Chunking:      settings.Chunking,
			Workers:       settings.Ingest.Workers,
			Mode:          settings.Embedding.Mode,
			FailurePolicy: settings.Embedding.FailurePolicy,
			Dedup:         settings.Ingest.Dedup,
			Progress:      needs.Progress,
		})
		if err != nil {
			return nil, err
		}
		p.Ingest = ingest
	}

	if needs.Answer {
		p.LLM = e.llm
		answer, err := services.NewAnswerService(e.index, e.llm, e.embedder, services.AnswerConfig{
			TopK: settings.Answer.TopK,
			Sampling: domain.SamplingParams{
				Temperature: settings.Answer.Temperature,
				MaxTokens:   settings.Answer.MaxTokens,
			},
			RetrievalTimeout:  time.Second,
			GenerationTimeout: time.Second,
		})
		if err != nil {
			return nil, err
		}
		p.Answer = answer
	}

	return p, nil
}

func (e *testEnv) lastBuild() *domain.AppSettings {
	if len(e.builds) == 0 {
		return nil
	}
	return e.builds[len(e.builds)-1]
}

// resetFlags restores every command flag to its default. Cobra keeps flag
// values between Execute calls on the shared root command.
func resetFlags() {
	ingestWatch, ingestDebounce, ingestFormat = false, 2*time.Second, "text"
	ingestWorkers, ingestChunkSize, ingestOverlap = 0, 0, -1
	askTopK, askShowContext, askJSON = 0, false, false
	chatTopK, chatPlain = 0, false
	configShowSecrets, configPing = false, false
	authNoBrowser, authTimeout, authPort = false, oauth.DefaultLoginTimeout, 0
	versionShort = false
	verbose, envFile = false, ""
}

// execute runs the root command with args and returns everything it printed.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append(args, "--env-file", ""))
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// seed stores records directly in the index.
func (e *testEnv) seed(t *testing.T, contents ...string) {
	t.Helper()
	records := make([]domain.IndexedRecord, len(contents))
	for i, c := range contents {
		records[i] = domain.IndexedRecord{
			ID:           "seed-" + string(rune('a'+i)),
			Content:      c,
			Embedding:    []float32{1, 0, 0},
			DocumentName: "seed.txt",
			Position:     i,
		}
	}
	require.NoError(t, e.index.Upsert(context.Background(), records))
}

var errProviderDown = errors.Join(domain.ErrProvider, errors.New("connection refused"))
