package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driving"
	"github.com/Hmv123/RAG-Application/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// AnswerConfig tunes answering. Zero values take defaults.
type AnswerConfig struct {
	// TopK is used when a call passes topK <= 0.
	TopK int

	// Sampling is sent with every generation request.
	Sampling domain.SamplingParams

	// SystemPrompt is the instruction inserted before the user message.
	SystemPrompt string

	// RetrievalTimeout bounds query embedding plus the store query.
	RetrievalTimeout time.Duration

	// GenerationTimeout bounds the provider call.
	GenerationTimeout time.Duration
}

// AnswerService answers questions from indexed context.
//
// A call never mutates the caller's history. Store failures degrade to an
// empty context and provider failures become a visible fallback answer, so
// the only returned errors are invalid input and cancellation.
type AnswerService struct {
	store    driven.IndexStore
	llm      driven.LLMService
	embedder driven.EmbeddingService
	cfg      AnswerConfig
}

// NewAnswerService creates an answering service. embedder is optional;
// without it queries are ranked by the store's keyword relevance.
func NewAnswerService(
	store driven.IndexStore,
	llm driven.LLMService,
	embedder driven.EmbeddingService,
	cfg AnswerConfig,
) (*AnswerService, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, domain.ErrIndexUnavailable)
	}
	if llm == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, domain.ErrLLMUnavailable)
	}

	if cfg.TopK <= 0 {
		cfg.TopK = domain.DefaultTopK
	}
	if cfg.Sampling == (domain.SamplingParams{}) {
		cfg.Sampling = domain.SamplingParams{
			Temperature: domain.DefaultTemperature,
			MaxTokens:   domain.DefaultMaxTokens,
		}
	}
	if cfg.Sampling.MaxTokens <= 0 {
		cfg.Sampling.MaxTokens = domain.DefaultMaxTokens
	}
	if strings.TrimSpace(cfg.SystemPrompt) == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.RetrievalTimeout <= 0 {
		cfg.RetrievalTimeout = domain.DefaultRetrievalTimeout
	}
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = domain.DefaultGenerationTimeout
	}

	return &AnswerService{
		store:    store,
		llm:      llm,
		embedder: embedder,
		cfg:      cfg,
	}, nil
}

// Config returns the effective configuration after defaults.
func (s *AnswerService) Config() AnswerConfig {
	return s.cfg
}

// Answer returns the answer text and a new history holding the caller's
// history followed by the bare query and the answer.
func (s *AnswerService) Answer(
	ctx context.Context,
	query string,
	history domain.ConversationHistory,
	topK int,
) (string, domain.ConversationHistory, error) {
	turn, err := s.AnswerTurn(ctx, query, history, topK)
	if err != nil {
		return "", history, err
	}
	return turn.Answer, turn.History, nil
}

// AnswerTurn runs one retrieve-then-generate turn.
func (s *AnswerService) AnswerTurn(
	ctx context.Context,
	query string,
	history domain.ConversationHistory,
	topK int,
) (*domain.Turn, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = s.cfg.TopK
	}

	turn := &domain.Turn{Query: query}

	// 1. RETRIEVE
	records, err := s.Retrieve(ctx, query, topK)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.Warn("Retrieval failed, answering without context: %v", err)
		turn.RetrievalErr = err
		records = nil
	}
	turn.Context = records

	// 2. BUILD PROMPT
	contextText := BuildContext(records)
	messages := BuildMessages(history, s.cfg.SystemPrompt, contextText, query)
	logger.Debug("Prompt: %d messages, %d context records, %d context bytes",
		len(messages), len(records), len(contextText))

	// 3. GENERATE
	genCtx, cancel := context.WithTimeout(ctx, s.cfg.GenerationTimeout)
	answer, err := s.llm.Chat(genCtx, messages, s.cfg.Sampling)
	cancel()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		err = ensureWrapped(err, domain.ErrProvider)
		logger.Warn("Generation failed: %v", err)
		turn.GenerationErr = err
		answer = FallbackAnswer(err)
	}
	turn.Answer = answer

	// 4. EXTEND HISTORY
	turn.History = history.Extend(domain.UserMessage(query), domain.AssistantMessage(answer))
	return turn, nil
}

// Retrieve returns up to topK records for query, in store order.
// Query embedding failures fall back to a text-only query.
func (s *AnswerService) Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievedRecord, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = s.cfg.TopK
	}

	retrieveCtx, cancel := context.WithTimeout(ctx, s.cfg.RetrievalTimeout)
	defer cancel()

	q := domain.IndexQuery{Text: query, TopK: topK}
	if s.embedder != nil {
		vec, err := s.embedder.Embed(retrieveCtx, query)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logger.Warn("Query embedding failed, using text relevance: %v", err)
		} else {
			q.Vector = vec
		}
	}

	records, err := s.store.Query(retrieveCtx, q)
	if err != nil {
		return nil, ensureWrapped(err, domain.ErrStore)
	}
	if len(records) > topK {
		records = records[:topK]
	}

	logger.Debug("Retrieved %d records for query (top_k=%d)", len(records), topK)
	return records, nil
}
