package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Hmv123/RAG-Application/internal/chunker"
	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driving"
	"github.com/Hmv123/RAG-Application/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// recordNamespace seeds content-hash record IDs.
var recordNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("ragapp:indexed-record"))

// IngestConfig tunes an ingestion run. Zero values take defaults.
type IngestConfig struct {
	// Chunking is the word window. The zero value means 500/50.
	Chunking domain.ChunkSettings

	// Workers is the number of documents processed concurrently.
	Workers int

	// Mode selects one embedding request per chunk or one per document.
	Mode domain.EmbeddingMode

	// FailurePolicy decides whether a failed chunk embedding skips the
	// chunk or fails the document.
	FailurePolicy domain.EmbeddingFailurePolicy

	// Dedup selects how record IDs are generated.
	Dedup domain.DedupPolicy

	// Progress, if set, is called once per finished document. Calls are
	// serialised.
	Progress func(domain.DocumentResult)
}

// IngestService runs documents through extraction, chunking, embedding and
// upload.
type IngestService struct {
	extractors driven.ExtractorRegistry
	embedder   driven.EmbeddingService
	store      driven.IndexStore
	chunker    *chunker.Chunker
	cfg        IngestConfig

	progressMu sync.Mutex
}

// NewIngestService creates an ingestion service. Missing collaborators and
// invalid chunk windows fail with domain.ErrConfiguration.
func NewIngestService(
	extractors driven.ExtractorRegistry,
	embedder driven.EmbeddingService,
	store driven.IndexStore,
	cfg IngestConfig,
) (*IngestService, error) {
	switch {
	case extractors == nil:
		return nil, fmt.Errorf("%w: extractor registry is required", domain.ErrConfiguration)
	case embedder == nil:
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, domain.ErrEmbeddingUnavailable)
	case store == nil:
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, domain.ErrIndexUnavailable)
	}

	if cfg.Chunking == (domain.ChunkSettings{}) {
		cfg.Chunking = domain.ChunkSettings{Size: domain.DefaultChunkSize, Overlap: domain.DefaultChunkOverlap}
	}
	c, err := chunker.FromSettings(cfg.Chunking)
	if err != nil {
		return nil, err
	}

	if cfg.Workers <= 0 {
		cfg.Workers = domain.DefaultIngestWorkers
	}
	if cfg.Mode == "" {
		cfg.Mode = domain.EmbeddingModePerChunk
	}
	if cfg.FailurePolicy == "" {
		cfg.FailurePolicy = domain.FailurePolicySkipChunk
	}
	if cfg.Dedup == "" {
		cfg.Dedup = domain.DedupNone
	}
	if !cfg.Mode.IsValid() {
		return nil, fmt.Errorf("%w: unknown embedding mode %q", domain.ErrConfiguration, cfg.Mode)
	}
	if !cfg.FailurePolicy.IsValid() {
		return nil, fmt.Errorf("%w: unknown embedding failure policy %q", domain.ErrConfiguration, cfg.FailurePolicy)
	}
	if !cfg.Dedup.IsValid() {
		return nil, fmt.Errorf("%w: unknown dedup policy %q", domain.ErrConfiguration, cfg.Dedup)
	}

	return &IngestService{
		extractors: extractors,
		embedder:   embedder,
		store:      store,
		chunker:    c,
		cfg:        cfg,
	}, nil
}

// Config returns the effective configuration after defaults.
func (s *IngestService) Config() IngestConfig {
	return s.cfg
}

// IngestSource lists a source and ingests everything it returns.
func (s *IngestService) IngestSource(ctx context.Context, source driven.DocumentSource) (*domain.IngestReport, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: nil document source", domain.ErrInvalidInput)
	}

	docs, err := source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", source.Name(), err)
	}

	logger.Info("Source %s returned %d documents", source.Name(), len(docs))
	return s.Ingest(ctx, docs)
}

// Ingest processes a batch of documents. Per-document failures are recorded
// in the report. The error is non-nil only when ctx ends before the batch
// completes; the partial report is still returned.
func (s *IngestService) Ingest(ctx context.Context, docs []domain.SourceDocument) (*domain.IngestReport, error) {
	report := &domain.IngestReport{
		Documents: make([]domain.DocumentResult, len(docs)),
		StartedAt: time.Now(),
	}

	workers := s.cfg.Workers
	if workers > len(docs) {
		workers = len(docs)
	}

	logger.Section("Ingest")
	logger.Info("Ingesting %d documents with %d workers", len(docs), workers)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				result := s.processDocument(ctx, &docs[i])
				report.Documents[i] = result
				s.reportProgress(result)
			}
		}()
	}

	dispatched := 0
dispatch:
	for i := range docs {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
			dispatched++
		}
	}
	close(jobs)
	wg.Wait()

	// Documents never handed to a worker carry the cancellation cause.
	for i := dispatched; i < len(docs); i++ {
		report.Documents[i] = domain.DocumentResult{Name: docs[i].Name, Err: ctx.Err()}
	}

	report.FinishedAt = time.Now()
	logger.Info("Ingest complete: %d ok, %d failed, %d records uploaded in %s",
		report.Succeeded(), len(report.Failed()), report.TotalUploaded(), report.Duration().Round(time.Millisecond))

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// processDocument runs one document through the pipeline. Every failure is
// captured in the returned result.
func (s *IngestService) processDocument(ctx context.Context, doc *domain.SourceDocument) domain.DocumentResult {
	start := time.Now()
	result := domain.DocumentResult{Name: doc.Name}
	defer func() {
		result.Duration = time.Since(start)
	}()

	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	// 1. EXTRACT
	text, err := s.extractors.Extract(ctx, doc)
	if err != nil {
		logger.Warn("Extraction failed for %s: %v", doc.Name, err)
		result.Err = err
		return result
	}

	// 2. CHUNK
	chunks := s.chunker.Split(doc.Name, text)
	result.ChunksTotal = len(chunks)
	if len(chunks) == 0 {
		logger.Debug("No chunks for %s, skipping upload", doc.Name)
		return result
	}

	// 3. EMBED
	records, failures, err := s.embed(ctx, chunks)
	result.ChunkFailures = failures
	if err != nil {
		logger.Warn("Embedding failed for %s: %v", doc.Name, err)
		result.Err = err
		return result
	}
	if len(records) == 0 {
		result.Err = fmt.Errorf("%w: all %d chunks failed to embed: %w",
			domain.ErrProvider, len(chunks), failures[0].Err)
		logger.Warn("No chunks of %s could be embedded", doc.Name)
		return result
	}

	// 4. UPLOAD
	if err := s.store.Upsert(ctx, records); err != nil {
		result.Err = ensureWrapped(err, domain.ErrStore)
		logger.Warn("Upload failed for %s: %v", doc.Name, err)
		return result
	}
	result.ChunksUploaded = len(records)

	logger.Debug("Ingested %s: %d/%d chunks", doc.Name, result.ChunksUploaded, result.ChunksTotal)
	return result
}

// embed turns chunks into records according to the embedding mode and
// failure policy. A non-nil error fails the whole document.
func (s *IngestService) embed(ctx context.Context, chunks []domain.Chunk) (
	[]domain.IndexedRecord, []domain.ChunkFailure, error) {
	if s.cfg.Mode == domain.EmbeddingModeBatch {
		return s.embedBatch(ctx, chunks)
	}

	records := make([]domain.IndexedRecord, 0, len(chunks))
	var failures []domain.ChunkFailure
	for _, c := range chunks {
		vec, err := s.embedder.Embed(ctx, c.Content)
		if err != nil {
			err = ensureWrapped(err, domain.ErrProvider)
			if s.cfg.FailurePolicy == domain.FailurePolicyFailDocument || ctx.Err() != nil {
				return nil, failures, fmt.Errorf("embed chunk %d: %w", c.Position, err)
			}
			failures = append(failures, domain.ChunkFailure{Position: c.Position, Err: err})
			continue
		}
		records = append(records, s.record(c, vec))
	}
	return records, failures, nil
}

// embedBatch embeds every chunk of a document in one request. A failed
// request fails every chunk, so under either policy the document fails.
func (s *IngestService) embedBatch(ctx context.Context, chunks []domain.Chunk) (
	[]domain.IndexedRecord, []domain.ChunkFailure, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err == nil && len(vectors) != len(chunks) {
		err = fmt.Errorf("%w: batch returned %d embeddings for %d chunks",
			domain.ErrProvider, len(vectors), len(chunks))
	}
	if err != nil {
		err = ensureWrapped(err, domain.ErrProvider)
		var failures []domain.ChunkFailure
		if s.cfg.FailurePolicy == domain.FailurePolicySkipChunk {
			failures = make([]domain.ChunkFailure, len(chunks))
			for i, c := range chunks {
				failures[i] = domain.ChunkFailure{Position: c.Position, Err: err}
			}
		}
		return nil, failures, fmt.Errorf("embed batch: %w", err)
	}

	records := make([]domain.IndexedRecord, len(chunks))
	for i, c := range chunks {
		records[i] = s.record(c, vectors[i])
	}
	return records, nil, nil
}

func (s *IngestService) record(c domain.Chunk, vec []float32) domain.IndexedRecord {
	return domain.IndexedRecord{
		ID:           s.recordID(c),
		Content:      c.Content,
		Embedding:    vec,
		DocumentName: c.DocumentName,
		Position:     c.Position,
	}
}

// recordID returns a fresh random UUID, or under content-hash dedup a name
// based UUID so re-ingesting the same document replaces its records.
func (s *IngestService) recordID(c domain.Chunk) string {
	if s.cfg.Dedup == domain.DedupContentHash {
		key := c.DocumentName + "\x00" + strconv.Itoa(c.Position) + "\x00" + c.Content
		return uuid.NewSHA1(recordNamespace, []byte(key)).String()
	}
	return uuid.NewString()
}

func (s *IngestService) reportProgress(result domain.DocumentResult) {
	if s.cfg.Progress == nil {
		return
	}
	s.progressMu.Lock()
	defer s.progressMu.Unlock()
	s.cfg.Progress(result)
}

// ensureWrapped wraps err with sentinel unless it already matches. Deadline
// errors additionally match domain.ErrProvider.
func ensureWrapped(err, sentinel error) error {
	timedOut := errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domain.ErrProvider)
	switch {
	case errors.Is(err, sentinel) && !timedOut:
		return err
	case errors.Is(err, sentinel):
		return fmt.Errorf("%w: %w", domain.ErrProvider, err)
	case timedOut && sentinel != domain.ErrProvider:
		return fmt.Errorf("%w: %w: %w", sentinel, domain.ErrProvider, err)
	default:
		return fmt.Errorf("%w: %w", sentinel, err)
	}
}
