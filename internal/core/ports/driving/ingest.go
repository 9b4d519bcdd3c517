package driving

import (
	"context"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
)

// IngestService runs documents through extraction, chunking, embedding and
// upload.
type IngestService interface {
	// Ingest processes a batch of documents. Per-document failures are
	// recorded in the report and never abort the batch. The returned error
	// is reserved for invalid configuration and cancellation.
	Ingest(ctx context.Context, docs []domain.SourceDocument) (*domain.IngestReport, error)

	// IngestSource lists a source and ingests everything it returns.
	IngestSource(ctx context.Context, source driven.DocumentSource) (*domain.IngestReport, error)
}
