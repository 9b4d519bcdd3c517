package driven

import (
	"context"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

// IndexStore holds indexed records and answers relevance queries.
//
// Relevance ranking belongs entirely to the store; callers consume results
// in the order returned. Implementations must accept concurrent Upsert
// calls. Failures are reported wrapped in domain.ErrStore.
type IndexStore interface {
	// Upsert writes records in one call. Records whose ID already exists
	// are replaced.
	Upsert(ctx context.Context, records []domain.IndexedRecord) error

	// Query returns at most q.TopK records ordered by relevance.
	// When q.Vector is nil the store ranks by q.Text alone.
	Query(ctx context.Context, q domain.IndexQuery) ([]domain.RetrievedRecord, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
