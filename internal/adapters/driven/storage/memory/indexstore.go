// Package memory provides in-process implementations of the driven ports.
// Nothing survives the process, which makes it the store of choice for
// tests and one-shot "ingest then ask" runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Hmv123/RAG-Application/internal/adapters/driven/storage/rank"
	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore is an in-memory implementation of driven.IndexStore.
// Vector queries rank by cosine similarity, text-only queries by keyword overlap.
type IndexStore struct {
	mu      sync.RWMutex
	records map[string]domain.IndexedRecord
	order   []string
}

// NewIndexStore creates a new in-memory index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{
		records: make(map[string]domain.IndexedRecord),
	}
}

// Upsert stores records, replacing any with the same ID.
func (s *IndexStore) Upsert(ctx context.Context, records []domain.IndexedRecord) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: upsert: %w", domain.ErrStore, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("%w: record without id", domain.ErrStore)
		}
		if _, exists := s.records[r.ID]; !exists {
			s.order = append(s.order, r.ID)
		}
		r.Embedding = append([]float32(nil), r.Embedding...)
		s.records[r.ID] = r
	}
	return nil
}

// Query returns the q.TopK most relevant records.
func (s *IndexStore) Query(ctx context.Context, q domain.IndexQuery) ([]domain.RetrievedRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: query: %w", domain.ErrStore, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	terms := rank.Terms(q.Text)
	var results []domain.RetrievedRecord
	for _, id := range s.order {
		r := s.records[id]

		var score float64
		if q.Vector != nil {
			if len(r.Embedding) != len(q.Vector) {
				continue
			}
			score = rank.Cosine(q.Vector, r.Embedding)
		} else {
			score = rank.Keyword(terms, r.Content)
			if score == 0 {
				continue
			}
		}

		results = append(results, domain.RetrievedRecord{
			ID:           r.ID,
			Content:      r.Content,
			DocumentName: r.DocumentName,
			Score:        score,
		})
	}
	return rank.Top(results, q.TopK), nil
}

// Count returns the number of stored records.
func (s *IndexStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Close is a no-op.
func (s *IndexStore) Close() error {
	return nil
}
