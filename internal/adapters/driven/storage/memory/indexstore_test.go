package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

func seed(t *testing.T, store *IndexStore) {
	t.Helper()
	err := store.Upsert(t.Context(), []domain.IndexedRecord{
		{ID: "1", Content: "solar panels convert sunlight", Embedding: []float32{1, 0, 0}, DocumentName: "energy.txt"},
		{ID: "2", Content: "wind turbines spin", Embedding: []float32{0, 1, 0}, DocumentName: "energy.txt", Position: 1},
		{ID: "3", Content: "hydro dams store water", Embedding: []float32{0.7, 0.7, 0}, DocumentName: "water.txt"},
	})
	require.NoError(t, err)
}

func TestNewIndexStore(t *testing.T) {
	store := NewIndexStore()
	require.NotNil(t, store)

	n, err := store.Count(t.Context())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, store.Close())
}

func TestIndexStore_VectorQuery(t *testing.T) {
	store := NewIndexStore()
	seed(t, store)

	results, err := store.Query(t.Context(), domain.IndexQuery{Vector: []float32{1, 0, 0}, TopK: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "1", results[0].ID)
	assert.Equal(t, "3", results[1].ID)
	assert.Equal(t, "energy.txt", results[0].DocumentName)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestIndexStore_VectorQuery_SkipsDimensionMismatch(t *testing.T) {
	store := NewIndexStore()
	seed(t, store)

	results, err := store.Query(t.Context(), domain.IndexQuery{Vector: []float32{1, 0}, TopK: 10})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestIndexStore_KeywordQuery(t *testing.T) {
	store := NewIndexStore()
	seed(t, store)

	results, err := store.Query(t.Context(), domain.IndexQuery{Text: "How do wind turbines work?", TopK: 10})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "2", results[0].ID)
}

func TestIndexStore_UpsertReplaces(t *testing.T) {
	store := NewIndexStore()
	seed(t, store)

	err := store.Upsert(t.Context(), []domain.IndexedRecord{{ID: "2", Content: "wind farms offshore", Embedding: []float32{0, 1, 0}}})
	require.NoError(t, err)

	n, err := store.Count(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	results, err := store.Query(t.Context(), domain.IndexQuery{Text: "offshore", TopK: 5})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "wind farms offshore", results[0].Content)
}

func TestIndexStore_UpsertRejectsMissingID(t *testing.T) {
	store := NewIndexStore()

	err := store.Upsert(t.Context(), []domain.IndexedRecord{{Content: "x"}})
	assert.ErrorIs(t, err, domain.ErrStore)
}

func TestIndexStore_CancelledContext(t *testing.T) {
	store := NewIndexStore()
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := store.Query(ctx, domain.IndexQuery{Text: "x", TopK: 1})
	assert.ErrorIs(t, err, domain.ErrStore)
	assert.ErrorIs(t, err, context.Canceled)

	err = store.Upsert(ctx, []domain.IndexedRecord{{ID: "1"}})
	assert.ErrorIs(t, err, domain.ErrStore)
}

func TestIndexStore_ConcurrentUpsert(t *testing.T) {
	store := NewIndexStore()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Upsert(context.Background(), []domain.IndexedRecord{
				{ID: fmt.Sprintf("r-%d", i), Content: "text", Embedding: []float32{1}},
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	n, err := store.Count(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 20, n)
}
