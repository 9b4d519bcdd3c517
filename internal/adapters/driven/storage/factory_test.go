package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hmv123/RAG-Application/internal/adapters/driven/storage/memory"
	"github.com/Hmv123/RAG-Application/internal/adapters/driven/storage/sqlite"
	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

func TestNewIndexStore(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		store, err := NewIndexStore(t.Context(), domain.IndexSettings{Kind: domain.IndexMemory})
		require.NoError(t, err)
		assert.IsType(t, &memory.IndexStore{}, store)
	})

	t.Run("sqlite", func(t *testing.T) {
		store, err := NewIndexStore(t.Context(), domain.IndexSettings{Kind: domain.IndexSQLite, DataDir: t.TempDir()})
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &sqlite.Store{}, store)
	})

	t.Run("weaviate unreachable", func(t *testing.T) {
		_, err := NewIndexStore(t.Context(), domain.IndexSettings{Kind: domain.IndexWeaviate, WeaviateHost: "127.0.0.1:1"})
		assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := NewIndexStore(t.Context(), domain.IndexSettings{Kind: "faiss"})
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})
}
