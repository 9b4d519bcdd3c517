// Package storage builds the configured index store.
package storage

import (
	"context"
	"fmt"

	"github.com/Hmv123/RAG-Application/internal/adapters/driven/storage/memory"
	"github.com/Hmv123/RAG-Application/internal/adapters/driven/storage/sqlite"
	"github.com/Hmv123/RAG-Application/internal/adapters/driven/storage/weaviate"
	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
)

// NewIndexStore creates the index store selected by settings.Kind.
func NewIndexStore(ctx context.Context, settings domain.IndexSettings) (driven.IndexStore, error) {
	switch settings.Kind {
	case domain.IndexMemory:
		return memory.NewIndexStore(), nil
	case domain.IndexSQLite, "":
		store, err := sqlite.NewStore(settings.DataDir)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
		}
		return store, nil
	case domain.IndexWeaviate:
		store, err := weaviate.NewStore(ctx, weaviate.Config{
			Host:   settings.WeaviateHost,
			Scheme: settings.WeaviateScheme,
			APIKey: settings.WeaviateAPIKey,
			Class:  settings.WeaviateClass,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown index kind %q", domain.ErrConfiguration, settings.Kind)
	}
}
