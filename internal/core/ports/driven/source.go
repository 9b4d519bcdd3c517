package driven

import (
	"context"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

// DocumentSource enumerates the named blobs to ingest.
type DocumentSource interface {
	// Name describes the source in logs and reports (e.g. "dir:/data/pdfs").
	Name() string

	// List returns every document in the source with its content loaded.
	List(ctx context.Context) ([]domain.SourceDocument, error)
}

// Watcher is implemented by sources that can report changes.
type Watcher interface {
	// Watch emits the name of each changed document until ctx is done.
	// The channel is closed when watching stops.
	Watch(ctx context.Context) (<-chan string, error)
}
