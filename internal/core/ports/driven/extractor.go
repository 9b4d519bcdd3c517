package driven

import (
	"context"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

// Extractor turns a document blob into plain text.
// Unreadable, corrupt or nil input fails with domain.ErrExtraction.
type Extractor interface {
	// Name identifies the extractor in logs (e.g. "pdf").
	Name() string

	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// SupportedExtensions returns lower-case file extensions including the dot.
	SupportedExtensions() []string

	// Extract returns the document's text.
	Extract(ctx context.Context, doc *domain.SourceDocument) (string, error)
}

// ExtractorRegistry picks the extractor for a document.
// Selection is by MIME type first, then by file extension of the name.
type ExtractorRegistry interface {
	// Extract dispatches to the matching extractor. Documents no extractor
	// handles fail with both domain.ErrExtraction and domain.ErrUnsupportedFormat.
	Extract(ctx context.Context, doc *domain.SourceDocument) (string, error)

	// Register adds an extractor. Later registrations win on conflicts.
	Register(extractor Extractor)

	// SupportedExtensions returns every extension some extractor handles.
	SupportedExtensions() []string
}
