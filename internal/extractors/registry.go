package extractors

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
	"github.com/Hmv123/RAG-Application/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry selects an extractor by MIME type, then by file extension.
type Registry struct {
	mu     sync.RWMutex
	byMIME map[string]driven.Extractor
	byExt  map[string]driven.Extractor
}

// NewRegistry creates a registry holding the given extractors.
func NewRegistry(extractors ...driven.Extractor) *Registry {
	r := &Registry{
		byMIME: make(map[string]driven.Extractor),
		byExt:  make(map[string]driven.Extractor),
	}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Register adds an extractor. Later registrations win on conflicts.
func (r *Registry) Register(e driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range e.SupportedMIMETypes() {
		r.byMIME[strings.ToLower(m)] = e
	}
	for _, ext := range e.SupportedExtensions() {
		r.byExt[strings.ToLower(ext)] = e
	}
}

// SupportedExtensions returns every registered extension, sorted.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Supports reports whether some extractor would accept a document named name.
func (r *Registry) Supports(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byExt[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Extract dispatches doc to the matching extractor.
// Every failure is wrapped in domain.ErrExtraction.
func (r *Registry) Extract(ctx context.Context, doc *domain.SourceDocument) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("%w: %w: nil document", domain.ErrExtraction, domain.ErrInvalidInput)
	}

	e := r.lookup(doc)
	if e == nil {
		return "", fmt.Errorf("%w: %w: %s", domain.ErrExtraction, domain.ErrUnsupportedFormat, doc.Name)
	}

	logger.Debug("Extracting %s with %s", doc.Name, e.Name())
	text, err := e.Extract(ctx, doc)
	if err != nil {
		if errors.Is(err, domain.ErrExtraction) {
			return "", err
		}
		return "", fmt.Errorf("%w: %s: %w", domain.ErrExtraction, e.Name(), err)
	}
	return text, nil
}

func (r *Registry) lookup(doc *domain.SourceDocument) driven.Extractor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if doc.MIMEType != "" {
		mediaType, _, err := mime.ParseMediaType(doc.MIMEType)
		if err == nil {
			if e, ok := r.byMIME[strings.ToLower(mediaType)]; ok {
				return e
			}
		}
	}
	return r.byExt[strings.ToLower(filepath.Ext(doc.Name))]
}

// MIMETypeFor guesses a MIME type from a file name.
// Returns an empty string when the extension is unknown.
func MIMETypeFor(name string) string {
	t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if t == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(t)
	if err != nil {
		return ""
	}
	return mediaType
}
