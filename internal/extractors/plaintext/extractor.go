// Package plaintext extracts text from plain text and source files.
package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor returns the document bytes as UTF-8 text.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return "plaintext"
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/csv",
		"text/x-go",
		"text/x-python",
		"text/yaml",
		"text/toml",
		"application/json",
		"application/xml",
	}
}

// SupportedExtensions returns the file extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{
		".txt", ".text", ".log", ".csv", ".json", ".xml", ".yaml", ".yml", ".toml",
		".go", ".py", ".rs", ".java", ".c", ".h", ".cpp", ".rb", ".sh", ".sql",
		".js", ".ts", ".css",
	}
}

// Extract returns the content as text.
// Binary content (NUL bytes or invalid UTF-8) is rejected.
func (e *Extractor) Extract(_ context.Context, doc *domain.SourceDocument) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("%w: %w", domain.ErrExtraction, domain.ErrInvalidInput)
	}

	content := bytes.TrimPrefix(doc.Content, []byte("\xef\xbb\xbf"))
	if bytes.IndexByte(content, 0) >= 0 || !utf8.Valid(content) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8 text", domain.ErrExtraction, doc.Name)
	}

	return string(content), nil
}
