// Package markdown extracts plain text from Markdown documents.
package markdown

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor removes Markdown syntax and keeps prose and code text.
type Extractor struct{}

// New creates a new Markdown extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return "markdown"
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// SupportedExtensions returns the file extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".md", ".markdown", ".mdx"}
}

var (
	fence        = regexp.MustCompile("(?m)^```.*$")
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	images       = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings     = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	emphasis     = regexp.MustCompile(`(\*\*|__|\*|_)([^*_\n]+)(\*\*|__|\*|_)`)
	blockquote   = regexp.MustCompile(`(?m)^>\s?`)
	rule         = regexp.MustCompile(`(?m)^\s*([-*_]\s*){3,}$`)
	listMarkers  = regexp.MustCompile(`(?m)^\s*([-*+]|\d+\.)\s+`)
	htmlComments = regexp.MustCompile(`(?s)<!--.*?-->`)
	frontMatter  = regexp.MustCompile(`(?s)\A---\n.*?\n---\n`)
)

// Extract returns the document text with Markdown markup removed.
// Fenced code is kept because answers often need it.
func (e *Extractor) Extract(_ context.Context, doc *domain.SourceDocument) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("%w: %w", domain.ErrExtraction, domain.ErrInvalidInput)
	}
	return strip(string(doc.Content)), nil
}

func strip(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = frontMatter.ReplaceAllString(s, "")
	s = htmlComments.ReplaceAllString(s, "")
	s = fence.ReplaceAllString(s, "")
	s = images.ReplaceAllString(s, "$1")
	s = links.ReplaceAllString(s, "$1")
	s = inlineCode.ReplaceAllString(s, "$1")
	s = headings.ReplaceAllString(s, "")
	s = emphasis.ReplaceAllString(s, "$2")
	s = blockquote.ReplaceAllString(s, "")
	s = rule.ReplaceAllString(s, "")
	s = listMarkers.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
