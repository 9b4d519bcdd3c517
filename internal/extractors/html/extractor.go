// Package html extracts readable text from HTML documents.
package html

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor walks the HTML token stream and keeps visible text.
type Extractor struct{}

// New creates a new HTML extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return "html"
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// SupportedExtensions returns the file extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// skipped elements never contribute text.
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Head:     true,
	atom.Svg:      true,
	atom.Template: true,
}

// block elements end a line of text.
var block = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Hr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Li: true, atom.Tr: true, atom.Blockquote: true, atom.Pre: true,
	atom.Table: true, atom.Section: true, atom.Article: true,
}

// Extract returns the visible text, one block element per line.
func (e *Extractor) Extract(_ context.Context, doc *domain.SourceDocument) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("%w: %w", domain.ErrExtraction, domain.ErrInvalidInput)
	}

	z := xhtml.NewTokenizer(bytes.NewReader(doc.Content))
	var (
		sb    strings.Builder
		depth int
	)

	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return "", fmt.Errorf("%w: parse %s: %w", domain.ErrExtraction, doc.Name, err)
			}
			return tidy(sb.String()), nil

		case xhtml.StartTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if skipped[a] {
				depth++
			}
			if block[a] {
				sb.WriteByte('\n')
			}

		case xhtml.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if skipped[a] && depth > 0 {
				depth--
			}
			if block[a] {
				sb.WriteByte('\n')
			}

		case xhtml.SelfClosingTagToken:
			name, _ := z.TagName()
			if block[atom.Lookup(name)] {
				sb.WriteByte('\n')
			}

		case xhtml.TextToken:
			if depth == 0 {
				sb.Write(z.Text())
			}
		}
	}
}

// tidy trims every line, collapses runs of spaces and drops blank lines.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
