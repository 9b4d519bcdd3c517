// Package docx extracts paragraph text from Office Open XML word documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

const bodyPart = "word/document.xml"

// Extractor reads word/document.xml from the DOCX archive.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return "docx"
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
}

// SupportedExtensions returns the file extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".docx"}
}

// Extract returns one line per paragraph.
func (e *Extractor) Extract(_ context.Context, doc *domain.SourceDocument) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("%w: %w", domain.ErrExtraction, domain.ErrInvalidInput)
	}

	reader, err := zip.NewReader(bytes.NewReader(doc.Content), int64(len(doc.Content)))
	if err != nil {
		return "", fmt.Errorf("%w: %s is not a DOCX archive: %w", domain.ErrExtraction, doc.Name, err)
	}

	for _, f := range reader.File {
		if f.Name != bodyPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("%w: open %s: %w", domain.ErrExtraction, bodyPart, err)
		}
		defer rc.Close()

		content, err := io.ReadAll(rc)
		if err != nil {
			return "", fmt.Errorf("%w: read %s: %w", domain.ErrExtraction, bodyPart, err)
		}
		return parseBody(content)
	}

	return "", fmt.Errorf("%w: %s has no %s", domain.ErrExtraction, doc.Name, bodyPart)
}

type document struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []struct {
		Text []struct {
			Value string `xml:",chardata"`
		} `xml:"t"`
	} `xml:"r"`
}

func parseBody(content []byte) (string, error) {
	var doc document
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("%w: parse %s: %w", domain.ErrExtraction, bodyPart, err)
	}

	lines := make([]string, 0, len(doc.Body.Paragraphs))
	for _, p := range doc.Body.Paragraphs {
		var sb strings.Builder
		for _, r := range p.Runs {
			for _, t := range r.Text {
				sb.WriteString(t.Value)
			}
		}
		lines = append(lines, sb.String())
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
