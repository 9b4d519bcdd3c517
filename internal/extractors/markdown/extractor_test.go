package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

func TestStrip(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"heading", "# Title\nbody", "Title\nbody"},
		{"link keeps text", "see [the docs](https://x.y/z)", "see the docs"},
		{"image keeps alt", "![diagram](a.png)", "diagram"},
		{"emphasis", "**bold** and _it_", "bold and it"},
		{"inline code", "run `make test`", "run make test"},
		{"list markers", "- one\n* two\n3. three", "one\ntwo\nthree"},
		{"blockquote", "> quoted", "quoted"},
		{"front matter", "---\ntitle: x\n---\nbody", "body"},
		{"fenced code kept", "```go\nfmt.Println()\n```", "fmt.Println()"},
		{"comment", "a <!-- hidden --> b", "a  b"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, strip(tc.input))
		})
	}
}

func TestExtract(t *testing.T) {
	text, err := New().Extract(context.Background(), &domain.SourceDocument{
		Name:    "README.md",
		Content: []byte("# Guide\r\n\r\nInstall with `go install`.\r\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Guide\n\nInstall with go install.", text)
}

func TestExtract_Nil(t *testing.T) {
	_, err := New().Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtractor_Metadata(t *testing.T) {
	e := New()
	assert.Equal(t, "markdown", e.Name())
	assert.Contains(t, e.SupportedExtensions(), ".md")
	assert.Contains(t, e.SupportedMIMETypes(), "text/markdown")
}
