package extractors

import (
	"github.com/Hmv123/RAG-Application/internal/extractors/docx"
	"github.com/Hmv123/RAG-Application/internal/extractors/eml"
	"github.com/Hmv123/RAG-Application/internal/extractors/html"
	"github.com/Hmv123/RAG-Application/internal/extractors/markdown"
	"github.com/Hmv123/RAG-Application/internal/extractors/pdf"
	"github.com/Hmv123/RAG-Application/internal/extractors/plaintext"
)

// Default returns a registry with every built-in extractor.
func Default() *Registry {
	return NewRegistry(
		plaintext.New(),
		markdown.New(),
		html.New(),
		docx.New(),
		pdf.New(),
		eml.New(),
	)
}
