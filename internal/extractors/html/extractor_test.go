package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

func extract(t *testing.T, content string) string {
	t.Helper()
	text, err := New().Extract(context.Background(), &domain.SourceDocument{
		Name:    "page.html",
		Content: []byte(content),
	})
	require.NoError(t, err)
	return text
}

func TestExtract_VisibleText(t *testing.T) {
	text := extract(t, `<html><head><title>T</title><style>p{}</style></head>
<body><h1>Heading</h1><p>First   paragraph &amp; more.</p>
<script>alert(1)</script><div>Second<br/>line</div></body></html>`)

	assert.Equal(t, "Heading\nFirst paragraph & more.\nSecond\nline", text)
}

func TestExtract_SkipsNestedHiddenElements(t *testing.T) {
	text := extract(t, `<p>keep</p><noscript><p>drop</p></noscript><p>also keep</p>`)
	assert.Equal(t, "keep\nalso keep", text)
}

func TestExtract_Empty(t *testing.T) {
	assert.Empty(t, extract(t, ""))
}

func TestExtract_Nil(t *testing.T) {
	_, err := New().Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtractor_Metadata(t *testing.T) {
	e := New()
	assert.Equal(t, "html", e.Name())
	assert.Contains(t, e.SupportedMIMETypes(), "text/html")
	assert.Contains(t, e.SupportedExtensions(), ".htm")
}
