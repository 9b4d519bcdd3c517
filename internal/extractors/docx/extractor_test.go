package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Quarterly</w:t></w:r><w:r><w:t xml:space="preserve"> report</w:t></w:r></w:p>
    <w:p><w:r><w:t>Revenue grew.</w:t></w:r></w:p>
  </w:body>
</w:document>`

func buildDOCX(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtract(t *testing.T) {
	content := buildDOCX(t, map[string]string{bodyPart: documentXML})

	text, err := New().Extract(context.Background(), &domain.SourceDocument{Name: "q.docx", Content: content})

	require.NoError(t, err)
	assert.Equal(t, "Quarterly report\nRevenue grew.", text)
}

func TestExtract_NotAZip(t *testing.T) {
	_, err := New().Extract(context.Background(), &domain.SourceDocument{Name: "q.docx", Content: []byte("plain")})
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtract_MissingBody(t *testing.T) {
	content := buildDOCX(t, map[string]string{"docProps/core.xml": "<x/>"})

	_, err := New().Extract(context.Background(), &domain.SourceDocument{Name: "q.docx", Content: content})
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtract_BrokenXML(t *testing.T) {
	content := buildDOCX(t, map[string]string{bodyPart: "<w:document><w:body>"})

	_, err := New().Extract(context.Background(), &domain.SourceDocument{Name: "q.docx", Content: content})
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtract_Nil(t *testing.T) {
	_, err := New().Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
