package eml

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

func extract(t *testing.T, content string) string {
	t.Helper()
	text, err := New().Extract(context.Background(), &domain.SourceDocument{
		Name:    "mail.eml",
		Content: []byte(strings.ReplaceAll(content, "\n", "\r\n")),
	})
	require.NoError(t, err)
	return text
}

func TestExtract_SimpleEmail(t *testing.T) {
	text := extract(t, `From: sender@example.com
To: recipient@example.com
Subject: Quarterly numbers
Date: Mon, 1 Jan 2024 10:00:00 +0000
Content-Type: text/plain

Revenue is up.
`)

	assert.True(t, strings.HasPrefix(text, "From: sender@example.com\nTo: recipient@example.com\nDate: Mon, 1 Jan 2024 10:00:00 +0000\nSubject: Quarterly numbers\n\n"))
	assert.Contains(t, text, "Revenue is up.")
}

func TestExtract_HTMLBody(t *testing.T) {
	text := extract(t, `From: a@example.com
Content-Type: text/html

<html><body><p>Hello <b>there</b></p><script>x()</script></body></html>
`)

	assert.Contains(t, text, "Hello there")
	assert.NotContains(t, text, "<p>")
	assert.NotContains(t, text, "x()")
}

func TestExtract_MultipartPrefersPlainText(t *testing.T) {
	text := extract(t, `From: a@example.com
Subject: Alt
Content-Type: multipart/alternative; boundary="b1"

--b1
Content-Type: text/plain

plain version
--b1
Content-Type: text/html

<p>html version</p>
--b1--
`)

	assert.Contains(t, text, "plain version")
	assert.NotContains(t, text, "html version")
}

func TestExtract_MultipartSkipsAttachments(t *testing.T) {
	text := extract(t, `From: a@example.com
Content-Type: multipart/mixed; boundary="outer"

--outer
Content-Type: text/html

<p>only html</p>
--outer
Content-Type: application/pdf
Content-Transfer-Encoding: base64

JVBERi0=
--outer--
`)

	assert.Contains(t, text, "only html")
	assert.NotContains(t, text, "JVBERi0")
}

func TestExtract_Base64Body(t *testing.T) {
	text := extract(t, `From: a@example.com
Content-Type: text/plain; charset=utf-8
Content-Transfer-Encoding: base64

SGVsbG8g
V29ybGQ=
`)

	assert.Contains(t, text, "Hello World")
}

func TestExtract_EncodedSubject(t *testing.T) {
	text := extract(t, `Subject: =?UTF-8?B?SGVsbG8gV29ybGQ=?=
Content-Type: text/plain

Body.
`)

	assert.Contains(t, text, "Subject: Hello World")
}

func TestExtract_InvalidEmail(t *testing.T) {
	_, err := New().Extract(context.Background(), &domain.SourceDocument{
		Name:    "bad.eml",
		Content: []byte("not a valid email"),
	})

	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtract_Nil(t *testing.T) {
	_, err := New().Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestDecodeHeader(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text", "Simple Subject", "Simple Subject"},
		{"empty", "", ""},
		{"utf8 base64 encoded", "=?UTF-8?B?SGVsbG8gV29ybGQ=?=", "Hello World"},
		{"utf8 quoted printable", "=?UTF-8?Q?Hello_World?=", "Hello World"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, decodeHeader(tc.input))
		})
	}
}

func TestExtractor_Metadata(t *testing.T) {
	e := New()
	assert.Equal(t, "eml", e.Name())
	assert.Equal(t, []string{"message/rfc822"}, e.SupportedMIMETypes())
	assert.Equal(t, []string{".eml"}, e.SupportedExtensions())
}
