// Package eml extracts headers and body text from RFC 5322 email files.
package eml

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
	"github.com/Hmv123/RAG-Application/internal/extractors/html"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles .eml messages. Plain text parts are preferred over
// HTML parts; HTML is rendered through the html extractor.
type Extractor struct {
	html *html.Extractor
}

// New creates a new email extractor.
func New() *Extractor {
	return &Extractor{html: html.New()}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return "eml"
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"message/rfc822"}
}

// SupportedExtensions returns the file extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".eml"}
}

// Extract returns the From, To, Date and Subject headers followed by a
// blank line and the message body.
func (e *Extractor) Extract(ctx context.Context, doc *domain.SourceDocument) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("%w: %w", domain.ErrExtraction, domain.ErrInvalidInput)
	}

	msg, err := mail.ReadMessage(bytes.NewReader(doc.Content))
	if err != nil {
		return "", fmt.Errorf("%w: parse %s: %w", domain.ErrExtraction, doc.Name, err)
	}

	body, err := e.body(ctx, msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", domain.ErrExtraction, doc.Name, err)
	}

	var sb strings.Builder
	for _, h := range []string{"From", "To", "Date", "Subject"} {
		if v := decodeHeader(msg.Header.Get(h)); v != "" {
			fmt.Fprintf(&sb, "%s: %s\n", h, v)
		}
	}
	sb.WriteString("\n")
	sb.WriteString(body)
	return strings.TrimSpace(sb.String()), nil
}

func (e *Extractor) body(ctx context.Context, contentType, encoding string, r io.Reader) (string, error) {
	if contentType == "" {
		contentType = "text/plain"
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		return e.multipart(ctx, r, params["boundary"])
	}

	data, err := io.ReadAll(decodeTransfer(encoding, r))
	if err != nil {
		return "", err
	}
	if mediaType == "text/html" {
		return e.html.Extract(ctx, &domain.SourceDocument{Name: "body.html", Content: data})
	}
	return string(data), nil
}

func (e *Extractor) multipart(ctx context.Context, r io.Reader, boundary string) (string, error) {
	if boundary == "" {
		return "", errors.New("multipart message without boundary")
	}

	mr := multipart.NewReader(r, boundary)
	var text, rich []string
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		ct := part.Header.Get("Content-Type")
		mediaType, _, perr := mime.ParseMediaType(ct)
		if perr != nil {
			mediaType = "text/plain"
		}
		if !strings.HasPrefix(mediaType, "text/") && !strings.HasPrefix(mediaType, "multipart/") {
			_ = part.Close()
			continue
		}

		content, err := e.body(ctx, ct, part.Header.Get("Content-Transfer-Encoding"), part)
		_ = part.Close()
		if err != nil || content == "" {
			continue
		}
		if mediaType == "text/html" {
			rich = append(rich, content)
		} else {
			text = append(text, content)
		}
	}

	if len(text) > 0 {
		return strings.Join(text, "\n"), nil
	}
	return strings.Join(rich, "\n"), nil
}

// decodeTransfer undoes a Content-Transfer-Encoding. multipart.Reader
// already decodes quoted-printable parts and drops the header.
func decodeTransfer(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, &newlineStripper{r: r})
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}

// newlineStripper drops CR and LF so wrapped base64 decodes.
type newlineStripper struct {
	r io.Reader
}

func (n *newlineStripper) Read(p []byte) (int, error) {
	for {
		c, err := n.r.Read(p)
		j := 0
		for _, b := range p[:c] {
			if b != '\r' && b != '\n' {
				p[j] = b
				j++
			}
		}
		if j > 0 || err != nil {
			return j, err
		}
	}
}

// decodeHeader decodes RFC 2047 encoded words, keeping the raw value
// when decoding fails.
func decodeHeader(header string) string {
	if header == "" {
		return ""
	}
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(header)
	if err != nil {
		return header
	}
	return decoded
}
