// Package pdf extracts text from PDF documents using poppler's pdftotext.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
	"github.com/Hmv123/RAG-Application/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// ToolName is the external binary used for extraction.
const ToolName = "pdftotext"

// ErrPDFToolNotFound is returned when pdftotext is not on PATH.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil && stderr.Len() > 0 {
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, err
}

// Extractor shells out to pdftotext.
type Extractor struct {
	runner   CommandRunner
	lookPath func(string) (string, error)
}

// New creates a PDF extractor backed by the real pdftotext binary.
func New() *Extractor {
	return NewWithRunner(execRunner{})
}

// NewWithRunner creates a PDF extractor with a custom command runner.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{runner: runner, lookPath: exec.LookPath}
}

// CheckAvailable returns ErrPDFToolNotFound if pdftotext is not installed.
func CheckAvailable() error {
	if _, err := exec.LookPath(ToolName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions explains how to install pdftotext.
func InstallInstructions() string {
	return `PDF extraction requires pdftotext (part of poppler).
  macOS:          brew install poppler
  Debian/Ubuntu:  apt install poppler-utils
  Fedora:         dnf install poppler-utils`
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return "pdf"
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// SupportedExtensions returns the file extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".pdf"}
}

// Extract writes the blob to a temporary file and runs pdftotext on it.
func (e *Extractor) Extract(ctx context.Context, doc *domain.SourceDocument) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("%w: %w", domain.ErrExtraction, domain.ErrInvalidInput)
	}
	if !bytes.HasPrefix(bytes.TrimLeft(doc.Content, "\x00\t\r\n "), []byte("%PDF-")) {
		return "", fmt.Errorf("%w: %s has no PDF header", domain.ErrExtraction, doc.Name)
	}
	if _, err := e.lookPath(ToolName); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrExtraction, ErrPDFToolNotFound)
	}

	tmp, err := os.CreateTemp("", "ragapp-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(doc.Content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	out, err := e.runner.Run(ctx, ToolName, "-enc", "UTF-8", "-layout", tmp.Name(), "-")
	if err != nil {
		return "", fmt.Errorf("%w: pdftotext failed on %s: %w", domain.ErrExtraction, doc.Name, err)
	}

	// pdftotext separates pages with form feeds.
	text := strings.ReplaceAll(string(out), "\f", "\n")
	return strings.TrimSpace(text), nil
}
