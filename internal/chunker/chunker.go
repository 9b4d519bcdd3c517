// Package chunker splits extracted text into overlapping word windows.
package chunker

import (
	"strings"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

// DefaultChunkSize is the default number of words per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of words shared by neighbouring chunks.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Chunker splits document text into fixed-size word windows.
// A Chunker is immutable and safe for concurrent use.
type Chunker struct {
	size    int
	overlap int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in words.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		c.size = size
	}
}

// WithOverlap sets the number of words repeated at the start of the next chunk.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// New creates a chunker. Invalid windows fail with domain.ErrConfiguration.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		size:    DefaultChunkSize,
		overlap: DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.Settings().Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// FromSettings creates a chunker from persisted settings.
func FromSettings(s domain.ChunkSettings) (*Chunker, error) {
	return New(WithChunkSize(s.Size), WithOverlap(s.Overlap))
}

// Name returns the chunker name.
func (c *Chunker) Name() string {
	return "word-chunker"
}

// Settings returns the chunk window.
func (c *Chunker) Settings() domain.ChunkSettings {
	return domain.ChunkSettings{Size: c.size, Overlap: c.overlap}
}

// Split chunks text and tags each chunk with its document and position.
func (c *Chunker) Split(documentName, text string) []domain.Chunk {
	windows := split(strings.Fields(text), c.size, c.overlap)
	if len(windows) == 0 {
		return nil
	}

	chunks := make([]domain.Chunk, len(windows))
	for i, w := range windows {
		chunks[i] = domain.Chunk{
			DocumentName: documentName,
			Content:      w,
			Position:     i,
		}
	}
	return chunks
}

// Chunk splits text into windows of size words, each starting size-overlap
// words after the previous one. The last window may be shorter.
// Whitespace-only text yields no chunks.
func Chunk(text string, size, overlap int) ([]string, error) {
	if err := (domain.ChunkSettings{Size: size, Overlap: overlap}).Validate(); err != nil {
		return nil, err
	}
	return split(strings.Fields(text), size, overlap), nil
}

func split(words []string, size, overlap int) []string {
	if len(words) == 0 {
		return nil
	}

	step := size - overlap
	out := make([]string, 0, len(words)/step+1)

	for start := 0; start < len(words); start += step {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		out = append(out, strings.Join(words[start:end], " "))
	}

	return out
}
