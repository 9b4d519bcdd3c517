package domain

import "errors"

// Domain errors represent pipeline failures by kind.
// Adapters wrap the underlying cause with one of these so callers can
// classify a failure with errors.Is without knowing which adapter ran.
var (
	// ErrConfiguration indicates invalid settings such as a chunk overlap
	// that is not smaller than the chunk size. It is fatal and raised
	// before any document is processed.
	ErrConfiguration = errors.New("configuration error")

	// ErrExtraction indicates a document's text could not be extracted.
	// The document is skipped and the batch continues.
	ErrExtraction = errors.New("extraction error")

	// ErrProvider indicates an embedding or generation provider failed,
	// including timeouts, rate limits, auth failures and malformed replies.
	ErrProvider = errors.New("provider error")

	// ErrStore indicates the index store rejected an upsert or query.
	ErrStore = errors.New("store error")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates no extractor handles a document's type.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrUnsupportedType indicates an unknown provider, store or source type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrRateLimited indicates a remote API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrLLMUnavailable indicates the generation provider is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding provider is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrIndexUnavailable indicates the index store could not be opened.
	ErrIndexUnavailable = errors.New("index store unavailable")
)
