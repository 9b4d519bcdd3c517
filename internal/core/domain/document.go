package domain

// SourceDocument is an opaque named blob enumerated from a document source.
// It is read once during ingestion; only its extracted text travels further.
type SourceDocument struct {
	// Name identifies the document within its source (path, blob name, file ID).
	Name string

	// MIMEType is the content type, if the source knows it.
	MIMEType string

	// Content is the raw bytes of the document.
	Content []byte

	// Metadata holds source-specific attributes such as size or revision.
	Metadata map[string]any
}

// Chunk is a contiguous window of whitespace-delimited words from a
// document's extracted text. Chunks are never mutated after creation.
type Chunk struct {
	// DocumentName is the origin document, kept for traceability.
	DocumentName string

	// Content is the chunk text, words joined by single spaces.
	Content string

	// Position is the zero-based index of the chunk within its document.
	Position int
}

// IndexedRecord is a chunk ready for the index store.
// The ID is generated once and never reused or recomputed.
type IndexedRecord struct {
	// ID is the globally unique record identifier.
	ID string

	// Content is the chunk text.
	Content string

	// Embedding is the chunk's vector from the embedding provider.
	Embedding []float32

	// DocumentName is the origin document.
	DocumentName string

	// Position is the chunk's position within its document.
	Position int
}

// IndexQuery asks the index store for the records most relevant to a query.
type IndexQuery struct {
	// Text is the raw user query.
	Text string

	// Vector is the query embedding. Nil when no embedding is available,
	// in which case stores fall back to keyword relevance.
	Vector []float32

	// TopK is the maximum number of records to return.
	TopK int
}

// RetrievedRecord is a single index store result.
// Results are consumed in the order the store returns them.
type RetrievedRecord struct {
	// ID is the record identifier.
	ID string

	// Content is the chunk text. Records with empty content are ignored.
	Content string

	// DocumentName is the origin document, when the store keeps it.
	DocumentName string

	// Score is the store's relevance score. Higher is more relevant.
	Score float64
}
