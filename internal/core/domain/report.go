package domain

import "time"

// ChunkFailure records a chunk that could not be embedded.
type ChunkFailure struct {
	// Position is the chunk's position within its document.
	Position int

	// Err is the provider failure.
	Err error
}

// DocumentResult is the ingestion outcome for one document.
type DocumentResult struct {
	// Name is the document name.
	Name string

	// ChunksTotal is the number of chunks produced by the chunker.
	ChunksTotal int

	// ChunksUploaded is the number of records accepted by the index store.
	ChunksUploaded int

	// ChunkFailures lists chunks that were skipped under the skip-chunk
	// embedding policy.
	ChunkFailures []ChunkFailure

	// Err is the reason the document failed. Nil on success.
	Err error

	// Duration is how long the document took to process.
	Duration time.Duration
}

// OK returns true if the document was processed without a document-level failure.
func (r DocumentResult) OK() bool {
	return r.Err == nil
}

// IngestReport summarises one ingestion run.
type IngestReport struct {
	// Documents holds one result per input document, in input order.
	Documents []DocumentResult

	// StartedAt is when the run began.
	StartedAt time.Time

	// FinishedAt is when the run completed.
	FinishedAt time.Time
}

// Succeeded returns the number of documents without a document-level failure.
func (r *IngestReport) Succeeded() int {
	n := 0
	for i := range r.Documents {
		if r.Documents[i].OK() {
			n++
		}
	}
	return n
}

// Failed returns the results of documents that failed.
func (r *IngestReport) Failed() []DocumentResult {
	var out []DocumentResult
	for i := range r.Documents {
		if !r.Documents[i].OK() {
			out = append(out, r.Documents[i])
		}
	}
	return out
}

// TotalUploaded returns the number of records uploaded across all documents.
func (r *IngestReport) TotalUploaded() int {
	n := 0
	for i := range r.Documents {
		n += r.Documents[i].ChunksUploaded
	}
	return n
}

// TotalChunkFailures returns the number of chunks skipped across all documents.
func (r *IngestReport) TotalChunkFailures() int {
	n := 0
	for i := range r.Documents {
		n += len(r.Documents[i].ChunkFailures)
	}
	return n
}

// Result returns the result for a named document.
func (r *IngestReport) Result(name string) (DocumentResult, bool) {
	for i := range r.Documents {
		if r.Documents[i].Name == name {
			return r.Documents[i], true
		}
	}
	return DocumentResult{}, false
}

// Duration returns the wall-clock time of the run.
func (r *IngestReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
