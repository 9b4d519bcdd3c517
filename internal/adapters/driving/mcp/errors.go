// Package mcp exposes retrieval-augmented answering over the Model Context
// Protocol so AI assistants can query the indexed documents.
package mcp

import "errors"

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("mcp: answer service is required")
