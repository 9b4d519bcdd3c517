package mcp

import (
	"context"

	"github.com/Hmv123/RAG-Application/internal/core/ports/driving"
)

// RecordCounter reports how many records the index holds.
type RecordCounter interface {
	Count(ctx context.Context) (int, error)
}

// Ports aggregates the services required by the MCP server.
type Ports struct {
	// Answer retrieves context and generates answers.
	Answer driving.AnswerService

	// Index backs the stats resource. Optional.
	Index RecordCounter
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}
