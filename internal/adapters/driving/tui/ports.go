// Package tui is the full-screen terminal chat over the indexed documents.
package tui

import (
	"github.com/Hmv123/RAG-Application/internal/core/ports/driving"
)

// Ports carries what the chat needs from the core.
type Ports struct {
	Answer driving.AnswerService

	// TopK is sent with every question; zero means the service default.
	TopK int
}

// Validate fails with ErrMissingAnswerService when Answer is unset.
func (p *Ports) Validate() error {
	if p == nil || p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}
