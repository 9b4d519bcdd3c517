package driven

import "context"

// EmbeddingService turns text into vectors. Adapters exist for OpenAI,
// Azure OpenAI, Ollama and Gemini. Every failure, timeouts included, wraps
// domain.ErrProvider.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text in the same order, using as
	// few requests as the provider allows. It succeeds or fails as a whole.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the vector length the index must be created with.
	Dimensions() int
	ModelName() string

	// Ping checks credentials and reachability without embedding anything
	// billable where the provider allows it.
	Ping(ctx context.Context) error
	Close() error
}
