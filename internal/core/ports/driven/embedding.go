package driven

import (
	"context"
)

// EmbeddingService generates text embeddings
type EmbeddingService interface {
	// EmbedQuery generates an embedding for a single text.
	// Returns domain.ErrNotConfigured if no credential is set and
	// domain.ErrProvider if the service returns no vector.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Embed generates embeddings for multiple texts. Implemented as
	// repeated single calls; no batching optimization is required.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimension size
	Dimensions() int

	// Model returns the model name being used
	Model() string

	// HealthCheck verifies the embedding service is available
	HealthCheck(ctx context.Context) error

	// Close releases resources held by the embedding service
	Close() error
}
