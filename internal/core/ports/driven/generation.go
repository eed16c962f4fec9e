package driven

import (
	"context"
)

// GenerationService produces grounded text from a prompt
type GenerationService interface {
	// Generate runs a single completion. Temperature and maxTokens
	// bound the output; synthesis always passes a low temperature.
	// Returns domain.ErrNotConfigured if no credential is set and
	// domain.ErrProvider if the service returns no text.
	Generate(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the generation service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the generation service
	Close() error
}
