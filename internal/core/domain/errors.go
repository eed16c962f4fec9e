package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConfigured indicates a provider credential or endpoint is
	// missing. Fatal to the call; never retried automatically.
	ErrNotConfigured = errors.New("provider not configured")

	// ErrProvider indicates the embedding or generation service returned
	// an unusable response. Retry is the caller's decision.
	ErrProvider = errors.New("provider error")

	// ErrStore indicates a knowledge store query failed
	ErrStore = errors.New("store error")

	// ErrSearch wraps failures inside the semantic search pipeline
	ErrSearch = errors.New("search failed")

	// ErrSynthesis wraps failures inside answer synthesis
	ErrSynthesis = errors.New("answer synthesis failed")

	// ErrInvalidProvider indicates an unknown AI provider was specified
	ErrInvalidProvider = errors.New("invalid provider")
)
