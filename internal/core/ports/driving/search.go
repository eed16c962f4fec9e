package driving

import (
	"context"

	"github.com/duiatlas/brain-core/internal/core/domain"
)

// SearchService finds relevant knowledge chunks for a query
type SearchService interface {
	// Search performs semantic (vector) search. Embedding failures
	// propagate wrapped in domain.ErrSearch; they are never recovered
	// by falling back to text matching.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]*domain.SearchResult, error)

	// TextSearch performs degraded-mode lexical search with the same
	// filter surface. Callers invoke it explicitly when embeddings are
	// unavailable or exact-term matching is preferable.
	TextSearch(ctx context.Context, query string, opts domain.SearchOptions) ([]*domain.SearchResult, error)
}
