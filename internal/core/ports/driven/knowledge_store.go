package driven

import (
	"context"

	"github.com/duiatlas/brain-core/internal/core/domain"
)

// KnowledgeStore is the read-only query surface over the persisted
// corpus (PostgreSQL). All operations are side-effect-free; a
// jurisdiction with no data yields empty results, never an error.
type KnowledgeStore interface {
	// FindChunks retrieves chunks matching the filter, with embeddings.
	// Zero-value filter fields are ignored.
	FindChunks(ctx context.Context, filter domain.ChunkFilter, limit int) ([]*domain.KnowledgeChunk, error)

	// GetSourcesByIDs retrieves sources by ID. Unknown IDs are skipped.
	GetSourcesByIDs(ctx context.Context, ids []string) ([]*domain.Source, error)

	// GetCitationsBySourceIDs retrieves citations owned by the given
	// sources, optionally narrowed to jurisdiction strings.
	GetCitationsBySourceIDs(ctx context.Context, sourceIDs []string, jurisdictions []string) ([]*domain.Citation, error)

	// ResolveStateNames maps state IDs to display names.
	ResolveStateNames(ctx context.Context, ids []string) (map[string]string, error)

	// ResolveCountyNames maps county IDs to display names.
	ResolveCountyNames(ctx context.Context, ids []string) (map[string]string, error)

	// FindCuratedData retrieves curated records for a jurisdiction,
	// optionally narrowed by topic.
	FindCuratedData(ctx context.Context, stateID, countyID string, topic domain.Topic) ([]*domain.CuratedData, error)

	// FindHighPriorityCuratedData retrieves only gold-dust records
	// (priority == 10) for a jurisdiction.
	FindHighPriorityCuratedData(ctx context.Context, stateID, countyID string, topic domain.Topic) ([]*domain.CuratedData, error)
}
