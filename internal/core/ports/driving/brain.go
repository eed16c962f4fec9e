package driving

import (
	"context"

	"github.com/duiatlas/brain-core/internal/core/domain"
)

// BrainService answers natural-language questions from the
// jurisdiction-scoped knowledge base
type BrainService interface {
	// Answer retrieves grounding context for the question and
	// synthesizes a cited, confidence-scored answer. Zero retrieval
	// results produce a valid insufficient-data answer, not an error.
	Answer(ctx context.Context, question string, qctx domain.QuestionContext) (*domain.Answer, error)

	// Curated returns curated records for a jurisdiction. goldOnly
	// restricts the list to priority-10 insights.
	Curated(ctx context.Context, stateID, countyID string, topic domain.Topic, goldOnly bool) ([]*domain.CuratedData, error)
}
