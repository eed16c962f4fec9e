package driven

import (
	"github.com/duiatlas/brain-core/internal/core/domain"
)

// AIServiceFactory creates AI services from settings
type AIServiceFactory interface {
	// CreateEmbeddingService creates an embedding service.
	CreateEmbeddingService(settings *domain.EmbeddingSettings) (EmbeddingService, error)

	// CreateGenerationService creates a generation service.
	CreateGenerationService(settings *domain.GenerationSettings) (GenerationService, error)
}
