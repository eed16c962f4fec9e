package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/duiatlas/brain-core/internal/core/domain"
	"github.com/duiatlas/brain-core/internal/core/ports/driven"
	"github.com/duiatlas/brain-core/internal/core/ports/driving"
	"github.com/duiatlas/brain-core/internal/runtime"
)

// Ensure searchService implements SearchService
var _ driving.SearchService = (*searchService)(nil)

// DefaultPoolSize is the candidate pool pulled for in-process scoring.
// Scoring is O(pool x dimensions) in the application layer; the corpus
// is small enough that a broad pull beats pushing predicates into the
// store. An implementation targeting larger corpora should move top-K
// selection into the store and keep the threshold semantics.
const DefaultPoolSize = 50

// SearchConfig tunes the search service
type SearchConfig struct {
	// PoolSize is the candidate pool size. Raised to 2x the request
	// limit when the limit exceeds it.
	PoolSize int

	Logger *slog.Logger
}

// searchService implements the SearchService interface
type searchService struct {
	store    driven.KnowledgeStore
	services *runtime.Services // Dynamic AI services
	poolSize int
	logger   *slog.Logger
}

// NewSearchService creates a new SearchService.
// The embedding service is accessed dynamically via runtime.Services.
func NewSearchService(store driven.KnowledgeStore, services *runtime.Services, cfg SearchConfig) driving.SearchService {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = DefaultPoolSize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &searchService{
		store:    store,
		services: services,
		poolSize: cfg.PoolSize,
		logger:   cfg.Logger,
	}
}

// scoredChunk pairs a candidate with its similarity during ranking
type scoredChunk struct {
	chunk      *domain.KnowledgeChunk
	similarity float64
}

// Search performs semantic search over the knowledge corpus
func (s *searchService) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]*domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	opts = applyDefaults(opts)

	embeddingService := s.services.EmbeddingService()
	if embeddingService == nil {
		return nil, fmt.Errorf("%w: %w: no embedding service", domain.ErrSearch, domain.ErrNotConfigured)
	}

	queryEmbedding, err := embeddingService.EmbedQuery(ctx, query)
	if err != nil {
		// Embedding failures are not recovered here; callers wanting a
		// fallback invoke TextSearch explicitly.
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrSearch, err)
	}

	candidates, err := s.fetchCandidates(ctx, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSearch, err)
	}

	// Chunks without an embedding never participate in vector search,
	// no matter how permissive the threshold is.
	scored := make([]scoredChunk, 0, len(candidates))
	for _, chunk := range candidates {
		if !chunk.HasEmbedding() {
			continue
		}
		sim := cosineSimilarity(queryEmbedding, chunk.Embedding)
		if sim <= opts.SimilarityThreshold {
			continue
		}
		scored = append(scored, scoredChunk{chunk: chunk, similarity: sim})
	}

	// Stable: ties keep the store's natural retrieval order
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].similarity > scored[j].similarity
	})

	return s.filterAndResolve(ctx, scored, opts)
}

// TextSearch performs degraded-mode lexical matching with the same
// filter surface as Search. No threshold applies; every match reports
// a fixed placeholder similarity for relative display only.
func (s *searchService) TextSearch(ctx context.Context, query string, opts domain.SearchOptions) ([]*domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	opts = applyDefaults(opts)

	candidates, err := s.fetchCandidates(ctx, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSearch, err)
	}

	needle := strings.ToLower(query)
	var matched []scoredChunk
	for _, chunk := range candidates {
		if strings.Contains(strings.ToLower(chunk.Content), needle) {
			matched = append(matched, scoredChunk{chunk: chunk, similarity: domain.TextSearchPlaceholderScore})
		}
	}

	return s.filterAndResolve(ctx, matched, opts)
}

// applyDefaults fills unset limit and threshold. A zero threshold is
// indistinguishable from "unset" and gets the default; callers wanting
// every scored candidate pass a small negative threshold instead.
func applyDefaults(opts domain.SearchOptions) domain.SearchOptions {
	if opts.Limit <= 0 {
		opts.Limit = domain.DefaultSearchLimit
	}
	if opts.SimilarityThreshold == 0 {
		opts.SimilarityThreshold = domain.DefaultSimilarityThreshold
	}
	return opts
}

// fetchCandidates pulls a broad candidate pool from the store.
// Metadata filtering happens in the application layer, not in the
// store predicate; see DefaultPoolSize.
func (s *searchService) fetchCandidates(ctx context.Context, limit int) ([]*domain.KnowledgeChunk, error) {
	pool := s.poolSize
	if floor := 2 * limit; pool < floor {
		pool = floor
	}

	candidates, err := s.store.FindChunks(ctx, domain.ChunkFilter{}, pool)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch candidates: %v", domain.ErrStore, err)
	}
	return candidates, nil
}

// filterAndResolve applies jurisdiction/topic/phase filters, truncates
// to the limit and resolves display names and sources, preserving the
// incoming similarity order.
func (s *searchService) filterAndResolve(ctx context.Context, scored []scoredChunk, opts domain.SearchOptions) ([]*domain.SearchResult, error) {
	stateNames, countyNames, err := s.resolveNames(ctx, scored)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSearch, err)
	}

	var kept []scoredChunk
	for _, sc := range scored {
		if !matchesFilters(sc.chunk, opts, stateNames, countyNames) {
			continue
		}
		kept = append(kept, sc)
		if len(kept) >= opts.Limit {
			break
		}
	}

	sources, err := s.resolveSources(ctx, kept)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSearch, err)
	}

	results := make([]*domain.SearchResult, 0, len(kept))
	for _, sc := range kept {
		chunk := sc.chunk
		result := &domain.SearchResult{
			ChunkID:    chunk.ID,
			Content:    chunk.Content,
			Similarity: sc.similarity,
			Source:     sources[chunk.SourceID],
			Metadata: domain.ResultMetadata{
				StateName:  stateNames[chunk.StateID],
				Topic:      chunk.Topic,
				Phase:      chunk.Phase,
				ChunkIndex: chunk.ChunkIndex,
				Confidence: sc.similarity,
			},
		}
		if chunk.CountyID != nil {
			result.Metadata.CountyName = countyNames[*chunk.CountyID]
		}
		results = append(results, result)
	}

	return results, nil
}

// matchesFilters applies the jurisdiction and metadata rules:
// state matches by resolved display name (case-insensitive) or the
// chunk's all-counties flag; county by case-insensitive substring of
// the resolved name or the same flag; topic and phase exactly.
func matchesFilters(chunk *domain.KnowledgeChunk, opts domain.SearchOptions, stateNames, countyNames map[string]string) bool {
	if opts.State != "" {
		if !strings.EqualFold(stateNames[chunk.StateID], opts.State) && !chunk.AllCounty {
			return false
		}
	}

	if opts.County != "" && !chunk.AllCounty {
		if chunk.CountyID == nil {
			return false
		}
		name := countyNames[*chunk.CountyID]
		if !strings.Contains(strings.ToLower(name), strings.ToLower(opts.County)) {
			return false
		}
	}

	if opts.Topic != "" && chunk.Topic != opts.Topic {
		return false
	}
	if opts.Phase != "" && chunk.Phase != opts.Phase {
		return false
	}

	return true
}

// resolveNames looks up display names for every state and county
// referenced by the scored candidates
func (s *searchService) resolveNames(ctx context.Context, scored []scoredChunk) (map[string]string, map[string]string, error) {
	stateIDs := make([]string, 0, len(scored))
	countyIDs := make([]string, 0, len(scored))
	seenState := make(map[string]bool)
	seenCounty := make(map[string]bool)
	for _, sc := range scored {
		if sc.chunk.StateID != "" && !seenState[sc.chunk.StateID] {
			seenState[sc.chunk.StateID] = true
			stateIDs = append(stateIDs, sc.chunk.StateID)
		}
		if sc.chunk.CountyID != nil && !seenCounty[*sc.chunk.CountyID] {
			seenCounty[*sc.chunk.CountyID] = true
			countyIDs = append(countyIDs, *sc.chunk.CountyID)
		}
	}

	stateNames, err := s.store.ResolveStateNames(ctx, stateIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: resolve states: %v", domain.ErrStore, err)
	}
	countyNames, err := s.store.ResolveCountyNames(ctx, countyIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: resolve counties: %v", domain.ErrStore, err)
	}

	return stateNames, countyNames, nil
}

// resolveSources fetches the sources owning the surviving chunks
func (s *searchService) resolveSources(ctx context.Context, kept []scoredChunk) (map[string]*domain.Source, error) {
	ids := make([]string, 0, len(kept))
	seen := make(map[string]bool)
	for _, sc := range kept {
		if sc.chunk.SourceID != "" && !seen[sc.chunk.SourceID] {
			seen[sc.chunk.SourceID] = true
			ids = append(ids, sc.chunk.SourceID)
		}
	}

	sources, err := s.store.GetSourcesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve sources: %v", domain.ErrStore, err)
	}

	out := make(map[string]*domain.Source, len(sources))
	for _, src := range sources {
		out[src.ID] = src
	}
	return out, nil
}
