package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/duiatlas/brain-core/internal/core/domain"
	"github.com/duiatlas/brain-core/internal/core/ports/driven/mocks"
	"github.com/duiatlas/brain-core/internal/runtime"
)

// newSearchFixture wires a search service over fresh mocks
func newSearchFixture(t *testing.T) (*mocks.MockKnowledgeStore, *mocks.MockEmbeddingService, *searchService) {
	t.Helper()

	store := mocks.NewMockKnowledgeStore()
	embedding := mocks.NewMockEmbeddingService()
	embedding.SetDimensions(4)
	services := runtime.NewServices()
	services.SetEmbeddingService(embedding)

	svc := NewSearchService(store, services, SearchConfig{}).(*searchService)
	return store, embedding, svc
}

func seedTexas(store *mocks.MockKnowledgeStore) {
	store.AddState("state-tx", "Texas")
	store.AddCounty("county-harris", "Harris County")
	store.AddSource(&domain.Source{ID: "source-1", FileName: "harris-impound.pdf", FileType: "pdf"})
}

func harrisChunk(id string, embedding []float32) *domain.KnowledgeChunk {
	countyID := "county-harris"
	return &domain.KnowledgeChunk{
		ID:        id,
		SourceID:  "source-1",
		Content:   "Daily storage fee is $45",
		Topic:     domain.TopicImpound,
		Phase:     domain.PhaseArrest,
		StateID:   "state-tx",
		CountyID:  &countyID,
		Embedding: embedding,
	}
}

func TestSearch_ScoresAndRanks(t *testing.T) {
	store, embedding, svc := newSearchFixture(t)
	seedTexas(store)

	query := "how much is impound storage per day in Harris County Texas"
	embedding.SetCanned(query, []float32{1, 0, 0, 0})

	strong := harrisChunk("chunk-strong", []float32{1, 0, 0, 0})
	weaker := harrisChunk("chunk-weaker", []float32{0.9, 0.4, 0, 0})
	offTopic := harrisChunk("chunk-off", []float32{0, 1, 0, 0})
	store.AddChunk(weaker)
	store.AddChunk(strong)
	store.AddChunk(offTopic)

	results, err := svc.Search(context.Background(), query, domain.SearchOptions{
		State:  "Texas",
		County: "Harris",
		Topic:  domain.TopicImpound,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results above threshold, got %d", len(results))
	}
	if results[0].ChunkID != "chunk-strong" {
		t.Errorf("expected chunk-strong first, got %s", results[0].ChunkID)
	}
	if results[0].Similarity < results[1].Similarity {
		t.Error("expected results sorted by non-increasing similarity")
	}
	for _, result := range results {
		if result.Similarity <= domain.DefaultSimilarityThreshold {
			t.Errorf("result %s similarity %f not above threshold", result.ChunkID, result.Similarity)
		}
	}
	if results[0].Metadata.StateName != "Texas" {
		t.Errorf("expected resolved state name Texas, got %s", results[0].Metadata.StateName)
	}
	if results[0].Metadata.CountyName != "Harris County" {
		t.Errorf("expected resolved county name, got %s", results[0].Metadata.CountyName)
	}
	if results[0].Source == nil || results[0].Source.FileName != "harris-impound.pdf" {
		t.Error("expected resolved source on result")
	}
}

func TestSearch_ThresholdIsStrict(t *testing.T) {
	store, embedding, svc := newSearchFixture(t)
	seedTexas(store)

	queryVec := []float32{1, 0, 0, 0}
	chunkVec := []float32{0.6, 0.8, 0, 0}
	embedding.SetCanned("query", queryVec)
	store.AddChunk(harrisChunk("chunk-at-threshold", chunkVec))

	// A candidate sitting exactly at the threshold must be dropped:
	// the filter keeps strictly-greater similarities only
	results, err := svc.Search(context.Background(), "query", domain.SearchOptions{
		SimilarityThreshold: cosineSimilarity(queryVec, chunkVec),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected candidate at exactly the threshold to be dropped, got %d results", len(results))
	}
}

func TestSearch_LimitAndIdempotence(t *testing.T) {
	store, embedding, svc := newSearchFixture(t)
	seedTexas(store)

	embedding.SetCanned("query", []float32{1, 0, 0, 0})
	for i := 0; i < 8; i++ {
		store.AddChunk(harrisChunk(fmt.Sprintf("chunk-%d", i), []float32{1, 0, 0, 0}))
	}

	opts := domain.SearchOptions{Limit: 3}
	first, err := svc.Search(context.Background(), "query", opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("expected limit 3 respected, got %d", len(first))
	}

	// Ties keep store order, and repeated calls are identical
	second, err := svc.Search(context.Background(), "query", opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range first {
		if first[i].ChunkID != second[i].ChunkID {
			t.Errorf("expected identical ordered results, position %d differs: %s vs %s",
				i, first[i].ChunkID, second[i].ChunkID)
		}
	}
	if first[0].ChunkID != "chunk-0" || first[1].ChunkID != "chunk-1" {
		t.Errorf("expected ties to retain store order, got %s, %s", first[0].ChunkID, first[1].ChunkID)
	}
}

func TestSearch_SkipsChunksWithoutEmbedding(t *testing.T) {
	store, embedding, svc := newSearchFixture(t)
	seedTexas(store)

	embedding.SetCanned("query", []float32{1, 0, 0, 0})
	store.AddChunk(harrisChunk("chunk-no-embedding", nil))

	results, err := svc.Search(context.Background(), "query", domain.SearchOptions{
		SimilarityThreshold: 0.1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Error("expected chunk without embedding to be excluded from vector search")
	}
}

func TestSearch_SkipsChunksWithoutEmbeddingAtAnyThreshold(t *testing.T) {
	store, embedding, svc := newSearchFixture(t)
	seedTexas(store)

	embedding.SetCanned("query", []float32{1, 0, 0, 0})
	bare := harrisChunk("chunk-no-embedding", nil)
	bare.AllCounty = true
	store.AddChunk(bare)

	// A negative threshold admits any scored candidate, but a chunk
	// without an embedding must still never surface
	results, err := svc.Search(context.Background(), "query", domain.SearchOptions{
		SimilarityThreshold: -0.5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected embedding-less chunk excluded at threshold -0.5, got %d results", len(results))
	}
}

func TestSearch_NegativeThresholdAdmitsLowScores(t *testing.T) {
	store, embedding, svc := newSearchFixture(t)
	seedTexas(store)

	embedding.SetCanned("query", []float32{1, 0, 0, 0})
	store.AddChunk(harrisChunk("chunk-orthogonal", []float32{0, 1, 0, 0}))

	results, err := svc.Search(context.Background(), "query", domain.SearchOptions{
		SimilarityThreshold: -1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected zero-similarity chunk admitted below a negative threshold, got %d results", len(results))
	}
	if results[0].Similarity != 0 {
		t.Errorf("expected similarity 0 for orthogonal embedding, got %f", results[0].Similarity)
	}
}

func TestSearch_AllCountiesFlagBypassesCountyFilter(t *testing.T) {
	store, embedding, svc := newSearchFixture(t)
	seedTexas(store)
	store.AddCounty("county-travis", "Travis County")

	embedding.SetCanned("query", []float32{1, 0, 0, 0})

	travisID := "county-travis"
	statewide := &domain.KnowledgeChunk{
		ID:        "chunk-statewide",
		SourceID:  "source-1",
		Content:   "Statewide ALR hearing deadline is 15 days",
		Topic:     domain.TopicDMV,
		StateID:   "state-tx",
		AllCounty: true,
		Embedding: []float32{1, 0, 0, 0},
	}
	travisOnly := &domain.KnowledgeChunk{
		ID:        "chunk-travis",
		SourceID:  "source-1",
		Content:   "Travis County impound lot hours",
		Topic:     domain.TopicDMV,
		StateID:   "state-tx",
		CountyID:  &travisID,
		Embedding: []float32{1, 0, 0, 0},
	}
	store.AddChunk(statewide)
	store.AddChunk(travisOnly)

	results, err := svc.Search(context.Background(), "query", domain.SearchOptions{
		State:  "texas", // case-insensitive
		County: "Harris",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected only the statewide chunk, got %d results", len(results))
	}
	if results[0].ChunkID != "chunk-statewide" {
		t.Errorf("expected chunk-statewide, got %s", results[0].ChunkID)
	}
}

func TestSearch_EmbeddingFailurePropagates(t *testing.T) {
	store, embedding, svc := newSearchFixture(t)
	seedTexas(store)
	store.AddChunk(harrisChunk("chunk-1", []float32{1, 0, 0, 0}))

	embedding.SetFailNext(domain.ErrProvider)

	_, err := svc.Search(context.Background(), "query", domain.SearchOptions{})
	if !errors.Is(err, domain.ErrSearch) {
		t.Errorf("expected ErrSearch, got %v", err)
	}
	if !errors.Is(err, domain.ErrProvider) {
		t.Errorf("expected wrapped ErrProvider, got %v", err)
	}
}

func TestSearch_NoEmbeddingService(t *testing.T) {
	store := mocks.NewMockKnowledgeStore()
	services := runtime.NewServices()
	svc := NewSearchService(store, services, SearchConfig{})

	_, err := svc.Search(context.Background(), "query", domain.SearchOptions{})
	if !errors.Is(err, domain.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestSearch_StoreFailurePropagates(t *testing.T) {
	store, embedding, svc := newSearchFixture(t)
	embedding.SetCanned("query", []float32{1, 0, 0, 0})
	store.SetFailNext(errors.New("connection refused"))

	_, err := svc.Search(context.Background(), "query", domain.SearchOptions{})
	if !errors.Is(err, domain.ErrStore) {
		t.Errorf("expected ErrStore, got %v", err)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	_, _, svc := newSearchFixture(t)

	_, err := svc.Search(context.Background(), "   ", domain.SearchOptions{})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestTextSearch_MatchesSubstring(t *testing.T) {
	store, embedding, svc := newSearchFixture(t)
	seedTexas(store)

	// No embedding needed: lexical search never calls the provider
	store.AddChunk(harrisChunk("chunk-lexical", nil))

	results, err := svc.TextSearch(context.Background(), "storage FEE", domain.SearchOptions{
		State:  "Texas",
		County: "Harris",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 lexical match, got %d", len(results))
	}
	if results[0].ChunkID != "chunk-lexical" {
		t.Errorf("expected chunk-lexical, got %s", results[0].ChunkID)
	}
	if results[0].Similarity != domain.TextSearchPlaceholderScore {
		t.Errorf("expected placeholder similarity %f, got %f",
			domain.TextSearchPlaceholderScore, results[0].Similarity)
	}
	if embedding.Calls() != 0 {
		t.Error("expected no embedding calls during text search")
	}
}

func TestTextSearch_AppliesSameFilters(t *testing.T) {
	store, _, svc := newSearchFixture(t)
	seedTexas(store)
	store.AddChunk(harrisChunk("chunk-1", nil))

	results, err := svc.TextSearch(context.Background(), "storage fee", domain.SearchOptions{
		State: "Wyoming",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected jurisdiction filter to exclude the chunk, got %d results", len(results))
	}
}

func TestSearch_RoundTripKnownEmbedding(t *testing.T) {
	store, embedding, svc := newSearchFixture(t)
	seedTexas(store)

	vec := []float32{0.5, 0.5, 0.5, 0.5}
	embedding.SetCanned("exact", vec)
	store.AddChunk(harrisChunk("chunk-exact", vec))

	results, err := svc.Search(context.Background(), "exact", domain.SearchOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected the inserted chunk back, got %d results", len(results))
	}
	if results[0].Similarity < 0.999999 {
		t.Errorf("expected similarity ~1.0 for identical embedding, got %f", results[0].Similarity)
	}
}
