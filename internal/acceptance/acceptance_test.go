package acceptance

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cucumber/godog"

	"github.com/duiatlas/brain-core/internal/core/domain"
	"github.com/duiatlas/brain-core/internal/core/ports/driven/mocks"
	"github.com/duiatlas/brain-core/internal/core/ports/driving"
	"github.com/duiatlas/brain-core/internal/core/services"
	"github.com/duiatlas/brain-core/internal/runtime"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("acceptance suite failed")
	}
}

// brainFeature holds per-scenario state
type brainFeature struct {
	store      *mocks.MockKnowledgeStore
	embedding  *mocks.MockEmbeddingService
	generation *mocks.MockGenerationService
	registry   *runtime.Services

	results []*domain.SearchResult
	answer  *domain.Answer
	err     error
}

func (f *brainFeature) reset() {
	f.store = mocks.NewMockKnowledgeStore()
	f.embedding = mocks.NewMockEmbeddingService()
	f.embedding.SetDimensions(4)
	f.generation = mocks.NewMockGenerationService()
	f.registry = runtime.NewServices()
	f.results = nil
	f.answer = nil
	f.err = nil
}

func (f *brainFeature) services() (driving.SearchService, driving.BrainService) {
	search := services.NewSearchService(f.store, f.registry, services.SearchConfig{})
	brain := services.NewBrainService(search, f.store, f.registry, services.BrainConfig{})
	return search, brain
}

// Givens

func (f *brainFeature) knowledgeBaseContainsHarrisRecords() error {
	f.store.AddState("state-tx", "Texas")
	f.store.AddCounty("county-harris", "Harris County")
	f.store.AddSource(&domain.Source{ID: "source-1", FileName: "harris-impound.pdf", FileType: "pdf"})
	f.store.AddCitation(&domain.Citation{
		ID: "cite-1", SourceID: "source-1",
		Text: "Tex. Transp. Code § 545.305", Type: "statute",
	})

	countyID := "county-harris"
	f.store.AddChunk(&domain.KnowledgeChunk{
		ID:        "chunk-fee",
		SourceID:  "source-1",
		Content:   "Daily storage fee is $45 at the Harris County impound lot",
		Topic:     domain.TopicImpound,
		StateID:   "state-tx",
		CountyID:  &countyID,
		Embedding: []float32{1, 0, 0, 0},
	})
	f.store.AddChunk(&domain.KnowledgeChunk{
		ID:        "chunk-release",
		SourceID:  "source-1",
		Content:   "Vehicle release requires photo ID and proof of ownership",
		Topic:     domain.TopicImpound,
		StateID:   "state-tx",
		CountyID:  &countyID,
		Embedding: []float32{0.9, 0.3, 0, 0},
	})
	return nil
}

func (f *brainFeature) knowledgeBaseContainsStatewideRecord() error {
	f.store.AddState("state-tx", "Texas")
	f.store.AddCounty("county-travis", "Travis County")
	f.store.AddSource(&domain.Source{ID: "source-1", FileName: "tx-statewide.pdf", FileType: "pdf"})
	f.store.AddChunk(&domain.KnowledgeChunk{
		ID:        "chunk-statewide",
		SourceID:  "source-1",
		Content:   "Statewide impound release rules",
		Topic:     domain.TopicImpound,
		StateID:   "state-tx",
		AllCounty: true,
		Embedding: []float32{1, 0, 0, 0},
	})
	return nil
}

func (f *brainFeature) embeddingProviderAvailable() error {
	f.registry.SetEmbeddingService(f.embedding)
	f.registry.SetGenerationService(f.generation)
	return nil
}

func (f *brainFeature) noEmbeddingProvider() error {
	// Registry stays empty
	return nil
}

func (f *brainFeature) generationProviderReplies(text string) error {
	f.generation.SetResponse(text)
	return nil
}

// Whens

func (f *brainFeature) iSearchFor(query, county, state string) error {
	f.embedding.SetCanned(query, []float32{1, 0, 0, 0})
	search, _ := f.services()
	f.results, f.err = search.Search(context.Background(), query, domain.SearchOptions{
		State:  state,
		County: county,
	})
	return nil
}

func (f *brainFeature) iRunALexicalSearchFor(query, county, state string) error {
	search, _ := f.services()
	f.results, f.err = search.TextSearch(context.Background(), query, domain.SearchOptions{
		State:  state,
		County: county,
	})
	return nil
}

func (f *brainFeature) iAsk(question, county, state string) error {
	f.embedding.SetCanned(question, []float32{1, 0, 0, 0})
	_, brain := f.services()
	f.answer, f.err = brain.Answer(context.Background(), question, domain.QuestionContext{
		State:  state,
		County: county,
		Topic:  domain.TopicImpound,
	})
	return nil
}

// Thens

func (f *brainFeature) resultsOrderedBySimilarity() error {
	if f.err != nil {
		return fmt.Errorf("unexpected error: %w", f.err)
	}
	if len(f.results) == 0 {
		return fmt.Errorf("expected results, got none")
	}
	for i := 1; i < len(f.results); i++ {
		if f.results[i].Similarity > f.results[i-1].Similarity {
			return fmt.Errorf("results out of order at position %d", i)
		}
	}
	return nil
}

func (f *brainFeature) everyResultAboveThreshold() error {
	for _, result := range f.results {
		if result.Similarity <= domain.DefaultSimilarityThreshold {
			return fmt.Errorf("result %s at %f is not above the threshold", result.ChunkID, result.Similarity)
		}
	}
	return nil
}

func (f *brainFeature) iGetExactlyNResults(n int) error {
	if f.err != nil {
		return fmt.Errorf("unexpected error: %w", f.err)
	}
	if len(f.results) != n {
		return fmt.Errorf("expected %d results, got %d", n, len(f.results))
	}
	return nil
}

func (f *brainFeature) resultsHavePlaceholderScore() error {
	if f.err != nil {
		return fmt.Errorf("unexpected error: %w", f.err)
	}
	if len(f.results) == 0 {
		return fmt.Errorf("expected lexical matches, got none")
	}
	for _, result := range f.results {
		if result.Similarity != domain.TextSearchPlaceholderScore {
			return fmt.Errorf("result %s has score %f, want placeholder", result.ChunkID, result.Similarity)
		}
	}
	return nil
}

func (f *brainFeature) embeddingProviderNeverCalled() error {
	if f.embedding.Calls() != 0 {
		return fmt.Errorf("embedding provider called %d times", f.embedding.Calls())
	}
	return nil
}

func (f *brainFeature) searchFailsWithConfigurationError() error {
	if f.err == nil {
		return fmt.Errorf("expected an error, got %d results", len(f.results))
	}
	if !errors.Is(f.err, domain.ErrNotConfigured) {
		return fmt.Errorf("expected a configuration error, got %v", f.err)
	}
	return nil
}

func (f *brainFeature) answerTextIs(text string) error {
	if f.err != nil {
		return fmt.Errorf("unexpected error: %w", f.err)
	}
	if f.answer.Text != text {
		return fmt.Errorf("answer text %q, want %q", f.answer.Text, text)
	}
	return nil
}

func (f *brainFeature) answerIncludesCitation() error {
	if len(f.answer.Citations) == 0 {
		return fmt.Errorf("expected at least one citation")
	}
	return nil
}

func (f *brainFeature) answerConfidenceInRange() error {
	if f.answer.Confidence <= 0 || f.answer.Confidence > domain.MaxAnswerConfidence {
		return fmt.Errorf("confidence %f outside (0, %f]", f.answer.Confidence, domain.MaxAnswerConfidence)
	}
	return nil
}

func (f *brainFeature) answerSuggestsFollowUps() error {
	if len(f.answer.FollowUps) == 0 {
		return fmt.Errorf("expected follow-up questions")
	}
	if len(f.answer.FollowUps) > domain.MaxFollowUpQuestions {
		return fmt.Errorf("got %d follow-ups, cap is %d", len(f.answer.FollowUps), domain.MaxFollowUpQuestions)
	}
	return nil
}

func (f *brainFeature) answerAdmitsInsufficientInformation() error {
	if f.err != nil {
		return fmt.Errorf("insufficient data must not be an error: %w", f.err)
	}
	if !f.answer.Insufficient() {
		return fmt.Errorf("expected an insufficient-data answer, got confidence %f", f.answer.Confidence)
	}
	return nil
}

func (f *brainFeature) answerHasNoCitationsOrSources() error {
	if len(f.answer.Citations) != 0 || len(f.answer.Sources) != 0 {
		return fmt.Errorf("expected empty citations and sources, got %d and %d",
			len(f.answer.Citations), len(f.answer.Sources))
	}
	return nil
}

func (f *brainFeature) generationProviderNeverCalled() error {
	if f.generation.Calls != 0 {
		return fmt.Errorf("generation provider called %d times", f.generation.Calls)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	f := &brainFeature{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		f.reset()
		return ctx, nil
	})

	ctx.Step(`^the knowledge base contains Harris County impound records$`, f.knowledgeBaseContainsHarrisRecords)
	ctx.Step(`^the knowledge base contains a statewide Texas record$`, f.knowledgeBaseContainsStatewideRecord)
	ctx.Step(`^the embedding provider is available$`, f.embeddingProviderAvailable)
	ctx.Step(`^no embedding provider is configured$`, f.noEmbeddingProvider)
	ctx.Step(`^the generation provider replies "([^"]*)"$`, f.generationProviderReplies)

	ctx.Step(`^I search for "([^"]*)" in "([^"]*)" county, "([^"]*)"$`, f.iSearchFor)
	ctx.Step(`^I run a lexical search for "([^"]*)" in "([^"]*)" county, "([^"]*)"$`, f.iRunALexicalSearchFor)
	ctx.Step(`^I ask "([^"]*)" in "([^"]*)" county, "([^"]*)"$`, f.iAsk)

	ctx.Step(`^I get results ordered by similarity$`, f.resultsOrderedBySimilarity)
	ctx.Step(`^every result scores above the similarity threshold$`, f.everyResultAboveThreshold)
	ctx.Step(`^I get exactly (\d+) result(?:s)?$`, f.iGetExactlyNResults)
	ctx.Step(`^I get results with the placeholder score$`, f.resultsHavePlaceholderScore)
	ctx.Step(`^the embedding provider was never called$`, f.embeddingProviderNeverCalled)
	ctx.Step(`^the search fails with a configuration error$`, f.searchFailsWithConfigurationError)

	ctx.Step(`^the answer text is "([^"]*)"$`, f.answerTextIs)
	ctx.Step(`^the answer includes at least one citation$`, f.answerIncludesCitation)
	ctx.Step(`^the answer confidence is above 0 and at most 0\.95$`, f.answerConfidenceInRange)
	ctx.Step(`^the answer suggests follow-up questions$`, f.answerSuggestsFollowUps)
	ctx.Step(`^the answer admits insufficient information$`, f.answerAdmitsInsufficientInformation)
	ctx.Step(`^the answer has no citations or sources$`, f.answerHasNoCitationsOrSources)
	ctx.Step(`^the generation provider was never called$`, f.generationProviderNeverCalled)
}
