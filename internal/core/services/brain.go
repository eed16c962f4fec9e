package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/duiatlas/brain-core/internal/core/domain"
	"github.com/duiatlas/brain-core/internal/core/ports/driven"
	"github.com/duiatlas/brain-core/internal/core/ports/driving"
	"github.com/duiatlas/brain-core/internal/runtime"
)

// Ensure brainService implements BrainService
var _ driving.BrainService = (*brainService)(nil)

const (
	// answerRetrievalLimit is how many passages ground an answer
	answerRetrievalLimit = 5

	answerTemperature = 0.1
	answerMaxTokens   = 1024
)

// BrainConfig tunes the answer synthesizer
type BrainConfig struct {
	Temperature float64
	MaxTokens   int
	Logger      *slog.Logger
}

// brainService implements the BrainService interface
type brainService struct {
	search      driving.SearchService
	store       driven.KnowledgeStore
	services    *runtime.Services // Dynamic AI services
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

// NewBrainService creates a new BrainService.
// The generation service is accessed dynamically via runtime.Services.
func NewBrainService(search driving.SearchService, store driven.KnowledgeStore, services *runtime.Services, cfg BrainConfig) driving.BrainService {
	if cfg.Temperature <= 0 {
		cfg.Temperature = answerTemperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = answerMaxTokens
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &brainService{
		search:      search,
		store:       store,
		services:    services,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      cfg.Logger,
	}
}

// Answer retrieves grounding passages for the question and synthesizes
// a cited, confidence-scored answer
func (s *brainService) Answer(ctx context.Context, question string, qctx domain.QuestionContext) (*domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	// Context assembly favors recall: lower threshold than direct search
	results, err := s.search.Search(ctx, question, domain.SearchOptions{
		State:               qctx.State,
		County:              qctx.County,
		Topic:               qctx.Topic,
		Limit:               answerRetrievalLimit,
		SimilarityThreshold: domain.AnswerSimilarityThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: retrieval: %w", domain.ErrSynthesis, err)
	}

	// No grounding context: answer honestly instead of generating.
	// This is a valid terminal state, not an error.
	if len(results) == 0 {
		s.logger.Info("no knowledge for jurisdiction",
			"state", qctx.State, "county", qctx.County, "topic", qctx.Topic)
		return s.insufficientAnswer(qctx), nil
	}

	generationService := s.services.GenerationService()
	if generationService == nil {
		return nil, fmt.Errorf("%w: %w: no generation service", domain.ErrSynthesis, domain.ErrNotConfigured)
	}

	prompt := buildAnswerPrompt(question, qctx, results)
	text, err := generationService.Generate(ctx, prompt, s.temperature, s.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("%w: generation: %w", domain.ErrSynthesis, err)
	}

	citations, err := s.resolveCitations(ctx, qctx, results)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSynthesis, err)
	}

	return &domain.Answer{
		Text:       text,
		Confidence: answerConfidence(results),
		Citations:  citations,
		Sources:    sourceRefs(results),
		FollowUps:  followUpQuestions(qctx),
	}, nil
}

// Curated returns curated records for a jurisdiction
func (s *brainService) Curated(ctx context.Context, stateID, countyID string, topic domain.Topic, goldOnly bool) ([]*domain.CuratedData, error) {
	var (
		records []*domain.CuratedData
		err     error
	)
	if goldOnly {
		records, err = s.store.FindHighPriorityCuratedData(ctx, stateID, countyID, topic)
	} else {
		records, err = s.store.FindCuratedData(ctx, stateID, countyID, topic)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: curated data: %v", domain.ErrStore, err)
	}
	return records, nil
}

// insufficientAnswer is the terminal no-data response. Fabricating an
// answer without grounding context is disallowed.
func (s *brainService) insufficientAnswer(qctx domain.QuestionContext) *domain.Answer {
	var b strings.Builder
	b.WriteString("We don't have enough verified information")
	if where := jurisdictionLabel(qctx); where != "" {
		b.WriteString(" for " + where)
	}
	b.WriteString(" to answer that question reliably. ")
	b.WriteString("Rules, fees and deadlines vary by county, and we only answer from records we have verified. ")
	b.WriteString("We recommend contacting a local DUI attorney or the relevant county office directly. ")
	b.WriteString("This is general information, not legal advice.")

	return &domain.Answer{
		Text:       b.String(),
		Confidence: 0,
		Citations:  []domain.Citation{},
		Sources:    []domain.SourceRef{},
		FollowUps:  followUpQuestions(qctx),
	}
}

// buildAnswerPrompt assembles the grounded generation prompt: the
// jurisdiction, the labeled context block and the verbatim question,
// with instructions that forbid answering beyond the supplied context.
func buildAnswerPrompt(question string, qctx domain.QuestionContext, results []*domain.SearchResult) string {
	var context strings.Builder
	for i, result := range results {
		fmt.Fprintf(&context, "Source %d:\n%s\n\n", i+1, result.Content)
	}

	where := jurisdictionLabel(qctx)
	if where == "" {
		where = "the user's jurisdiction"
	}

	return fmt.Sprintf(`You are a DUI process information assistant answering for %s.

CONTEXT:
%s
QUESTION:
%s

INSTRUCTIONS:
- Answer using ONLY the context above. Do not use outside knowledge.
- Be specific to %s; do not generalize across jurisdictions.
- If the context does not contain the answer, say so plainly instead of guessing.
- When the context includes fees, deadlines or procedures, state them concretely with their exact amounts and timeframes.
- End with: "This is general information, not legal advice. Consult a licensed attorney about your case."

Answer:`, where, context.String(), question, where)
}

// answerConfidence is the capped mean of retrieval similarities
func answerConfidence(results []*domain.SearchResult) float64 {
	var sum float64
	for _, result := range results {
		sum += result.Similarity
	}
	confidence := sum / float64(len(results))
	if confidence > domain.MaxAnswerConfidence {
		confidence = domain.MaxAnswerConfidence
	}
	return confidence
}

// resolveCitations fetches citations for the retrieved sources, scoped
// to the question's jurisdiction, capped at MaxAnswerCitations
func (s *brainService) resolveCitations(ctx context.Context, qctx domain.QuestionContext, results []*domain.SearchResult) ([]domain.Citation, error) {
	sourceIDs := distinctSourceIDs(results)

	var jurisdictions []string
	if qctx.State != "" {
		jurisdictions = append(jurisdictions, qctx.State)
	}
	if qctx.County != "" {
		jurisdictions = append(jurisdictions, qctx.County)
	}

	found, err := s.store.GetCitationsBySourceIDs(ctx, sourceIDs, jurisdictions)
	if err != nil {
		return nil, fmt.Errorf("%w: citations: %v", domain.ErrStore, err)
	}

	citations := make([]domain.Citation, 0, len(found))
	for _, citation := range found {
		if len(citations) >= domain.MaxAnswerCitations {
			break
		}
		citations = append(citations, *citation)
	}
	return citations, nil
}

// sourceRefs maps each retrieved result's source to a display record,
// deduplicated, preserving retrieval order
func sourceRefs(results []*domain.SearchResult) []domain.SourceRef {
	refs := make([]domain.SourceRef, 0, len(results))
	seen := make(map[string]bool)
	for _, result := range results {
		src := result.Source
		if src == nil || seen[src.ID] {
			continue
		}
		seen[src.ID] = true
		refs = append(refs, domain.SourceRef{
			ID:       src.ID,
			FileName: src.FileName,
			FileType: src.FileType,
			FilePath: src.FilePath,
		})
	}
	return refs
}

// distinctSourceIDs collects source IDs in retrieval order
func distinctSourceIDs(results []*domain.SearchResult) []string {
	ids := make([]string, 0, len(results))
	seen := make(map[string]bool)
	for _, result := range results {
		if result.Source == nil || seen[result.Source.ID] {
			continue
		}
		seen[result.Source.ID] = true
		ids = append(ids, result.Source.ID)
	}
	return ids
}

// jurisdictionLabel renders "Harris County, Texas" style labels
func jurisdictionLabel(qctx domain.QuestionContext) string {
	switch {
	case qctx.County != "" && qctx.State != "":
		return fmt.Sprintf("%s County, %s", qctx.County, qctx.State)
	case qctx.State != "":
		return qctx.State
	case qctx.County != "":
		return qctx.County + " County"
	}
	return ""
}
