package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/duiatlas/brain-core/internal/core/domain"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"question is required"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// SearchRequest is the body for the search endpoint
// @Description Semantic or lexical search request
type SearchRequest struct {
	Query               string       `json:"query" example:"how much is impound storage per day"`
	State               string       `json:"state,omitempty" example:"Texas"`
	County              string       `json:"county,omitempty" example:"Harris"`
	Topic               domain.Topic `json:"topic,omitempty" example:"impound"`
	Phase               domain.Phase `json:"phase,omitempty" example:"arrest"`
	Limit               int          `json:"limit,omitempty" example:"10"`
	SimilarityThreshold float64      `json:"similarity_threshold,omitempty" example:"0.7"`

	// Lexical selects substring matching instead of vector search.
	// Useful when no embedding provider is configured; never chosen
	// implicitly by the server.
	Lexical bool `json:"lexical,omitempty"`
}

// SearchResponse wraps search results
type SearchResponse struct {
	Results []*domain.SearchResult `json:"results"`
	Count   int                    `json:"count"`
}

// AskRequest is the body for the question endpoint
// @Description Grounded question request
type AskRequest struct {
	Question  string       `json:"question" example:"How do I get my car back?"`
	State     string       `json:"state,omitempty" example:"Texas"`
	County    string       `json:"county,omitempty" example:"Harris"`
	Topic     domain.Topic `json:"topic,omitempty" example:"impound"`
	Latitude  *float64     `json:"latitude,omitempty"`
	Longitude *float64     `json:"longitude,omitempty"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns the readiness status of the API (checks database and cache connections)
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "Database unreachable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}

	status := map[string]string{"status": "ready"}
	if s.redisClient != nil {
		// Cache loss degrades latency, not correctness
		if err := s.redisClient.Ping(r.Context()); err != nil {
			status["cache"] = "unreachable"
		}
	}

	writeJSON(w, http.StatusOK, status)
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Retrieval endpoints

// handleSearch godoc
// @Summary      Search the knowledge corpus
// @Description  Semantic (or explicitly lexical) search scoped to a jurisdiction
// @Tags         Search
// @Accept       json
// @Produce      json
// @Param        request  body      SearchRequest  true  "Search parameters"
// @Success      200      {object}  SearchResponse
// @Failure      400      {object}  ErrorResponse  "Missing or invalid query"
// @Failure      502      {object}  ErrorResponse  "Embedding provider failure"
// @Failure      500      {object}  ErrorResponse  "Store failure"
// @Router       /api/v1/search [post]
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	opts := domain.SearchOptions{
		State:               req.State,
		County:              req.County,
		Topic:               req.Topic,
		Phase:               req.Phase,
		Limit:               req.Limit,
		SimilarityThreshold: req.SimilarityThreshold,
	}

	var (
		results []*domain.SearchResult
		err     error
	)
	if req.Lexical {
		results, err = s.searchService.TextSearch(r.Context(), req.Query, opts)
	} else {
		results, err = s.searchService.Search(r.Context(), req.Query, opts)
	}
	if err != nil {
		writeServiceError(w, err, "search failed")
		return
	}

	if results == nil {
		results = []*domain.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results, Count: len(results)})
}

// handleAsk godoc
// @Summary      Ask a question
// @Description  Synthesizes a grounded, cited answer for a jurisdiction-scoped question
// @Tags         Answers
// @Accept       json
// @Produce      json
// @Param        request  body      AskRequest  true  "Question and jurisdiction"
// @Success      200      {object}  domain.Answer
// @Failure      400      {object}  ErrorResponse  "Missing question"
// @Failure      502      {object}  ErrorResponse  "AI provider failure"
// @Failure      500      {object}  ErrorResponse  "Synthesis failure"
// @Router       /api/v1/ask [post]
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	qctx := domain.QuestionContext{
		State:     req.State,
		County:    req.County,
		Topic:     req.Topic,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}

	if s.answerCache != nil {
		if cached, err := s.answerCache.Get(r.Context(), req.Question, qctx); err == nil {
			w.Header().Set("X-Cache", "HIT")
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	answer, err := s.brainService.Answer(r.Context(), req.Question, qctx)
	if err != nil {
		writeServiceError(w, err, "answer synthesis failed")
		return
	}

	if s.answerCache != nil {
		// Best effort; a failed cache write never fails the request
		_ = s.answerCache.Set(r.Context(), req.Question, qctx, answer)
	}

	writeJSON(w, http.StatusOK, answer)
}

// handleCurated godoc
// @Summary      Curated jurisdiction data
// @Description  Returns curated records for a jurisdiction; gold=true narrows to priority-10 insights
// @Tags         Curated
// @Produce      json
// @Param        state_id   query     string  true   "State ID"
// @Param        county_id  query     string  false  "County ID"
// @Param        topic      query     string  false  "Topic filter"
// @Param        gold       query     bool    false  "Only priority-10 records"
// @Success      200        {array}   domain.CuratedData
// @Failure      400        {object}  ErrorResponse  "Missing state_id"
// @Failure      401        {object}  ErrorResponse  "Missing or invalid token"
// @Failure      500        {object}  ErrorResponse  "Store failure"
// @Router       /api/v1/curated [get]
func (s *Server) handleCurated(w http.ResponseWriter, r *http.Request) {
	stateID := r.URL.Query().Get("state_id")
	if stateID == "" {
		writeError(w, http.StatusBadRequest, "state_id is required")
		return
	}
	countyID := r.URL.Query().Get("county_id")
	topic := domain.Topic(r.URL.Query().Get("topic"))
	goldOnly := r.URL.Query().Get("gold") == "true"

	records, err := s.brainService.Curated(r.Context(), stateID, countyID, topic, goldOnly)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load curated data")
		return
	}

	if records == nil {
		records = []*domain.CuratedData{}
	}
	writeJSON(w, http.StatusOK, records)
}

// writeServiceError maps domain errors to HTTP status codes.
// Provider problems are upstream failures (502); store problems stay
// internal (500).
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid input")
	case errors.Is(err, domain.ErrNotConfigured), errors.Is(err, domain.ErrProvider):
		writeError(w, http.StatusBadGateway, "provider unavailable")
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
