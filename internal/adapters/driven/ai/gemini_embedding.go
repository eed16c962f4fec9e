package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/duiatlas/brain-core/internal/core/domain"
	"github.com/duiatlas/brain-core/internal/core/ports/driven"
)

// Ensure GeminiEmbedding implements EmbeddingService
var _ driven.EmbeddingService = (*GeminiEmbedding)(nil)

// GeminiEmbedding implements EmbeddingService using the Gemini embedding API
type GeminiEmbedding struct {
	apiKey     string
	model      string
	baseURL    string
	dimensions int
	client     *http.Client
	logger     *slog.Logger
}

// Model dimensions for Gemini embedding models
var geminiModelDimensions = map[string]int{
	"gemini-embedding-001": 768,
	"text-embedding-004":   768,
}

// NewGeminiEmbedding creates a new Gemini embedding service.
// An empty API key is accepted; calls fail with domain.ErrNotConfigured
// until a key is supplied, so the service can be wired before the
// credential exists.
func NewGeminiEmbedding(apiKey, model, baseURL string) driven.EmbeddingService {
	if model == "" {
		model = "gemini-embedding-001"
	}
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	dimensions, ok := geminiModelDimensions[model]
	if !ok {
		dimensions = 768
	}

	return &GeminiEmbedding{
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		dimensions: dimensions,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: slog.Default(),
	}
}

// geminiEmbedRequest is the request body for the embedContent endpoint
type geminiEmbedRequest struct {
	Model   string        `json:"model"`
	Content geminiContent `json:"content"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// geminiEmbedResponse is the response from the embedContent endpoint
type geminiEmbedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
	Error *geminiError `json:"error,omitempty"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// EmbedQuery generates an embedding for a single text
func (e *GeminiEmbedding) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if e.apiKey == "" {
		return nil, fmt.Errorf("%w: Gemini API key is missing", domain.ErrNotConfigured)
	}

	reqBody := geminiEmbedRequest{
		Model:   "models/" + e.model,
		Content: geminiContent{Parts: []geminiPart{{Text: text}}},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:embedContent?key=%s",
		e.baseURL, e.model, url.QueryEscape(e.apiKey))
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", domain.ErrProvider, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", domain.ErrProvider, err)
	}

	var embResp geminiEmbedResponse
	if err := json.Unmarshal(respBody, &embResp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %w", domain.ErrProvider, err)
	}

	if embResp.Error != nil {
		return nil, fmt.Errorf("%w: Gemini API error: %s (status: %s)",
			domain.ErrProvider, embResp.Error.Message, embResp.Error.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: Gemini API returned status %d", domain.ErrProvider, resp.StatusCode)
	}

	values := embResp.Embedding.Values
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: empty embedding returned", domain.ErrProvider)
	}

	// Unexpected dimensionality is logged, not fatal; scoring handles
	// mismatched vectors over the common prefix
	if len(values) != e.dimensions {
		e.logger.Warn("embedding dimension mismatch",
			"model", e.model, "expected", e.dimensions, "got", len(values))
	}

	return values, nil
}

// Embed generates embeddings for multiple texts as repeated single calls
func (e *GeminiEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := e.EmbedQuery(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, vec)
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimension size
func (e *GeminiEmbedding) Dimensions() int {
	return e.dimensions
}

// Model returns the model name being used
func (e *GeminiEmbedding) Model() string {
	return e.model
}

// HealthCheck verifies the embedding service is available
func (e *GeminiEmbedding) HealthCheck(ctx context.Context) error {
	_, err := e.EmbedQuery(ctx, "health check")
	return err
}

// Close releases resources held by the embedding service
func (e *GeminiEmbedding) Close() error {
	e.client.CloseIdleConnections()
	return nil
}
