package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/duiatlas/brain-core/internal/core/domain"
	"github.com/duiatlas/brain-core/internal/core/ports/driven"
)

// Ensure GeminiGeneration implements GenerationService
var _ driven.GenerationService = (*GeminiGeneration)(nil)

// GeminiGeneration implements GenerationService using the Gemini API
type GeminiGeneration struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGeminiGeneration creates a new Gemini generation service.
// The credential is checked lazily at call time, like the embedding
// adapter.
func NewGeminiGeneration(apiKey, model, baseURL string) driven.GenerationService {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	return &GeminiGeneration{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// geminiGenerateRequest is the request body for the generateContent endpoint
type geminiGenerateRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// geminiGenerateResponse is the response from the generateContent endpoint
type geminiGenerateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *geminiError `json:"error,omitempty"`
}

// Generate runs a single completion
func (g *GeminiGeneration) Generate(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("%w: Gemini API key is missing", domain.ErrNotConfigured)
	}

	reqBody := geminiGenerateRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxTokens,
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		g.baseURL, g.model, url.QueryEscape(g.apiKey))
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: request failed: %w", domain.ErrProvider, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %w", domain.ErrProvider, err)
	}

	var genResp geminiGenerateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("%w: failed to parse response: %w", domain.ErrProvider, err)
	}

	if genResp.Error != nil {
		return "", fmt.Errorf("%w: Gemini API error: %s (status: %s)",
			domain.ErrProvider, genResp.Error.Message, genResp.Error.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: Gemini API returned status %d", domain.ErrProvider, resp.StatusCode)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no text generated", domain.ErrProvider)
	}

	return genResp.Candidates[0].Content.Parts[0].Text, nil
}

// Model returns the model name being used
func (g *GeminiGeneration) Model() string {
	return g.model
}

// Ping verifies the generation service is available
func (g *GeminiGeneration) Ping(ctx context.Context) error {
	_, err := g.Generate(ctx, "ping", 0, 8)
	return err
}

// Close releases resources held by the generation service
func (g *GeminiGeneration) Close() error {
	g.client.CloseIdleConnections()
	return nil
}
