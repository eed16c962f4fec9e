package domain

// AIProvider identifies the AI/embedding provider
type AIProvider string

const (
	AIProviderGemini AIProvider = "gemini"
	AIProviderOpenAI AIProvider = "openai"
)

// EmbeddingSettings configures the embedding service.
// An empty APIKey is allowed at construction; providers check the
// credential lazily on the first call.
type EmbeddingSettings struct {
	Provider AIProvider `json:"provider"`
	APIKey   string     `json:"-"` // Never serialize
	Model    string     `json:"model"`
	BaseURL  string     `json:"base_url,omitempty"`
}

// GenerationSettings configures the generation service.
type GenerationSettings struct {
	Provider    AIProvider `json:"provider"`
	APIKey      string     `json:"-"` // Never serialize
	Model       string     `json:"model"`
	BaseURL     string     `json:"base_url,omitempty"`
	Temperature float64    `json:"temperature"`
	MaxTokens   int        `json:"max_tokens"`
}

// DefaultEmbeddingSettings returns the Gemini defaults used in production.
func DefaultEmbeddingSettings(apiKey string) EmbeddingSettings {
	return EmbeddingSettings{
		Provider: AIProviderGemini,
		APIKey:   apiKey,
		Model:    "gemini-embedding-001",
	}
}

// DefaultGenerationSettings returns the Gemini defaults used in production.
func DefaultGenerationSettings(apiKey string) GenerationSettings {
	return GenerationSettings{
		Provider:    AIProviderGemini,
		APIKey:      apiKey,
		Model:       "gemini-1.5-flash",
		Temperature: 0.1,
		MaxTokens:   1024,
	}
}
