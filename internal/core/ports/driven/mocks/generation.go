package mocks

import (
	"context"
)

// MockGenerationService is a mock implementation of GenerationService for testing
type MockGenerationService struct {
	model    string
	response string
	failNext error

	// Captured from the last Generate call
	LastPrompt      string
	LastTemperature float64
	LastMaxTokens   int
	Calls           int
}

// NewMockGenerationService creates a new MockGenerationService
func NewMockGenerationService() *MockGenerationService {
	return &MockGenerationService{
		model:    "mock-generation-model",
		response: "Based on the provided context, the fee applies. This is general information, not legal advice.",
	}
}

func (m *MockGenerationService) Generate(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	m.Calls++
	m.LastPrompt = prompt
	m.LastTemperature = temperature
	m.LastMaxTokens = maxTokens
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return "", err
	}
	return m.response, nil
}

func (m *MockGenerationService) Model() string {
	return m.model
}

func (m *MockGenerationService) Ping(ctx context.Context) error {
	return nil
}

func (m *MockGenerationService) Close() error {
	return nil
}

// Helper methods for testing

func (m *MockGenerationService) SetResponse(text string) {
	m.response = text
}

func (m *MockGenerationService) SetFailNext(err error) {
	m.failNext = err
}
