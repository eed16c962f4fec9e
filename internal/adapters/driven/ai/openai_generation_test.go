package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/duiatlas/brain-core/internal/core/domain"
)

func openAIChatResponse(text string) chatResponse {
	var resp chatResponse
	resp.Choices = []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	}{
		{Message: chatMessage{Role: "assistant", Content: text}, FinishReason: "stop"},
	}
	return resp
}

func TestOpenAIGeneration_Defaults(t *testing.T) {
	svc := NewOpenAIGeneration("test-key", "", "").(*OpenAIGeneration)

	if svc.model != "gpt-4o-mini" {
		t.Errorf("expected default model gpt-4o-mini, got %s", svc.model)
	}
	if svc.baseURL != "https://api.openai.com/v1" {
		t.Errorf("unexpected default base URL %s", svc.baseURL)
	}
}

func TestOpenAIGeneration_LazyCredentialCheck(t *testing.T) {
	svc := NewOpenAIGeneration("", "", "")

	_, err := svc.Generate(context.Background(), "prompt", 0.1, 256)
	if !errors.Is(err, domain.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestOpenAIGeneration_Generate(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(openAIChatResponse("the answer"))
	}))
	defer server.Close()

	svc := NewOpenAIGeneration("test-key", "", server.URL)

	text, err := svc.Generate(context.Background(), "the prompt", 0.1, 1024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "the answer" {
		t.Errorf("expected generated text, got %q", text)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Content != "the prompt" {
		t.Errorf("expected prompt forwarded, got %+v", gotReq.Messages)
	}
	if gotReq.Temperature != 0.1 || gotReq.MaxTokens != 1024 {
		t.Errorf("expected generation config forwarded, got temp=%f max=%d",
			gotReq.Temperature, gotReq.MaxTokens)
	}
}

func TestOpenAIGeneration_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse{})
	}))
	defer server.Close()

	svc := NewOpenAIGeneration("test-key", "", server.URL)

	_, err := svc.Generate(context.Background(), "prompt", 0.1, 256)
	if !errors.Is(err, domain.ErrProvider) {
		t.Errorf("expected ErrProvider for empty choices, got %v", err)
	}
}

func TestOpenAIGeneration_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limited", "type": "rate_limit", "code": "429"}}`))
	}))
	defer server.Close()

	svc := NewOpenAIGeneration("test-key", "", server.URL)

	_, err := svc.Generate(context.Background(), "prompt", 0.1, 256)
	if !errors.Is(err, domain.ErrProvider) {
		t.Errorf("expected ErrProvider, got %v", err)
	}
}

func TestOpenAIGeneration_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(openAIChatResponse("pong"))
	}))
	defer server.Close()

	svc := NewOpenAIGeneration("test-key", "", server.URL)

	if err := svc.Ping(context.Background()); err != nil {
		t.Errorf("unexpected ping error: %v", err)
	}
}
