package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestGeminiProvider(t *testing.T, handler http.HandlerFunc) *GeminiProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := DefaultConfig()
	config.Provider = "gemini"
	config.Model = "gemini-2.0-flash"
	config.APIKey = "test-key"
	config.BaseURL = server.URL
	config.Timeout = 5 * time.Second

	provider, err := NewGeminiProvider(context.Background(), config)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	return provider
}

func TestGeminiProvider_Complete_Success(t *testing.T) {
	provider := newTestGeminiProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-2.0-flash:generateContent") {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if _, ok := body["systemInstruction"]; !ok {
			t.Errorf("Expected systemInstruction in request")
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{
					"content": map[string]any{
						"role":  "model",
						"parts": []map[string]any{{"text": sampleReply}},
					},
					"finishReason": "STOP",
				},
			},
			"usageMetadata": map[string]any{
				"promptTokenCount":     10,
				"candidatesTokenCount": 5,
				"totalTokenCount":      15,
			},
		})
	})

	resp, err := provider.Complete(context.Background(), CompletionRequest{System: "system text", Input: "乾卦"})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Text != sampleReply {
		t.Errorf("Unexpected reply: %q", resp.Text)
	}
	if resp.TokensUsed != 15 {
		t.Errorf("Expected 15 tokens, got %d", resp.TokensUsed)
	}
	if resp.Model != "gemini-2.0-flash" {
		t.Errorf("Unexpected model: %s", resp.Model)
	}
}

func TestGeminiProvider_MissingAPIKey(t *testing.T) {
	if _, err := NewGeminiProvider(context.Background(), Config{}); err == nil {
		t.Fatal("Expected error for missing API key")
	}
}

func TestGeminiProvider_Complete_RateLimit(t *testing.T) {
	provider := newTestGeminiProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	})

	_, err := provider.Complete(context.Background(), CompletionRequest{Input: "乾卦"})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("Expected ErrRateLimit, got %v", err)
	}
}

func TestGeminiProvider_Complete_NoCandidates(t *testing.T) {
	provider := newTestGeminiProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := provider.Complete(context.Background(), CompletionRequest{Input: "乾卦"})
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("Expected ErrInvalidResponse, got %v", err)
	}
}
