package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := DefaultConfig()
	config.Provider = "anthropic"
	config.Model = "claude-sonnet-4-20250514"
	config.APIKey = "test-key"
	config.BaseURL = server.URL
	config.Timeout = 5 * time.Second

	provider, err := NewAnthropicProvider(config)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	return provider
}

func TestAnthropicProvider_Complete_Success(t *testing.T) {
	provider := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Expected path /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "test-key" {
			t.Errorf("Expected x-api-key test-key, got %s", r.Header.Get("X-Api-Key"))
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["model"] != "claude-sonnet-4-20250514" {
			t.Errorf("Unexpected model: %v", body["model"])
		}
		if body["max_tokens"] != float64(4095) {
			t.Errorf("Expected max_tokens 4095, got %v", body["max_tokens"])
		}
		if _, ok := body["top_p"]; ok {
			t.Errorf("top_p of 1 should not be sent")
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":   "msg_test",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": sampleReply},
			},
			"model":       "claude-sonnet-4-20250514",
			"stop_reason": "end_turn",
			"usage": map[string]any{
				"input_tokens":  50,
				"output_tokens": 30,
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
	if resp.TokensUsed != 80 {
		t.Errorf("Expected 80 tokens, got %d", resp.TokensUsed)
	}
	if resp.Model != "claude-sonnet-4-20250514" {
		t.Errorf("Unexpected model: %s", resp.Model)
	}
}

func TestAnthropicProvider_MissingAPIKey(t *testing.T) {
	if _, err := NewAnthropicProvider(Config{}); err == nil {
		t.Fatal("Expected error for missing API key")
	}
}

func TestAnthropicProvider_Complete_RateLimit(t *testing.T) {
	provider := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	})

	_, err := provider.Complete(context.Background(), CompletionRequest{Input: "乾卦"})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("Expected ErrRateLimit, got %v", err)
	}
}

func TestAnthropicProvider_Complete_Overloaded(t *testing.T) {
	provider := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(529)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"overloaded"}}`))
	})

	_, err := provider.Complete(context.Background(), CompletionRequest{Input: "乾卦"})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("Expected ErrProviderUnavailable, got %v", err)
	}
}

func TestAnthropicProvider_Complete_NoText(t *testing.T) {
	provider := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_test",
			"type":        "message",
			"role":        "assistant",
			"content":     []map[string]any{},
			"model":       "claude-sonnet-4-20250514",
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 5, "output_tokens": 0},
		})
	})

	_, err := provider.Complete(context.Background(), CompletionRequest{Input: "乾卦"})
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("Expected ErrInvalidResponse, got %v", err)
	}
}
