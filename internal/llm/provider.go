package llm

import (
	"context"
	"net/http"
	"time"

	"github.com/ppiankov/gendataset/internal/util"
)

// Provider defines the interface for generative services
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends one system instruction and one input and returns the
	// service's free-text reply
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// CompletionRequest is a single generation request
type CompletionRequest struct {
	// System is the fixed instruction sent with every request
	System string

	// Input is the text to be answered, one corpus fragment
	Input string
}

// CompletionResponse contains the service's reply
type CompletionResponse struct {
	// Text is the raw reply
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds generative service configuration, fixed for a whole run
type Config struct {
	// Provider name: "openai", "anthropic", "gemini", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted services
	APIKey string

	// BaseURL for custom endpoints (OpenAI-compatible gateways, Ollama)
	BaseURL string

	// Sampling options
	Temperature      float64
	MaxTokens        int
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64

	// Timeout bounds a single request
	Timeout time.Duration

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string

	// Decorators
	Retry             RetryConfig
	RequestsPerMinute float64
	Burst             int
	Cache             bool
	CacheTTL          time.Duration
}

// DefaultConfig returns the options of the reference run
func DefaultConfig() Config {
	return Config{
		Provider:    "openai",
		Model:       "gpt-3.5-turbo-1106",
		Temperature: 1,
		MaxTokens:   4095,
		TopP:        1,
		Timeout:     2 * time.Minute,
		Retry:       DefaultRetryConfig(),
	}
}

func (c Config) httpClient() *http.Client {
	return util.NewHTTPClient(c.HTTPProxy, c.HTTPSProxy, c.NoProxy)
}

// withTimeout bounds ctx by the configured request timeout
func (c Config) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.Timeout)
}
