package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/gendataset/internal/cache"
	"github.com/ppiankov/gendataset/internal/model"
	"github.com/ppiankov/gendataset/internal/ratelimit"
)

// defaultEndpoints are the hosts throttled when no base URL is configured
var defaultEndpoints = map[string]string{
	"openai":    "https://api.openai.com/v1",
	"anthropic": "https://api.anthropic.com",
	"gemini":    "https://generativelanguage.googleapis.com",
	"ollama":    defaultOllamaURL,
}

// NewProvider creates a provider from configuration, wrapped with
// middleware: caller → cache → retry → throttle → base
func NewProvider(ctx context.Context, config Config) (Provider, error) {
	base, err := newBaseProvider(ctx, config)
	if err != nil {
		return nil, err
	}

	p := base
	if config.RequestsPerMinute > 0 {
		p = WithThrottle(p, ratelimit.NewLimiter(config.RequestsPerMinute, config.Burst), Endpoint(config))
	}
	p = WithRetry(p, config.Retry)
	if config.Cache {
		p = WithCache(p, cache.NewMemoryCache(config.CacheTTL), config.Model)
	}

	return p, nil
}

func newBaseProvider(ctx context.Context, config Config) (Provider, error) {
	var (
		p   Provider
		err error
	)

	switch CanonicalProvider(config.Provider) {
	case "openai":
		p, err = NewOpenAIProvider(config)
	case "anthropic":
		p, err = NewAnthropicProvider(config)
	case "gemini":
		p, err = NewGeminiProvider(ctx, config)
	case "ollama":
		p, err = NewOllamaProvider(config)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q (supported: openai, anthropic, gemini, ollama)", config.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", config.Provider, err)
	}
	return p, nil
}

// Endpoint returns the URL requests for config are sent to
func Endpoint(config Config) string {
	if config.BaseURL != "" {
		return config.BaseURL
	}
	return defaultEndpoints[CanonicalProvider(config.Provider)]
}

// CanonicalProvider lowercases a provider name and resolves aliases
func CanonicalProvider(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "claude" {
		return "anthropic"
	}
	return name
}

// ConfigFromModel converts the run configuration to llm.Config
func ConfigFromModel(cfg *model.Config) Config {
	return Config{
		Provider:         cfg.LLM.Provider,
		Model:            cfg.LLM.Model,
		APIKey:           cfg.LLM.APIKey,
		BaseURL:          cfg.LLM.BaseURL,
		Temperature:      cfg.LLM.Temperature,
		MaxTokens:        cfg.LLM.MaxTokens,
		TopP:             cfg.LLM.TopP,
		FrequencyPenalty: cfg.LLM.FrequencyPenalty,
		PresencePenalty:  cfg.LLM.PresencePenalty,
		Timeout:          cfg.LLM.Timeout,
		HTTPProxy:        cfg.LLM.HTTPProxy,
		HTTPSProxy:       cfg.LLM.HTTPSProxy,
		NoProxy:          cfg.LLM.NoProxy,
		Retry: RetryConfig{
			MaxAttempts: cfg.Retry.MaxAttempts,
			InitialWait: cfg.Retry.InitialWait,
			MaxWait:     cfg.Retry.MaxWait,
			Multiplier:  cfg.Retry.Multiplier,
		},
		RequestsPerMinute: cfg.RateLimiting.RequestsPerMinute,
		Burst:             cfg.RateLimiting.BurstSize,
		Cache:             cfg.Cache.Enabled,
		CacheTTL:          cfg.Cache.TTL,
	}
}
