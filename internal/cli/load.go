package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/ppiankov/gendataset/internal/llm"
	"github.com/ppiankov/gendataset/internal/model"
)

// apiKeyEnv lists the conventional key variables per provider, first match wins
var apiKeyEnv = map[string][]string{
	"openai":    {"OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_API_KEY"},
	"gemini":    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// baseURLEnv lists the conventional endpoint variables per provider
var baseURLEnv = map[string]string{
	"openai": "OPENAI_BASE_URL",
	"ollama": "OLLAMA_BASE_URL",
}

// loadConfig resolves the run configuration from flags, environment, config
// file and defaults, then validates it
func loadConfig(v *viper.Viper) (*model.Config, error) {
	setDefaults(v, model.DefaultConfig())

	// Decode into a zero value; defaults come from viper so that shorter
	// template lists replace the default list instead of overlaying it
	cfg := &model.Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	applyEnvFallbacks(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every config key so GENDATASET_* variables apply to it
func setDefaults(v *viper.Viper, d *model.Config) {
	v.SetDefault("input.path", d.Input.Path)

	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.prefix", d.Output.Prefix)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.crlf", d.Output.CRLF)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.temperature", d.LLM.Temperature)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	v.SetDefault("llm.top_p", d.LLM.TopP)
	v.SetDefault("llm.frequency_penalty", d.LLM.FrequencyPenalty)
	v.SetDefault("llm.presence_penalty", d.LLM.PresencePenalty)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.http_proxy", d.LLM.HTTPProxy)
	v.SetDefault("llm.https_proxy", d.LLM.HTTPSProxy)
	v.SetDefault("llm.no_proxy", d.LLM.NoProxy)

	v.SetDefault("prompt.system_file", d.Prompt.SystemFile)
	v.SetDefault("parser.strict", d.Parser.Strict)
	v.SetDefault("templates", d.Templates)

	v.SetDefault("rate_limiting.requests_per_minute", d.RateLimiting.RequestsPerMinute)
	v.SetDefault("rate_limiting.burst_size", d.RateLimiting.BurstSize)

	v.SetDefault("retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("retry.initial_wait", d.Retry.InitialWait)
	v.SetDefault("retry.max_wait", d.Retry.MaxWait)
	v.SetDefault("retry.multiplier", d.Retry.Multiplier)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.ttl", d.Cache.TTL)

	v.SetDefault("journal.path", d.Journal.Path)

	v.SetDefault("publish.bucket", d.Publish.Bucket)
	v.SetDefault("publish.region", d.Publish.Region)
	v.SetDefault("publish.endpoint", d.Publish.Endpoint)
	v.SetDefault("publish.key_prefix", d.Publish.KeyPrefix)
	v.SetDefault("publish.force_path_style", d.Publish.ForcePathStyle)

	v.SetDefault("verbose", d.Verbose)
}

// applyEnvFallbacks normalises the provider name, then fills credentials and
// endpoints from the providers' conventional environment variables
func applyEnvFallbacks(cfg *model.Config) {
	cfg.LLM.Provider = llm.CanonicalProvider(cfg.LLM.Provider)
	provider := cfg.LLM.Provider

	if cfg.LLM.APIKey == "" {
		for _, key := range apiKeyEnv[provider] {
			if val := os.Getenv(key); val != "" {
				cfg.LLM.APIKey = val
				break
			}
		}
	}

	if cfg.LLM.BaseURL == "" {
		if key, ok := baseURLEnv[provider]; ok {
			cfg.LLM.BaseURL = os.Getenv(key)
		}
	}

	// The default model name only makes sense for the default provider
	if provider != model.DefaultConfig().LLM.Provider && cfg.LLM.Model == model.DefaultConfig().LLM.Model {
		cfg.LLM.Model = ""
	}
}

// newLogger returns the progress logger; debug records need --verbose
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
