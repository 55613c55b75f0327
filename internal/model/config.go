package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds the complete configuration of one generation run
type Config struct {
	Input        InputConfig     `mapstructure:"input" yaml:"input"`
	Output       OutputConfig    `mapstructure:"output" yaml:"output"`
	LLM          LLMConfig       `mapstructure:"llm" yaml:"llm"`
	Prompt       PromptConfig    `mapstructure:"prompt" yaml:"prompt"`
	Parser       ParserConfig    `mapstructure:"parser" yaml:"parser"`
	Templates    []string        `mapstructure:"templates" yaml:"templates" validate:"min=1,dive,oneslot"`
	RateLimiting RateLimitConfig `mapstructure:"rate_limiting" yaml:"rate_limiting"`
	Retry        RetryConfig     `mapstructure:"retry" yaml:"retry"`
	Cache        CacheConfig     `mapstructure:"cache" yaml:"cache"`
	Journal      JournalConfig   `mapstructure:"journal" yaml:"journal"`
	Publish      PublishConfig   `mapstructure:"publish" yaml:"publish"`
	Verbose      bool            `mapstructure:"verbose" yaml:"verbose"`
}

// InputConfig locates the raw corpus
type InputConfig struct {
	Path string `mapstructure:"path" yaml:"path" validate:"required"`
}

// OutputConfig controls where and how the dataset is written
type OutputConfig struct {
	Dir    string `mapstructure:"dir" yaml:"dir" validate:"required"`
	Prefix string `mapstructure:"prefix" yaml:"prefix" validate:"required"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=csv jsonl"`
	CRLF   bool   `mapstructure:"crlf" yaml:"crlf"` // CSV line endings as written by the legacy generator
}

// LLMConfig holds the generative service options, fixed for a whole run
type LLMConfig struct {
	Provider         string        `mapstructure:"provider" yaml:"provider" validate:"oneof=openai anthropic gemini ollama"`
	Model            string        `mapstructure:"model" yaml:"model"`
	APIKey           string        `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BaseURL          string        `mapstructure:"base_url" yaml:"base_url,omitempty"`
	Temperature      float64       `mapstructure:"temperature" yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens        int           `mapstructure:"max_tokens" yaml:"max_tokens" validate:"gte=0"`
	TopP             float64       `mapstructure:"top_p" yaml:"top_p" validate:"gte=0,lte=1"`
	FrequencyPenalty float64       `mapstructure:"frequency_penalty" yaml:"frequency_penalty" validate:"gte=-2,lte=2"`
	PresencePenalty  float64       `mapstructure:"presence_penalty" yaml:"presence_penalty" validate:"gte=-2,lte=2"`
	Timeout          time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gte=0"`
	HTTPProxy        string        `mapstructure:"http_proxy" yaml:"http_proxy,omitempty"`
	HTTPSProxy       string        `mapstructure:"https_proxy" yaml:"https_proxy,omitempty"`
	NoProxy          string        `mapstructure:"no_proxy" yaml:"no_proxy,omitempty"`
}

// PromptConfig overrides the built-in system instruction
type PromptConfig struct {
	SystemFile string `mapstructure:"system_file" yaml:"system_file,omitempty"`
}

// ParserConfig selects how replies are decoded
type ParserConfig struct {
	Strict bool `mapstructure:"strict" yaml:"strict"`
}

// RateLimitConfig paces requests to the generative service
type RateLimitConfig struct {
	RequestsPerMinute float64 `mapstructure:"requests_per_minute" yaml:"requests_per_minute" validate:"gte=0"` // 0 = unlimited
	BurstSize         int     `mapstructure:"burst_size" yaml:"burst_size" validate:"gte=0"`
}

// RetryConfig configures retries of transient service errors.
// MaxAttempts of 1 disables retrying.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" yaml:"max_attempts" validate:"gte=1"`
	InitialWait time.Duration `mapstructure:"initial_wait" yaml:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait" yaml:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier" yaml:"multiplier" validate:"gte=1"`
}

// CacheConfig enables in-run reuse of identical replies
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// JournalConfig points at the optional SQLite journal
type JournalConfig struct {
	Path string `mapstructure:"path" yaml:"path,omitempty"`
}

// PublishConfig describes where a finished dataset is uploaded
type PublishConfig struct {
	Bucket         string `mapstructure:"bucket" yaml:"bucket,omitempty"`
	Region         string `mapstructure:"region" yaml:"region,omitempty"`
	Endpoint       string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	KeyPrefix      string `mapstructure:"key_prefix" yaml:"key_prefix,omitempty"`
	ForcePathStyle bool   `mapstructure:"force_path_style" yaml:"force_path_style"`
}

// DefaultConfig returns the configuration of the reference run
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			Path: "data/raw_data.txt",
		},
		Output: OutputConfig{
			Dir:    "data",
			Prefix: "zhouyi_dataset",
			Format: "csv",
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-3.5-turbo-1106",
			Temperature: 1,
			MaxTokens:   4095,
			TopP:        1,
			Timeout:     2 * time.Minute,
		},
		Templates: append([]string(nil), DefaultTemplates...),
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: time.Second,
			MaxWait:     30 * time.Second,
			Multiplier:  2,
		},
		Cache: CacheConfig{
			TTL: time.Hour,
		},
	}
}

// Validate checks the configuration for values the run cannot work with
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.RegisterValidation("oneslot", validateOneSlot); err != nil {
		return fmt.Errorf("register validation: %w", err)
	}
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// validateOneSlot requires exactly one substitution slot in a template
func validateOneSlot(fl validator.FieldLevel) bool {
	return strings.Count(fl.Field().String(), Slot) == 1
}
