package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/gendataset/internal/corpus"
	"github.com/ppiankov/gendataset/internal/expand"
	"github.com/ppiankov/gendataset/internal/journal"
	"github.com/ppiankov/gendataset/internal/llm"
	"github.com/ppiankov/gendataset/internal/model"
	"github.com/ppiankov/gendataset/internal/parse"
	"github.com/ppiankov/gendataset/internal/pipeline"
	"github.com/ppiankov/gendataset/internal/prompt"
	"github.com/ppiankov/gendataset/internal/publish"
	"github.com/ppiankov/gendataset/internal/sink"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a dataset from the corpus",
	Long: `Generate sends every corpus fragment to the generative service, decodes
the content/summary reply and writes one row per question template.

Fragments are processed strictly in order. The first service error stops the
run; rows written before it are kept in the output file.

Example:
  gendataset generate
  gendataset generate --input data/raw_data.txt --output-dir data
  gendataset generate --provider ollama --model qwen2.5:7b --format jsonl
  gendataset generate --base-url https://gateway.example.com/v1 --strict`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	d := model.DefaultConfig()
	flags := generateCmd.Flags()

	// Input and output
	flags.StringP("input", "i", d.Input.Path, "corpus file (fragments separated by a blank line)")
	flags.StringP("output-dir", "o", d.Output.Dir, "directory for the dataset file")
	flags.String("prefix", d.Output.Prefix, "dataset file name prefix")
	flags.String("format", d.Output.Format, "output format (csv, jsonl)")
	flags.Bool("crlf", d.Output.CRLF, "terminate CSV records with CRLF")

	// Generative service
	flags.String("provider", d.LLM.Provider, "service provider (openai, anthropic, gemini, ollama)")
	flags.String("model", d.LLM.Model, "model name")
	flags.String("base-url", "", "custom endpoint (OpenAI-compatible gateway, Ollama)")
	flags.Float64("temperature", d.LLM.Temperature, "sampling temperature")
	flags.Int("max-tokens", d.LLM.MaxTokens, "max output tokens per reply")
	flags.Duration("request-timeout", d.LLM.Timeout, "timeout for a single service request")
	flags.String("http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	flags.String("https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
	flags.String("no-proxy", "", "hosts that bypass the proxy (overrides NO_PROXY env var)")

	// Behaviour
	flags.Bool("strict", d.Parser.Strict, "fail on replies that do not follow the content/summary format")
	flags.String("system-file", "", "file holding a custom system instruction")
	flags.Float64("rpm", d.RateLimiting.RequestsPerMinute, "max requests per minute (0 = unlimited)")
	flags.Int("retries", d.Retry.MaxAttempts, "attempts per fragment for rate-limit and availability errors (1 = no retry)")
	flags.Bool("cache", d.Cache.Enabled, "reuse replies for identical fragments within the run")
	flags.String("journal", "", "SQLite journal recording every service call")
	flags.String("publish-bucket", "", "S3 bucket to upload the finished dataset to")

	bind := map[string]string{
		"input.path":                        "input",
		"output.dir":                        "output-dir",
		"output.prefix":                     "prefix",
		"output.format":                     "format",
		"output.crlf":                       "crlf",
		"llm.provider":                      "provider",
		"llm.model":                         "model",
		"llm.base_url":                      "base-url",
		"llm.temperature":                   "temperature",
		"llm.max_tokens":                    "max-tokens",
		"llm.timeout":                       "request-timeout",
		"llm.http_proxy":                    "http-proxy",
		"llm.https_proxy":                   "https-proxy",
		"llm.no_proxy":                      "no-proxy",
		"parser.strict":                     "strict",
		"prompt.system_file":                "system-file",
		"rate_limiting.requests_per_minute": "rpm",
		"retry.max_attempts":                "retries",
		"cache.enabled":                     "cache",
		"journal.path":                      "journal",
		"publish.bucket":                    "publish-bucket",
	}
	for key, flag := range bind {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err = generate(ctx, cfg, cmd.ErrOrStderr())
	return err
}

// generate runs one full pass over the corpus described by cfg
func generate(ctx context.Context, cfg *model.Config, stderr io.Writer) (*pipeline.Stats, error) {
	logger := newLogger(stderr, cfg.Verbose)

	fragments, err := corpus.LoadFile(cfg.Input.Path)
	if err != nil {
		return nil, err
	}

	system, err := prompt.LoadSystem(cfg.Prompt.SystemFile)
	if err != nil {
		return nil, err
	}

	expander, err := expand.New(cfg.Templates)
	if err != nil {
		return nil, err
	}

	llmConfig := llm.ConfigFromModel(cfg)
	provider, err := llm.NewProvider(ctx, llmConfig)
	if err != nil {
		return nil, err
	}

	var recorder pipeline.Recorder
	if cfg.Journal.Path != "" {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		defer j.Close()
		recorder = j
	}

	path := sink.Filename(cfg.Output.Dir, cfg.Output.Prefix, sink.Extension(cfg.Output.Format), time.Now())
	out, err := sink.Open(path, sink.Options{Format: cfg.Output.Format, CRLF: cfg.Output.CRLF})
	if err != nil {
		return nil, err
	}

	mode := parse.ModeLenient
	if cfg.Parser.Strict {
		mode = parse.ModeStrict
	}

	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "  gendataset\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Input:      %s (%d fragments)\n", cfg.Input.Path, len(fragments))
	fmt.Fprintf(stderr, "  Provider:   %s %s\n", provider.Name(), llmConfig.Model)
	fmt.Fprintf(stderr, "  Templates:  %d\n", expander.Len())
	fmt.Fprintf(stderr, "  Parser:     %s\n", mode)
	fmt.Fprintf(stderr, "  Output:     %s\n", path)
	fmt.Fprintf(stderr, "\n")

	p := pipeline.New(provider, out, pipeline.Options{
		Parser:   parse.Parser{Mode: mode},
		Expander: expander,
		System:   system,
		Logger:   logger,
		Recorder: recorder,
	})

	stats, runErr := p.Run(ctx, fragments)

	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Run:        %s\n", stats.RunID)
	fmt.Fprintf(stderr, "  Fragments:  %d/%d\n", stats.Fragments, len(fragments))
	fmt.Fprintf(stderr, "  Rows:       %d\n", stats.Rows)
	fmt.Fprintf(stderr, "  Elapsed:    %s\n", stats.Elapsed.Round(time.Millisecond))
	if cached, ok := provider.(*llm.CachedProvider); ok {
		hits, misses := cached.Stats()
		fmt.Fprintf(stderr, "  Cache:      %d hits, %d misses\n", hits, misses)
	}

	if runErr != nil {
		fmt.Fprintf(stderr, "\n✗ Generation stopped; partial dataset kept at %s\n", stats.Output)
		return stats, fmt.Errorf("generation failed: %w", runErr)
	}
	fmt.Fprintf(stderr, "\n✓ Wrote dataset: %s\n", stats.Output)

	if err := publishDataset(ctx, cfg.Publish, stats, stderr); err != nil {
		return stats, err
	}
	return stats, nil
}

// publishDataset uploads the finished dataset when publishing is configured
func publishDataset(ctx context.Context, cfg model.PublishConfig, stats *pipeline.Stats, stderr io.Writer) error {
	uploader, err := publish.New(ctx, publish.S3Config{
		Bucket:         cfg.Bucket,
		Region:         cfg.Region,
		Endpoint:       cfg.Endpoint,
		KeyPrefix:      cfg.KeyPrefix,
		ForcePathStyle: cfg.ForcePathStyle,
	})
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	res, err := uploader.Upload(ctx, publish.Input{RunID: stats.RunID, Path: stats.Output})
	if errors.Is(err, publish.ErrDisabled) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	fmt.Fprintf(stderr, "✓ Published: %s\n", res.URL)
	return nil
}
