package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/gendataset/internal/expand"
	"github.com/ppiankov/gendataset/internal/llm"
	"github.com/ppiankov/gendataset/internal/model"
	"github.com/ppiankov/gendataset/internal/parse"
	"github.com/ppiankov/gendataset/internal/prompt"
	"github.com/ppiankov/gendataset/internal/sink"
)

// Options configures a generation run
type Options struct {
	// Parser decodes replies (lenient by default)
	Parser parse.Parser

	// Expander turns each pair into training rows (default templates if nil)
	Expander *expand.Expander

	// System is the instruction sent with every fragment (prompt.DefaultSystem if empty)
	System string

	// Logger receives progress telemetry (discarded if nil)
	Logger *slog.Logger

	// Recorder observes every service call (optional)
	Recorder Recorder

	// RunID identifies the run (a random UUID if empty)
	RunID string
}

// Stats summarizes a run, complete or not
type Stats struct {
	RunID     string
	Fragments int // fragments fully processed
	Rows      int // rows appended to the sink
	Output    string
	Elapsed   time.Duration
}

// FragmentError reports the fragment a run stopped at
type FragmentError struct {
	Index    int
	Fragment model.Fragment
	Err      error
}

func (e *FragmentError) Error() string {
	return fmt.Sprintf("fragment %d: %v", e.Index+1, e.Err)
}

func (e *FragmentError) Unwrap() error { return e.Err }

// Pipeline orchestrates one generation pass over a corpus
type Pipeline struct {
	provider llm.Provider
	sink     sink.Sink
	opts     Options
}

// New creates a pipeline writing to s. The pipeline owns s and closes it
// when Run returns.
func New(provider llm.Provider, s sink.Sink, opts Options) *Pipeline {
	if opts.Expander == nil {
		opts.Expander = expand.Default()
	}
	if opts.System == "" {
		opts.System = prompt.DefaultSystem
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}

	return &Pipeline{
		provider: provider,
		sink:     s,
		opts:     opts,
	}
}

// RunID returns the identifier of this pipeline's run
func (p *Pipeline) RunID() string {
	return p.opts.RunID
}

// Run processes fragments strictly in order. The first failure stops the
// run; rows already appended stay in the sink, which is closed either way.
func (p *Pipeline) Run(ctx context.Context, fragments []model.Fragment) (stats *Stats, err error) {
	start := time.Now()
	stats = &Stats{
		RunID:  p.opts.RunID,
		Output: p.sink.Path(),
	}
	log := p.opts.Logger.With("run_id", p.opts.RunID)

	defer func() {
		stats.Elapsed = time.Since(start)
		if closeErr := p.sink.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	log.Info("generation started",
		"fragments", len(fragments),
		"templates", p.opts.Expander.Len(),
		"provider", p.provider.Name(),
		"parser", p.opts.Parser.Mode.String(),
		"output", stats.Output,
	)

	for i, fragment := range fragments {
		if err := ctx.Err(); err != nil {
			log.Warn("generation cancelled", "fragment", i+1, "rows", stats.Rows)
			return stats, err
		}

		rows, err := p.process(ctx, log, i, len(fragments), fragment)
		stats.Rows += rows
		if err != nil {
			log.Error("generation stopped", "fragment", i+1, "rows", stats.Rows, "error", err)
			return stats, &FragmentError{Index: i, Fragment: fragment, Err: err}
		}
		stats.Fragments++
	}

	log.Info("generation finished",
		"fragments", stats.Fragments,
		"rows", stats.Rows,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return stats, nil
}

// process generates, decodes and expands one fragment and returns the number
// of rows appended
func (p *Pipeline) process(ctx context.Context, log *slog.Logger, i, total int, fragment model.Fragment) (int, error) {
	event := Event{
		RunID:    p.opts.RunID,
		Seq:      i,
		Fragment: string(fragment),
		Provider: p.provider.Name(),
	}

	start := time.Now()
	resp, err := p.provider.Complete(ctx, prompt.Request(p.opts.System, fragment))
	event.Latency = time.Since(start)

	var pair model.ExtractedPair
	appended := 0
	switch {
	case err != nil:
	case strings.TrimSpace(resp.Text) == "":
		err = llm.ErrEmptyReply
	default:
		event.Model = resp.Model
		log.Debug("reply received", "fragment", i+1, "model", resp.Model, "tokens", resp.TokensUsed, "reply", resp.Text)

		pair, err = p.opts.Parser.Parse(resp.Text)
		if err != nil {
			err = fmt.Errorf("parse reply: %w", err)
			break
		}
		for _, row := range p.opts.Expander.Expand(pair) {
			if err = p.sink.Append(row); err != nil {
				break
			}
			appended++
		}
	}

	event.Pair = pair
	event.Rows = appended
	event.Err = err
	event.At = time.Now().UTC()
	p.record(ctx, log, event)

	if err != nil {
		return appended, err
	}

	log.Info("fragment generated",
		"fragment", i+1,
		"total", total,
		"content", pair.Content,
		"summary", pair.Summary,
		"rows", appended,
	)
	return appended, nil
}

func (p *Pipeline) record(ctx context.Context, log *slog.Logger, event Event) {
	if p.opts.Recorder == nil {
		return
	}
	// Recording outlives a cancelled run so the failing call is still journaled
	if err := p.opts.Recorder.Record(context.WithoutCancel(ctx), event); err != nil {
		log.Warn("failed to record generation event", "fragment", event.Seq+1, "error", err)
	}
}
