package pipeline

import (
	"context"
	"time"

	"github.com/ppiankov/gendataset/internal/model"
)

// Event describes one service call made during a run
type Event struct {
	RunID    string
	Seq      int // zero-based fragment index
	Fragment string
	Provider string
	Model    string
	Latency  time.Duration
	Pair     model.ExtractedPair
	Rows     int
	Err      error
	At       time.Time
}

// Success reports whether the call produced rows without error
func (e Event) Success() bool {
	return e.Err == nil
}

// Recorder observes generation events
type Recorder interface {
	Record(ctx context.Context, event Event) error
}

// RecorderFunc adapts a function to Recorder
type RecorderFunc func(ctx context.Context, event Event) error

// Record calls f(ctx, event)
func (f RecorderFunc) Record(ctx context.Context, event Event) error {
	return f(ctx, event)
}
