package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/gendataset/internal/model"
	"github.com/ppiankov/gendataset/internal/pipeline"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "nested", "journal.db"))
	require.NoError(t, err, "open test journal")
	t.Cleanup(func() { j.Close() })
	return j
}

func TestPragmasApplied(t *testing.T) {
	j := openTestJournal(t)

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"}, // NORMAL = 1
		{"busy_timeout", "5000"},
	}

	for _, tt := range tests {
		var got string
		require.NoError(t, j.db.QueryRow("PRAGMA "+tt.pragma).Scan(&got), "PRAGMA %s", tt.pragma)
		assert.Equal(t, tt.want, got, "PRAGMA %s", tt.pragma)
	}
}

func TestRecordAndList(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	at := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)

	events := []pipeline.Event{
		{
			RunID:    "run-1",
			Seq:      0,
			Fragment: "乾：元亨利贞。",
			Provider: "openai",
			Model:    "gpt-3.5-turbo-1106",
			Latency:  1500 * time.Millisecond,
			Pair:     model.ExtractedPair{Content: "乾卦", Summary: "元亨利贞"},
			Rows:     20,
			At:       at,
		},
		{
			RunID:    "run-1",
			Seq:      1,
			Fragment: "坤：元亨。",
			Provider: "openai",
			Latency:  200 * time.Millisecond,
			Err:      errors.New("rate limited"),
			At:       at.Add(time.Second),
		},
	}
	for _, e := range events {
		require.NoError(t, j.Record(ctx, e))
	}

	entries, err := j.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first
	failed, ok := entries[0], entries[1]
	assert.Equal(t, 1, failed.Seq)
	assert.False(t, failed.Success)
	assert.Equal(t, "rate limited", failed.Error)

	assert.Equal(t, "run-1", ok.RunID)
	assert.True(t, ok.Success)
	assert.Equal(t, 20, ok.Rows)
	assert.Equal(t, "乾卦", ok.Content)
	assert.Equal(t, "元亨利贞", ok.Summary)
	assert.Equal(t, "乾：元亨利贞。", ok.Fragment)
	assert.Equal(t, "gpt-3.5-turbo-1106", ok.Model)
	assert.Equal(t, 1500*time.Millisecond, ok.Latency)
	assert.True(t, ok.CreatedAt.Equal(at), "created_at %s, want %s", ok.CreatedAt, at)
}

func TestListLimit(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	for i := range 5 {
		require.NoError(t, j.Record(ctx, pipeline.Event{RunID: "r", Seq: i, Provider: "mock"}))
	}

	entries, err := j.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 4, entries[0].Seq)
	assert.Equal(t, 3, entries[1].Seq)
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Record(ctx, pipeline.Event{RunID: "r", Provider: "mock"}))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()

	entries, err := j.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestJournalAsRecorder(t *testing.T) {
	j := openTestJournal(t)
	var rec pipeline.Recorder = j

	require.NoError(t, rec.Record(context.Background(), pipeline.Event{RunID: "r", Provider: "mock"}))

	entries, err := j.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].CreatedAt.IsZero(), "created_at defaults to now")
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")

	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "gendataset", "journal.db"), p)
}
