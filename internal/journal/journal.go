// Package journal keeps a SQLite record of every generation call so a run
// can be audited after the fact.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/gendataset/internal/pipeline"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS generation_events (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT    NOT NULL,
	seq        INTEGER NOT NULL,
	fragment   TEXT    NOT NULL,
	provider   TEXT    NOT NULL,
	model      TEXT    NOT NULL DEFAULT '',
	latency_ms INTEGER NOT NULL,
	success    INTEGER NOT NULL,
	error      TEXT    NOT NULL DEFAULT '',
	content    TEXT    NOT NULL DEFAULT '',
	summary    TEXT    NOT NULL DEFAULT '',
	row_count  INTEGER NOT NULL DEFAULT 0,
	created_at TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_generation_events_run ON generation_events (run_id, seq);
`

// Entry is one recorded generation call
type Entry struct {
	ID        int64
	RunID     string
	Seq       int
	Fragment  string
	Provider  string
	Model     string
	Latency   time.Duration
	Success   bool
	Error     string
	Content   string
	Summary   string
	Rows      int
	CreatedAt time.Time
}

// Journal records generation events. It implements pipeline.Recorder.
type Journal struct {
	db *sql.DB
}

var _ pipeline.Recorder = (*Journal)(nil)

// Open creates or opens the journal database at path, applying pragmas and
// creating the schema
func Open(path string) (*Journal, error) {
	if err := ensureDir(path); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Pragmas are per connection
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the database connection
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores one generation event
func (j *Journal) Record(ctx context.Context, event pipeline.Event) error {
	errMsg := ""
	if event.Err != nil {
		errMsg = event.Err.Error()
	}
	createdAt := event.At
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO generation_events
			(run_id, seq, fragment, provider, model, latency_ms, success, error, content, summary, row_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.RunID,
		event.Seq,
		event.Fragment,
		event.Provider,
		event.Model,
		event.Latency.Milliseconds(),
		event.Success(),
		errMsg,
		event.Pair.Content,
		event.Pair.Summary,
		event.Rows,
		createdAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert generation event: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first. A non-positive limit
// returns every entry.
func (j *Journal) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT id, run_id, seq, fragment, provider, model, latency_ms, success, error, content, summary, row_count, created_at
		FROM generation_events
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query generation events: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			latencyMs int64
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.RunID, &e.Seq, &e.Fragment, &e.Provider, &e.Model,
			&latencyMs, &e.Success, &e.Error, &e.Content, &e.Summary, &e.Rows, &createdAt); err != nil {
			return nil, fmt.Errorf("scan generation event: %w", err)
		}
		e.Latency = time.Duration(latencyMs) * time.Millisecond
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// applyPragmas configures SQLite for a single writer
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultPath resolves the journal file path in priority order:
// 1. $XDG_DATA_HOME/gendataset/journal.db
// 2. ~/.local/share/gendataset/journal.db
func DefaultPath() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "gendataset", "journal.db"), nil
}

// ensureDir creates the parent directory of path if it doesn't exist
func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
