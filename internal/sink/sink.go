// Package sink writes training rows to an append-only dataset file.
//
// Rows are flushed to the operating system as they are appended, so a run
// that stops early leaves a valid file holding every row produced so far.
package sink

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/gendataset/internal/model"
)

// Formats understood by Open
const (
	FormatCSV   = "csv"
	FormatJSONL = "jsonl"
)

// ErrClosed is returned by Append after Close
var ErrClosed = errors.New("sink is closed")

// Sink is the append-only destination for the rows of one run
type Sink interface {
	Append(row model.TrainingRow) error
	Close() error
	Path() string
}

// Options selects the encoding of the dataset file
type Options struct {
	Format string
	// CRLF terminates CSV records with \r\n
	CRLF bool
}

// Open creates the dataset file at path, creating parent directories, and
// writes the header before returning
func Open(path string, opts Options) (Sink, error) {
	format := strings.ToLower(opts.Format)
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatJSONL {
		return nil, fmt.Errorf("unknown output format: %q (supported: csv, jsonl)", opts.Format)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("create dataset file: %w", err)
	}

	switch format {
	case FormatJSONL:
		return newJSONLSink(file), nil
	default:
		s, err := newCSVSink(file, opts.CRLF)
		if err != nil {
			_ = file.Close()
			return nil, err
		}
		return s, nil
	}
}

// Filename builds <dir>/<prefix>_YYYYMMDD_HHMMSS.<ext> for a run started at now
func Filename(dir, prefix, ext string, now time.Time) string {
	ext = strings.TrimPrefix(ext, ".")
	name := fmt.Sprintf("%s_%s.%s", prefix, now.Format("20060102_150405"), ext)
	return filepath.Join(dir, name)
}

// Extension returns the file extension used for format
func Extension(format string) string {
	if strings.ToLower(format) == FormatJSONL {
		return FormatJSONL
	}
	return FormatCSV
}
