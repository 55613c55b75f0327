package publish

import (
	"context"
	"errors"
	"path"
	"path/filepath"
	"strings"
)

// ErrDisabled indicates that publishing is not configured
var ErrDisabled = errors.New("dataset publishing disabled")

// Input names a finished dataset file and the run that produced it
type Input struct {
	RunID string
	Path  string
}

// Result captures the object key and its URL
type Result struct {
	Key string
	URL string
}

// Uploader hides the backing store for published datasets
type Uploader interface {
	Upload(ctx context.Context, input Input) (Result, error)
}

type disabledUploader struct{}

func (disabledUploader) Upload(_ context.Context, _ Input) (Result, error) {
	return Result{}, ErrDisabled
}

// Disabled returns an uploader that always signals disabled publishing
func Disabled() Uploader {
	return disabledUploader{}
}

// Key builds <prefix>/<run-id>/<basename>, omitting empty parts
func Key(prefix, runID, filePath string) string {
	parts := []string{}
	if p := strings.Trim(prefix, "/"); p != "" {
		parts = append(parts, p)
	}
	if runID != "" {
		parts = append(parts, runID)
	}
	parts = append(parts, filepath.Base(filePath))
	return path.Join(parts...)
}

// ContentType returns the MIME type for a dataset file
func ContentType(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".jsonl":
		return "application/x-ndjson"
	case ".csv":
		return "text/csv; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
