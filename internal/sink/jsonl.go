package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/ppiankov/gendataset/internal/model"
)

// JSONLSink writes one JSON object per row and no header line
type JSONLSink struct {
	mu     sync.Mutex
	file   *os.File
	enc    *json.Encoder
	closed bool
}

func newJSONLSink(file *os.File) *JSONLSink {
	enc := json.NewEncoder(file)
	enc.SetEscapeHTML(false)
	return &JSONLSink{file: file, enc: enc}
}

// Append encodes one row. The encoder writes straight to the file.
func (s *JSONLSink) Append(row model.TrainingRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if err := s.enc.Encode(row); err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	return nil
}

// Close closes the file. Closing twice is a no-op.
func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.file.Close(); err != nil {
		return fmt.Errorf("close dataset file: %w", err)
	}
	return nil
}

// Path returns the dataset file path
func (s *JSONLSink) Path() string {
	return s.file.Name()
}
