package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"github.com/ppiankov/gendataset/internal/model"
)

// CSVSink writes rows as RFC 4180 CSV under a content,summary header
type CSVSink struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
	closed bool
}

func newCSVSink(file *os.File, crlf bool) (*CSVSink, error) {
	w := csv.NewWriter(file)
	w.UseCRLF = crlf

	s := &CSVSink{file: file, writer: w}
	if err := s.write(model.Header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	return s, nil
}

// Append writes one row and flushes it to the file
func (s *CSVSink) Append(row model.TrainingRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if err := s.write(row.Record()); err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	return nil
}

func (s *CSVSink) write(record []string) error {
	if err := s.writer.Write(record); err != nil {
		return err
	}
	s.writer.Flush()
	return s.writer.Error()
}

// Close flushes buffered data and closes the file. Closing twice is a no-op.
func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	s.writer.Flush()
	flushErr := s.writer.Error()
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("close dataset file: %w", err)
	}
	return flushErr
}

// Path returns the dataset file path
func (s *CSVSink) Path() string {
	return s.file.Name()
}
