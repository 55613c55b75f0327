package corpus

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/gendataset/internal/model"
)

// Delimiter separates fragments in a raw corpus
const Delimiter = "\n\n"

// Load splits raw text into non-empty, trimmed fragments in corpus order
func Load(raw string) []model.Fragment {
	raw = strings.TrimPrefix(raw, "\ufeff")
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	fragments := []model.Fragment{}
	for _, piece := range strings.Split(raw, Delimiter) {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		fragments = append(fragments, model.Fragment(piece))
	}
	return fragments
}

// LoadFile reads a UTF-8 corpus file and splits it into fragments
func LoadFile(path string) ([]model.Fragment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return Load(string(data)), nil
}
