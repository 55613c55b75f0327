package expand

import (
	"fmt"
	"strings"

	"github.com/ppiankov/gendataset/internal/model"
)

// Expander turns one extracted pair into one training row per template
type Expander struct {
	templates []string
}

// New creates an expander over templates, each of which must contain exactly
// one model.Slot
func New(templates []string) (*Expander, error) {
	if len(templates) == 0 {
		return nil, fmt.Errorf("at least one question template is required")
	}
	for i, tmpl := range templates {
		if n := strings.Count(tmpl, model.Slot); n != 1 {
			return nil, fmt.Errorf("template %d %q: want exactly one %s slot, found %d", i, tmpl, model.Slot, n)
		}
	}
	return &Expander{templates: append([]string(nil), templates...)}, nil
}

// Default returns an expander over the built-in templates
func Default() *Expander {
	return &Expander{templates: append([]string(nil), model.DefaultTemplates...)}
}

// Len returns the number of rows produced per pair
func (e *Expander) Len() int {
	return len(e.templates)
}

// Templates returns a copy of the templates in declaration order
func (e *Expander) Templates() []string {
	return append([]string(nil), e.templates...)
}

// Question substitutes content into template i
func (e *Expander) Question(i int, content string) string {
	return strings.Replace(e.templates[i], model.Slot, content, 1)
}

// Expand returns one row per template, in template order, all carrying the
// pair's summary
func (e *Expander) Expand(pair model.ExtractedPair) []model.TrainingRow {
	rows := make([]model.TrainingRow, len(e.templates))
	for i := range e.templates {
		rows[i] = model.TrainingRow{
			Question: e.Question(i, pair.Content),
			Summary:  pair.Summary,
		}
	}
	return rows
}
