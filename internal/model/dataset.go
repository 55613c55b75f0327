package model

// Fragment is one semantic unit of source text, e.g. one hexagram entry.
type Fragment string

// ExtractedPair holds the two fields decoded from one generated reply
type ExtractedPair struct {
	Content string `json:"content"` // Term the reply names (e.g. "师卦")
	Summary string `json:"summary"` // Polished explanation of the term
}

// TrainingRow is one (question, summary) record of the dataset.
//
// The dataset header names the first column "content" although it carries
// the templated question; the column names are kept for compatibility with
// existing fine-tuning scripts.
type TrainingRow struct {
	Question string `json:"content"`
	Summary  string `json:"summary"`
}

// Header is the column header written first to every tabular dataset
var Header = []string{"content", "summary"}

// Record returns the row in header column order
func (r TrainingRow) Record() []string {
	return []string{r.Question, r.Summary}
}
