// Package parse decodes the labeled content and summary fields from a
// generated reply of the form
//
//	content:"师卦"
//	summary:"在周易中，师卦是……"
//
// Lenient reproduces the marker slicing of the original generator, including
// its degradation on malformed replies. Strict rejects replies whose markers
// are missing or out of order.
package parse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/gendataset/internal/model"
)

const (
	ContentMarker    = `content:"`
	ContentEndMarker = "\"\nsummary:"
	SummaryMarker    = `summary:"`
	SummaryEndMarker = `"`
)

var (
	// ErrMissingMarker is returned in strict mode when a field marker is absent
	ErrMissingMarker = errors.New("missing marker")

	// ErrMalformedReply is returned in strict mode when markers are present
	// but do not delimit a field
	ErrMalformedReply = errors.New("malformed reply")
)

// Mode selects between legacy and strict decoding
type Mode int

const (
	ModeLenient Mode = iota
	ModeStrict
)

func (m Mode) String() string {
	if m == ModeStrict {
		return "strict"
	}
	return "lenient"
}

// Parser decodes replies in the configured mode
type Parser struct {
	Mode Mode
}

// Parse decodes reply. In lenient mode the error is always nil.
func (p Parser) Parse(reply string) (model.ExtractedPair, error) {
	if p.Mode == ModeStrict {
		return Strict(reply)
	}
	return Lenient(reply), nil
}

// Lenient slices both fields out of reply between the fixed markers.
//
// Offsets are counted in code points. A missing marker contributes a -1
// "not found" offset to the arithmetic; inverted or negative ranges slice to
// the empty string. The summary always ends at the last quote in the reply.
// Fields are cut from the original bytes, so invalid UTF-8 inside a field is
// kept as-is.
func Lenient(reply string) model.ExtractedPair {
	r := []rune(reply)
	offs := byteOffsets(reply)

	contentStart := index(r, ContentMarker, 0) + runeLen(ContentMarker)
	contentEnd := index(r, ContentEndMarker, contentStart)
	summaryStart := index(r, SummaryMarker, 0) + runeLen(SummaryMarker)
	summaryEnd := lastIndex(r, SummaryEndMarker)

	return model.ExtractedPair{
		Content: strings.TrimSpace(slice(reply, offs, contentStart, contentEnd)),
		Summary: strings.TrimSpace(slice(reply, offs, summaryStart, summaryEnd)),
	}
}

// Strict decodes reply and reports which marker is missing or misplaced
func Strict(reply string) (model.ExtractedPair, error) {
	r := []rune(reply)
	offs := byteOffsets(reply)

	contentAt := index(r, ContentMarker, 0)
	if contentAt < 0 {
		return model.ExtractedPair{}, fmt.Errorf("%w %q", ErrMissingMarker, ContentMarker)
	}
	contentStart := contentAt + runeLen(ContentMarker)

	contentEnd := index(r, ContentEndMarker, contentStart)
	if contentEnd < 0 {
		return model.ExtractedPair{}, fmt.Errorf("%w %q", ErrMissingMarker, ContentEndMarker)
	}

	summaryAt := index(r, SummaryMarker, contentEnd)
	if summaryAt < 0 {
		if index(r, SummaryMarker, 0) >= 0 {
			return model.ExtractedPair{}, fmt.Errorf("%w: summary precedes content", ErrMalformedReply)
		}
		return model.ExtractedPair{}, fmt.Errorf("%w %q", ErrMissingMarker, SummaryMarker)
	}
	summaryStart := summaryAt + runeLen(SummaryMarker)

	summaryEnd := lastIndex(r, SummaryEndMarker)
	if summaryEnd < summaryStart {
		return model.ExtractedPair{}, fmt.Errorf("%w: summary is not closed by a quote", ErrMalformedReply)
	}

	return model.ExtractedPair{
		Content: strings.TrimSpace(reply[offs[contentStart]:offs[contentEnd]]),
		Summary: strings.TrimSpace(reply[offs[summaryStart]:offs[summaryEnd]]),
	}, nil
}

// index returns the code point offset of the first sub in r at or after from, or -1
func index(r []rune, sub string, from int) int {
	s := []rune(sub)
	if from < 0 {
		from = 0
	}
	for i := from; i+len(s) <= len(r); i++ {
		if equalRunes(r[i:i+len(s)], s) {
			return i
		}
	}
	return -1
}

// lastIndex returns the code point offset of the last sub in r, or -1
func lastIndex(r []rune, sub string) int {
	s := []rune(sub)
	for i := len(r) - len(s); i >= 0; i-- {
		if equalRunes(r[i:i+len(s)], s) {
			return i
		}
	}
	return -1
}

// slice returns the code points [start, end) of s clamped to s, or "" for
// negative and inverted ranges. offs comes from byteOffsets(s).
func slice(s string, offs []int, start, end int) string {
	n := len(offs) - 1
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if end < 0 || start >= end {
		return ""
	}
	return s[offs[start]:offs[end]]
}

// byteOffsets maps each code point index of s to its byte offset, plus a
// final entry for len(s). An invalid byte counts as one code point, as it
// does in []rune(s).
func byteOffsets(s string) []int {
	offs := make([]int, 0, len(s)+1)
	for i := range s {
		offs = append(offs, i)
	}
	return append(offs, len(s))
}

func equalRunes(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func runeLen(s string) int {
	return len([]rune(s))
}
