// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package span re-establishes answer spans inside translated contexts.
// Offsets are counted in Unicode code points so they stay correct for
// multi-byte scripts; a recorded answer_start is never trusted, only the
// answer text is.
package span

import (
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/squad-localize/pkg/types"
)

// Span is a half-open character range [Start, End) within a context.
type Span struct {
	Start int
	End   int
}

// Len returns the number of characters covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Locator places an answer inside a context. Implementations are pure and
// safe for concurrent use. hint is the stale pre-translation offset; a
// locator may ignore it.
type Locator interface {
	Name() string
	Locate(context, answer string, hint int) (Span, bool)
}

// Locate returns the first occurrence of answer in context. An empty answer
// is never found.
func Locate(context, answer string) (Span, bool) {
	if answer == "" {
		return Span{}, false
	}
	idx := strings.Index(context, answer)
	if idx < 0 {
		return Span{}, false
	}
	return spanAt(context, idx, answer), true
}

// Occurrences returns every place answer occurs in context, including
// overlapping ones, in ascending start order.
func Occurrences(context, answer string) []Span {
	if answer == "" {
		return nil
	}
	var spans []Span
	offset := 0 // bytes
	runes := 0  // characters before offset
	for {
		idx := strings.Index(context[offset:], answer)
		if idx < 0 {
			return spans
		}
		runes += utf8.RuneCountInString(context[offset : offset+idx])
		spans = append(spans, Span{Start: runes, End: runes + utf8.RuneCountInString(answer)})

		// Step one character past the match start so overlapping matches are seen.
		_, size := utf8.DecodeRuneInString(context[offset+idx:])
		offset += idx + size
		runes++
	}
}

func spanAt(context string, byteIdx int, answer string) Span {
	start := utf8.RuneCountInString(context[:byteIdx])
	return Span{Start: start, End: start + utf8.RuneCountInString(answer)}
}

// FirstOccurrence picks the lowest-start match regardless of the hint.
// Repeated phrases may be misplaced; this matches the reference cleaner.
type FirstOccurrence struct{}

func (FirstOccurrence) Name() string { return string(types.LocatorFirst) }

func (FirstOccurrence) Locate(context, answer string, _ int) (Span, bool) {
	return Locate(context, answer)
}

// NearestToHint picks the match whose start is closest to the stale offset.
// Ties go to the lower start.
type NearestToHint struct{}

func (NearestToHint) Name() string { return string(types.LocatorNearest) }

func (NearestToHint) Locate(context, answer string, hint int) (Span, bool) {
	spans := Occurrences(context, answer)
	if len(spans) == 0 {
		return Span{}, false
	}
	best := spans[0]
	bestDist := distance(best.Start, hint)
	for _, s := range spans[1:] {
		if d := distance(s.Start, hint); d < bestDist {
			best, bestDist = s, d
		}
	}
	return best, true
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// ForStrategy returns the locator for a configured strategy name.
// Unknown or empty names fall back to FirstOccurrence.
func ForStrategy(s types.LocatorStrategy) Locator {
	if s == types.LocatorNearest {
		return NearestToHint{}
	}
	return FirstOccurrence{}
}

// Result is the outcome of validating one answer against its context.
type Result struct {
	Valid bool
	Span  Span
	Kind  types.ErrorKind
}

// Validate locates answer in context and returns the corrected span, or
// KindNotFound. Inputs are not modified.
func Validate(loc Locator, context string, answer types.Answer) Result {
	s, ok := loc.Locate(context, answer.Text, answer.AnswerStart)
	if !ok {
		return Result{Kind: types.KindNotFound}
	}
	return Result{Valid: true, Span: s}
}

// Correct returns a copy of answer whose AnswerStart is the span start.
func (r Result) Correct(answer types.Answer) types.Answer {
	return types.Answer{Text: answer.Text, AnswerStart: r.Span.Start}
}
