// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ErrorKind classifies why a QA pair was excluded from the cleaned dataset.
// The string values are the messages written to the error report.
type ErrorKind string

const (
	// KindUntranslated marks a question or answer that still contains
	// characters from the excluded script.
	KindUntranslated ErrorKind = "Contains English characters"

	// KindNotFound marks an answer whose text does not occur in its context.
	KindNotFound ErrorKind = "Answer text not found in context"

	// KindMultipleAnswers marks a QA pair with more than one answer when
	// the reject policy is active.
	KindMultipleAnswers ErrorKind = "Multiple answers provided"

	// KindNoAnswer marks a QA pair with an empty answers list.
	KindNoAnswer ErrorKind = "No answer provided"
)

// ErrorKinds lists every kind in report order.
var ErrorKinds = []ErrorKind{KindUntranslated, KindNotFound, KindMultipleAnswers, KindNoAnswer}

// ErrorReport records one QA pair that failed filtering or validation,
// with enough of the original record for a manual audit.
type ErrorReport struct {
	ID       string    `json:"id" yaml:"id"`
	Question string    `json:"question" yaml:"question"`
	Context  string    `json:"context" yaml:"context"`
	Answer   *Answer   `json:"answer" yaml:"answer"`
	Error    ErrorKind `json:"error" yaml:"error"`
}
