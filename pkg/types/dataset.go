// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DefaultDatasetVersion is used when an input document omits its version.
const DefaultDatasetVersion = "1.1"

// Dataset is a SQuAD 1.1 style question-answering document.
type Dataset struct {
	// Version is copied through from the input document (default "1.1").
	Version string `json:"version" yaml:"version"`

	// Data holds the articles in input order.
	Data []Article `json:"data" yaml:"data" validate:"required,dive"`
}

// Article groups the paragraphs drawn from one source page.
type Article struct {
	Title      string      `json:"title" yaml:"title"`
	Paragraphs []Paragraph `json:"paragraphs" yaml:"paragraphs" validate:"dive"`
}

// Paragraph is one context together with the questions asked about it.
type Paragraph struct {
	// Context is the searchable surface for every answer in QAs.
	Context string `json:"context" yaml:"context"`
	QAs     []QA   `json:"qas" yaml:"qas" validate:"dive"`
}

// QA is a question with its answers and a stable identifier.
// Only single-answer records are cleanable; see AnswerPolicy.
type QA struct {
	ID       string   `json:"id" yaml:"id" validate:"required"`
	Question string   `json:"question" yaml:"question"`
	Answers  []Answer `json:"answers" yaml:"answers"`
}

// Answer is an answer string and the character offset it is claimed to
// start at. After translation AnswerStart is stale and never trusted.
type Answer struct {
	Text        string `json:"text" yaml:"text"`
	AnswerStart int    `json:"answer_start" yaml:"answer_start"`
}

// CountQAs returns the total number of QA pairs in the dataset.
func (d *Dataset) CountQAs() int {
	n := 0
	for _, a := range d.Data {
		for _, p := range a.Paragraphs {
			n += len(p.QAs)
		}
	}
	return n
}

// CountParagraphs returns the total number of paragraphs (contexts).
func (d *Dataset) CountParagraphs() int {
	n := 0
	for _, a := range d.Data {
		n += len(a.Paragraphs)
	}
	return n
}
