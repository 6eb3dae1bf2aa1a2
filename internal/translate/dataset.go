// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package translate

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/squad-localize/pkg/types"
)

const (
	// DefaultMaxContexts bounds how many paragraphs one run translates.
	DefaultMaxContexts = 1000
	// DefaultBatchSize is how many paragraph contexts go into one request.
	DefaultBatchSize = 5
	// progressEvery is the number of contexts between progress lines.
	progressEvery = 10
)

// TextTranslator translates an ordered list of strings, preserving length
// and order. *Translator implements it.
type TextTranslator interface {
	TranslateTexts(ctx context.Context, texts []string) ([]string, error)
}

// ArticleStore persists finished articles so an interrupted run can resume.
// *checkpoint.Checkpoint implements it.
type ArticleStore interface {
	SaveArticle(i int, article types.Article) error
	Articles() (map[int]types.Article, error)
	Reset() error
}

// DatasetOptions controls TranslateDataset.
type DatasetOptions struct {
	MaxContexts int
	BatchSize   int
	// Checkpoint, when set, records each finished article.
	Checkpoint ArticleStore
	// Resume reuses articles already in Checkpoint instead of clearing it.
	Resume bool
}

// Summary reports the outcome of a dataset translation.
type Summary struct {
	Contexts int
	QAPairs  int
	Articles int
	Resumed  int
	Elapsed  time.Duration
}

// TranslateDataset translates paragraph contexts, questions, and answer
// texts of ds into a new dataset. Titles, ids, and answer offsets are copied
// unchanged. Translation stops once MaxContexts paragraphs have been
// produced; articles left with no paragraphs are omitted. Progress lines are
// written to w every ten contexts.
//
// Any translation error aborts the run. Articles finished before the error
// stay in the checkpoint. An article cut short by MaxContexts is not
// checkpointed, so a resumed run translates it in full.
func TranslateDataset(ctx context.Context, tr TextTranslator, ds *types.Dataset, opts DatasetOptions, w io.Writer) (*types.Dataset, Summary, error) {
	maxContexts := opts.MaxContexts
	if maxContexts <= 0 {
		maxContexts = DefaultMaxContexts
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	done, err := prepareCheckpoint(opts)
	if err != nil {
		return nil, Summary{}, err
	}

	version := ds.Version
	if version == "" {
		version = types.DefaultDatasetVersion
	}
	out := &types.Dataset{Version: version, Data: []types.Article{}}

	var summary Summary
	start := time.Now()

	for i, article := range ds.Data {
		if summary.Contexts >= maxContexts {
			break
		}

		if saved, ok := done[i]; ok {
			summary.Resumed++
			summary.Contexts += len(saved.Paragraphs)
			for _, p := range saved.Paragraphs {
				summary.QAPairs += len(p.QAs)
			}
			if len(saved.Paragraphs) > 0 {
				out.Data = append(out.Data, saved)
				summary.Articles++
			}
			continue
		}

		paragraphs := article.Paragraphs
		if remaining := maxContexts - summary.Contexts; len(paragraphs) > remaining {
			paragraphs = paragraphs[:remaining]
		}

		translated := types.Article{Title: article.Title, Paragraphs: make([]types.Paragraph, 0, len(paragraphs))}
		for b := 0; b < len(paragraphs); b += batchSize {
			batch := paragraphs[b:min(b+batchSize, len(paragraphs))]

			contexts := make([]string, len(batch))
			for j, p := range batch {
				contexts[j] = p.Context
			}
			translatedContexts, err := tr.TranslateTexts(ctx, contexts)
			if err != nil {
				return nil, summary, fmt.Errorf("translating contexts of article %q: %w", article.Title, err)
			}
			if len(translatedContexts) != len(contexts) {
				return nil, summary, fmt.Errorf("translating contexts of article %q: %w", article.Title, ErrLengthMismatch)
			}

			for j, p := range batch {
				tp, err := translateParagraph(ctx, tr, p, translatedContexts[j])
				if err != nil {
					return nil, summary, fmt.Errorf("translating article %q: %w", article.Title, err)
				}
				translated.Paragraphs = append(translated.Paragraphs, tp)
				summary.Contexts++
				summary.QAPairs += len(tp.QAs)
				if summary.Contexts%progressEvery == 0 {
					fmt.Fprintf(w, "processed %d/%d contexts (%.1f min)\n",
						summary.Contexts, maxContexts, time.Since(start).Minutes())
				}
			}
		}

		if opts.Checkpoint != nil && len(paragraphs) == len(article.Paragraphs) {
			if err := opts.Checkpoint.SaveArticle(i, translated); err != nil {
				return nil, summary, fmt.Errorf("checkpointing article %q: %w", article.Title, err)
			}
		}
		if len(translated.Paragraphs) > 0 {
			out.Data = append(out.Data, translated)
			summary.Articles++
		}
	}

	summary.Elapsed = time.Since(start)
	return out, summary, nil
}

func prepareCheckpoint(opts DatasetOptions) (map[int]types.Article, error) {
	if opts.Checkpoint == nil {
		return nil, nil
	}
	if !opts.Resume {
		if err := opts.Checkpoint.Reset(); err != nil {
			return nil, fmt.Errorf("resetting checkpoint: %w", err)
		}
		return nil, nil
	}
	done, err := opts.Checkpoint.Articles()
	if err != nil {
		return nil, fmt.Errorf("reading checkpoint: %w", err)
	}
	return done, nil
}

// translateParagraph translates each question followed by its answer texts
// in one call and redistributes the results by position.
func translateParagraph(ctx context.Context, tr TextTranslator, p types.Paragraph, passage string) (types.Paragraph, error) {
	var texts []string
	for _, qa := range p.QAs {
		texts = append(texts, qa.Question)
		for _, a := range qa.Answers {
			texts = append(texts, a.Text)
		}
	}

	translated, err := tr.TranslateTexts(ctx, texts)
	if err != nil {
		return types.Paragraph{}, fmt.Errorf("translating questions and answers: %w", err)
	}
	if len(translated) != len(texts) {
		return types.Paragraph{}, fmt.Errorf("translating questions and answers: %w", ErrLengthMismatch)
	}

	out := types.Paragraph{Context: passage, QAs: make([]types.QA, len(p.QAs))}
	idx := 0
	for i, qa := range p.QAs {
		tq := types.QA{ID: qa.ID, Question: translated[idx], Answers: make([]types.Answer, len(qa.Answers))}
		idx++
		for j, a := range qa.Answers {
			tq.Answers[j] = types.Answer{Text: translated[idx], AnswerStart: a.AnswerStart}
			idx++
		}
		out.QAs[i] = tq
	}
	return out, nil
}
