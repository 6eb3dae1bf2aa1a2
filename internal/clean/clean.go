// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package clean validates and repairs answer spans across a translated
// dataset. Each QA pair either survives with a corrected answer_start or
// becomes an ErrorReport; containers left empty are pruned.
package clean

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/squad-localize/internal/script"
	"github.com/pdiddy/squad-localize/internal/span"
	"github.com/pdiddy/squad-localize/pkg/types"
)

// Options injects the strategies used by Clean.
type Options struct {
	Filter       script.Filter
	Locator      span.Locator
	AnswerPolicy types.AnswerPolicy

	// Workers bounds the number of articles processed concurrently. 0 uses NumCPU.
	Workers int
}

// Summary holds counts from a cleaning run.
type Summary struct {
	Original int
	Cleaned  int
	Errors   int
	ByKind   map[types.ErrorKind]int
}

// HasErrors reports whether any QA pair was rejected.
func (s Summary) HasErrors() bool {
	return s.Errors > 0
}

// Result is the partitioned output of Clean.
type Result struct {
	Dataset types.Dataset
	Reports []types.ErrorReport
	Summary Summary
}

// articleResult is the outcome for one input article, kept in an indexed
// slot so the merge restores input order.
type articleResult struct {
	article types.Article
	keep    bool
	reports []types.ErrorReport
}

// Clean runs the filter and locator over every QA pair of ds. Ordering of
// surviving articles, paragraphs, QA pairs and of the reports follows the
// input. ds is not modified.
func Clean(ctx context.Context, ds *types.Dataset, opts Options) (Result, error) {
	if opts.Filter == nil {
		opts.Filter = script.NewLatinFilter()
	}
	if opts.Locator == nil {
		opts.Locator = span.FirstOccurrence{}
	}
	if opts.AnswerPolicy == "" {
		opts.AnswerPolicy = types.AnswerPolicyReject
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	slots := make([]articleResult, len(ds.Data))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range ds.Data {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = cleanArticle(ds.Data[i], opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("cleaning dataset: %w", err)
	}

	version := ds.Version
	if version == "" {
		version = types.DefaultDatasetVersion
	}
	res := Result{
		Dataset: types.Dataset{Version: version, Data: []types.Article{}},
		Reports: []types.ErrorReport{},
		Summary: Summary{
			Original: ds.CountQAs(),
			ByKind:   make(map[types.ErrorKind]int),
		},
	}
	for _, slot := range slots {
		if slot.keep {
			res.Dataset.Data = append(res.Dataset.Data, slot.article)
		}
		for _, r := range slot.reports {
			res.Summary.ByKind[r.Error]++
		}
		res.Reports = append(res.Reports, slot.reports...)
	}
	res.Summary.Cleaned = res.Dataset.CountQAs()
	res.Summary.Errors = len(res.Reports)

	return res, nil
}

func cleanArticle(article types.Article, opts Options) articleResult {
	out := articleResult{
		article: types.Article{Title: article.Title},
	}
	for _, para := range article.Paragraphs {
		cleaned := types.Paragraph{Context: para.Context}
		for _, qa := range para.QAs {
			fixed, report := CleanQA(para.Context, qa, opts)
			if report != nil {
				out.reports = append(out.reports, *report)
				continue
			}
			cleaned.QAs = append(cleaned.QAs, fixed)
		}
		if len(cleaned.QAs) > 0 {
			out.article.Paragraphs = append(out.article.Paragraphs, cleaned)
		}
	}
	out.keep = len(out.article.Paragraphs) > 0
	return out
}

// CleanQA applies the answer policy, the script filter, and the locator to
// one QA pair whose paragraph context is passage. It returns either the
// corrected QA or a report, never both.
func CleanQA(passage string, qa types.QA, opts Options) (types.QA, *types.ErrorReport) {
	reject := func(answer *types.Answer, kind types.ErrorKind) (types.QA, *types.ErrorReport) {
		var a *types.Answer
		if answer != nil {
			copied := *answer
			a = &copied
		}
		return types.QA{}, &types.ErrorReport{
			ID:       qa.ID,
			Question: qa.Question,
			Context:  passage,
			Answer:   a,
			Error:    kind,
		}
	}

	switch {
	case len(qa.Answers) == 0:
		return reject(nil, types.KindNoAnswer)
	case len(qa.Answers) > 1 && opts.AnswerPolicy != types.AnswerPolicyFirst:
		return reject(&qa.Answers[0], types.KindMultipleAnswers)
	case len(qa.Answers) > 1:
		slog.Default().Debug("ignoring extra answers", "id", qa.ID, "answers", len(qa.Answers))
	}
	answer := qa.Answers[0]

	if opts.Filter.HasForeignScript(qa.Question) || opts.Filter.HasForeignScript(answer.Text) {
		return reject(&answer, types.KindUntranslated)
	}

	result := span.Validate(opts.Locator, passage, answer)
	if !result.Valid {
		return reject(&answer, result.Kind)
	}

	return types.QA{
		ID:       qa.ID,
		Question: qa.Question,
		Answers:  []types.Answer{result.Correct(answer)},
	}, nil
}
