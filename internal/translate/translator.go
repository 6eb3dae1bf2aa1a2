// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go"

	"github.com/pdiddy/squad-localize/internal/memory"
	"github.com/pdiddy/squad-localize/pkg/types"
)

// DefaultSegmentLimit is the largest number of strings sent in one request.
const DefaultSegmentLimit = 128

// DefaultRequestDelay is the pause between consecutive backend requests.
const DefaultRequestDelay = 100 * time.Millisecond

// RetryDelay is the base delay for backing off after a failed segment.
// Tests override it to avoid real sleeps.
var RetryDelay = time.Second

// Memory caches translations across runs.
type Memory interface {
	Lookup(ctx context.Context, source, target string, texts []string) (map[string]string, error)
	Put(ctx context.Context, source, target, backend string, pairs []memory.Pair) error
}

// Stats counts the work a Translator has done.
type Stats struct {
	Requests  int
	Strings   int
	CacheHits int
}

// Translator translates ordered lists of strings of any length by splitting
// them into segments a Backend accepts.
type Translator struct {
	backend      Backend
	source       string
	target       string
	segmentLimit int
	delay        time.Duration
	maxRetries   int
	memory       Memory

	called bool
	stats  Stats
}

// NewTranslator creates a Translator for cfg's language pair. mem may be nil.
func NewTranslator(backend Backend, cfg types.TranslationConfig, mem Memory) *Translator {
	limit := cfg.SegmentLimit
	if limit <= 0 || limit > DefaultSegmentLimit {
		limit = DefaultSegmentLimit
	}
	return &Translator{
		backend:      backend,
		source:       cfg.SourceLanguage,
		target:       cfg.TargetLanguage,
		segmentLimit: limit,
		delay:        cfg.RequestDelay,
		maxRetries:   cfg.MaxRetries,
		memory:       mem,
	}
}

// Stats returns counters accumulated since the Translator was created.
func (t *Translator) Stats() Stats { return t.stats }

// TranslateTexts returns one translation per input, in input order. Empty
// strings translate to themselves without a request. Repeated inputs are
// sent once.
func (t *Translator) TranslateTexts(ctx context.Context, texts []string) ([]string, error) {
	if len(texts) == 0 {
		return []string{}, nil
	}

	known := map[string]string{"": ""}
	if t.memory != nil {
		cached, err := t.memory.Lookup(ctx, t.source, t.target, texts)
		if err != nil {
			slog.Default().Warn("translation memory lookup failed", "error", err)
		}
		for k, v := range cached {
			known[k] = v
		}
	}

	var pending []string
	seen := make(map[string]bool)
	for _, text := range texts {
		if _, ok := known[text]; ok {
			if text != "" {
				t.stats.CacheHits++
			}
			continue
		}
		if seen[text] {
			continue
		}
		seen[text] = true
		pending = append(pending, text)
	}

	for start := 0; start < len(pending); start += t.segmentLimit {
		end := min(start+t.segmentLimit, len(pending))
		segment := pending[start:end]

		out, err := t.translateSegment(ctx, segment)
		if err != nil {
			return nil, err
		}

		pairs := make([]memory.Pair, len(segment))
		for i, src := range segment {
			known[src] = out[i]
			pairs[i] = memory.Pair{Source: src, Translation: out[i]}
		}
		if t.memory != nil {
			if err := t.memory.Put(ctx, t.source, t.target, t.backend.Name(), pairs); err != nil {
				slog.Default().Warn("translation memory write failed", "error", err)
			}
		}
	}

	result := make([]string, len(texts))
	for i, text := range texts {
		result[i] = known[text]
	}
	return result, nil
}

// translateSegment sends one segment, pacing against the previous request
// and retrying transient failures with exponential backoff. A length
// mismatch is never retried.
func (t *Translator) translateSegment(ctx context.Context, segment []string) ([]string, error) {
	var result []string
	err := retry.Do(
		func() error {
			if err := t.pace(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			t.stats.Requests++
			out, err := t.backend.Translate(ctx, segment, t.source, t.target)
			if err != nil {
				if !isRetryable(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			if len(out) != len(segment) {
				return retry.Unrecoverable(fmt.Errorf("%w: sent %d, got %d", ErrLengthMismatch, len(segment), len(out)))
			}
			result = out
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(max(t.maxRetries, 0))+1),
		retry.Delay(RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			slog.Default().Info("translation request failed, retrying",
				"backend", t.backend.Name(), "attempt", n+1, "strings", len(segment), "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%s backend: %w", t.backend.Name(), err)
	}
	t.stats.Strings += len(segment)
	return result, nil
}

func (t *Translator) pace(ctx context.Context) error {
	if !t.called {
		t.called = true
		return nil
	}
	if t.delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(t.delay):
		return nil
	}
}

// isRetryable reports whether err may clear up on a later attempt.
// Transport errors are retried; HTTP errors only when temporary.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}
