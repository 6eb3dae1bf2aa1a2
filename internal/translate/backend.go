// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package translate sends dataset text through a machine-translation service.
// Backends translate ordered batches of strings; the Translator on top of them
// enforces segment limits, pacing, retries, and the positional contract that
// the i-th output is the translation of the i-th input.
package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pdiddy/squad-localize/pkg/types"
)

// ErrLengthMismatch is returned when a backend answers with a different
// number of strings than it was sent. Positions can no longer be trusted,
// so the batch is never retried or partially used.
var ErrLengthMismatch = errors.New("translation count does not match input count")

// Backend translates a batch of strings with a single service call. Each
// implementation (Google, LibreTranslate, OpenAI) is a Strategy.
type Backend interface {
	Name() string
	Translate(ctx context.Context, texts []string, source, target string) ([]string, error)
}

// StatusError is a non-success HTTP response from a backend.
type StatusError struct {
	Backend string
	Code    int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: response error %d: %s", e.Backend, e.Code, e.Body)
}

// Temporary reports whether the request may succeed if repeated.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// NewBackend builds the backend selected by cfg.Backend.
func NewBackend(cfg types.TranslationConfig) (Backend, error) {
	switch cfg.Backend {
	case types.BackendGoogle, "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("google backend requires an API key (GOOGLE_TRANSLATE_API_KEY or .secrets/google-translate-api-key)")
		}
		return NewGoogleBackend(cfg), nil
	case types.BackendLibreTranslate:
		return NewLibreBackend(cfg), nil
	case types.BackendOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai backend requires an API key (OPENAI_API_KEY or .secrets/openai-api-key)")
		}
		return NewOpenAIBackend(cfg), nil
	default:
		return nil, fmt.Errorf("unknown translation backend %q", cfg.Backend)
	}
}
