// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/squad-localize/internal/httputil"
	"github.com/pdiddy/squad-localize/pkg/types"
)

// googleBaseURL is the Cloud Translation v2 endpoint. Tests override it.
var googleBaseURL = "https://translation.googleapis.com/language/translate/v2"

// GoogleBackend calls the Cloud Translation v2 REST API.
type GoogleBackend struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	maxRetries int
}

// NewGoogleBackend creates a backend using cfg's key, timeout, and base URL.
func NewGoogleBackend(cfg types.TranslationConfig) *GoogleBackend {
	base := cfg.BaseURL
	if base == "" {
		base = googleBaseURL
	}
	return &GoogleBackend{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    base,
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
	}
}

func (b *GoogleBackend) Name() string { return string(types.BackendGoogle) }

type googleResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

// Translate sends texts as repeated q parameters in plain-text format so the
// service does not HTML-escape the results.
func (b *GoogleBackend) Translate(ctx context.Context, texts []string, source, target string) ([]string, error) {
	form := url.Values{}
	for _, t := range texts {
		form.Add("q", t)
	}
	form.Set("source", source)
	form.Set("target", target)
	form.Set("format", "text")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building google request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Goog-Api-Key", b.apiKey)

	resp, err := httputil.DoWithRetry(ctx, b.client, req, b.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("google request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading google response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Backend: b.Name(), Code: resp.StatusCode, Body: truncate(string(body), 512)}
	}

	var decoded googleResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("parsing google response: %w", err)
	}

	out := make([]string, len(decoded.Data.Translations))
	for i, t := range decoded.Data.Translations {
		out[i] = t.TranslatedText
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
