// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package translate

import (
	"context"
	"fmt"

	"resty.dev/v3"

	"github.com/pdiddy/squad-localize/pkg/types"
)

const libreBaseURL = "https://libretranslate.com"

// LibreBackend calls a LibreTranslate server, typically self-hosted.
type LibreBackend struct {
	client *resty.Client
	apiKey string
}

// NewLibreBackend creates a backend for cfg.BaseURL (default libretranslate.com).
func NewLibreBackend(cfg types.TranslationConfig) *LibreBackend {
	base := cfg.BaseURL
	if base == "" {
		base = libreBaseURL
	}
	client := resty.New()
	client.SetBaseURL(base)
	client.SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	return &LibreBackend{client: client, apiKey: cfg.APIKey}
}

func (b *LibreBackend) Name() string { return string(types.BackendLibreTranslate) }

// Close releases the underlying HTTP client.
func (b *LibreBackend) Close() error {
	return b.client.Close()
}

type libreRequest struct {
	Q      []string `json:"q"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Format string   `json:"format"`
	APIKey string   `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText []string `json:"translatedText"`
}

// Translate posts texts as an array q; the server answers with an array of
// the same length.
func (b *LibreBackend) Translate(ctx context.Context, texts []string, source, target string) ([]string, error) {
	response, err := b.client.R().
		SetContext(ctx).
		SetBody(libreRequest{Q: texts, Source: source, Target: target, Format: "text", APIKey: b.apiKey}).
		SetResult(&libreResponse{}).
		Post("/translate")
	if err != nil {
		return nil, fmt.Errorf("libretranslate request: %w", err)
	}
	if response.IsError() {
		return nil, &StatusError{Backend: b.Name(), Code: response.StatusCode(), Body: truncate(response.String(), 512)}
	}

	decoded, ok := response.Result().(*libreResponse)
	if !ok || decoded == nil {
		return nil, fmt.Errorf("libretranslate: empty response body: %s", truncate(response.String(), 512))
	}
	return decoded.TranslatedText, nil
}
