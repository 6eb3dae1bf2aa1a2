// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/pdiddy/squad-localize/pkg/types"
)

const defaultOpenAIModel = openai.GPT4oMini

// OpenAIBackend translates with a chat-completion model. The model is asked
// for a JSON object so the reply can be matched to inputs by position.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

// NewOpenAIBackend creates a backend for cfg.Model (default gpt-4o-mini).
// cfg.BaseURL points the client at a compatible server.
func NewOpenAIBackend(cfg types.TranslationConfig) *OpenAIBackend {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIBackend{client: openai.NewClientWithConfig(oc), model: model}
}

func (b *OpenAIBackend) Name() string { return string(types.BackendOpenAI) }

type openAIPayload struct {
	Texts []string `json:"texts"`
}

type openAIReply struct {
	Translations []string `json:"translations"`
}

func (b *OpenAIBackend) Translate(ctx context.Context, texts []string, source, target string) ([]string, error) {
	payload, err := json.Marshal(openAIPayload{Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("encoding openai payload: %w", err)
	}

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       b.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(source, target)},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
	})
	if err != nil {
		return nil, openAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: no choices in response")
	}

	var reply openAIReply
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &reply); err != nil {
		return nil, fmt.Errorf("parsing openai reply: %w", err)
	}
	return reply.Translations, nil
}

func systemPrompt(source, target string) string {
	return fmt.Sprintf(
		"Translate every string in the \"texts\" array from %s to %s. "+
			"Reply with a JSON object {\"translations\": [...]} holding exactly one translation per input string, in input order. "+
			"Do not merge, split, skip, or explain strings.",
		languageName(source), languageName(target))
}

// languageName renders a BCP 47 code as an English name, falling back to the
// code itself.
func languageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}

// openAIError maps client errors onto StatusError so the translator can
// decide whether to retry.
func openAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{Backend: string(types.BackendOpenAI), Code: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &StatusError{Backend: string(types.BackendOpenAI), Code: reqErr.HTTPStatusCode, Body: reqErr.Error()}
	}
	return fmt.Errorf("openai request: %w", err)
}
