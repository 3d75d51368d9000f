// Package translate holds the translation backend used by the translate
// text-to-text mode.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/snarg/voxconvert/internal/convert"
	"github.com/snarg/voxconvert/internal/lang"
)

const systemPrompt = "You are a translation engine. Translate the user's message into %s (ISO-639-1 code %q). " +
	"Reply with the translation only. Do not explain, transliterate, quote or add notes. " +
	"Keep line breaks, numbers and names as they are."

// OpenAIClient translates through a chat completion.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

var _ convert.Translator = (*OpenAIClient)(nil)

// NewOpenAIClient creates a translator. baseURL overrides the API root when
// set (OpenAI-compatible servers).
func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (c *OpenAIClient) Name() string  { return "openai" }
func (c *OpenAIClient) Model() string { return c.model }

// Translate returns the model's reply verbatim apart from surrounding
// whitespace. An empty reply is an error.
func (c *OpenAIClient) Translate(ctx context.Context, text string, target lang.VoiceCode) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(systemPrompt, lang.DisplayName(target), string(target))},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai chat: no choices returned")
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", errors.New("openai chat: empty translation")
	}
	return out, nil
}
