package synth

import (
	"context"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"
	"github.com/snarg/voxconvert/internal/lang"
)

// OpenAIClient uses the OpenAI speech endpoint. Voices are multilingual, so
// the voice code only shows up in logs.
type OpenAIClient struct {
	client *openai.Client
	model  string
	voice  string
}

// NewOpenAIClient creates a TTS client. baseURL overrides the API root when
// set (OpenAI-compatible servers).
func NewOpenAIClient(apiKey, baseURL, model, voice string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		voice:  voice,
	}
}

func (c *OpenAIClient) Name() string  { return "openai" }
func (c *OpenAIClient) Model() string { return c.model + "/" + c.voice }

func (c *OpenAIClient) Synthesize(ctx context.Context, text string, code lang.VoiceCode) ([]byte, error) {
	resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(c.model),
		Input:          text,
		Voice:          openai.SpeechVoice(c.voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech: %w", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read speech: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("openai returned empty audio")
	}
	return data, nil
}
