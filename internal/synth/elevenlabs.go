package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/snarg/voxconvert/internal/lang"
)

const elevenLabsBaseURL = "https://api.elevenlabs.io"

// ElevenLabsClient calls the ElevenLabs text-to-speech API. The multilingual
// models pick the language up from the text itself.
type ElevenLabsClient struct {
	apiKey  string
	voiceID string
	model   string
	baseURL string
	client  *http.Client
}

type elevenLabsRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id,omitempty"`
}

// NewElevenLabsClient creates a new ElevenLabs TTS client.
func NewElevenLabsClient(apiKey, voiceID, model string) *ElevenLabsClient {
	return &ElevenLabsClient{
		apiKey:  apiKey,
		voiceID: voiceID,
		model:   model,
		baseURL: elevenLabsBaseURL,
		client:  &http.Client{},
	}
}

func (c *ElevenLabsClient) Name() string  { return "elevenlabs" }
func (c *ElevenLabsClient) Model() string { return c.model }

func (c *ElevenLabsClient) Synthesize(ctx context.Context, text string, code lang.VoiceCode) ([]byte, error) {
	payload, err := json.Marshal(elevenLabsRequest{Text: text, ModelID: c.model})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, url.PathEscape(c.voiceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request: %w", err)
	}
	defer resp.Body.Close()
	return readAudio("elevenlabs", resp)
}
