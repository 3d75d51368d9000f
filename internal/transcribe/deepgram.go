package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/snarg/voxconvert/internal/lang"
)

const deepgramEndpoint = "https://api.deepgram.com/v1/listen"

// DeepgramClient calls the Deepgram pre-recorded /v1/listen API with the WAV
// file as the raw request body.
type DeepgramClient struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

type deepgramResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// NewDeepgramClient creates a new Deepgram client.
func NewDeepgramClient(apiKey, model string) *DeepgramClient {
	return &DeepgramClient{
		apiKey:   apiKey,
		model:    model,
		endpoint: deepgramEndpoint,
		client:   &http.Client{},
	}
}

func (dg *DeepgramClient) Name() string  { return "deepgram" }
func (dg *DeepgramClient) Model() string { return dg.model }

func (dg *DeepgramClient) Transcribe(ctx context.Context, wavPath string, locale lang.Locale) (string, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	q := url.Values{}
	q.Set("model", dg.model)
	q.Set("smart_format", "true")
	if locale != "" {
		q.Set("language", string(locale))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, dg.endpoint+"?"+q.Encode(), f)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "audio/wav")
	req.Header.Set("Authorization", "Token "+dg.apiKey)

	resp, err := dg.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepgram request: %w", err)
	}
	defer resp.Body.Close()

	body, err := readBody("deepgram", resp)
	if err != nil {
		return "", err
	}

	var result deepgramResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(result.Results.Channels) == 0 || len(result.Results.Channels[0].Alternatives) == 0 {
		return transcript("deepgram", "")
	}
	return transcript("deepgram", result.Results.Channels[0].Alternatives[0].Transcript)
}
