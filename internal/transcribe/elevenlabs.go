package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/snarg/voxconvert/internal/lang"
)

const elevenLabsSTTEndpoint = "https://api.elevenlabs.io/v1/speech-to-text"

// ElevenLabsClient calls the ElevenLabs Speech-to-Text API.
type ElevenLabsClient struct {
	apiKey   string
	model    string // "scribe_v1" or "scribe_v2"
	endpoint string
	client   *http.Client
}

type elevenlabsResponse struct {
	LanguageCode        string  `json:"language_code"`
	LanguageProbability float64 `json:"language_probability"`
	Text                string  `json:"text"`
}

// NewElevenLabsClient creates a new ElevenLabs STT client.
func NewElevenLabsClient(apiKey, model string) *ElevenLabsClient {
	return &ElevenLabsClient{
		apiKey:   apiKey,
		model:    model,
		endpoint: elevenLabsSTTEndpoint,
		client:   &http.Client{},
	}
}

func (el *ElevenLabsClient) Name() string  { return "elevenlabs" }
func (el *ElevenLabsClient) Model() string { return el.model }

// Transcribe sends a WAV file to the ElevenLabs STT API.
func (el *ElevenLabsClient) Transcribe(ctx context.Context, wavPath string, locale lang.Locale) (string, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filepath.Base(wavPath))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("copy audio data: %w", err)
	}

	w.WriteField("model_id", el.model)
	if base := locale.Base(); base != "" {
		w.WriteField("language_code", base)
	}
	w.WriteField("tag_audio_events", "false")
	w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, el.endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("xi-api-key", el.apiKey)

	resp, err := el.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("elevenlabs request: %w", err)
	}
	defer resp.Body.Close()

	body, err := readBody("elevenlabs", resp)
	if err != nil {
		return "", err
	}

	var result elevenlabsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return transcript("elevenlabs", result.Text)
}
