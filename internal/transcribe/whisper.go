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

// WhisperClient calls an OpenAI-compatible /v1/audio/transcriptions endpoint.
type WhisperClient struct {
	url    string
	model  string
	apiKey string
	client *http.Client
}

// whisperResponse is the response for response_format=json.
type whisperResponse struct {
	Text string `json:"text"`
}

// NewWhisperClient creates a new Whisper HTTP client. apiKey may be empty for
// self-hosted servers.
func NewWhisperClient(url, model, apiKey string) *WhisperClient {
	return &WhisperClient{
		url:    url,
		model:  model,
		apiKey: apiKey,
		client: &http.Client{},
	}
}

func (wc *WhisperClient) Name() string  { return "whisper" }
func (wc *WhisperClient) Model() string { return wc.model }

// Transcribe sends a WAV file to the Whisper API as multipart/form-data.
// Whisper takes ISO-639-1 language codes, so the locale's region is dropped.
func (wc *WhisperClient) Transcribe(ctx context.Context, wavPath string, locale lang.Locale) (string, error) {
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

	if wc.model != "" {
		w.WriteField("model", wc.model)
	}
	if base := locale.Base(); base != "" {
		w.WriteField("language", base)
	}
	w.WriteField("temperature", "0.00")
	w.WriteField("response_format", "json")
	w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wc.url, &buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if wc.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+wc.apiKey)
	}

	resp, err := wc.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("whisper request: %w", err)
	}
	defer resp.Body.Close()

	body, err := readBody("whisper", resp)
	if err != nil {
		return "", err
	}

	var result whisperResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return transcript("whisper", result.Text)
}
