// Package transcribe holds the speech-to-text backends. Every backend takes a
// 16-bit PCM WAV file and a recognition locale and returns plain text.
package transcribe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/snarg/voxconvert/internal/convert"
	"github.com/snarg/voxconvert/internal/lang"
)

// Provider is the interface for speech-to-text backends. Transcribe returns
// convert.ErrNoSpeech when the backend answered but heard nothing.
type Provider interface {
	Transcribe(ctx context.Context, wavPath string, locale lang.Locale) (string, error)
	Name() string  // "google", "whisper", "deepgram", "elevenlabs"
	Model() string // model identifier for logs
}

var _ convert.Recognizer = Provider(nil)

// transcript trims the provider text and maps an empty result to ErrNoSpeech.
func transcript(provider, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%s: %w", provider, convert.ErrNoSpeech)
	}
	return text, nil
}

// readBody reads a provider response and returns an error for non-2xx status.
func readBody(provider string, resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s API error (status %d): %s", provider, resp.StatusCode, truncate(string(body), 512))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
