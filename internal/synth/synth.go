// Package synth holds the text-to-speech backends. Every backend returns MP3.
package synth

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/snarg/voxconvert/internal/convert"
	"github.com/snarg/voxconvert/internal/lang"
)

// Provider is the interface for text-to-speech backends.
type Provider interface {
	Synthesize(ctx context.Context, text string, code lang.VoiceCode) ([]byte, error)
	Name() string  // "gtts", "elevenlabs", "openai"
	Model() string // model or voice identifier for logs
}

var _ convert.Synthesizer = Provider(nil)

// readAudio returns the body of a successful audio response.
func readAudio(provider string, resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(body) > 512 {
			body = body[:512]
		}
		return nil, fmt.Errorf("%s API error (status %d): %s", provider, resp.StatusCode, body)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%s returned empty audio", provider)
	}
	return body, nil
}
