package transcribe

import (
	"context"
	"fmt"
	"os"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/snarg/voxconvert/internal/audio"
	"github.com/snarg/voxconvert/internal/lang"
	"google.golang.org/api/option"
)

// GoogleClient uses the Cloud Speech-to-Text v1 synchronous Recognize call.
// Clips are capped at one minute by the API, well above the capture limit.
type GoogleClient struct {
	recognize func(context.Context, *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error)
	close     func() error
	model     string
}

// NewGoogleClient creates a Speech client. With an empty credentialsFile it
// falls back to Application Default Credentials.
func NewGoogleClient(ctx context.Context, credentialsFile string) (*GoogleClient, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	c, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	return &GoogleClient{
		recognize: func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
			return c.Recognize(ctx, req)
		},
		close: c.Close,
		model: "default",
	}, nil
}

func (g *GoogleClient) Name() string  { return "google" }
func (g *GoogleClient) Model() string { return g.model }

// Close releases the underlying gRPC connection.
func (g *GoogleClient) Close() error {
	if g.close == nil {
		return nil
	}
	return g.close()
}

func (g *GoogleClient) Transcribe(ctx context.Context, wavPath string, locale lang.Locale) (string, error) {
	data, err := os.ReadFile(wavPath)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	info, err := audio.DecodeWAV(data)
	if err != nil {
		return "", err
	}
	if !info.IsPCM16() {
		return "", fmt.Errorf("google: expected 16-bit PCM, got format=%d bits=%d", info.AudioFormat, info.BitsPerSample)
	}

	resp, err := g.recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:            int32(info.SampleRate),
			AudioChannelCount:          int32(info.Channels),
			LanguageCode:               string(locale),
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: info.Data},
		},
	})
	if err != nil {
		return "", fmt.Errorf("google recognize: %w", err)
	}

	var parts []string
	for _, result := range resp.GetResults() {
		if alts := result.GetAlternatives(); len(alts) > 0 {
			parts = append(parts, strings.TrimSpace(alts[0].GetTranscript()))
		}
	}
	return transcript("google", strings.Join(parts, " "))
}
