package convert

import (
	"context"
	"encoding/binary"
	"os"
	"sync"

	"github.com/snarg/voxconvert/internal/audio"
	"github.com/snarg/voxconvert/internal/lang"
)

type fakeRecognizer struct {
	mu      sync.Mutex
	text    string
	err     error
	calls   int
	locale  lang.Locale
	sawFile bool
	path    string
}

func (f *fakeRecognizer) Name() string { return "fake-stt" }

func (f *fakeRecognizer) Transcribe(ctx context.Context, wavPath string, locale lang.Locale) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.locale = locale
	f.path = wavPath
	_, statErr := os.Stat(wavPath)
	f.sawFile = statErr == nil
	return f.text, f.err
}

type fakeSynthesizer struct {
	mu    sync.Mutex
	data  []byte
	err   error
	calls int
	text  string
	code  lang.VoiceCode
}

func (f *fakeSynthesizer) Name() string { return "fake-tts" }

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text string, code lang.VoiceCode) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.text = text
	f.code = code
	return f.data, f.err
}

type fakeTranslator struct {
	out    string
	err    error
	calls  int
	target lang.VoiceCode
}

func (f *fakeTranslator) Name() string { return "fake-translate" }

func (f *fakeTranslator) Translate(ctx context.Context, text string, target lang.VoiceCode) (string, error) {
	f.calls++
	f.target = target
	return f.out, f.err
}

// toneSource returns a capture-style PCM clip of alternating +/-amp samples.
type toneSource struct {
	amp     int16
	samples int
	err     error
}

func (t toneSource) Kind() string { return "test" }

func (t toneSource) Acquire(ctx context.Context) (*audio.Clip, error) {
	if t.err != nil {
		return nil, t.err
	}
	pcm := make([]byte, 2*t.samples)
	for i := 0; i < t.samples; i++ {
		v := t.amp
		if i%2 == 1 {
			v = -v
		}
		binary.LittleEndian.PutUint16(pcm[2*i:], uint16(v))
	}
	return &audio.Clip{Format: audio.FormatPCM16, Data: pcm, SampleRate: 16000, Channels: 1}, nil
}

// clipSource hands over a fixed clip.
type clipSource struct{ clip *audio.Clip }

func (c clipSource) Kind() string { return "test" }

func (c clipSource) Acquire(ctx context.Context) (*audio.Clip, error) { return c.clip, nil }

func speech() audio.Source  { return toneSource{amp: 3000, samples: 1600} }
func silence() audio.Source { return toneSource{amp: 0, samples: 1600} }
