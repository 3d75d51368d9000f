package audio

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
)

var (
	ErrEmpty                 = errors.New("audio: no audio data")
	ErrUnsupported           = errors.New("audio: unsupported format (want WAV or MP3)")
	ErrInvalid               = errors.New("audio: invalid audio data")
	ErrTranscoderUnavailable = errors.New("audio: ffmpeg not found in PATH")
)

// Format identifies how Clip.Data is encoded.
type Format string

const (
	FormatPCM16 Format = "pcm16" // raw little-endian 16-bit samples
	FormatWAV   Format = "wav"
	FormatMP3   Format = "mp3"
)

// Clip is one piece of audio handed to a conversion. It is owned by that
// conversion and discarded afterwards.
type Clip struct {
	Name       string
	Format     Format
	Data       []byte
	SampleRate int // only meaningful for FormatPCM16
	Channels   int // only meaningful for FormatPCM16
}

// Source supplies the audio for one conversion.
type Source interface {
	Acquire(ctx context.Context) (*Clip, error)
	Kind() string // "upload" or "capture"
}

// DetectFormat identifies WAV or MP3 data by its magic bytes, falling back to
// the filename extension. Returns "" when neither matches.
func DetectFormat(name string, data []byte) Format {
	switch {
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return FormatWAV
	case len(data) >= 3 && bytes.Equal(data[0:3], []byte("ID3")):
		return FormatMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return FormatMP3
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav", ".wave":
		return FormatWAV
	case ".mp3":
		return FormatMP3
	}
	return ""
}
