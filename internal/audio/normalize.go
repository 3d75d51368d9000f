package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
)

// TargetSampleRate is the rate transcoded audio is resampled to.
const TargetSampleRate = 16000

var (
	ffmpegOnce  sync.Once
	ffmpegFound bool
)

// CheckFFmpeg reports whether ffmpeg is in PATH. The lookup runs once.
func CheckFFmpeg() bool {
	ffmpegOnce.Do(func() {
		_, err := exec.LookPath("ffmpeg")
		ffmpegFound = err == nil
	})
	return ffmpegFound
}

// Normalized is a clip written to a temporary 16-bit PCM WAV file.
// Close removes the file; it is safe to call more than once.
type Normalized struct {
	Path       string
	SampleRate int
	Channels   int
	Samples    []int16

	closeOnce sync.Once
}

// Duration returns the audio length in seconds.
func (n *Normalized) Duration() float64 {
	if n.SampleRate == 0 || n.Channels == 0 {
		return 0
	}
	return float64(len(n.Samples)) / float64(n.SampleRate*n.Channels)
}

func (n *Normalized) Close() error {
	var err error
	n.closeOnce.Do(func() {
		if rmErr := os.Remove(n.Path); rmErr != nil && !os.IsNotExist(rmErr) {
			err = rmErr
		}
	})
	return err
}

// Normalize writes the clip to a temporary WAV file in dir (os.TempDir when
// empty). Raw PCM and 16-bit WAV are re-wrapped directly; MP3 and other WAV
// encodings are transcoded with ffmpeg to 16 kHz mono. The caller must Close
// the result.
func Normalize(ctx context.Context, clip *Clip, dir string) (*Normalized, error) {
	if clip == nil || len(clip.Data) == 0 {
		return nil, ErrEmpty
	}

	switch clip.Format {
	case FormatPCM16:
		if clip.SampleRate <= 0 || clip.Channels <= 0 {
			return nil, fmt.Errorf("%w: pcm rate=%d channels=%d", ErrInvalid, clip.SampleRate, clip.Channels)
		}
		return writeWAV(dir, clip.Data, clip.SampleRate, clip.Channels)

	case FormatWAV:
		info, err := DecodeWAV(clip.Data)
		if err != nil {
			return nil, err
		}
		if info.IsPCM16() {
			return writeWAV(dir, info.Data, info.SampleRate, info.Channels)
		}
		return transcode(ctx, dir, clip.Data, ".wav")

	case FormatMP3:
		return transcode(ctx, dir, clip.Data, ".mp3")
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupported, clip.Format)
}

func writeWAV(dir string, pcm []byte, rate, channels int) (*Normalized, error) {
	f, err := os.CreateTemp(dir, "voxconvert-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create temp wav: %w", err)
	}
	path := f.Name()
	if _, err := f.Write(EncodeWAV(pcm, rate, channels)); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("write temp wav: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("close temp wav: %w", err)
	}
	return &Normalized{
		Path:       path,
		SampleRate: rate,
		Channels:   channels,
		Samples:    Samples(pcm),
	}, nil
}

// transcode runs ffmpeg to produce 16 kHz mono 16-bit WAV.
func transcode(ctx context.Context, dir string, data []byte, ext string) (*Normalized, error) {
	if !CheckFFmpeg() {
		return nil, ErrTranscoderUnavailable
	}

	in, err := os.CreateTemp(dir, "voxconvert-in-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("create temp input: %w", err)
	}
	inPath := in.Name()
	defer os.Remove(inPath)
	if _, err := in.Write(data); err != nil {
		in.Close()
		return nil, fmt.Errorf("write temp input: %w", err)
	}
	in.Close()

	out, err := os.CreateTemp(dir, "voxconvert-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create temp wav: %w", err)
	}
	outPath := out.Name()
	out.Close()

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", inPath,
		"-ac", "1",
		"-ar", fmt.Sprint(TargetSampleRate),
		"-sample_fmt", "s16",
		"-f", "wav",
		outPath,
	)
	if msg, err := cmd.CombinedOutput(); err != nil {
		os.Remove(outPath)
		return nil, fmt.Errorf("%w: ffmpeg: %v: %s", ErrInvalid, err, msg)
	}

	wav, err := os.ReadFile(outPath)
	if err != nil {
		os.Remove(outPath)
		return nil, fmt.Errorf("read transcoded wav: %w", err)
	}
	info, err := DecodeWAV(wav)
	if err != nil {
		os.Remove(outPath)
		return nil, err
	}
	return &Normalized{
		Path:       outPath,
		SampleRate: info.SampleRate,
		Channels:   info.Channels,
		Samples:    Samples(info.Data),
	}, nil
}
