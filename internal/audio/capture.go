package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// FrameReader yields chunks of little-endian 16-bit mono PCM. It returns
// io.EOF when the sender stops early.
type FrameReader interface {
	ReadFrame() ([]byte, error)
}

// CaptureSource records live microphone audio streamed by the client for a
// bounded duration.
type CaptureSource struct {
	frames     FrameReader
	duration   time.Duration
	sampleRate int
}

// NewCaptureSource creates a capture of the given length. Frames past the
// requested duration are dropped.
func NewCaptureSource(frames FrameReader, duration time.Duration, sampleRate int) *CaptureSource {
	return &CaptureSource{frames: frames, duration: duration, sampleRate: sampleRate}
}

func (c *CaptureSource) Kind() string { return "capture" }

// Acquire reads frames until duration*sampleRate samples have arrived, the
// client ends the stream, or ctx is done.
func (c *CaptureSource) Acquire(ctx context.Context) (*Clip, error) {
	if c.sampleRate <= 0 || c.duration <= 0 {
		return nil, fmt.Errorf("%w: capture rate=%d duration=%s", ErrInvalid, c.sampleRate, c.duration)
	}
	want := int(c.duration.Seconds()*float64(c.sampleRate)) * 2
	pcm := make([]byte, 0, want)

	for len(pcm) < want {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frame, err := c.frames.ReadFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read capture frame: %w", err)
		}
		pcm = append(pcm, frame...)
	}

	if len(pcm) > want {
		pcm = pcm[:want]
	}
	pcm = pcm[:len(pcm)&^1]
	if len(pcm) == 0 {
		return nil, ErrEmpty
	}

	return &Clip{
		Name:       "capture.wav",
		Format:     FormatPCM16,
		Data:       pcm,
		SampleRate: c.sampleRate,
		Channels:   1,
	}, nil
}
