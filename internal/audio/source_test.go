package audio

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceFrames struct {
	frames [][]byte
	err    error
}

func (s *sliceFrames) ReadFrame() ([]byte, error) {
	if len(s.frames) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	f := s.frames[0]
	s.frames = s.frames[1:]
	return f, nil
}

func TestCaptureSource_StopsAtDuration(t *testing.T) {
	// 1s at 4 Hz = 4 samples = 8 bytes; frames supply 12 bytes.
	frames := &sliceFrames{frames: [][]byte{pcmOf(1, 2), pcmOf(3, 4), pcmOf(5, 6)}}
	src := NewCaptureSource(frames, time.Second, 4)

	clip, err := src.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, FormatPCM16, clip.Format)
	assert.Equal(t, 4, clip.SampleRate)
	assert.Equal(t, 1, clip.Channels)
	assert.Equal(t, pcmOf(1, 2, 3, 4), clip.Data)
	assert.Len(t, frames.frames, 1, "frames past the duration should not be read")
}

func TestCaptureSource_EarlyEOF(t *testing.T) {
	frames := &sliceFrames{frames: [][]byte{pcmOf(7, 8), {0x01}}}
	clip, err := NewCaptureSource(frames, 5*time.Second, 16000).Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pcmOf(7, 8), clip.Data, "odd trailing byte is dropped")
}

func TestCaptureSource_Empty(t *testing.T) {
	_, err := NewCaptureSource(&sliceFrames{}, time.Second, 16000).Acquire(context.Background())
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestCaptureSource_ReadError(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := NewCaptureSource(&sliceFrames{err: boom}, time.Second, 16000).Acquire(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestCaptureSource_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewCaptureSource(&sliceFrames{frames: [][]byte{pcmOf(1)}}, time.Second, 16000).Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUploadSource(t *testing.T) {
	_, err := NewUploadSource("a.wav", nil).Acquire(context.Background())
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = NewUploadSource("a.ogg", []byte("OggS....")).Acquire(context.Background())
	assert.ErrorIs(t, err, ErrUnsupported)

	clip, err := NewUploadSource("a.bin", EncodeWAV(pcmOf(1, 2), 16000, 1)).Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, FormatWAV, clip.Format)
	assert.Equal(t, "upload", NewUploadSource("", nil).Kind())
}

func TestNormalize_PCM(t *testing.T) {
	dir := t.TempDir()
	clip := &Clip{Format: FormatPCM16, Data: pcmOf(100, -100, 100, -100), SampleRate: 16000, Channels: 1}

	n, err := Normalize(context.Background(), clip, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(n.Path)
	require.NoError(t, err)
	info, err := DecodeWAV(data)
	require.NoError(t, err)
	assert.Equal(t, clip.Data, info.Data)
	assert.Equal(t, []int16{100, -100, 100, -100}, n.Samples)
	assert.InDelta(t, 4.0/16000, n.Duration(), 1e-12)

	require.NoError(t, n.Close())
	require.NoError(t, n.Close())
	_, err = os.Stat(n.Path)
	assert.True(t, os.IsNotExist(err), "temp wav should be removed")
}

func TestNormalize_WAVRewrapped(t *testing.T) {
	dir := t.TempDir()
	clip := &Clip{Format: FormatWAV, Data: EncodeWAV(pcmOf(1, 2, 3), 22050, 1)}

	n, err := Normalize(context.Background(), clip, dir)
	require.NoError(t, err)
	defer n.Close()
	assert.Equal(t, 22050, n.SampleRate)
	assert.Equal(t, []int16{1, 2, 3}, n.Samples)
}

func TestNormalize_Invalid(t *testing.T) {
	dir := t.TempDir()

	_, err := Normalize(context.Background(), &Clip{Format: FormatWAV}, dir)
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Normalize(context.Background(), &Clip{Format: FormatWAV, Data: []byte("garbage")}, dir)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Normalize(context.Background(), &Clip{Format: FormatPCM16, Data: pcmOf(1)}, dir)
	assert.ErrorIs(t, err, ErrInvalid)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no temp files should be left behind")
}
