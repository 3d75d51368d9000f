package audio

import (
	"context"
	"fmt"
)

// UploadSource serves a file the user uploaded (WAV or MP3).
type UploadSource struct {
	Filename string
	Data     []byte
}

// NewUploadSource wraps uploaded file bytes.
func NewUploadSource(filename string, data []byte) *UploadSource {
	return &UploadSource{Filename: filename, Data: data}
}

func (u *UploadSource) Kind() string { return "upload" }

// Acquire returns the uploaded bytes with their detected format.
func (u *UploadSource) Acquire(ctx context.Context) (*Clip, error) {
	if len(u.Data) == 0 {
		return nil, ErrEmpty
	}
	format := DetectFormat(u.Filename, u.Data)
	if format == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, u.Filename)
	}
	return &Clip{
		Name:   u.Filename,
		Format: format,
		Data:   u.Data,
	}, nil
}
