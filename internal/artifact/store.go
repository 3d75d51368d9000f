// Package artifact persists produced audio and text so it can be downloaded
// after the conversion response has been sent.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/snarg/voxconvert/internal/config"
)

// ErrInvalidKey is returned for IDs or filenames that cannot name an artifact.
var ErrInvalidKey = errors.New("invalid artifact key")

// Store abstracts artifact storage backends.
type Store interface {
	// Save stores data. key format: {uuid}/{filename}
	Save(ctx context.Context, key string, data []byte, contentType string) error

	// URL returns a presigned download URL.
	// Returns "" for local-only backends.
	URL(ctx context.Context, key string) (string, error)

	// Open returns a reader for the artifact.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists checks if an artifact exists.
	Exists(ctx context.Context, key string) bool

	// Type returns "local", "s3", or "minio".
	Type() string
}

// BackgroundService is a stoppable background goroutine.
type BackgroundService interface {
	Start()
	Stop()
}

// New creates a Store based on config. Returns the store and optional
// background services (pruner) that the caller must Start/Stop. Object-store
// backends are checked for bucket access before returning.
func New(cfg *config.Config, log zerolog.Logger) (Store, []BackgroundService, error) {
	switch cfg.ArtifactStore {
	case "s3":
		s3store, err := NewS3Store(cfg.S3, log)
		if err != nil {
			return nil, nil, fmt.Errorf("S3 init failed: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s3store.HeadBucket(ctx); err != nil {
			return nil, nil, fmt.Errorf("S3 startup check failed (bucket=%q endpoint=%q): %w",
				cfg.S3.Bucket, cfg.S3.Endpoint, err)
		}
		log.Info().Str("bucket", cfg.S3.Bucket).Str("endpoint", cfg.S3.Endpoint).Msg("S3 connection verified")
		return s3store, nil, nil

	case "minio":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mstore, err := NewMinioStore(ctx, cfg.S3, log)
		if err != nil {
			return nil, nil, fmt.Errorf("minio init failed: %w", err)
		}
		log.Info().Str("bucket", cfg.S3.Bucket).Str("endpoint", cfg.S3.Endpoint).Msg("minio connection verified")
		return mstore, nil, nil
	}

	local := NewLocalStore(cfg.ArtifactDir)
	var services []BackgroundService
	if cfg.ArtifactRetention > 0 {
		services = append(services, NewPruner(cfg.ArtifactDir, cfg.ArtifactRetention, log))
	}
	return local, services, nil
}

// NewID returns a fresh artifact ID.
func NewID() string {
	return uuid.NewString()
}

// Key validates an artifact ID and filename and joins them into a store key.
// IDs must be UUIDs and filenames must be a single path element.
func Key(id, filename string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%w: id %q", ErrInvalidKey, id)
	}
	if filename == "" || filename == "." || filename == ".." ||
		strings.ContainsAny(filename, `/\`) || path.Base(filename) != filename {
		return "", fmt.Errorf("%w: filename %q", ErrInvalidKey, filename)
	}
	return id + "/" + filename, nil
}

// ContentType returns the MIME type for an artifact filename.
func ContentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".mp3":
		return "audio/mp3"
	case ".wav":
		return "audio/wav"
	case ".txt":
		return "text/plain"
	}
	return "application/octet-stream"
}
