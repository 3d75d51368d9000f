package artifact

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
	"github.com/snarg/voxconvert/internal/config"
)

// MinioStore stores artifacts through the MinIO client.
type MinioStore struct {
	client        *minio.Client
	bucket        string
	prefix        string
	presignExpiry time.Duration
	log           zerolog.Logger
}

// NewMinioStore connects to cfg.Endpoint and verifies the bucket exists.
func NewMinioStore(ctx context.Context, cfg config.S3Config, log zerolog.Logger) (*MinioStore, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", cfg.Bucket)
	}

	return &MinioStore{
		client:        client,
		bucket:        cfg.Bucket,
		prefix:        cfg.Prefix,
		presignExpiry: cfg.PresignExpiry,
		log:           log.With().Str("component", "minio-store").Logger(),
	}, nil
}

func (s *MinioStore) Save(ctx context.Context, key string, data []byte, contentType string) error {
	objKey := objectKey(s.prefix, key)
	_, err := s.client.PutObject(ctx, s.bucket, objKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"created-at": time.Now().UTC().Format(time.RFC3339)},
	})
	if err != nil {
		return fmt.Errorf("minio put %s: %w", objKey, err)
	}
	return nil
}

func (s *MinioStore) URL(ctx context.Context, key string) (string, error) {
	objKey := objectKey(s.prefix, key)
	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", key[strings.LastIndex(key, "/")+1:]))
	u, err := s.client.PresignedGetObject(ctx, s.bucket, objKey, s.presignExpiry, params)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (s *MinioStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectKey(s.prefix, key), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (s *MinioStore) Exists(ctx context.Context, key string) bool {
	_, err := s.client.StatObject(ctx, s.bucket, objectKey(s.prefix, key), minio.StatObjectOptions{})
	return err == nil
}

func (s *MinioStore) Type() string { return "minio" }
