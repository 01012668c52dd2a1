package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/encrypt"

	"academy-app/config"
	"academy-app/internal/services/media"
)

// Store signs, stats and writes objects in a single bucket.
type Store struct {
	client   *minio.Client
	bucket   string
	kmsKeyID string
}

func NewStore(cfg config.StorageConfig) (*Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	bucket := strings.TrimSpace(cfg.Bucket)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(cfg.AccessKey), strings.TrimSpace(cfg.SecretKey), ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	return &Store{client: client, bucket: bucket, kmsKeyID: strings.TrimSpace(cfg.KMSKeyID)}, nil
}

func (s *Store) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if s == nil || s.client == nil {
		return "", fmt.Errorf("s3 store is not initialized")
	}
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign get object: %w", err)
	}
	return presigned.String(), nil
}

func (s *Store) Stat(ctx context.Context, key string) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("s3 store is not initialized")
	}
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		return fmt.Errorf("stat object: %w", err)
	}
	return nil
}

// Put uploads with SSE-KMS when a key id is configured.
func (s *Store) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("s3 store is not initialized")
	}

	opts := minio.PutObjectOptions{ContentType: contentType}
	if s.kmsKeyID != "" {
		sse, err := encrypt.NewSSEKMS(s.kmsKeyID, nil)
		if err != nil {
			return fmt.Errorf("build sse-kms: %w", err)
		}
		opts.ServerSideEncryption = sse
	}

	if _, err := s.client.PutObject(ctx, s.bucket, key, body, size, opts); err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

// Classify maps storage errors onto media error kinds.
func Classify(err error) media.ErrorKind {
	var resp minio.ErrorResponse
	if !errors.As(err, &resp) {
		resp = minio.ToErrorResponse(err)
	}
	switch {
	case resp.Code == "AccessDenied" || resp.Code == "KMS.AccessDeniedException" || resp.StatusCode == http.StatusForbidden:
		return media.KindAccessDenied
	case resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" || resp.StatusCode == http.StatusNotFound:
		return media.KindNotFound
	default:
		return media.KindUnknown
	}
}
