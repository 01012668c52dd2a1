package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ObjectWriter stores objects in the bucket the issuer signs for.
type ObjectWriter interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
}

var folderPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)

type Uploader struct {
	writer ObjectWriter
}

func NewUploader(writer ObjectWriter) *Uploader {
	return &Uploader{writer: writer}
}

func (u *Uploader) Configured() bool {
	return u != nil && u.writer != nil
}

// Upload writes body under "{folder}/{uuid}{ext}" and returns the key.
func (u *Uploader) Upload(ctx context.Context, folder, filename string, body io.Reader, size int64, contentType string) (string, error) {
	if !u.Configured() {
		return "", ErrStorageNotConfigured
	}
	folder = strings.ToLower(strings.TrimSpace(folder))
	if !folderPattern.MatchString(folder) {
		return "", fmt.Errorf("%w: invalid folder %q", ErrValidation, folder)
	}
	if body == nil || size <= 0 {
		return "", fmt.Errorf("%w: empty upload", ErrValidation)
	}

	ext := strings.ToLower(path.Ext(filename))
	key := folder + "/" + uuid.NewString() + ext

	if err := u.writer.Put(ctx, key, body, size, contentType); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return key, nil
}
