package media

import (
	"errors"
	"fmt"
)

var (
	ErrValidation           = errors.New("validation error")
	ErrStorageNotConfigured = errors.New("object storage not configured")
)

type ErrorKind string

const (
	KindAccessDenied ErrorKind = "access_denied"
	KindNotFound     ErrorKind = "not_found"
	KindUnknown      ErrorKind = "unknown"
)

// SignError is a failed signing attempt for a resolved key.
type SignError struct {
	Kind ErrorKind
	Key  string
	Err  error
}

func (e *SignError) Error() string {
	return fmt.Sprintf("sign %q: %s: %v", e.Key, e.Kind, e.Err)
}

func (e *SignError) Unwrap() error { return e.Err }

// Message is the caller-facing explanation, with remediation where one exists.
func (e *SignError) Message() string {
	switch e.Kind {
	case KindAccessDenied:
		return "Access denied reading the object. Grant s3:GetObject on the bucket to the signing IAM user, " +
			"and kms:Decrypt on the bucket's KMS key if objects are SSE-KMS encrypted."
	case KindNotFound:
		return fmt.Sprintf("Object %q does not exist in the bucket.", e.Key)
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "Failed to sign object URL."
	}
}
