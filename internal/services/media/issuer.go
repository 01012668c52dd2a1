package media

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

const signedURLTTL = 3600 * time.Second

// ObjectSigner issues presigned reads against one bucket.
type ObjectSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	// Stat returns an error when the object is missing or unreadable.
	Stat(ctx context.Context, key string) error
}

type SignedURL struct {
	URL       string     `json:"url"`
	Key       string     `json:"key,omitempty"`
	Signed    bool       `json:"signed"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type IssuerOptions struct {
	Bucket string
	// CheckObjects stats the key before signing.
	CheckObjects bool
	Classify     func(error) ErrorKind
}

// Issuer turns object locators into short-lived signed URLs. A nil signer is
// the unconfigured state: every locator passes through unchanged.
type Issuer struct {
	signer       ObjectSigner
	bucket       string
	checkObjects bool
	classify     func(error) ErrorKind
	log          *zap.Logger
	now          func() time.Time
}

func NewIssuer(signer ObjectSigner, opts IssuerOptions, log *zap.Logger) *Issuer {
	if log == nil {
		log = zap.NewNop()
	}
	classify := opts.Classify
	if classify == nil {
		classify = func(error) ErrorKind { return KindUnknown }
	}
	return &Issuer{
		signer:       signer,
		bucket:       strings.TrimSpace(opts.Bucket),
		checkObjects: opts.CheckObjects,
		classify:     classify,
		log:          log,
		now:          time.Now,
	}
}

func (i *Issuer) Configured() bool {
	return i != nil && i.signer != nil
}

// Sign never loses the caller's locator: on passthrough and on failure the
// returned URL is the original locator so the page can still render something.
func (i *Issuer) Sign(ctx context.Context, locator string) (SignedURL, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return SignedURL{}, ErrValidation
	}

	fallback := SignedURL{URL: locator}

	if !i.Configured() {
		i.log.Warn("object storage credentials not configured, returning unsigned locator",
			zap.String("kind", "configuration"),
		)
		return fallback, nil
	}

	key := ObjectKey(locator, i.bucket)
	if key == "" {
		return fallback, ErrValidation
	}
	fallback.Key = key

	if i.checkObjects {
		if err := i.signer.Stat(ctx, key); err != nil {
			return fallback, i.fail(key, err)
		}
	}

	signed, err := i.signer.PresignGet(ctx, key, signedURLTTL)
	if err != nil {
		return fallback, i.fail(key, err)
	}

	expires := i.now().Add(signedURLTTL).UTC()
	return SignedURL{
		URL:       signed,
		Key:       key,
		Signed:    true,
		ExpiresAt: &expires,
	}, nil
}

func (i *Issuer) fail(key string, err error) error {
	signErr := &SignError{Kind: i.classify(err), Key: key, Err: err}
	i.log.Error("sign object url failed",
		zap.String("key", key),
		zap.String("error_kind", string(signErr.Kind)),
		zap.Error(err),
	)
	return signErr
}
