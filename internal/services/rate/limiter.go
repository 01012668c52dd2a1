package rate

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const verifyWindow = time.Minute

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// Limiter caps payment verification attempts per client per minute.
type Limiter struct {
	store     WindowStore
	perMinute int
}

func NewLimiter(store WindowStore, perMinute int) *Limiter {
	if perMinute < 0 {
		perMinute = 0
	}
	return &Limiter{store: store, perMinute: perMinute}
}

// AllowVerify returns the retry-after seconds when the caller is over the limit.
// A zero limit disables limiting.
func (l *Limiter) AllowVerify(ctx context.Context, clientKey string) (int64, bool, error) {
	clientKey = strings.TrimSpace(clientKey)
	if clientKey == "" {
		return 0, false, fmt.Errorf("client key is required")
	}
	if l.perMinute == 0 {
		return 0, true, nil
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	count, ttl, err := l.store.IncrementWindow(ctx, verifyKey(clientKey), verifyWindow)
	if err != nil {
		return 0, false, err
	}
	if count > int64(l.perMinute) {
		return ceilSeconds(ttl), false, nil
	}
	return 0, true, nil
}

func verifyKey(clientKey string) string {
	return "rate:verify:min:" + clientKey
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 1
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	return sec
}
