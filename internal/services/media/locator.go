package media

import (
	"net/url"
	"strings"
)

// keyStrategy resolves a locator to an object key, or reports false when the
// locator does not have the shape it understands.
type keyStrategy func(locator, bucket string) (string, bool)

// keyStrategies are tried in order; the first hit wins.
var keyStrategies = []keyStrategy{
	keyFromURLPath,
	keyFromBucketHost,
	keyFromBucketSubstring,
	keyVerbatim,
}

// ObjectKey resolves a locator (absolute URL, bucket-qualified string or bare
// key) to the storage key inside bucket.
func ObjectKey(locator, bucket string) string {
	locator = strings.TrimSpace(locator)
	for _, strategy := range keyStrategies {
		if key, ok := strategy(locator, bucket); ok {
			return stripQuery(key)
		}
	}
	return ""
}

func parseAbsolute(locator string) (*url.URL, bool) {
	u, err := url.Parse(locator)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, false
	}
	return u, true
}

func keyFromURLPath(locator, bucket string) (string, bool) {
	u, ok := parseAbsolute(locator)
	if !ok {
		return "", false
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", false
	}
	// path-style URL: https://s3.<region>.amazonaws.com/<bucket>/<key>
	if bucket != "" && !strings.Contains(u.Host, bucket) {
		if rest, found := strings.CutPrefix(key, bucket+"/"); found && rest != "" {
			key = rest
		}
	}
	return key, true
}

func keyFromBucketHost(locator, bucket string) (string, bool) {
	if bucket == "" {
		return "", false
	}
	u, ok := parseAbsolute(locator)
	if !ok || !strings.Contains(u.Host, bucket) {
		return "", false
	}
	return afterBucket(locator, bucket)
}

func keyFromBucketSubstring(locator, bucket string) (string, bool) {
	if bucket == "" {
		return "", false
	}
	if _, ok := parseAbsolute(locator); ok {
		return "", false
	}
	if !strings.Contains(locator, bucket) {
		return "", false
	}
	return afterBucket(locator, bucket)
}

func keyVerbatim(locator, _ string) (string, bool) {
	return locator, true
}

func afterBucket(s, bucket string) (string, bool) {
	_, rest, found := strings.Cut(s, bucket+"/")
	if !found || rest == "" {
		return "", false
	}
	return rest, true
}

func stripQuery(key string) string {
	if i := strings.IndexByte(key, '?'); i >= 0 {
		return key[:i]
	}
	return key
}
