// Package storage publishes generated artifacts (sitemaps) to Cloud Storage or the local filesystem.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBucketRequired is returned when a GCS location has no bucket.
	ErrBucketRequired = errors.New("bucket is required")
	// ErrKeyRequired is returned for an empty object key.
	ErrKeyRequired = errors.New("object key is required")
)

// ObjectLocation describes where a published object lives.
type ObjectLocation struct {
	// Bucket is empty for local objects.
	Bucket   string
	FullPath string
}

// String renders gs://bucket/path for bucket objects and the plain path otherwise.
func (l ObjectLocation) String() string {
	if l.Bucket == "" {
		return l.FullPath
	}
	return "gs://" + l.Bucket + "/" + l.FullPath
}

// Object is a payload ready to be published.
type Object struct {
	Key          string
	ContentType  string
	CacheControl string
	Data         []byte
}

// Publisher writes objects to a backing store.
type Publisher interface {
	Publish(ctx context.Context, obj Object) (ObjectLocation, error)
}

// ResolveObjectLocation joins prefix and a logical key into a bucket/path pair.
// The prefix may omit its trailing slash; a leading slash on key is dropped.
func ResolveObjectLocation(bucket, prefix, key string) (ObjectLocation, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return ObjectLocation{}, ErrBucketRequired
	}
	fullPath, err := joinKey(prefix, key)
	if err != nil {
		return ObjectLocation{}, err
	}
	return ObjectLocation{Bucket: bucket, FullPath: fullPath}, nil
}

func joinKey(prefix, key string) (string, error) {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" {
		return "", ErrKeyRequired
	}
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("object key %q must not contain '..'", key)
	}

	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return key, nil
	}
	return prefix + "/" + key, nil
}
