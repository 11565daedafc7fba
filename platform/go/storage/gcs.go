package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
)

// GCSPublisher uploads objects under a bucket prefix.
type GCSPublisher struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSPublisher panics on a nil client, mirroring the other constructors that require collaborators.
func NewGCSPublisher(client *storage.Client, bucket, prefix string) *GCSPublisher {
	if client == nil {
		panic("storage client is required")
	}
	return &GCSPublisher{client: client, bucket: bucket, prefix: prefix}
}

func (p *GCSPublisher) Publish(ctx context.Context, obj Object) (ObjectLocation, error) {
	loc, err := ResolveObjectLocation(p.bucket, p.prefix, obj.Key)
	if err != nil {
		return ObjectLocation{}, err
	}

	w := p.client.Bucket(loc.Bucket).Object(loc.FullPath).NewWriter(ctx)
	w.ContentType = obj.ContentType
	w.CacheControl = obj.CacheControl

	if _, err := w.Write(obj.Data); err != nil {
		_ = w.Close()
		return ObjectLocation{}, fmt.Errorf("write %s: %w", loc, err)
	}
	if err := w.Close(); err != nil {
		return ObjectLocation{}, fmt.Errorf("finalize %s: %w", loc, err)
	}
	return loc, nil
}

var _ Publisher = (*GCSPublisher)(nil)
