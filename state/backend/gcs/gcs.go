// Package gcs implements state.Backend against Google Cloud Storage, the
// "gs://" scheme of spec.md §6, credentialed by a service-account file
// (GOOGLE_APPLICATION_CREDENTIALS) or the default application-credentials
// lookup cloud.google.com/go/storage performs when no option is given.
package gcs

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"

	elxstate "github.com/harness/elx/state"
)

// Backend is a state.Backend rooted at a bucket and object-name prefix.
type Backend struct {
	bucket *storage.BucketHandle
	prefix string
}

// New builds a Backend for "gs://bucket/prefix" using the ambient Google
// application-default credentials.
func New(ctx context.Context, bucket, prefix string) (*Backend, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "create gcs client")
	}
	return &Backend{bucket: client.Bucket(bucket), prefix: prefix}, nil
}

func (b *Backend) object(name string) string {
	if b.prefix == "" {
		return name
	}
	return b.prefix + "/" + name
}

func (b *Backend) Read(ctx context.Context, name string) ([]byte, error) {
	r, err := b.bucket.Object(b.object(name)).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, elxstate.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (b *Backend) Write(ctx context.Context, name string, data []byte) error {
	w := b.bucket.Object(b.object(name)).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		w.Close() //nolint:errcheck
		return err
	}
	return w.Close()
}
