// Package objstore abstracts the bucket holding original image bytes.
// The store is the single source of truth for images: a miss is a
// genuine 404, and the gateway must never fall back to fetching its own
// public URL (that URL routes back through the gateway and would loop).
package objstore

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned for keys with no backing object. This is an
// expected outcome — keys may reference images never uploaded.
var ErrNotFound = errors.New("object not found")

// Object is a stored image with optional HTTP metadata.
type Object struct {
	Body          io.ReadCloser
	ContentType   string
	ETag          string
	ContentLength int64
}

// Store is a key-value view over the backing bucket.
type Store interface {
	Get(ctx context.Context, key string) (*Object, error)
}
