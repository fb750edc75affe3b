package storage

import (
	"context"
	"io"
)

// ObjectStorage stores immutable blobs under a key and returns the public
// URL they are served from.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, contentType string, body io.Reader) (string, error)
}
