package domain

import (
	"context"
	"io"
)

// BlobWriter uploads data to object storage. Archival is best-effort; the
// engine's in-memory state never depends on it.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
	PutMultipart(ctx context.Context, path string, data io.Reader, partSize int64) error
}
