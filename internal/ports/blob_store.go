package ports

import (
	"context"
	"io"
)

// BlobStore holds uploaded audio for the duration of a single request.
type BlobStore interface {
	// Create writes r under a unique name derived from filename and returns
	// that name together with the number of bytes written.
	Create(ctx context.Context, filename string, r io.Reader) (name string, size int64, err error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Remove(ctx context.Context, name string) error
}
