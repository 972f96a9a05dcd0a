// Package archive stores copies of finished renders outside the working
// output directory. The output directory itself stays authoritative for
// result delivery; archival is retention plumbing with pluggable backends.
package archive

import (
	"context"
	"io"
)

type PutInput struct {
	Key         string
	ContentType string
	Reader      io.Reader
	Size        int64
}

type PutOutput struct {
	// Key is backend-specific: the same key for localfs, the file ID for
	// gdrive.
	Key  string
	Size int64
}

// Provider is the archive backend contract (localfs, gdrive).
type Provider interface {
	Name() string

	Put(ctx context.Context, in PutInput) (PutOutput, error)
	Get(ctx context.Context, key string) (rc io.ReadCloser, contentType string, size int64, err error)
	Delete(ctx context.Context, key string) error
}
