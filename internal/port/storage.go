package port

import (
	"context"
	"io"
)

// UploadInput carries the data needed to store an object.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
}

// ObjectStorage abstracts the external file store. Signed-download-URL
// issuance is what the analyzer consumes; the engine itself never reads
// file contents.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) error
	Delete(ctx context.Context, bucket, key string) error
	GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error)
}
