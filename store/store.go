// Package store abstracts the remote object stores files are uploaded
// to. Exactly three remote operations are used: bucket existence check,
// bucket creation and object upload; the first two are folded into
// EnsureBucket.
package store

import (
	"context"
	"fmt"
	"io"

	"bucketdrop/config"
)

// ObjectStore is the write-side contract every backend implements.
type ObjectStore interface {
	// EnsureBucket checks that the named bucket exists, creating it when
	// absent. created reports whether a create call was issued.
	EnsureBucket(ctx context.Context, name string) (created bool, err error)

	// Put streams the content from r into bucket under key. size is the
	// content length (-1 if unknown), contentType the MIME type.
	Put(ctx context.Context, bucket, key, contentType string, r io.Reader, size int64) error

	Close() error
}

// BucketError wraps a failed existence check or create call. The whole
// upload operation aborts on it; no items are processed afterwards.
type BucketError struct {
	Bucket string
	Err    error
}

func (e *BucketError) Error() string {
	return fmt.Sprintf("bucket %q: %v", e.Bucket, e.Err)
}

func (e *BucketError) Unwrap() error { return e.Err }

// Open constructs the backend selected by configuration. Every backend
// draws its credentials from the secrets store.
func Open(ctx context.Context, cfg *config.Config) (ObjectStore, error) {
	switch cfg.Backend {
	case "gcs":
		return OpenGCS(ctx)
	case "s3":
		return OpenS3(ctx)
	case "sftp":
		return OpenSFTP(ctx)
	case "local":
		return OpenLocal(cfg.LocalDir)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}
