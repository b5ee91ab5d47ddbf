package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"bucketdrop/credentials"
	"bucketdrop/logger"
)

// gcsStore uploads to Google Cloud Storage using a service-account
// credential blob from the secrets store.
type gcsStore struct {
	client    *storage.Client
	projectID string
}

// OpenGCS loads the service_account record and builds an authenticated
// storage client from it. A missing record fails here, before any
// network call; a malformed key fails at client construction.
func OpenGCS(ctx context.Context) (ObjectStore, error) {
	sa, err := credentials.LoadServiceAccount()
	if err != nil {
		return nil, err
	}

	credentialsJSON, err := sa.JSON()
	if err != nil {
		return nil, fmt.Errorf("encode service account: %w", err)
	}

	client, err := storage.NewClient(ctx, option.WithCredentialsJSON(credentialsJSON))
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}

	return &gcsStore{client: client, projectID: sa.ProjectID}, nil
}

func (s *gcsStore) EnsureBucket(ctx context.Context, name string) (bool, error) {
	bucket := s.client.Bucket(name)

	_, err := bucket.Attrs(ctx)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, storage.ErrBucketNotExist) {
		return false, &BucketError{Bucket: name, Err: err}
	}

	if err := bucket.Create(ctx, s.projectID, nil); err != nil {
		return false, &BucketError{Bucket: name, Err: err}
	}
	logger.Infof("Created bucket '%s' in project '%s'", name, s.projectID)
	return true, nil
}

func (s *gcsStore) Put(ctx context.Context, bucket, key, contentType string, r io.Reader, size int64) error {
	wc := s.client.Bucket(bucket).Object(key).NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return fmt.Errorf("io.Copy: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("Writer.Close: %w", err)
	}
	return nil
}

func (s *gcsStore) Close() error {
	return s.client.Close()
}
