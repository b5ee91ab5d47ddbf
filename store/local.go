package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// localStore writes into a directory tree on the local filesystem:
// buckets are subdirectories of the root, objects files beneath them.
// Useful for development and as the integration target in tests.
type localStore struct {
	root string
}

// OpenLocal returns a store rooted at the given directory, creating it
// if needed.
func OpenLocal(root string) (ObjectStore, error) {
	if root == "" {
		return nil, fmt.Errorf("local backend needs a root directory")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root directory: %w", err)
	}
	return &localStore{root: root}, nil
}

func (s *localStore) EnsureBucket(ctx context.Context, name string) (bool, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return false, &BucketError{Bucket: name, Err: fmt.Errorf("invalid bucket name")}
	}
	dir := filepath.Join(s.root, name)
	if info, err := os.Stat(dir); err == nil {
		if !info.IsDir() {
			return false, &BucketError{Bucket: name, Err: fmt.Errorf("%s exists and is not a directory", dir)}
		}
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, &BucketError{Bucket: name, Err: err}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, &BucketError{Bucket: name, Err: err}
	}
	return true, nil
}

func (s *localStore) Put(ctx context.Context, bucket, key, contentType string, r io.Reader, size int64) error {
	rel := filepath.FromSlash(key)
	if !filepath.IsLocal(rel) {
		return fmt.Errorf("invalid object key %q", key)
	}
	fullPath := filepath.Join(s.root, bucket, rel)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", fullPath, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, r); err != nil {
		return fmt.Errorf("failed to write to file %s: %w", fullPath, err)
	}
	return nil
}

func (s *localStore) Close() error { return nil }
