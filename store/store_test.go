package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bucketdrop/config"
)

func TestLocalEnsureBucket(t *testing.T) {
	st, err := OpenLocal(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open local store: %v", err)
	}
	defer st.Close()

	created, err := st.EnsureBucket(context.Background(), "photos")
	if err != nil {
		t.Fatalf("Failed to ensure bucket: %v", err)
	}
	if !created {
		t.Error("Expected first EnsureBucket to create the bucket")
	}

	created, err = st.EnsureBucket(context.Background(), "photos")
	if err != nil {
		t.Fatalf("Failed to re-ensure bucket: %v", err)
	}
	if created {
		t.Error("Expected second EnsureBucket to report existing bucket")
	}
}

func TestLocalEnsureBucketInvalidName(t *testing.T) {
	st, err := OpenLocal(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open local store: %v", err)
	}
	defer st.Close()

	for _, name := range []string{"", "a/b", `a\b`} {
		if _, err := st.EnsureBucket(context.Background(), name); err == nil {
			t.Errorf("Expected error for bucket name %q", name)
		}
	}
}

func TestLocalPut(t *testing.T) {
	root := t.TempDir()
	st, err := OpenLocal(root)
	if err != nil {
		t.Fatalf("Failed to open local store: %v", err)
	}
	defer st.Close()

	if _, err := st.EnsureBucket(context.Background(), "b"); err != nil {
		t.Fatalf("Failed to ensure bucket: %v", err)
	}

	content := "object content"
	err = st.Put(context.Background(), "b", "docs/sub/f.txt", "text/plain", strings.NewReader(content), int64(len(content)))
	if err != nil {
		t.Fatalf("Failed to put object: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "b", "docs", "sub", "f.txt"))
	if err != nil {
		t.Fatalf("Failed to read written object: %v", err)
	}
	if string(data) != content {
		t.Errorf("Expected %q, got %q", content, data)
	}
}

func TestLocalPutRejectsEscapingKey(t *testing.T) {
	st, err := OpenLocal(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open local store: %v", err)
	}
	defer st.Close()

	err = st.Put(context.Background(), "b", "../escape.txt", "text/plain", strings.NewReader("x"), 1)
	if err == nil {
		t.Error("Expected error for key escaping the bucket directory")
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	cfg := &config.Config{Backend: "carrier-pigeon"}
	if _, err := Open(context.Background(), cfg); err == nil {
		t.Error("Expected error for unknown backend")
	}
}

func TestOpenLocalBackend(t *testing.T) {
	cfg := &config.Config{Backend: "local", LocalDir: t.TempDir()}
	st, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to open local backend: %v", err)
	}
	st.Close()
}

func TestBucketErrorUnwrap(t *testing.T) {
	inner := fmt.Errorf("connection refused")
	err := &BucketError{Bucket: "b", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("Expected BucketError to unwrap to the inner error")
	}
	msg := err.Error()
	if !strings.Contains(msg, `"b"`) || !strings.Contains(msg, "connection refused") {
		t.Errorf("Unexpected error message %q", msg)
	}
}

func TestDetectContentType(t *testing.T) {
	dir := t.TempDir()

	pngPath := filepath.Join(dir, "pic.png")
	pngHeader := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}
	if err := os.WriteFile(pngPath, pngHeader, 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	if got := DetectContentType(pngPath); got != "image/png" {
		t.Errorf("Expected image/png, got %q", got)
	}

	txtPath := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txtPath, []byte("plain text content"), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	if got := DetectContentType(txtPath); !strings.HasPrefix(got, "text/plain") {
		t.Errorf("Expected text/plain, got %q", got)
	}
}

func TestDetectContentTypeMissingFile(t *testing.T) {
	got := DetectContentType(filepath.Join(t.TempDir(), "gone.csv"))
	if got == "" {
		t.Error("Expected a non-empty fallback content type")
	}
}
