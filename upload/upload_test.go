package upload

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
)

// fakeStore records every Put and can be told to fail specific keys.
type fakeStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	types    map[string]string
	failKeys map[string]bool
	creates  int
	existing map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects:  make(map[string][]byte),
		types:    make(map[string]string),
		failKeys: make(map[string]bool),
		existing: make(map[string]bool),
	}
}

func (f *fakeStore) EnsureBucket(ctx context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existing[name] {
		return false, nil
	}
	f.existing[name] = true
	f.creates++
	return true, nil
}

func (f *fakeStore) Put(ctx context.Context, bucket, key, contentType string, r io.Reader, size int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failKeys[key] {
		return fmt.Errorf("injected failure for %s", key)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[bucket+"/"+key] = data
	f.types[bucket+"/"+key] = contentType
	return nil
}

func (f *fakeStore) Close() error { return nil }

// recordReporter captures reported lines by kind.
type recordReporter struct {
	infos     []string
	successes []string
	errors    []string
}

func (r *recordReporter) Infof(format string, v ...interface{}) {
	r.infos = append(r.infos, fmt.Sprintf(format, v...))
}

func (r *recordReporter) Successf(format string, v ...interface{}) {
	r.successes = append(r.successes, fmt.Sprintf(format, v...))
}

func (r *recordReporter) Errorf(format string, v ...interface{}) {
	r.errors = append(r.errors, fmt.Sprintf(format, v...))
}

// makeZip builds an in-memory zip archive from a name -> content map.
func makeZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Failed to create zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip writer: %v", err)
	}
	return buf.Bytes()
}

func TestUploadPlainFile(t *testing.T) {
	st := newFakeStore()
	rep := &recordReporter{}

	content := "hello remote world"
	items := []Item{{Name: "notes.txt", Size: int64(len(content)), Reader: strings.NewReader(content)}}

	sum := UploadAll(context.Background(), st, "mybucket", "docs", items, rep)

	if sum.Uploaded != 1 || sum.Failed != 0 {
		t.Fatalf("Expected 1 uploaded, 0 failed, got %+v", sum)
	}
	got, ok := st.objects["mybucket/docs/notes.txt"]
	if !ok {
		t.Fatalf("Expected object at docs/notes.txt, have %v", keysOf(st.objects))
	}
	if string(got) != content {
		t.Errorf("Expected content %q, got %q", content, got)
	}
	if len(rep.successes) != 1 {
		t.Errorf("Expected 1 success line, got %d", len(rep.successes))
	}
}

func TestUploadEmptyDestFolder(t *testing.T) {
	st := newFakeStore()
	rep := &recordReporter{}

	items := []Item{{Name: "f.txt", Reader: strings.NewReader("x")}}
	UploadAll(context.Background(), st, "b", "", items, rep)

	if _, ok := st.objects["b/f.txt"]; !ok {
		t.Errorf("Expected key f.txt without leading separator, have %v", keysOf(st.objects))
	}
	for key := range st.objects {
		if strings.Contains(key, "//") {
			t.Errorf("Key %q contains doubled separator", key)
		}
	}
}

func TestUploadZipArchive(t *testing.T) {
	files := map[string]string{
		"readme.md":          "top level",
		"sub/data.csv":       "a,b,c",
		"sub/deep/notes.txt": "nested",
	}
	zipData := makeZip(t, files)

	st := newFakeStore()
	rep := &recordReporter{}

	items := []Item{{Name: "bundle.zip", Size: int64(len(zipData)), Reader: bytes.NewReader(zipData)}}
	sum := UploadAll(context.Background(), st, "b", "dest", items, rep)

	if sum.Uploaded != len(files) || sum.Failed != 0 {
		t.Fatalf("Expected %d uploaded, 0 failed, got %+v", len(files), sum)
	}
	for name, content := range files {
		key := "b/dest/bundle/" + name
		got, ok := st.objects[key]
		if !ok {
			t.Errorf("Expected object at %s, have %v", key, keysOf(st.objects))
			continue
		}
		if string(got) != content {
			t.Errorf("Object %s: expected %q, got %q", key, content, got)
		}
	}
}

func TestUploadZipWithoutDestFolder(t *testing.T) {
	zipData := makeZip(t, map[string]string{"a.txt": "a"})

	st := newFakeStore()
	rep := &recordReporter{}

	items := []Item{{Name: "archive.zip", Reader: bytes.NewReader(zipData)}}
	UploadAll(context.Background(), st, "b", "", items, rep)

	if _, ok := st.objects["b/archive/a.txt"]; !ok {
		t.Errorf("Expected key archive/a.txt, have %v", keysOf(st.objects))
	}
}

func TestCorruptZipContinuesWithNextItem(t *testing.T) {
	st := newFakeStore()
	rep := &recordReporter{}

	items := []Item{
		{Name: "corrupt.zip", Reader: strings.NewReader("this is not a zip archive")},
		{Name: "good.txt", Reader: strings.NewReader("still uploaded")},
	}
	sum := UploadAll(context.Background(), st, "b", "", items, rep)

	if sum.Uploaded != 1 {
		t.Errorf("Expected good.txt to upload despite corrupt.zip, got %+v", sum)
	}
	if sum.Failed != 1 {
		t.Errorf("Expected 1 failure for corrupt.zip, got %+v", sum)
	}
	if len(rep.errors) != 1 || !strings.Contains(rep.errors[0], "corrupt.zip") {
		t.Errorf("Expected one archive error naming corrupt.zip, got %v", rep.errors)
	}
	if got := string(st.objects["b/good.txt"]); got != "still uploaded" {
		t.Errorf("Expected good.txt content, got %q", got)
	}
	for key := range st.objects {
		if strings.Contains(key, "corrupt") {
			t.Errorf("Corrupt archive produced object %s", key)
		}
	}
}

func TestTransferFailureContinues(t *testing.T) {
	zipData := makeZip(t, map[string]string{
		"one.txt": "1",
		"two.txt": "2",
	})

	st := newFakeStore()
	st.failKeys["pack/one.txt"] = true
	rep := &recordReporter{}

	items := []Item{
		{Name: "pack.zip", Reader: bytes.NewReader(zipData)},
		{Name: "after.txt", Reader: strings.NewReader("after")},
	}
	sum := UploadAll(context.Background(), st, "b", "", items, rep)

	if sum.Uploaded != 2 {
		t.Errorf("Expected two.txt and after.txt to upload, got %+v", sum)
	}
	if sum.Failed != 1 {
		t.Errorf("Expected 1 failed transfer, got %+v", sum)
	}
	if len(rep.errors) != 1 || !strings.Contains(rep.errors[0], "pack/one.txt") {
		t.Errorf("Expected transfer error for pack/one.txt, got %v", rep.errors)
	}
	if _, ok := st.objects["b/after.txt"]; !ok {
		t.Errorf("Expected after.txt to upload after failed transfer")
	}
}

func TestZipSlipEntryRejected(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("../escape.txt")
	if err != nil {
		t.Fatalf("Failed to create zip entry: %v", err)
	}
	if _, err := w.Write([]byte("evil")); err != nil {
		t.Fatalf("Failed to write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip writer: %v", err)
	}

	st := newFakeStore()
	rep := &recordReporter{}

	items := []Item{{Name: "escape.zip", Reader: bytes.NewReader(buf.Bytes())}}
	sum := UploadAll(context.Background(), st, "b", "", items, rep)

	if sum.Uploaded != 0 {
		t.Errorf("Expected no uploads from escaping archive, got %+v", sum)
	}
	if len(rep.errors) != 1 {
		t.Errorf("Expected one archive error, got %v", rep.errors)
	}
	if len(st.objects) != 0 {
		t.Errorf("Expected no objects, have %v", keysOf(st.objects))
	}
}

func TestTempFilesCleanedUp(t *testing.T) {
	tmpRoot := t.TempDir()
	t.Setenv("TMPDIR", tmpRoot)

	zipData := makeZip(t, map[string]string{"a.txt": "a", "b/c.txt": "c"})
	st := newFakeStore()
	rep := &recordReporter{}

	items := []Item{
		{Name: "ok.zip", Reader: bytes.NewReader(zipData)},
		{Name: "plain.txt", Reader: strings.NewReader("plain")},
		{Name: "broken.zip", Reader: strings.NewReader("not a zip")},
	}
	UploadAll(context.Background(), st, "b", "d", items, rep)

	entries, err := os.ReadDir(tmpRoot)
	if err != nil {
		t.Fatalf("Failed to read temp root: %v", err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("Expected no leftover temp entries, found %v", names)
	}
}

func TestObjectKey(t *testing.T) {
	cases := []struct {
		segments []string
		expected string
	}{
		{[]string{"", "f.txt"}, "f.txt"},
		{[]string{"docs", "f.txt"}, "docs/f.txt"},
		{[]string{"docs", "bundle", "sub/f.txt"}, "docs/bundle/sub/f.txt"},
		{[]string{"/docs", "f.txt"}, "docs/f.txt"},
		{[]string{"docs/", "f.txt"}, "docs/f.txt"},
		{[]string{"", "", "f.txt"}, "f.txt"},
	}
	for _, c := range cases {
		if got := objectKey(c.segments...); got != c.expected {
			t.Errorf("objectKey(%v): expected %q, got %q", c.segments, c.expected, got)
		}
	}
}

func TestIsZip(t *testing.T) {
	cases := map[string]bool{
		"a.zip":     true,
		"a.ZIP":     true,
		"a.Zip":     true,
		"a.txt":     false,
		"zip":       false,
		"a.zip.txt": false,
	}
	for name, expected := range cases {
		if got := isZip(name); got != expected {
			t.Errorf("isZip(%q): expected %v, got %v", name, expected, got)
		}
	}
}

func keysOf(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
