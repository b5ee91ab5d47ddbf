// Package upload runs the per-item pipeline: materialize each uploaded
// item into scoped temp storage, expand zip archives, and stream every
// resulting file to the object store under its derived key.
package upload

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"bucketdrop/logger"
	"bucketdrop/store"
)

// Item is one uploaded file: a name and its byte content. Ephemeral,
// scoped to a single upload operation.
type Item struct {
	Name   string
	Size   int64
	Reader io.Reader
}

// Reporter receives the line-by-line status surface of an operation.
type Reporter interface {
	Infof(format string, v ...interface{})
	Successf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

// Summary aggregates the outcome of one batch.
type Summary struct {
	Uploaded int
	Failed   int
}

func (s *Summary) add(other Summary) {
	s.Uploaded += other.Uploaded
	s.Failed += other.Failed
}

// UploadAll processes items in order, strictly sequentially. Zip items
// are expanded and every extracted file uploaded under
// destFolder/<archive basename>/<relative path>; other items upload
// directly under destFolder. Failures are reported and skipped: an
// extraction failure drops its item, an upload failure drops that one
// object, and the batch always runs to completion.
func UploadAll(ctx context.Context, st store.ObjectStore, bucket, destFolder string, items []Item, rep Reporter) Summary {
	var sum Summary
	for i := range items {
		if ctx.Err() != nil {
			rep.Errorf("upload aborted: %v", ctx.Err())
			break
		}
		item := &items[i]
		if isZip(item.Name) {
			sum.add(uploadZipItem(ctx, st, bucket, destFolder, item, rep))
		} else {
			sum.add(uploadFileItem(ctx, st, bucket, destFolder, item, rep))
		}
	}
	return sum
}

func isZip(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".zip")
}

// uploadZipItem materializes the archive in a scoped temp directory,
// extracts it there and uploads every extracted file. The directory is
// removed on every exit path.
func uploadZipItem(ctx context.Context, st store.ObjectStore, bucket, destFolder string, item *Item, rep Reporter) Summary {
	var sum Summary

	filename := filepath.Base(item.Name)

	tmpDir, err := os.MkdirTemp("", "bucketdrop-zip-")
	if err != nil {
		rep.Errorf("%v", &ArchiveError{Item: filename, Err: err})
		sum.Failed++
		return sum
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			logger.Errorf("Failed to cleanup temp directory %s: %v", tmpDir, err)
		}
	}()

	zipPath := filepath.Join(tmpDir, filename)
	if err := saveToFile(zipPath, item.Reader); err != nil {
		rep.Errorf("%v", &ArchiveError{Item: filename, Err: err})
		sum.Failed++
		return sum
	}

	extractDir := filepath.Join(tmpDir, "extracted")
	if err := extractZip(zipPath, extractDir); err != nil {
		rep.Errorf("%v", &ArchiveError{Item: filename, Err: err})
		sum.Failed++
		return sum
	}

	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	walkErr := filepath.WalkDir(extractDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rel, err := filepath.Rel(extractDir, p)
		if err != nil {
			return err
		}
		key := objectKey(destFolder, base, filepath.ToSlash(rel))
		if err := putFile(ctx, st, bucket, key, p); err != nil {
			rep.Errorf("%v", &TransferError{Key: key, Err: err})
			sum.Failed++
			return nil
		}
		rep.Successf("Uploaded '%s' to bucket '%s'", key, bucket)
		sum.Uploaded++
		return nil
	})
	if walkErr != nil {
		rep.Errorf("%v", &ArchiveError{Item: filename, Err: walkErr})
		sum.Failed++
	}

	return sum
}

// uploadFileItem materializes a single non-archive item into a temp file
// and uploads it under destFolder. The temp file is removed afterward.
func uploadFileItem(ctx context.Context, st store.ObjectStore, bucket, destFolder string, item *Item, rep Reporter) Summary {
	var sum Summary

	filename := filepath.Base(item.Name)
	key := objectKey(destFolder, filename)

	tmpFile, err := os.CreateTemp("", "bucketdrop-")
	if err != nil {
		rep.Errorf("%v", &TransferError{Key: key, Err: err})
		sum.Failed++
		return sum
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if err := os.Remove(tmpPath); err != nil {
			logger.Errorf("Failed to cleanup temp file %s: %v", tmpPath, err)
		}
	}()

	_, copyErr := io.Copy(tmpFile, item.Reader)
	closeErr := tmpFile.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		rep.Errorf("%v", &TransferError{Key: key, Err: copyErr})
		sum.Failed++
		return sum
	}

	if err := putFile(ctx, st, bucket, key, tmpPath); err != nil {
		rep.Errorf("%v", &TransferError{Key: key, Err: err})
		sum.Failed++
		return sum
	}
	rep.Successf("Uploaded '%s' to bucket '%s'", key, bucket)
	sum.Uploaded++
	return sum
}

// putFile uploads the file at localPath to bucket under key.
func putFile(ctx context.Context, st store.ObjectStore, bucket, key, localPath string) error {
	info, err := os.Stat(localPath)
	if err != nil {
		return err
	}
	contentType := store.DetectContentType(localPath)

	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	return st.Put(ctx, bucket, key, contentType, f, info.Size())
}

// saveToFile writes the reader's content to path.
func saveToFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	_, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil {
		return copyErr
	}
	return closeErr
}

// objectKey joins key segments with forward slashes, dropping empty
// segments so an empty destination folder never produces a leading
// separator. A leading slash in the destination folder is stripped.
func objectKey(segments ...string) string {
	return strings.TrimPrefix(path.Join(segments...), "/")
}
