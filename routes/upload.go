package routes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"bucketdrop/config"
	"bucketdrop/credentials"
	"bucketdrop/logger"
	"bucketdrop/store"
	"bucketdrop/upload"
	"bucketdrop/utils"
)

// openStore is swapped out in tests to inject a fake backend.
var openStore = func(ctx context.Context, cfg *config.Config) (store.ObjectStore, error) {
	return store.Open(ctx, cfg)
}

// lineReporter streams human-readable status lines to the client and
// mirrors them into the server log, tagged with the operation id.
type lineReporter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	opID    string
}

func newLineReporter(w http.ResponseWriter, opID string) *lineReporter {
	flusher, _ := w.(http.Flusher)
	return &lineReporter{w: w, flusher: flusher, opID: opID}
}

func (l *lineReporter) writeLine(prefix, format string, v []interface{}) {
	msg := fmt.Sprintf(format, v...)
	fmt.Fprintf(l.w, "%s %s\n", prefix, msg)
	if l.flusher != nil {
		l.flusher.Flush()
	}
}

func (l *lineReporter) Infof(format string, v ...interface{}) {
	l.writeLine("INFO:", format, v)
	logger.Infof("[op %s] "+format, append([]interface{}{l.opID}, v...)...)
}

func (l *lineReporter) Successf(format string, v ...interface{}) {
	l.writeLine("SUCCESS:", format, v)
	logger.Infof("[op %s] "+format, append([]interface{}{l.opID}, v...)...)
}

func (l *lineReporter) Errorf(format string, v ...interface{}) {
	l.writeLine("ERROR:", format, v)
	logger.Errorf("[op %s] "+format, append([]interface{}{l.opID}, v...)...)
}

// UploadHandler runs one upload operation: parse the multipart form,
// open the configured backend with credentials from the secrets store,
// ensure the bucket, then push every item through the pipeline while
// streaming status lines back.
func UploadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cfg := config.Load()

	if err := r.ParseMultipartForm(cfg.MaxUploadBytes()); err != nil {
		http.Error(w, "Failed to parse multipart form", http.StatusBadRequest)
		return
	}

	bucket := strings.TrimSpace(r.FormValue("bucket"))
	if bucket == "" {
		http.Error(w, "Please enter a bucket name", http.StatusBadRequest)
		return
	}
	folder := strings.TrimSpace(r.FormValue("folder"))

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		http.Error(w, "Please select files to upload", http.StatusBadRequest)
		return
	}

	opID, err := utils.GenerateRandomHex(8)
	if err != nil {
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()

	st, err := openStore(ctx, cfg)
	if err != nil {
		if errors.Is(err, credentials.ErrNotConfigured) {
			logger.Errorf("[op %s] credentials not configured: %v", opID, err)
			http.Error(w, "Service account credentials not found in secrets store", http.StatusServiceUnavailable)
			return
		}
		logger.Errorf("[op %s] failed to open storage backend: %v", opID, err)
		http.Error(w, fmt.Sprintf("Failed to open storage backend: %v", err), http.StatusInternalServerError)
		return
	}
	defer st.Close()

	created, err := st.EnsureBucket(ctx, bucket)
	if err != nil {
		logger.Errorf("[op %s] %v", opID, err)
		http.Error(w, fmt.Sprintf("Bucket check failed: %v", err), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	rep := newLineReporter(w, opID)

	if created {
		rep.Successf("Bucket '%s' created.", bucket)
	} else {
		rep.Infof("Bucket '%s' already exists.", bucket)
	}

	items := make([]upload.Item, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			rep.Errorf("failed to read uploaded file '%s': %v", fh.Filename, err)
			continue
		}
		defer f.Close()
		items = append(items, upload.Item{Name: fh.Filename, Size: fh.Size, Reader: f})
	}

	sum := upload.UploadAll(ctx, st, bucket, folder, items, rep)
	rep.Infof("File upload complete: %d uploaded, %d failed.", sum.Uploaded, sum.Failed)
}
