package routes

import (
	"io"
	"net/http"
)

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Upload Files to Cloud Storage</title>
<style>
body { font-family: sans-serif; max-width: 40em; margin: 2em auto; }
label { display: block; margin-top: 1em; }
input[type=text] { width: 100%; }
button { margin-top: 1.5em; }
</style>
</head>
<body>
<h1>Upload Files to Cloud Storage</h1>
<form action="/upload" method="post" enctype="multipart/form-data">
  <label>Bucket Name:
    <input type="text" name="bucket" required>
  </label>
  <label>Destination Folder in Bucket (optional):
    <input type="text" name="folder" value="">
  </label>
  <label>Choose files to upload (zip archives are expanded):
    <input type="file" name="files" multiple required>
  </label>
  <button type="submit">Upload</button>
</form>
</body>
</html>
`

// IndexHandler serves the upload form.
func IndexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, indexHTML)
}
