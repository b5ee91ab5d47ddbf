package routes

import (
	"encoding/json"
	"net/http"

	"bucketdrop/credentials"
	"bucketdrop/logger"
	"bucketdrop/secrets"
)

var allowedRecords = map[string]bool{
	credentials.ServiceAccountKey: true,
	credentials.S3Key:             true,
	credentials.SFTPKey:           true,
}

// RegisterCredentialsHandler stores a credential record in the secrets
// store. The record name comes from the "name" query parameter and
// defaults to service_account; the body is a flat JSON object of string
// fields, kept opaque.
func RegisterCredentialsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = credentials.ServiceAccountKey
	}
	if !allowedRecords[name] {
		http.Error(w, "Unknown credentials record name", http.StatusBadRequest)
		return
	}

	record := make(map[string]string)
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(record) == 0 {
		http.Error(w, "Empty credentials record", http.StatusBadRequest)
		return
	}

	if err := secrets.Store(name, record); err != nil {
		logger.Errorf("Failed to store credentials record %s: %v", name, err)
		http.Error(w, "Failed to store credentials", http.StatusInternalServerError)
		return
	}

	logger.Infof("Stored credentials record '%s' (%d fields)", name, len(record))

	response := map[string]string{"stored": name}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
