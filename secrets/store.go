// Package secrets holds named credential records in a local Pebble
// database. Records are flat string maps treated as opaque blobs; the
// rest of the system only interprets the fields it needs.
package secrets

import (
	"encoding/json"
	"fmt"

	"bucketdrop/logger"

	"github.com/cockroachdb/pebble"
)

var db *pebble.DB

// ErrNotFound is returned by Get when no record exists under the key.
var ErrNotFound = pebble.ErrNotFound

// Open opens the Pebble DB for secrets at the specified path
func Open(dbPath string) error {
	var err error
	db, err = pebble.Open(dbPath, &pebble.Options{})
	if err != nil {
		logger.Errorf("Failed to open Pebble DB: %v", err)
		return err
	}
	return nil
}

// Close closes the DB
func Close() error {
	if db != nil {
		err := db.Close()
		db = nil
		return err
	}
	return nil
}

// Get returns the record stored under key.
func Get(key string) (map[string]string, error) {
	if db == nil {
		return nil, fmt.Errorf("secrets store not initialized")
	}
	value, closer, err := db.Get([]byte(key))
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	record := make(map[string]string)
	if err := json.Unmarshal(value, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// Store stores the record under the given key
func Store(key string, record map[string]string) error {
	if db == nil {
		return fmt.Errorf("secrets store not initialized")
	}
	encoded, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return db.Set([]byte(key), encoded, pebble.Sync)
}

// Delete deletes the record for the given key
func Delete(key string) error {
	if db == nil {
		return fmt.Errorf("secrets store not initialized")
	}
	return db.Delete([]byte(key), pebble.Sync)
}
