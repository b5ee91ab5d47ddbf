package main

import (
	"net/http"
	"os"

	"bucketdrop/config"
	"bucketdrop/logger"
	"bucketdrop/routes"
	"bucketdrop/secrets"
)

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)

	logger.Info("Starting bucketdrop server initialization")

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		logger.Fatalf("Failed to create data directory: %v", err)
	}

	// Initialize secrets store
	logger.Debug("Initializing secrets database")
	if err := secrets.Open(cfg.SecretsDBPath()); err != nil {
		logger.Fatalf("Failed to initialize secrets store: %v", err)
	}
	defer secrets.Close()
	logger.Info("Secrets database initialized successfully")

	// Seed credentials from file if configured
	if cfg.SecretsFile != "" {
		logger.Infof("Importing secrets from %s", cfg.SecretsFile)
		if err := secrets.ImportFile(cfg.SecretsFile); err != nil {
			logger.Fatalf("Failed to import secrets file: %v", err)
		}
	}

	// Register HTTP routes
	logger.Info("Registering HTTP routes")
	http.HandleFunc("/", routes.IndexHandler)
	http.HandleFunc("/upload", routes.UploadHandler)
	http.HandleFunc("/credentials", routes.RegisterCredentialsHandler)
	http.HandleFunc("/health", routes.HealthHandler)
	http.HandleFunc("/version", routes.VersionHandler)

	logger.Infof("bucketdrop server starting on %s (backend: %s)", cfg.Listen, cfg.Backend)
	if err := http.ListenAndServe(cfg.Listen, nil); err != nil {
		logger.Fatalf("Server failed to start: %v", err)
	}
}
