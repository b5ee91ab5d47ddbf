package config

import (
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime settings for the server. Every value can be
// overridden through an environment variable with the BUCKETDROP_ prefix
// spelled out in full (e.g. BUCKETDROP_LISTEN).
type Config struct {
	Listen      string
	DataDir     string
	Backend     string
	MaxUploadMB int64
	SecretsFile string
	LogLevel    string
	LocalDir    string
}

var (
	once     sync.Once
	instance *Config
)

// Load reads configuration from the environment (and an optional .env
// file) exactly once and returns the shared instance.
func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("BUCKETDROP_LISTEN", ":8080")
		viper.SetDefault("BUCKETDROP_DATA_DIR", "./data")
		viper.SetDefault("BUCKETDROP_BACKEND", "gcs")
		viper.SetDefault("BUCKETDROP_MAX_UPLOAD_MB", 512)
		viper.SetDefault("BUCKETDROP_SECRETS_FILE", "")
		viper.SetDefault("BUCKETDROP_LOG_LEVEL", "info")
		viper.SetDefault("BUCKETDROP_LOCAL_DIR", "./serve")

		viper.AutomaticEnv()

		instance = &Config{
			Listen:      viper.GetString("BUCKETDROP_LISTEN"),
			DataDir:     viper.GetString("BUCKETDROP_DATA_DIR"),
			Backend:     viper.GetString("BUCKETDROP_BACKEND"),
			MaxUploadMB: viper.GetInt64("BUCKETDROP_MAX_UPLOAD_MB"),
			SecretsFile: viper.GetString("BUCKETDROP_SECRETS_FILE"),
			LogLevel:    viper.GetString("BUCKETDROP_LOG_LEVEL"),
			LocalDir:    viper.GetString("BUCKETDROP_LOCAL_DIR"),
		}
	})
	return instance
}

// SecretsDBPath returns the full path to the secrets database.
// Path: {DataDir}/secrets.db
func (c *Config) SecretsDBPath() string {
	return filepath.Join(c.DataDir, "secrets.db")
}

// MaxUploadBytes returns the multipart form memory/size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
