// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir     string // Base directory for the database files (always absolute)
	Port        int
	LogLevel    string
	DevMode     bool
	FMPAPIKey   string // Financial Modeling Prep API key
	FMPBaseURL  string
	NewsAPIKey  string
	NewsBaseURL string
	Backup      *BackupConfig
}

// BackupConfig holds offsite backup configuration.
// Backups are disabled when credentials are not configured.
type BackupConfig struct {
	Endpoint        string // S3-compatible endpoint URL
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Keep            int // Number of backup archives to retain
}

// Enabled reports whether offsite backups are configured.
func (b *BackupConfig) Enabled() bool {
	return b != nil && b.AccessKeyID != "" && b.SecretAccessKey != "" && b.Bucket != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:     absDataDir,
		Port:        getEnvAsInt("PORT", 5001),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DevMode:     getEnvAsBool("DEV_MODE", false),
		FMPAPIKey:   getEnv("FMP_API_KEY", ""),
		FMPBaseURL:  getEnv("FMP_BASE_URL", "https://financialmodelingprep.com/api/v3"),
		NewsAPIKey:  getEnv("NEWS_API_KEY", ""),
		NewsBaseURL: getEnv("NEWS_BASE_URL", "https://newsapi.org/v2"),
		Backup: &BackupConfig{
			Endpoint:        getEnv("BACKUP_S3_ENDPOINT", ""),
			Region:          getEnv("BACKUP_S3_REGION", "auto"),
			AccessKeyID:     getEnv("BACKUP_S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("BACKUP_S3_SECRET_ACCESS_KEY", ""),
			Bucket:          getEnv("BACKUP_S3_BUCKET", ""),
			Keep:            getEnvAsInt("BACKUP_KEEP", 14),
		},
	}

	return cfg, nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
