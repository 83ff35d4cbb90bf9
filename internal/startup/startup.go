package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"photo-index/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	GoVersion = runtime.Version()
)

// Config holds all application configuration.
type Config struct {
	DatabasePath   string
	ThumbnailDir   string
	ScanConfigPath string
	BatchSize      int
}

// LoadConfig loads and validates configuration from environment variables.
func LoadConfig() (*Config, error) {
	logging.Info("photo-index %s (%s, %s/%s)", Version, GoVersion, runtime.GOOS, runtime.GOARCH)

	dbPath := getEnv("PHOTO_DB", "photos.db")
	thumbnailDir := getEnv("THUMBNAIL_DIR", "thumbnails")
	scanConfigPath := getEnv("SCAN_CONFIG", "scan_config.json")
	batchSize := getEnvInt("BATCH_SIZE", 100)

	logging.Info("  PHOTO_DB:      %s", dbPath)
	logging.Info("  THUMBNAIL_DIR: %s", thumbnailDir)
	logging.Info("  SCAN_CONFIG:   %s", scanConfigPath)
	logging.Info("  BATCH_SIZE:    %d", batchSize)
	logging.Info("  LOG_LEVEL:     %s", logging.GetLevel())

	dbPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}

	thumbnailDir, err = filepath.Abs(thumbnailDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve thumbnail directory: %w", err)
	}

	// The database file's parent must exist and be writable; SQLite gives
	// an unhelpful error otherwise.
	parent := filepath.Dir(dbPath)
	if info, err := os.Stat(parent); err != nil {
		return nil, fmt.Errorf("database directory %s not accessible: %w", parent, err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("database directory %s is not a directory", parent)
	}

	return &Config{
		DatabasePath:   dbPath,
		ThumbnailDir:   thumbnailDir,
		ScanConfigPath: scanConfigPath,
		BatchSize:      batchSize,
	}, nil
}

// LogFatal logs a fatal error and exits.
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
		logging.Warn("  Invalid %s value %q, using default %d", key, value, fallback)
	}
	return fallback
}
