package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Log      LogConfig
	Import   ImportConfig
	Snapshot SnapshotConfig
	Cache    CacheConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port   string
	Host   string
	Addr   string // Combined host:port for convenience
	APIKey string
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
	JSON  bool
}

// ImportConfig controls statement ingestion.
// An empty ArchiveKey disables archiving of submitted statements.
type ImportConfig struct {
	ArchiveKey     string
	RatePerMinute  int
	RateBurst      int
	MaxUploadBytes int64
}

// SnapshotConfig controls the scheduled valuation snapshot job.
type SnapshotConfig struct {
	Cron        string
	Concurrency int
}

// CacheConfig controls the in-memory valuation cache.
type CacheConfig struct {
	ValuationTTL time.Duration
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	ratePerMinute, err := getEnvInt("IMPORT_RATE_PER_MINUTE", 12)
	if err != nil {
		return nil, err
	}
	rateBurst, err := getEnvInt("IMPORT_RATE_BURST", 3)
	if err != nil {
		return nil, err
	}
	maxUpload, err := getEnvInt("IMPORT_MAX_BYTES", 5<<20)
	if err != nil {
		return nil, err
	}
	concurrency, err := getEnvInt("SNAPSHOT_CONCURRENCY", 4)
	if err != nil {
		return nil, err
	}
	ttl, err := time.ParseDuration(getEnv("VALUATION_CACHE_TTL", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid VALUATION_CACHE_TTL: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:   getEnv("SERVER_PORT", "5001"),
			Host:   getEnv("SERVER_HOST", "localhost"),
			APIKey: os.Getenv("INTERNAL_API_KEY"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/investments.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			JSON:  strings.EqualFold(getEnv("LOG_FORMAT", "console"), "json"),
		},
		Import: ImportConfig{
			ArchiveKey:     os.Getenv("IMPORT_ARCHIVE_KEY"),
			RatePerMinute:  ratePerMinute,
			RateBurst:      rateBurst,
			MaxUploadBytes: int64(maxUpload),
		},
		Snapshot: SnapshotConfig{
			Cron:        getEnv("SNAPSHOT_CRON", "15 2 * * *"),
			Concurrency: concurrency,
		},
		Cache: CacheConfig{
			ValuationTTL: ttl,
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q must be a positive integer", key, value)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
