package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendDisk     = "disk"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
)

type Config struct {
	Scan   ScanConfig
	Port   string
	DevLog bool
	Store  StoreConfig
}

type ScanConfig struct {
	Root        string
	Workers     int
	FileTimeout time.Duration
	CacheTTL    time.Duration
	Include     string
	Exclude     string
}

type StoreConfig struct {
	Backend string
	Dir     string
	PGDSN   string
	S3      S3Config
}

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Load reads an optional .env file and then the process environment.
// Malformed numeric or duration values are reported, never guessed.
func Load() (*Config, error) {
	_ = godotenv.Load()

	workers, err := envInt("MARKSCAN_WORKERS", 4)
	if err != nil {
		return nil, err
	}
	fileTimeout, err := envDuration("MARKSCAN_FILE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := envDuration("MARKSCAN_CACHE_TTL", 30*time.Second)
	if err != nil {
		return nil, err
	}

	port := firstNonEmpty(env("PORT"), ":8081")
	if !strings.HasPrefix(port, ":") && !strings.Contains(port, ":") {
		port = ":" + port
	}

	backend := strings.ToLower(firstNonEmpty(env("STORE_BACKEND"), BackendMemory))
	switch backend {
	case BackendMemory, BackendDisk, BackendPostgres, BackendS3:
	default:
		return nil, fmt.Errorf("config: unknown STORE_BACKEND %q", backend)
	}

	return &Config{
		Scan: ScanConfig{
			Root:        firstNonEmpty(env("MARKSCAN_ROOT"), "."),
			Workers:     workers,
			FileTimeout: fileTimeout,
			CacheTTL:    cacheTTL,
			Include:     firstNonEmpty(env("MARKSCAN_INCLUDE"), "**/*.ts"),
			Exclude:     firstNonEmpty(env("MARKSCAN_EXCLUDE"), "**/node_modules/**"),
		},
		Port:   port,
		DevLog: envBool("LOG_DEV", false),
		Store: StoreConfig{
			Backend: backend,
			Dir:     firstNonEmpty(env("STORE_DIR"), ".markscan"),
			PGDSN:   env("STORE_PG_DSN"),
			S3: S3Config{
				Endpoint:  env("STORE_S3_ENDPOINT"),
				Region:    firstNonEmpty(env("STORE_S3_REGION"), "us-east-1"),
				AccessKey: firstNonEmpty(env("STORE_S3_ACCESS_KEY"), env("MINIO_ROOT_USER")),
				SecretKey: firstNonEmpty(env("STORE_S3_SECRET_KEY"), env("MINIO_ROOT_PASSWORD")),
				Bucket:    firstNonEmpty(env("STORE_S3_BUCKET"), "markscan-reports"),
				UseSSL:    envBool("STORE_S3_USE_SSL", true),
			},
		},
	}, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envInt(key string, def int) (int, error) {
	raw := env(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("config: %s must be a positive integer, got %q", key, raw)
	}
	return v, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	raw := env(key)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("config: %s must be a positive duration, got %q", key, raw)
	}
	return v, nil
}

func envBool(key string, def bool) bool {
	raw := env(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
