package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort          = "8080"
	defaultDatabaseURL   = "staffdocs.db"
	defaultStorageRoot   = "./uploads"
	defaultPublicBaseURL = "http://localhost:8080"
	defaultMaxFileSize   = "52428800" // 50 MB
	defaultJWTTTL        = "24h"
	defaultSweepGrace    = "24h"
	defaultJWTSecret     = "change-me-jwt-secret"
	defaultLogLevel      = "info"
	defaultLogFormat     = "text"
)

// Config is the runtime configuration, loaded from environment variables.
// JWT_SECRET must be overridden in any non-dev deployment; rotation is
// restart-based (swap the env var, reissue tokens via cmd/tokengen).
type Config struct {
	AppEnv        string
	Port          string
	DatabaseURL   string
	StorageRoot   string
	PublicBaseURL string
	MaxFileSize   int64
	JWTSecret     string
	JWTTTL        time.Duration
	SweepGrace    time.Duration
	LogLevel      string
	LogFormat     string
}

func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.Port = strings.TrimSpace(getEnv("PORT", defaultPort))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.StorageRoot = strings.TrimSpace(getEnv("STORAGE_ROOT", defaultStorageRoot))
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(getEnv("PUBLIC_BASE_URL", defaultPublicBaseURL)), "/")
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.LogLevel = strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel))
	cfg.LogFormat = strings.TrimSpace(getEnv("LOG_FORMAT", defaultLogFormat))

	var err error
	cfg.MaxFileSize, err = parseInt64Env("MAX_FILE_SIZE", defaultMaxFileSize)
	if err != nil {
		return nil, err
	}

	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}

	cfg.SweepGrace, err = parseDurationEnv("SWEEP_GRACE_PERIOD", defaultSweepGrace)
	if err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.StorageRoot == "" {
		return fmt.Errorf("STORAGE_ROOT must not be empty")
	}
	if cfg.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be > 0")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.SweepGrace < 0 {
		return fmt.Errorf("SWEEP_GRACE_PERIOD must be >= 0")
	}
	if cfg.AppEnv != "dev" && cfg.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set outside dev")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationEnv(key, fallback string) (time.Duration, error) {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, raw, err)
	}
	return d, nil
}

func parseInt64Env(key, fallback string) (int64, error) {
	raw := getEnv(key, fallback)
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, raw, err)
	}
	return n, nil
}
