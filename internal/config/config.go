package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/vytor/runview/internal/logger"
)

type Config struct {
	Addr                   string
	DBPath                 string
	AnalyzerURL            string
	AnalyzerTimeoutSeconds int
	MaxUploadBytes         int64
	HistoryLimit           int
	MaintenanceWorkers     int
	MaintenanceQueueSize   int
	LogLevel               string
	SessionKey             string
	CORSOrigin             string
	ChartTheme             string
	OpenBrowser            bool
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                   envOr("ADDR", ":8080"),
		DBPath:                 envOr("DB_PATH", "file:runview.db"),
		AnalyzerURL:            envOr("ANALYZER_URL", "http://localhost:8000/api/upload"),
		AnalyzerTimeoutSeconds: envIntOr("ANALYZER_TIMEOUT_SECONDS", 60),
		MaxUploadBytes:         int64(envIntOr("MAX_UPLOAD_BYTES", 10<<20)),
		HistoryLimit:           envIntOr("HISTORY_LIMIT", 50),
		MaintenanceWorkers:     envIntOr("MAINTENANCE_WORKERS", 1),
		MaintenanceQueueSize:   envIntOr("MAINTENANCE_QUEUE_SIZE", 16),
		LogLevel:               envOr("LOG_LEVEL", "INFO"),
		SessionKey:             os.Getenv("SESSION_KEY"),
		CORSOrigin:             envOr("CORS_ORIGIN", "*"),
		ChartTheme:             envOr("CHART_THEME", "macarons"),
		OpenBrowser:            envBoolOr("OPEN_BROWSER", false),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	if u, err := url.Parse(c.AnalyzerURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("ANALYZER_URL must be an absolute http(s) URL, got %q", c.AnalyzerURL))
	}
	if c.AnalyzerTimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("ANALYZER_TIMEOUT_SECONDS must be positive, got %d", c.AnalyzerTimeoutSeconds))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes))
	}
	if c.HistoryLimit < 0 {
		errs = append(errs, fmt.Errorf("HISTORY_LIMIT cannot be negative, got %d", c.HistoryLimit))
	}
	if c.MaintenanceWorkers <= 0 {
		errs = append(errs, fmt.Errorf("MAINTENANCE_WORKERS must be positive, got %d", c.MaintenanceWorkers))
	}
	if c.MaintenanceQueueSize <= 0 {
		errs = append(errs, fmt.Errorf("MAINTENANCE_QUEUE_SIZE must be positive, got %d", c.MaintenanceQueueSize))
	}
	if !logger.ValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel))
	}
	if c.SessionKey != "" && len(c.SessionKey) < 32 {
		errs = append(errs, fmt.Errorf("SESSION_KEY must be at least 32 bytes, got %d", len(c.SessionKey)))
	}
	if strings.TrimSpace(c.ChartTheme) == "" {
		errs = append(errs, errors.New("CHART_THEME cannot be empty"))
	}

	return errors.Join(errs...)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}
