// Package config loads service configuration from the environment, with
// optional .env file support for local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds everything the binaries need, populated from CARDSCAN_*
// environment variables.
type Config struct {
	// OCRLanguage is the Tesseract language code for recognition.
	OCRLanguage string `env:"CARDSCAN_OCR_LANGUAGE" envDefault:"eng"`

	// TessdataPrefix overrides the Tesseract traineddata directory.
	TessdataPrefix string `env:"CARDSCAN_TESSDATA_PREFIX"`

	// LibraryPath is the SQLite card library file.
	LibraryPath string `env:"CARDSCAN_LIBRARY_PATH" envDefault:"cardscan.db"`

	// RedisAddr is the Redis address backing the extraction queue.
	RedisAddr string `env:"CARDSCAN_REDIS_ADDR" envDefault:"127.0.0.1:6379"`

	// WorkerConcurrency is the number of concurrent extraction tasks the
	// worker processes.
	WorkerConcurrency int `env:"CARDSCAN_WORKER_CONCURRENCY" envDefault:"4"`

	// FetchTimeout bounds screenshot downloads.
	FetchTimeout time.Duration `env:"CARDSCAN_FETCH_TIMEOUT" envDefault:"30s"`

	// MaxDownloadBytes caps the size of downloaded screenshots.
	MaxDownloadBytes int64 `env:"CARDSCAN_MAX_DOWNLOAD_BYTES" envDefault:"20971520"`

	// DiagnosticsDir, when set, is where diagnostic images are written.
	DiagnosticsDir string `env:"CARDSCAN_DIAGNOSTICS_DIR"`

	// LogLevel is the zerolog level name (trace, debug, info, ...).
	LogLevel string `env:"CARDSCAN_LOG_LEVEL" envDefault:"info"`
}

// Load reads .env (when present) and the environment, then validates.
func Load() (*Config, error) {
	// A missing .env file is the normal production case.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the binaries cannot run with.
func (c *Config) Validate() error {
	if c.WorkerConcurrency <= 0 {
		return fmt.Errorf("worker concurrency must be positive, got %d", c.WorkerConcurrency)
	}
	if c.MaxDownloadBytes <= 0 {
		return fmt.Errorf("max download bytes must be positive, got %d", c.MaxDownloadBytes)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %s", c.FetchTimeout)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}

// Level returns the parsed zerolog level. Validate has already checked
// it parses.
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
