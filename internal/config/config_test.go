package config

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.OCRLanguage != "eng" {
		t.Errorf("OCRLanguage = %q, want eng", cfg.OCRLanguage)
	}
	if cfg.LibraryPath != "cardscan.db" {
		t.Errorf("LibraryPath = %q, want cardscan.db", cfg.LibraryPath)
	}
	if cfg.WorkerConcurrency != 4 {
		t.Errorf("WorkerConcurrency = %d, want 4", cfg.WorkerConcurrency)
	}
	if cfg.FetchTimeout != 30*time.Second {
		t.Errorf("FetchTimeout = %s, want 30s", cfg.FetchTimeout)
	}
	if cfg.MaxDownloadBytes != 20<<20 {
		t.Errorf("MaxDownloadBytes = %d, want %d", cfg.MaxDownloadBytes, 20<<20)
	}
	if cfg.Level() != zerolog.InfoLevel {
		t.Errorf("Level = %s, want info", cfg.Level())
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CARDSCAN_OCR_LANGUAGE", "jpn")
	t.Setenv("CARDSCAN_LIBRARY_PATH", "/tmp/cards.db")
	t.Setenv("CARDSCAN_WORKER_CONCURRENCY", "8")
	t.Setenv("CARDSCAN_FETCH_TIMEOUT", "5s")
	t.Setenv("CARDSCAN_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.OCRLanguage != "jpn" {
		t.Errorf("OCRLanguage = %q, want jpn", cfg.OCRLanguage)
	}
	if cfg.LibraryPath != "/tmp/cards.db" {
		t.Errorf("LibraryPath = %q", cfg.LibraryPath)
	}
	if cfg.WorkerConcurrency != 8 {
		t.Errorf("WorkerConcurrency = %d, want 8", cfg.WorkerConcurrency)
	}
	if cfg.FetchTimeout != 5*time.Second {
		t.Errorf("FetchTimeout = %s, want 5s", cfg.FetchTimeout)
	}
	if cfg.Level() != zerolog.DebugLevel {
		t.Errorf("Level = %s, want debug", cfg.Level())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero concurrency", func(c *Config) { c.WorkerConcurrency = 0 }, "concurrency"},
		{"negative download cap", func(c *Config) { c.MaxDownloadBytes = -1 }, "download bytes"},
		{"zero fetch timeout", func(c *Config) { c.FetchTimeout = 0 }, "fetch timeout"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				OCRLanguage:       "eng",
				LibraryPath:       "cardscan.db",
				WorkerConcurrency: 4,
				FetchTimeout:      30 * time.Second,
				MaxDownloadBytes:  20 << 20,
				LogLevel:          "info",
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
