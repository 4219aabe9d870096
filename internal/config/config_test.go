package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/lacuna/internal/config"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"
store = "postgres"

[server]
host = "0.0.0.0"
port = 8080
read_timeout = "1m"
write_timeout = "15m"
shutdown_timeout = "30s"

[database]
host = "localhost"
port = 5432
name = "lacuna"
user = "lacuna"
password = "lacuna"
ssl_mode = "disable"

[storage]
container_name = "reports"

[api]
base_path = "/api"
max_body_size = "2MB"

[api.pagination]
default_page_size = 25
max_page_size = 50

[logging]
level = "debug"
format = "json"

[review]
min_confidence = 0.8

[analysis]
workers = 8
store_timeout = "3s"
report_interval = "1h"

[synthesis]
model = "gpt-4o"

[events]
stream = "lacuna:test"

[content]
base_url = "http://content.local"
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"

[analysis]
workers = 16
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	t.Chdir(dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "lacuna" {
		t.Errorf("db name: got %s, want lacuna", cfg.Database.Name)
	}
	if cfg.API.Pagination.DefaultPageSize != 25 {
		t.Errorf("default_page_size: got %d, want 25", cfg.API.Pagination.DefaultPageSize)
	}
	if got := cfg.API.MaxBodySizeBytes(); got != 2*1024*1024 {
		t.Errorf("max body size: got %d, want 2MB", got)
	}
	if cfg.Logging.SlogLevel() != slog.LevelDebug || !cfg.Logging.JSON() {
		t.Errorf("logging: got %+v", cfg.Logging)
	}
	if cfg.Review.MinConfidence != 0.8 {
		t.Errorf("min_confidence: got %v, want 0.8", cfg.Review.MinConfidence)
	}
	if cfg.Analysis.Workers != 8 || cfg.Analysis.StoreTimeoutDuration() != 3*time.Second {
		t.Errorf("analysis: got %+v", cfg.Analysis)
	}
	if cfg.Analysis.ReportIntervalDuration() != time.Hour {
		t.Errorf("report interval: got %v, want 1h", cfg.Analysis.ReportIntervalDuration())
	}
	if cfg.Synthesis.Model != "gpt-4o" || cfg.Synthesis.Enabled() {
		t.Errorf("synthesis: got %+v", cfg.Synthesis)
	}
	if cfg.Events.Stream != "lacuna:test" || cfg.Events.Enabled() {
		t.Errorf("events: got %+v", cfg.Events)
	}
	if !cfg.Content.Enabled() {
		t.Error("content should be enabled")
	}
	if cfg.Storage.Enabled() {
		t.Error("storage should be disabled without a connection string")
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	t.Chdir(dir)

	t.Setenv("LACUNA_ENV", "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090 (from overlay)", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("db host: got %s, want prodhost (from overlay)", cfg.Database.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("db port: got %d, want 5432 (from base)", cfg.Database.Port)
	}
	if cfg.Analysis.Workers != 16 {
		t.Errorf("workers: got %d, want 16 (from overlay)", cfg.Analysis.Workers)
	}
	if cfg.Analysis.StoreTimeout != "3s" {
		t.Errorf("store_timeout: got %s, want 3s (from base)", cfg.Analysis.StoreTimeout)
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	t.Chdir(dir)

	t.Setenv("LACUNA_VERSION", "2.0.0")
	t.Setenv("LACUNA_SERVER_PORT", "3000")
	t.Setenv("LACUNA_REVIEW_MIN_CONFIDENCE", "0.9")
	t.Setenv("LACUNA_SYNTHESIS_API_KEY", "sk-test")
	t.Setenv("LACUNA_EVENTS_REDIS_ADDR", "localhost:6379")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.Review.MinConfidence != 0.9 {
		t.Errorf("min_confidence: got %v, want 0.9", cfg.Review.MinConfidence)
	}
	if !cfg.Synthesis.Enabled() || !cfg.Events.Enabled() {
		t.Error("synthesis and events should be enabled from env")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".env", "LACUNA_STORE=memory\nLACUNA_LOG_LEVEL=warn\n")
	t.Chdir(dir)

	t.Setenv("LACUNA_LOG_LEVEL", "error")
	t.Cleanup(func() { os.Unsetenv("LACUNA_STORE") })

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Store != config.StoreMemory {
		t.Errorf("store: got %s, want memory (from .env)", cfg.Store)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("log level: got %s, want error (process env wins)", cfg.Logging.Level)
	}
}

func TestLoadNoConfigFileMemoryStore(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	t.Setenv("LACUNA_STORE", "memory")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port default: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("base path default: got %s, want /api", cfg.API.BasePath)
	}
	if cfg.Server.ReadHeaderTimeoutDuration() != 10*time.Second || cfg.Server.IdleTimeoutDuration() != 2*time.Minute {
		t.Errorf("server timeouts: got header %s idle %s", cfg.Server.ReadHeaderTimeout, cfg.Server.IdleTimeout)
	}
	if cfg.Server.WriteTimeoutDuration() != 5*time.Minute {
		t.Errorf("write timeout default: got %s, want 5m", cfg.Server.WriteTimeout)
	}
	if cfg.Review.MinConfidence != 0.7 {
		t.Errorf("min_confidence default: got %v, want 0.7", cfg.Review.MinConfidence)
	}
	if cfg.Analysis.ReportIntervalDuration() != 0 {
		t.Errorf("report interval default: got %v, want disabled", cfg.Analysis.ReportIntervalDuration())
	}
	if cfg.Analysis.HalfLifeDuration() != 168*time.Hour || cfg.Analysis.VolumeScale != 8 {
		t.Errorf("score defaults: got %+v", cfg.Analysis)
	}
	if cfg.API.MaxBodySizeBytes() != 1024*1024 {
		t.Errorf("max body size default: got %d", cfg.API.MaxBodySizeBytes())
	}
}

func TestLoadPostgresRequiresDatabase(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := config.Load()
	if err == nil || !strings.Contains(err.Error(), "database") {
		t.Fatalf("err = %v, want database validation error", err)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", `[server`)
	t.Chdir(dir)

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{"invalid store", `store = "sqlite"`, "invalid store"},
		{"invalid port", "store = \"memory\"\n[server]\nport = 99999", "invalid port"},
		{"bad idle_timeout", "store = \"memory\"\n[server]\nidle_timeout = \"later\"", "idle_timeout"},
		{"header timeout above read", "store = \"memory\"\n[server]\nread_timeout = \"5s\"\nread_header_timeout = \"10s\"", "exceeds read_timeout"},
		{"invalid log level", "store = \"memory\"\n[logging]\nlevel = \"loud\"", "invalid level"},
		{"invalid log format", "store = \"memory\"\n[logging]\nformat = \"xml\"", "invalid format"},
		{"min_confidence above one", "store = \"memory\"\n[review]\nmin_confidence = 1.5", "min_confidence"},
		{"bad store_timeout", "store = \"memory\"\n[analysis]\nstore_timeout = \"soon\"", "store_timeout"},
		{"bad report_interval", "store = \"memory\"\n[analysis]\nreport_interval = \"daily\"", "report_interval"},
		{"negative workers", "store = \"memory\"\n[analysis]\nworkers = -1", "workers"},
		{"bad synthesis timeout", "store = \"memory\"\n[synthesis]\ntimeout = \"x\"", "timeout"},
		{"bad content timeout", "store = \"memory\"\n[content]\ntimeout = \"0s\"", "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "config.toml", tt.config)
			t.Chdir(dir)

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvDefault(t *testing.T) {
	cfg := &config.Config{}
	if cfg.Env() != "local" {
		t.Errorf("env: got %s, want local", cfg.Env())
	}

	t.Setenv("LACUNA_ENV", "production")
	if cfg.Env() != "production" {
		t.Errorf("env: got %s, want production", cfg.Env())
	}
}

func TestMaxBodySizeBytes(t *testing.T) {
	tests := []struct {
		name string
		size string
		want int64
	}{
		{"valid 1MB", "1MB", 1024 * 1024},
		{"valid 512KB", "512KB", 512 * 1024},
		{"invalid falls back to 1MB", "bad", 1024 * 1024},
		{"empty falls back to 1MB", "", 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.APIConfig{MaxBodySize: tt.size}
			if got := cfg.MaxBodySizeBytes(); got != tt.want {
				t.Errorf("MaxBodySizeBytes() = %d, want %d", got, tt.want)
			}
		})
	}
}
