package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// validEnv sets the minimum required env vars for a valid config.
func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DSN", "postgres://u:p@localhost:5432/testdb")
	t.Setenv("AUTH_JWT_SECRET", "this-is-a-very-long-jwt-secret-for-testing-32+")
}

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: "5s"
  write_timeout: "15s"
  idle_timeout: "30s"
  shutdown_timeout: "5s"

database:
  dsn: "postgres://u:p@localhost:5432/testdb"
  max_conns: 10
  min_conns: 2
  auto_migrate: false

auth:
  jwt_secret: "this-is-a-very-long-jwt-secret-for-testing-32+"
  token_ttl: "24h"

store:
  driver: "postgres"
  app_id: "hyobin"

sync:
  safety_timeout: "3s"

wiki:
  authenticated_label: "관리자"
  recent_limit: 5

log:
  level: "debug"
  format: "text"
`

func TestLoad_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Server
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("server.host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("server.read_timeout = %v, want %v", cfg.Server.ReadTimeout, 5*time.Second)
	}

	// Database
	if cfg.Database.DSN != "postgres://u:p@localhost:5432/testdb" {
		t.Errorf("database.dsn = %q", cfg.Database.DSN)
	}
	if cfg.Database.AutoMigrate {
		t.Error("database.auto_migrate should be false")
	}

	// Auth
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("auth.token_ttl = %v, want 24h", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.JWTIssuer != "hyobinwiki" {
		t.Errorf("auth.jwt_issuer = %q, want default", cfg.Auth.JWTIssuer)
	}

	// Store
	if cfg.Store.AppID != "hyobin" {
		t.Errorf("store.app_id = %q, want %q", cfg.Store.AppID, "hyobin")
	}
	if cfg.Store.Collection != "wiki_docs" {
		t.Errorf("store.collection = %q, want default", cfg.Store.Collection)
	}

	// Sync
	if cfg.Sync.SafetyTimeout != 3*time.Second {
		t.Errorf("sync.safety_timeout = %v, want 3s", cfg.Sync.SafetyTimeout)
	}

	// Wiki
	if cfg.Wiki.AuthenticatedLabel != "관리자" {
		t.Errorf("wiki.authenticated_label = %q", cfg.Wiki.AuthenticatedLabel)
	}
	if cfg.Wiki.SeedTitle != "효빈광역시" {
		t.Errorf("wiki.seed_title = %q, want default", cfg.Wiki.SeedTitle)
	}
	if cfg.Wiki.RecentLimit != 5 {
		t.Errorf("wiki.recent_limit = %d, want 5", cfg.Wiki.RecentLimit)
	}

	// Log
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Log.Format != "text" {
		t.Errorf("log.format = %q, want %q", cfg.Log.Format, "text")
	}
}

func TestLoad_ENVOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("server.port = %d, want 3000 (ENV override)", cfg.Server.Port)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log.level = %q, want %q (ENV override)", cfg.Log.Level, "warn")
	}
	if cfg.Store.Driver != DriverMemory {
		t.Errorf("store.driver = %q, want memory (ENV override)", cfg.Store.Driver)
	}
}

func TestLoad_NoFile_ENVOnly(t *testing.T) {
	validEnv(t)

	t.Setenv("CONFIG_PATH", "")
	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	_ = os.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080 (default)", cfg.Server.Port)
	}
	if cfg.Sync.SafetyTimeout != 8*time.Second {
		t.Errorf("sync.safety_timeout = %v, want 8s (default)", cfg.Sync.SafetyTimeout)
	}
	if cfg.Wiki.SeedMarker != "<!-- FINAL_LAYOUT_V29_TRAFFIC_TABLE -->" {
		t.Errorf("wiki.seed_marker = %q", cfg.Wiki.SeedMarker)
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, `{{{invalid yaml`)
	t.Setenv("CONFIG_PATH", path)

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"short jwt secret", func(c *Config) { c.Auth.JWTSecret = "short" }},
		{"empty jwt secret", func(c *Config) { c.Auth.JWTSecret = "" }},
		{"unknown driver", func(c *Config) { c.Store.Driver = "firestore" }},
		{"empty app id", func(c *Config) { c.Store.AppID = "  " }},
		{"empty collection", func(c *Config) { c.Store.Collection = "" }},
		{"postgres without dsn", func(c *Config) { c.Database.DSN = "" }},
		{"zero safety timeout", func(c *Config) { c.Sync.SafetyTimeout = 0 }},
		{"empty seed title", func(c *Config) { c.Wiki.SeedTitle = "" }},
		{"empty seed marker", func(c *Config) { c.Wiki.SeedMarker = " " }},
		{"zero recent limit", func(c *Config) { c.Wiki.RecentLimit = 0 }},
		{"negative write limit", func(c *Config) { c.RateLimit.WritesPerMinute = -1 }},
		{"zero cleanup interval", func(c *Config) { c.RateLimit.CleanupInterval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidate_MemoryDriverWithoutDSN(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Driver = DriverMemory
	cfg.Database.DSN = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("memory driver should not need a DSN: %v", err)
	}
}

func validConfig() Config {
	return Config{
		Database: DatabaseConfig{DSN: "postgres://u:p@localhost:5432/testdb"},
		Auth: AuthConfig{
			JWTSecret: "this-is-a-very-long-jwt-secret-for-testing-32+",
		},
		Store: StoreConfig{
			Driver:     DriverPostgres,
			AppID:      "default-app-id",
			Collection: "wiki_docs",
		},
		Sync: SyncConfig{SafetyTimeout: 8 * time.Second},
		Wiki: WikiConfig{
			SeedTitle:          "효빈광역시",
			SeedMarker:         "<!-- FINAL_LAYOUT_V29_TRAFFIC_TABLE -->",
			AuthenticatedLabel: "효빈",
			RecentLimit:        10,
		},
		RateLimit: RateLimitConfig{WritesPerMinute: 60, CleanupInterval: 5 * time.Minute},
	}
}
