package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if err := c.Store.validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}

	if c.Store.Driver == DriverPostgres && strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required for the postgres store driver")
	}

	if c.Sync.SafetyTimeout <= 0 {
		return fmt.Errorf("sync.safety_timeout must be > 0 (got %s)", c.Sync.SafetyTimeout)
	}

	if err := c.Wiki.validate(); err != nil {
		return fmt.Errorf("wiki: %w", err)
	}

	if c.RateLimit.WritesPerMinute < 0 {
		return fmt.Errorf("rate_limit.writes_per_minute must be >= 0 (got %d)", c.RateLimit.WritesPerMinute)
	}
	if c.RateLimit.CleanupInterval <= 0 {
		return fmt.Errorf("rate_limit.cleanup_interval must be > 0 (got %s)", c.RateLimit.CleanupInterval)
	}

	return nil
}

func (s *StoreConfig) validate() error {
	switch s.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("driver must be %q or %q (got %q)", DriverPostgres, DriverMemory, s.Driver)
	}
	if strings.TrimSpace(s.AppID) == "" {
		return fmt.Errorf("app_id is required")
	}
	if strings.TrimSpace(s.Collection) == "" {
		return fmt.Errorf("collection is required")
	}
	return nil
}

func (w *WikiConfig) validate() error {
	if strings.TrimSpace(w.SeedTitle) == "" {
		return fmt.Errorf("seed_title is required")
	}
	if strings.TrimSpace(w.SeedMarker) == "" {
		return fmt.Errorf("seed_marker is required")
	}
	if w.RecentLimit <= 0 {
		return fmt.Errorf("recent_limit must be > 0 (got %d)", w.RecentLimit)
	}
	return nil
}
