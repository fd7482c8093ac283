// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains example secrets that must never be used.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"BLOCKCMS_DB_PATH" envDefault:"./data/blockcms.db"`
	DataDir       string `env:"BLOCKCMS_DATA_DIR" envDefault:"./data"`
	SessionSecret string `env:"BLOCKCMS_SESSION_SECRET,required"`
	ServerHost    string `env:"BLOCKCMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"BLOCKCMS_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"BLOCKCMS_ENV" envDefault:"development"`
	LogLevel      string `env:"BLOCKCMS_LOG_LEVEL" envDefault:"info"`

	// Cache configuration
	RedisURL     string        `env:"BLOCKCMS_REDIS_URL"`
	CachePrefix  string        `env:"BLOCKCMS_CACHE_PREFIX" envDefault:"blockcms:"`
	CacheTTL     time.Duration `env:"BLOCKCMS_CACHE_TTL" envDefault:"1h"`
	CacheMaxSize int           `env:"BLOCKCMS_CACHE_MAX_SIZE" envDefault:"10000"`

	// Save protocol
	SaveTimeout       time.Duration `env:"BLOCKCMS_SAVE_TIMEOUT" envDefault:"10s"`
	TxWaitTimeout     time.Duration `env:"BLOCKCMS_TX_WAIT_TIMEOUT" envDefault:"5s"`
	RequireHistory    bool          `env:"BLOCKCMS_REQUIRE_HISTORY" envDefault:"false"`
	RevisionListLimit int           `env:"BLOCKCMS_REVISION_LIST_LIMIT" envDefault:"50"`

	PasteImageMaxWidth int `env:"BLOCKCMS_PASTE_IMAGE_MAX_WIDTH" envDefault:"1600"`

	// Write rate limit for the admin API, per user.
	WriteRateLimit float64 `env:"BLOCKCMS_WRITE_RATE_LIMIT" envDefault:"5"`
	WriteBurst     int     `env:"BLOCKCMS_WRITE_BURST" envDefault:"20"`

	EventRetentionDays int `env:"BLOCKCMS_EVENT_RETENTION_DAYS" envDefault:"90"`

	// Seeding configuration
	DoSeed        bool   `env:"BLOCKCMS_DO_SEED" envDefault:"false"`
	AdminEmail    string `env:"BLOCKCMS_ADMIN_EMAIL"`
	AdminPassword string `env:"BLOCKCMS_ADMIN_PASSWORD"`

	// DemoMode resets the database daily and fills it with sample content.
	DemoMode bool `env:"BLOCKCMS_DEMO_MODE" envDefault:"false"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// EventRetention returns the event log retention period.
func (c Config) EventRetention() time.Duration {
	return time.Duration(c.EventRetentionDays) * 24 * time.Hour
}

// SlogLevel maps LogLevel to a slog level. Unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MinSessionSecretLength is the minimum required length for the session secret.
// AES-256 requires 32 bytes minimum for secure encryption.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("BLOCKCMS_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("BLOCKCMS_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("BLOCKCMS_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if cfg.SaveTimeout <= 0 || cfg.TxWaitTimeout <= 0 {
		return nil, fmt.Errorf("BLOCKCMS_SAVE_TIMEOUT and BLOCKCMS_TX_WAIT_TIMEOUT must be positive")
	}
	if cfg.TxWaitTimeout > cfg.SaveTimeout {
		return nil, fmt.Errorf("BLOCKCMS_TX_WAIT_TIMEOUT (%s) must not exceed BLOCKCMS_SAVE_TIMEOUT (%s)",
			cfg.TxWaitTimeout, cfg.SaveTimeout)
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
