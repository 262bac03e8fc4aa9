// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// MinServiceTokenLength is the minimum required length for the service
// token. The token is the single trusted credential authorized to write
// to the store on behalf of the application tier.
const MinServiceTokenLength = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"POSTFORGE_DB_PATH" envDefault:"./data/postforge.db"`
	ServerHost string `env:"POSTFORGE_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"POSTFORGE_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"POSTFORGE_ENV" envDefault:"development"`
	LogLevel   string `env:"POSTFORGE_LOG_LEVEL" envDefault:"info"`

	// Timezone used to derive the calendar date column from event timestamps.
	Timezone string `env:"POSTFORGE_TIMEZONE" envDefault:"UTC"`

	// ServiceToken is the shared credential required on every /api request.
	ServiceToken string `env:"POSTFORGE_SERVICE_TOKEN,required"`

	// AdminPasswordHash is the argon2id hash verified on admin login.
	// Login is disabled when unset.
	AdminPasswordHash string `env:"POSTFORGE_ADMIN_PASSWORD_HASH"`

	// SessionIdleTimeoutSecs bounds how long an admin session stays valid
	// without activity.
	SessionIdleTimeoutSecs int `env:"POSTFORGE_SESSION_IDLE_TIMEOUT" envDefault:"3600"`

	// Retention windows, in days. Feedback has no window; it is kept forever.
	RetentionRequestDays  int `env:"POSTFORGE_RETENTION_REQUEST_DAYS" envDefault:"90"`
	RetentionUsageDays    int `env:"POSTFORGE_RETENTION_USAGE_DAYS" envDefault:"90"`
	RetentionSecurityDays int `env:"POSTFORGE_RETENTION_SECURITY_DAYS" envDefault:"30"`
	RetentionSessionDays  int `env:"POSTFORGE_RETENTION_SESSION_DAYS" envDefault:"7"`

	// JanitorSchedule is a five-field cron expression for the retention run.
	JanitorSchedule string `env:"POSTFORGE_JANITOR_SCHEDULE" envDefault:"30 3 * * *"`

	// Per-client request admission limits, enforced by the HTTP layer
	// against the request ledger.
	RateLimitPerHour int `env:"POSTFORGE_RATE_LIMIT_PER_HOUR" envDefault:"10"`
	RateLimitPerDay  int `env:"POSTFORGE_RATE_LIMIT_PER_DAY" envDefault:"50"`

	// In-process burst limiting applied before the ledger is consulted.
	RateLimitRPS   float64 `env:"POSTFORGE_RATE_LIMIT_RPS" envDefault:"1"`
	RateLimitBurst int     `env:"POSTFORGE_RATE_LIMIT_BURST" envDefault:"5"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// SessionIdleTimeout returns the session idle timeout as a duration.
func (c Config) SessionIdleTimeout() time.Duration {
	return time.Duration(c.SessionIdleTimeoutSecs) * time.Second
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.ServiceToken) < MinServiceTokenLength {
		return nil, fmt.Errorf("POSTFORGE_SERVICE_TOKEN must be at least %d bytes long, got %d bytes; "+
			"generate a secure token with: openssl rand -base64 32",
			MinServiceTokenLength, len(cfg.ServiceToken))
	}

	for name, days := range map[string]int{
		"POSTFORGE_RETENTION_REQUEST_DAYS":  cfg.RetentionRequestDays,
		"POSTFORGE_RETENTION_USAGE_DAYS":    cfg.RetentionUsageDays,
		"POSTFORGE_RETENTION_SECURITY_DAYS": cfg.RetentionSecurityDays,
		"POSTFORGE_RETENTION_SESSION_DAYS":  cfg.RetentionSessionDays,
	} {
		if days <= 0 {
			return nil, fmt.Errorf("%s must be positive, got %d", name, days)
		}
	}

	if cfg.SessionIdleTimeoutSecs <= 0 {
		return nil, fmt.Errorf("POSTFORGE_SESSION_IDLE_TIMEOUT must be positive, got %d", cfg.SessionIdleTimeoutSecs)
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return cfg, nil
}
