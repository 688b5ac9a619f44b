// Package config defines the top-level configuration for tradedge and
// provides validation helpers.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by TRADEDGE_* environment
// variables.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Store     StoreConfig     `toml:"store"`
	Auth      AuthConfig      `toml:"auth"`
	Retention RetentionConfig `toml:"retention"`
	Redis     RedisConfig     `toml:"redis"`
	RateLimit RateLimitConfig `toml:"ratelimit"`
	Broadcast BroadcastConfig `toml:"broadcast"`
	LogLevel  string          `toml:"log_level"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// StoreConfig holds the JSON document paths.
type StoreConfig struct {
	DataPath     string `toml:"data_path"`
	LicensesPath string `toml:"licenses_path"`
}

// AuthConfig holds operator credentials and the webhook gate. PasswordHash
// is a bcrypt hash and takes precedence over the plaintext Password when
// both are set.
type AuthConfig struct {
	Username      string `toml:"username"`
	Password      string `toml:"password"`
	PasswordHash  string `toml:"password_hash"`
	WebhookPath   string `toml:"webhook_path"`
	SessionSecret string `toml:"session_secret"`
}

// RetentionConfig holds the read-path windows, in days.
type RetentionConfig struct {
	RetentionDays    int `toml:"retention_days"`
	RecentWindowDays int `toml:"recent_window_days"`
}

// RedisConfig holds Redis connection parameters. Redis is optional; it only
// backs the rate limiter and is used when Addr is set.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
}

// RateLimitConfig holds webhook rate limiting parameters. It takes effect
// only when Redis is configured.
type RateLimitConfig struct {
	Enabled bool     `toml:"enabled"`
	Limit   int      `toml:"limit"`
	Window  duration `toml:"window"`
}

// BroadcastConfig holds the license broadcast parameters. Disabled by
// default: a broadcast request then only acknowledges the template without
// contacting the connector.
type BroadcastConfig struct {
	Enabled      bool     `toml:"enabled"`
	ConnectorURL string   `toml:"connector_url"`
	Timeout      duration `toml:"timeout"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 3000,
		},
		Store: StoreConfig{
			DataPath:     "data.json",
			LicensesPath: "licenses.json",
		},
		Retention: RetentionConfig{
			RetentionDays:    60,
			RecentWindowDays: 31,
		},
		Redis: RedisConfig{
			DB:         0,
			PoolSize:   10,
			MaxRetries: 3,
		},
		RateLimit: RateLimitConfig{
			Enabled: false,
			Limit:   60,
			Window:  duration{time.Minute},
		},
		Broadcast: BroadcastConfig{
			Enabled:      false,
			ConnectorURL: "https://webhook.pineconnector.com",
			Timeout:      duration{5 * time.Second},
		},
		LogLevel: "info",
	}
}

// Validate checks that the configuration is complete enough to start.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}
	if c.Store.DataPath == "" {
		return fmt.Errorf("config: store.data_path is required")
	}
	if c.Store.LicensesPath == "" {
		return fmt.Errorf("config: store.licenses_path is required")
	}
	if c.Auth.Username == "" {
		return fmt.Errorf("config: auth.username is required")
	}
	if c.Auth.Password == "" && c.Auth.PasswordHash == "" {
		return fmt.Errorf("config: auth.password or auth.password_hash is required")
	}
	if c.Auth.WebhookPath == "" {
		return fmt.Errorf("config: auth.webhook_path is required")
	}
	if c.Auth.SessionSecret == "" {
		return fmt.Errorf("config: auth.session_secret is required")
	}
	if c.Retention.RetentionDays <= 0 {
		return fmt.Errorf("config: retention.retention_days must be positive")
	}
	if c.Retention.RecentWindowDays <= 0 {
		return fmt.Errorf("config: retention.recent_window_days must be positive")
	}
	if c.RateLimit.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: ratelimit requires redis.addr")
		}
		if c.RateLimit.Limit <= 0 || c.RateLimit.Window.Duration <= 0 {
			return fmt.Errorf("config: ratelimit limit and window must be positive")
		}
	}
	if c.Broadcast.Enabled && c.Broadcast.ConnectorURL == "" {
		return fmt.Errorf("config: broadcast requires connector_url")
	}
	return nil
}
