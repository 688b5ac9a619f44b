package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies TRADEDGE_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known TRADEDGE_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Server ──
	setInt(&cfg.Server.Port, "TRADEDGE_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "TRADEDGE_SERVER_CORS_ORIGINS")

	// ── Store ──
	setStr(&cfg.Store.DataPath, "TRADEDGE_STORE_DATA_PATH")
	setStr(&cfg.Store.LicensesPath, "TRADEDGE_STORE_LICENSES_PATH")

	// ── Auth ──
	setStr(&cfg.Auth.Username, "TRADEDGE_AUTH_USERNAME")
	setStr(&cfg.Auth.Password, "TRADEDGE_AUTH_PASSWORD")
	setStr(&cfg.Auth.PasswordHash, "TRADEDGE_AUTH_PASSWORD_HASH")
	setStr(&cfg.Auth.WebhookPath, "TRADEDGE_AUTH_WEBHOOK_PATH")
	setStr(&cfg.Auth.SessionSecret, "TRADEDGE_AUTH_SESSION_SECRET")

	// ── Retention ──
	setInt(&cfg.Retention.RetentionDays, "TRADEDGE_RETENTION_DAYS")
	setInt(&cfg.Retention.RecentWindowDays, "TRADEDGE_RETENTION_RECENT_WINDOW_DAYS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "TRADEDGE_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "TRADEDGE_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "TRADEDGE_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "TRADEDGE_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "TRADEDGE_REDIS_MAX_RETRIES")

	// ── Rate limit ──
	setBool(&cfg.RateLimit.Enabled, "TRADEDGE_RATELIMIT_ENABLED")
	setInt(&cfg.RateLimit.Limit, "TRADEDGE_RATELIMIT_LIMIT")
	setDuration(&cfg.RateLimit.Window, "TRADEDGE_RATELIMIT_WINDOW")

	// ── Broadcast ──
	setBool(&cfg.Broadcast.Enabled, "TRADEDGE_BROADCAST_ENABLED")
	setStr(&cfg.Broadcast.ConnectorURL, "TRADEDGE_BROADCAST_CONNECTOR_URL")
	setDuration(&cfg.Broadcast.Timeout, "TRADEDGE_BROADCAST_TIMEOUT")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "TRADEDGE_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
