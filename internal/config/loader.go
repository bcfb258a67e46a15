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
// built-in defaults, applies MARKETSIM_* environment variable overrides, and
// returns the final Config. An empty path skips the file and uses defaults
// plus environment overrides. The returned Config has NOT been validated;
// the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known MARKETSIM_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Engine ──
	setDuration(&cfg.Engine.DriftInterval, "MARKETSIM_ENGINE_DRIFT_INTERVAL")
	setDuration(&cfg.Engine.ApprovalDelay, "MARKETSIM_ENGINE_APPROVAL_DELAY")
	setInt64(&cfg.Engine.RandSeed, "MARKETSIM_ENGINE_RAND_SEED")

	// ── Persistence ──
	setStr(&cfg.Persistence.Backend, "MARKETSIM_PERSISTENCE_BACKEND")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "MARKETSIM_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "MARKETSIM_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "MARKETSIM_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "MARKETSIM_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "MARKETSIM_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "MARKETSIM_REDIS_TLS_ENABLED")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "MARKETSIM_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "MARKETSIM_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "MARKETSIM_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "MARKETSIM_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "MARKETSIM_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "MARKETSIM_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "MARKETSIM_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "MARKETSIM_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "MARKETSIM_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "MARKETSIM_POSTGRES_RUN_MIGRATIONS")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "MARKETSIM_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "MARKETSIM_S3_REGION")
	setStr(&cfg.S3.Bucket, "MARKETSIM_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "MARKETSIM_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "MARKETSIM_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "MARKETSIM_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "MARKETSIM_S3_FORCE_PATH_STYLE")

	// ── Archive ──
	setBool(&cfg.Archive.Enabled, "MARKETSIM_ARCHIVE_ENABLED")
	setDuration(&cfg.Archive.Interval, "MARKETSIM_ARCHIVE_INTERVAL")

	// ── Server ──
	setInt(&cfg.Server.Port, "MARKETSIM_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "MARKETSIM_SERVER_CORS_ORIGINS")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "MARKETSIM_LOG_LEVEL")
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

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
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
