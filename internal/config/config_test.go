package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "debug"

[engine]
drift_interval = "1s"

[persistence]
backend = "redis"

[redis]
addr = "redis.internal:6380"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, time.Second, cfg.Engine.DriftInterval.Duration)
	assert.Equal(t, "redis", cfg.Persistence.Backend)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	// Untouched sections keep defaults.
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 60*time.Second, cfg.Engine.ApprovalDelay.Duration)
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	t.Setenv("MARKETSIM_SERVER_PORT", "9100")
	t.Setenv("MARKETSIM_ENGINE_DRIFT_INTERVAL", "500ms")
	t.Setenv("MARKETSIM_PERSISTENCE_BACKEND", "postgres")
	t.Setenv("MARKETSIM_POSTGRES_DSN", "postgres://u:p@db:5432/marketsim")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.Engine.DriftInterval.Duration)
	assert.Equal(t, "postgres", cfg.Persistence.Backend)
	require.NoError(t, cfg.Validate())
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "loud"
	cfg.Persistence.Backend = "csv"
	cfg.Server.Port = 0
	cfg.Engine.DriftInterval.Duration = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")
	assert.Contains(t, err.Error(), "backend")
	assert.Contains(t, err.Error(), "port")
	assert.Contains(t, err.Error(), "drift_interval")
}

func TestValidateSkipsUnselectedBackends(t *testing.T) {
	cfg := Defaults()
	cfg.Persistence.Backend = "memory"
	cfg.Redis.Addr = ""
	cfg.Postgres.Host = ""

	require.NoError(t, cfg.Validate())
}

func TestRedactedConfigMasksSecrets(t *testing.T) {
	cfg := Defaults()
	cfg.Redis.Password = "hunter2"
	cfg.S3.SecretKey = "shhh"
	cfg.Postgres.DSN = "postgres://u:p@db/x"

	red := RedactedConfig(&cfg)
	assert.Equal(t, "***", red.Redis.Password)
	assert.Equal(t, "***", red.S3.SecretKey)
	assert.Equal(t, "***", red.Postgres.DSN)
	// Original untouched.
	assert.Equal(t, "hunter2", cfg.Redis.Password)
}
