package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-automission-monitor/internal/data/source"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, source.KindJSONL, cfg.Source.Kind)
	assert.Equal(t, "admin123", cfg.Auth.Secret)
	assert.Equal(t, ":8080", cfg.Web.Addr)
	assert.Equal(t, 12*time.Hour, cfg.Web.SessionTTL)
	assert.Equal(t, 100, cfg.Limit)
	assert.Equal(t, "applications", cfg.Source.Collection)
	require.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
source:
  kind: sqlite
  db: /var/lib/automission/records.db
web:
  addr: 127.0.0.1:9000
  session_ttl: 30m
limit: 25
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, source.KindSQLite, cfg.Source.Kind)
	assert.Equal(t, "/var/lib/automission/records.db", cfg.Source.DB)
	assert.Equal(t, "127.0.0.1:9000", cfg.Web.Addr)
	assert.Equal(t, 30*time.Minute, cfg.Web.SessionTTL)
	assert.Equal(t, 25, cfg.Limit)
	// Untouched sections keep their defaults.
	assert.Equal(t, "admin123", cfg.Auth.Secret)
	assert.Equal(t, time.Second, cfg.Refresh.UIInterval)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source: [unclosed"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source:\n  kind: sqlite\n"), 0644))
	t.Setenv("AUTOMISSION_SOURCE", "redis")
	t.Setenv("AUTOMISSION_REDIS_URL", "redis://cache:6379/0")
	t.Setenv("AUTOMISSION_LIMIT", "10")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, source.KindRedis, cfg.Source.Kind)
	assert.Equal(t, "redis://cache:6379/0", cfg.Source.RedisURL)
	assert.Equal(t, 10, cfg.Limit)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"AUTOMISSION_SECRET":      "hunter2",
		"AUTOMISSION_SESSION_TTL": "1h",
		"AUTOMISSION_DIR":         "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Defaults()
	dir := cfg.Source.Dir
	require.NoError(t, cfg.applyEnv(lookup))
	assert.Equal(t, "hunter2", cfg.Auth.Secret)
	assert.Equal(t, time.Hour, cfg.Web.SessionTTL)
	assert.Equal(t, dir, cfg.Source.Dir, "empty values are ignored")

	env["AUTOMISSION_LIMIT"] = "many"
	assert.Error(t, Defaults().applyEnv(lookup))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "unknown_kind", mutate: func(c *Config) { c.Source.Kind = "mongo" }},
		{name: "jsonl_no_dir", mutate: func(c *Config) { c.Source.Dir = "" }},
		{name: "sqlite_no_db", mutate: func(c *Config) { c.Source.Kind = source.KindSQLite; c.Source.DB = "" }},
		{name: "redis_no_url", mutate: func(c *Config) { c.Source.Kind = source.KindRedis; c.Source.RedisURL = "" }},
		{name: "firestore_no_project", mutate: func(c *Config) { c.Source.Kind = source.KindFirestore }},
		{name: "limit_zero", mutate: func(c *Config) { c.Limit = 0 }},
		{name: "limit_too_big", mutate: func(c *Config) { c.Limit = 101 }},
		{name: "ttl", mutate: func(c *Config) { c.Web.SessionTTL = 0 }},
		{name: "backoff", mutate: func(c *Config) { c.Refresh.BackoffMax = time.Millisecond }},
		{name: "timezone", mutate: func(c *Config) { c.Timezone = "Mars/Olympus" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestUnknownKindIsSentinel(t *testing.T) {
	cfg := Defaults()
	cfg.Source.Kind = "mongo"
	assert.ErrorIs(t, cfg.Validate(), source.ErrUnknownKind)
}

func TestCheckerAndQuery(t *testing.T) {
	cfg := Defaults()
	cfg.Limit = 40
	c, err := cfg.Checker()
	require.NoError(t, err)
	assert.True(t, c.Check("admin123"))
	assert.Equal(t, 40, cfg.Query().Limit)
}
