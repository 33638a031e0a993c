// Package config resolves runtime settings in priority order: defaults, then
// the YAML file, then environment (including a .env file), then whatever the
// command line sets explicitly.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/penwyp/go-automission-monitor/internal/core/auth"
	"github.com/penwyp/go-automission-monitor/internal/core/model"
	"github.com/penwyp/go-automission-monitor/internal/data/source"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "AUTOMISSION_"

type Config struct {
	Source   SourceConfig  `yaml:"source"`
	Auth     AuthConfig    `yaml:"auth"`
	Web      WebConfig     `yaml:"web"`
	Log      LogConfig     `yaml:"log"`
	Timezone string        `yaml:"timezone"`
	Limit    int           `yaml:"limit"`
	Refresh  RefreshConfig `yaml:"refresh"`
}

type SourceConfig struct {
	Kind        string `yaml:"kind"`
	Dir         string `yaml:"dir"`
	DB          string `yaml:"db"`
	RedisURL    string `yaml:"redis_url"`
	RedisPrefix string `yaml:"redis_prefix"`
	Project     string `yaml:"project"`
	Collection  string `yaml:"collection"`
	Credentials string `yaml:"credentials"`
}

// AuthConfig holds the shared secret. PasswordHash, when set, takes
// precedence over Secret.
type AuthConfig struct {
	Secret       string `yaml:"secret"`
	PasswordHash string `yaml:"password_hash"`
}

type WebConfig struct {
	Addr       string        `yaml:"addr"`
	SessionTTL time.Duration `yaml:"session_ttl"`
	SigningKey string        `yaml:"signing_key"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	File   string `yaml:"file"`
	Format string `yaml:"format"`
}

// RefreshConfig tunes the terminal dashboard loop.
type RefreshConfig struct {
	UIInterval   time.Duration `yaml:"ui_interval"`
	BackoffStart time.Duration `yaml:"backoff_start"`
	BackoffMax   time.Duration `yaml:"backoff_max"`
}

// HomeDir is the per-user state directory.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".go-automission-monitor"
	}
	return filepath.Join(home, ".go-automission-monitor")
}

// DefaultPath is where Load looks when no file is named.
func DefaultPath() string {
	return filepath.Join(HomeDir(), "config.yaml")
}

func Defaults() *Config {
	home := HomeDir()
	return &Config{
		Source: SourceConfig{
			Kind:        source.KindJSONL,
			Dir:         filepath.Join(home, "records"),
			DB:          filepath.Join(home, "records.db"),
			RedisURL:    "localhost:6379",
			RedisPrefix: "automission",
			Collection:  model.CollectionApplications,
		},
		Auth: AuthConfig{
			Secret: auth.DefaultSecret,
		},
		Web: WebConfig{
			Addr:       ":8080",
			SessionTTL: 12 * time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			File:   filepath.Join(home, "logs", "app.log"),
			Format: "text",
		},
		Timezone: "Local",
		Limit:    model.DefaultWindowSize,
		Refresh: RefreshConfig{
			UIInterval:   time.Second,
			BackoffStart: time.Second,
			BackoffMax:   30 * time.Second,
		},
	}
}

// Load resolves defaults, the file at path and the environment. An empty
// path means DefaultPath, which may be absent; a named file must exist.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"SOURCE":        &c.Source.Kind,
		"DIR":           &c.Source.Dir,
		"DB":            &c.Source.DB,
		"REDIS_URL":     &c.Source.RedisURL,
		"REDIS_PREFIX":  &c.Source.RedisPrefix,
		"PROJECT":       &c.Source.Project,
		"COLLECTION":    &c.Source.Collection,
		"CREDENTIALS":   &c.Source.Credentials,
		"SECRET":        &c.Auth.Secret,
		"PASSWORD_HASH": &c.Auth.PasswordHash,
		"ADDR":          &c.Web.Addr,
		"SIGNING_KEY":   &c.Web.SigningKey,
		"LOG_LEVEL":     &c.Log.Level,
		"LOG_FILE":      &c.Log.File,
		"LOG_FORMAT":    &c.Log.Format,
		"TIMEZONE":      &c.Timezone,
	}
	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup(EnvPrefix + "LIMIT"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sLIMIT: %w", EnvPrefix, err)
		}
		c.Limit = n
	}
	if v, ok := lookup(EnvPrefix + "SESSION_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sSESSION_TTL: %w", EnvPrefix, err)
		}
		c.Web.SessionTTL = d
	}
	return nil
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if !slices.Contains(source.Kinds(), c.Source.Kind) {
		return fmt.Errorf("%w: %q (valid: %s)", source.ErrUnknownKind, c.Source.Kind, strings.Join(source.Kinds(), ", "))
	}
	switch c.Source.Kind {
	case source.KindJSONL:
		if c.Source.Dir == "" {
			return errors.New("jsonl source requires a directory")
		}
	case source.KindSQLite:
		if c.Source.DB == "" {
			return errors.New("sqlite source requires a database path")
		}
	case source.KindRedis:
		if c.Source.RedisURL == "" {
			return errors.New("redis source requires an address")
		}
	case source.KindFirestore:
		if c.Source.Project == "" {
			return errors.New("firestore source requires a project id")
		}
	}
	if c.Limit < 1 || c.Limit > model.DefaultWindowSize {
		return fmt.Errorf("limit must be between 1 and %d, got %d", model.DefaultWindowSize, c.Limit)
	}
	if c.Web.SessionTTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	if c.Refresh.UIInterval <= 0 {
		return errors.New("ui interval must be positive")
	}
	if c.Refresh.BackoffStart <= 0 || c.Refresh.BackoffMax < c.Refresh.BackoffStart {
		return errors.New("invalid reconnect backoff")
	}
	if c.Timezone != "" && c.Timezone != "Local" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
		}
	}
	return nil
}

// Checker builds the credential checker for the configured secret.
func (c *Config) Checker() (auth.CredentialChecker, error) {
	return auth.NewChecker(c.Auth.Secret, c.Auth.PasswordHash)
}

// Query returns the live window query for the configured limit.
func (c *Config) Query() source.Query {
	return source.DefaultQuery().WithLimit(c.Limit)
}
