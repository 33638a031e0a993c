package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-automission-monitor/internal/config"
	"github.com/penwyp/go-automission-monitor/internal/util"
)

var (
	// Logging related
	debug bool

	// Config file
	cfgFile string

	// Source selection
	sourceKind  string
	dataDir     string
	dbPath      string
	redisURL    string
	redisPrefix string
	project     string
	collection  string
	credentials string

	// Display related
	timezone string
	limit    int
)

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "",
		"Config file (default ~/.go-automission-monitor/config.yaml)")
	flags.BoolVar(&debug, "debug", false,
		"Enable debug mode")

	flags.StringVar(&sourceKind, "source", "",
		"Record source (jsonl, sqlite, redis, firestore, memory)")
	flags.StringVar(&dataDir, "dir", "",
		"Directory of *.jsonl record files (jsonl source)")
	flags.StringVar(&dbPath, "db", "",
		"SQLite database path (sqlite source)")
	flags.StringVar(&redisURL, "redis-url", "",
		"Redis address or URL (redis source)")
	flags.StringVar(&redisPrefix, "redis-prefix", "",
		"Key prefix (redis source)")
	flags.StringVar(&project, "project", "",
		"Google Cloud project id (firestore source)")
	flags.StringVar(&collection, "collection", "",
		"Collection name (firestore source)")
	flags.StringVar(&credentials, "credentials", "",
		"Service account JSON file (firestore source)")

	flags.StringVar(&timezone, "timezone", "",
		"Timezone setting (e.g., Asia/Shanghai, UTC)")
	flags.IntVar(&limit, "limit", 0,
		"Number of most recent records to show (1-100)")
}

// loadConfig resolves the config file and environment, then lets explicitly
// set flags win.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	strs := map[string]struct {
		dst *string
		val string
	}{
		"source":       {&cfg.Source.Kind, sourceKind},
		"dir":          {&cfg.Source.Dir, dataDir},
		"db":           {&cfg.Source.DB, dbPath},
		"redis-url":    {&cfg.Source.RedisURL, redisURL},
		"redis-prefix": {&cfg.Source.RedisPrefix, redisPrefix},
		"project":      {&cfg.Source.Project, project},
		"collection":   {&cfg.Source.Collection, collection},
		"credentials":  {&cfg.Source.Credentials, credentials},
		"timezone":     {&cfg.Timezone, timezone},
	}
	for name, f := range strs {
		if flags.Changed(name) {
			*f.dst = f.val
		}
	}
	if flags.Changed("limit") {
		cfg.Limit = limit
	}
	if debug {
		cfg.Log.Level = "debug"
	}

	cfg.Source.Dir = expandPath(cfg.Source.Dir)
	cfg.Source.DB = expandPath(cfg.Source.DB)
	cfg.Source.Credentials = expandPath(cfg.Source.Credentials)
	cfg.Log.File = expandPath(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setup loads config and initializes logging and the time provider.
func setup(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	if cfg.Log.File != "" {
		if err := ensureDir(filepath.Dir(cfg.Log.File)); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	if err := util.InitLogger(util.LoggerOptions{
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
		Console: debug,
		Format:  util.LogFormat(cfg.Log.Format),
	}); err != nil {
		return nil, err
	}
	if err := util.InitializeTimeProvider(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("failed to initialize timezone: %w", err)
	}
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// Helper functions

func expandPath(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
