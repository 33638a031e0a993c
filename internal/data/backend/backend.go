// Package backend opens the configured record source.
package backend

import (
	"context"
	"fmt"

	"github.com/penwyp/go-automission-monitor/internal/config"
	"github.com/penwyp/go-automission-monitor/internal/data/source"
	"github.com/penwyp/go-automission-monitor/internal/data/source/firestore"
	"github.com/penwyp/go-automission-monitor/internal/data/source/jsonl"
	"github.com/penwyp/go-automission-monitor/internal/data/source/memory"
	"github.com/penwyp/go-automission-monitor/internal/data/source/redis"
	"github.com/penwyp/go-automission-monitor/internal/data/source/sqlite"
	"github.com/penwyp/go-automission-monitor/internal/util"
)

// Open returns a ready Source for cfg.Kind. The caller closes it.
func Open(ctx context.Context, cfg config.SourceConfig) (source.Source, error) {
	util.LogInfo("Opening record source", util.F("kind", cfg.Kind))

	switch cfg.Kind {
	case source.KindMemory:
		return memory.New(), nil

	case source.KindJSONL:
		return jsonl.New(cfg.Dir), nil

	case source.KindSQLite:
		s, err := sqlite.Open(cfg.DB)
		if err != nil {
			return nil, err
		}
		return s, nil

	case source.KindRedis:
		client, err := redis.Connect(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		s := redis.New(client, cfg.RedisPrefix)
		if err := s.Ping(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("redis %s: %w", cfg.RedisURL, err)
		}
		return s, nil

	case source.KindFirestore:
		s, err := firestore.Open(ctx, firestore.Config{
			ProjectID:       cfg.Project,
			Collection:      cfg.Collection,
			CredentialsFile: cfg.Credentials,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", source.ErrUnknownKind, cfg.Kind)
}
