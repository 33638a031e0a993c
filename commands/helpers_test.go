package commands

import (
	"context"

	"github.com/penwyp/go-automission-monitor/internal/config"
	"github.com/penwyp/go-automission-monitor/internal/data/backend"
	"github.com/penwyp/go-automission-monitor/internal/data/source"
)

func openForTest(cfg *config.Config) (source.Source, error) {
	return backend.Open(context.Background(), cfg.Source)
}
