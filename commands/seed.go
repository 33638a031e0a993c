package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-automission-monitor/internal/config"
	"github.com/penwyp/go-automission-monitor/internal/core/model"
	"github.com/penwyp/go-automission-monitor/internal/data/backend"
	"github.com/penwyp/go-automission-monitor/internal/data/source"
	"github.com/penwyp/go-automission-monitor/internal/data/source/firestore"
	"github.com/penwyp/go-automission-monitor/internal/data/source/jsonl"
	"github.com/penwyp/go-automission-monitor/internal/data/source/redis"
	"github.com/penwyp/go-automission-monitor/internal/data/source/sqlite"
	"github.com/penwyp/go-automission-monitor/internal/testing/fixtures"
	"github.com/penwyp/go-automission-monitor/internal/util"
)

var (
	seedCount    int
	seedInterval time.Duration
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write demo records to the configured source",
	Long: `Writes generated application records the way the bot would, so the
dashboards have something to show. With --interval, records are written one
at a time.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().IntVarP(&seedCount, "count", "n", 20,
		"Number of records to write")
	seedCmd.Flags().DurationVar(&seedInterval, "interval", 0,
		"Pause between records (0 writes them all at once)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	src, err := backend.Open(ctx, cfg.Source)
	if err != nil {
		return fmt.Errorf("failed to open %s source: %w", cfg.Source.Kind, err)
	}
	defer src.Close()

	gen := fixtures.NewRecordGenerator(util.GetTimeProvider().Now())
	// The generator counts backwards in time; write oldest first.
	records := gen.Records(seedCount)
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	if seedInterval <= 0 {
		if err := writeRecords(ctx, cfg, src, records); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s records to %s\n", util.FormatCount(len(records)), cfg.Source.Kind)
		return nil
	}

	for _, r := range records {
		now := util.GetTimeProvider().Now()
		r.Timestamp = &now
		if err := writeRecords(ctx, cfg, src, []model.ApplicationRecord{r}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-30s %s\n", r.ID, r.Company, r.Status)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(seedInterval):
		}
	}
	return nil
}

// writeRecords stores records in whichever backend src is.
func writeRecords(ctx context.Context, cfg *config.Config, src source.Source, records []model.ApplicationRecord) error {
	switch s := src.(type) {
	case *jsonl.Source:
		return fixtures.AppendJSONL(filepath.Join(cfg.Source.Dir, "seed.jsonl"), records)
	case *sqlite.Source:
		return s.Upsert(ctx, records...)
	case *redis.Source:
		return s.Put(ctx, records...)
	case *firestore.Source:
		return s.Put(ctx, records...)
	}
	return fmt.Errorf("seeding is not supported for %s sources", cfg.Source.Kind)
}
