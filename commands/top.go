package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-automission-monitor/internal/application/dashboard"
	"github.com/penwyp/go-automission-monitor/internal/data/backend"
	"github.com/penwyp/go-automission-monitor/internal/presentation/layout"
)

var (
	// Display related flags
	topLayout string
)

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Live terminal dashboard",
	Long: `Similar to Linux top command, shows the most recent bot actions as they
happen, with running totals of processed, applied and skipped records.

The dashboard is locked until the password is entered.

Keys:
  l          lock the dashboard and return to the password prompt
  t          switch between full and minimal layout
  h          toggle help
  q, Esc     quit`,
	RunE: runTop,
}

func init() {
	rootCmd.AddCommand(topCmd)

	topCmd.Flags().StringVar(&topLayout, "layout", "full",
		"Initial layout (full or minimal)")
}

func parseLayout(name string) (int, error) {
	switch name {
	case "", "full":
		return layout.StyleFull, nil
	case "minimal":
		return layout.StyleMinimal, nil
	}
	return 0, fmt.Errorf("invalid layout '%s': must be either 'full' or 'minimal'", name)
}

func runTop(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	style, err := parseLayout(topLayout)
	if err != nil {
		return err
	}
	checker, err := cfg.Checker()
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

	orch, err := dashboard.NewOrchestrator(&dashboard.Config{
		Query:             cfg.Query(),
		Timezone:          cfg.Timezone,
		LayoutStyle:       style,
		UIRefreshInterval: cfg.Refresh.UIInterval,
		BackoffStart:      cfg.Refresh.BackoffStart,
		BackoffMax:        cfg.Refresh.BackoffMax,
	}, dashboard.Deps{
		Source:  src,
		Checker: checker,
	})
	if err != nil {
		return err
	}
	return orch.Run(ctx)
}
