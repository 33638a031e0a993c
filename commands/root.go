package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-automission-monitor/internal/application/dashboard"
	"github.com/penwyp/go-automission-monitor/internal/config"
	"github.com/penwyp/go-automission-monitor/internal/core/auth"
	"github.com/penwyp/go-automission-monitor/internal/core/state"
	"github.com/penwyp/go-automission-monitor/internal/data/backend"
	"github.com/penwyp/go-automission-monitor/internal/data/source"
	"github.com/penwyp/go-automission-monitor/internal/presentation/formatter"
	"github.com/penwyp/go-automission-monitor/internal/presentation/prompt"
	"github.com/penwyp/go-automission-monitor/internal/presentation/view"
	"github.com/penwyp/go-automission-monitor/internal/util"
)

var (
	// Output related
	outputFormat string
	password     string
	fetchTimeout time.Duration

	rootCmd = &cobra.Command{
		Use:   "go-automission-monitor [flags]",
		Short: "Live monitor for the job application bot",
		Long: `go-automission-monitor follows the records written by the job application
bot and shows the most recent actions with running totals.

Without a subcommand it unlocks, reads one snapshot and prints a report.

Examples:
  go-automission-monitor                                 # Report from ~/.go-automission-monitor/records
  go-automission-monitor --source sqlite --db bot.db     # Report from a SQLite database
  go-automission-monitor --output json --limit 20        # Last 20 actions as JSON
  go-automission-monitor top                             # Live terminal dashboard
  go-automission-monitor serve --addr :8080              # Live web dashboard`,
		SilenceUsage: true,
		RunE:         runReport,
	}
)

func init() {
	rootCmd.Flags().StringVarP(&outputFormat, "output", "o", formatter.OutputTable,
		"Output format (table, json, csv, summary)")
	rootCmd.Flags().StringVar(&password, "password", "",
		"Dashboard password (prompted when empty)")
	rootCmd.Flags().DurationVar(&fetchTimeout, "timeout", 10*time.Second,
		"How long to wait for the first snapshot")
}

func Execute() error {
	return rootCmd.Execute()
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	f, err := formatter.New(outputFormat)
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

	r := &reporter{
		cfg:      cfg,
		src:      src,
		checker:  checker,
		prompter: prompt.New(os.Stdin, os.Stderr),
		notifier: prompt.NewTerminalNotifier(os.Stderr),
		timeout:  fetchTimeout,
	}
	return r.run(ctx, password, f, cmd.OutOrStdout())
}

// reporter is the one-shot flow: unlock, read one snapshot, format it.
type reporter struct {
	cfg      *config.Config
	src      source.Source
	checker  auth.CredentialChecker
	prompter dashboard.PasswordPrompter
	notifier state.Notifier
	timeout  time.Duration
}

func (r *reporter) run(ctx context.Context, password string, f formatter.Formatter, out io.Writer) error {
	s, err := r.unlock(ctx, password)
	if err != nil {
		return err
	}

	s, fetchErr := dashboard.Fetch(ctx, r.src, s, r.cfg.Query(), r.timeout)
	if fetchErr != nil {
		util.LogError("Fetch failed", util.F("error", fetchErr))
		if s.LastError == "" {
			return fetchErr
		}
		// A stream error still prints the disconnected report.
	}

	v := view.Build(s, util.GetTimeProvider().Now(), view.WithLimit(r.cfg.Limit))
	if err := f.Format(out, v.Dashboard); err != nil {
		return err
	}
	return fetchErr
}

// unlock checks password, or prompts until the gate opens when it is empty.
func (r *reporter) unlock(ctx context.Context, password string) (state.State, error) {
	gate := state.NewGate(r.checker, r.notifier)
	var s state.State

	if password != "" {
		s = gate.Submit(s, password)
		if !s.Authenticated {
			return s, errors.New(state.IncorrectPasswordMessage)
		}
		return s, nil
	}

	for !s.Authenticated {
		v := view.Build(s, util.GetTimeProvider().Now())
		attempt, err := r.prompter.Password(ctx, v.Login)
		if err != nil {
			return s, err
		}
		s = gate.Submit(s, attempt)
	}
	return s, nil
}
