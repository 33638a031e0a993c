package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-automission-monitor/internal/data/backend"
	"github.com/penwyp/go-automission-monitor/internal/web"
)

var (
	serveAddr       string
	serveSessionTTL time.Duration
	serveSecure     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Live web dashboard",
	Long: `Serves the dashboard over HTTP. Browsers unlock it with the password and
then follow the feed through server-sent events.

Set AUTOMISSION_SIGNING_KEY to keep browser sessions valid across restarts.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "",
		"Listen address (default :8080)")
	serveCmd.Flags().DurationVar(&serveSessionTTL, "session-ttl", 0,
		"How long a browser stays unlocked (default 12h)")
	serveCmd.Flags().BoolVar(&serveSecure, "secure-cookie", false,
		"Only send the session cookie over HTTPS")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Web.Addr = serveAddr
	}
	if cmd.Flags().Changed("session-ttl") {
		cfg.Web.SessionTTL = serveSessionTTL
	}

	checker, err := cfg.Checker()
	if err != nil {
		return err
	}
	sessions, err := web.NewSessions(cfg.Web.SigningKey, cfg.Web.SessionTTL)
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

	srv, err := web.NewServer(web.Options{
		Source:   src,
		Checker:  checker,
		Sessions: sessions,
		Query:    cfg.Query(),
		Secure:   serveSecure,
	})
	if err != nil {
		return err
	}
	return srv.Serve(ctx, cfg.Web.Addr)
}
