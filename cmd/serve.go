package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-event-tracker/internal/api"
	"github.com/Tiliavir/trivial-event-tracker/internal/logging"
	"github.com/Tiliavir/trivial-event-tracker/internal/supervisor"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API over HTTP",
	Long: `serve exposes the statistics, the history and event recording as a JSON
API under /api/v1, plus Prometheus metrics at /metrics.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, 127.0.0.1:8501)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewServer(app, cfg.Server, cfg.Display.Locale).Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Store.Timeout + 15*time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	svc := supervisor.NewHTTPService(srv, cfg.Server.ShutdownTimeout)

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeCfg)
	tree.Add(svc)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "Serving on http://%s (Ctrl+C to stop)\n", addr)
	logging.Info().Str("addr", addr).Msg("http server starting")

	err := tree.Serve(ctx)
	if ferr := svc.Err(); ferr != nil {
		fmt.Fprintln(os.Stderr, ferr)
		os.Exit(2)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Warn().Err(err).Msg("supervisor stopped")
	}
	logging.Info().Msg("http server stopped")
	return nil
}
