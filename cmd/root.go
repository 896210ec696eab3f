package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-event-tracker/internal/config"
	"github.com/Tiliavir/trivial-event-tracker/internal/logging"
	"github.com/Tiliavir/trivial-event-tracker/internal/store"
	"github.com/Tiliavir/trivial-event-tracker/internal/tracker"
)

var (
	configPath string
	logLevel   string
	logFormat  string

	cfg    config.Config
	stores *store.Handle
	app    *tracker.Tracker
)

var rootCmd = &cobra.Command{
	Use:   "tet",
	Short: "Trivial Event Tracker – log events and see when they happen",
	Long: `tet records discrete events (name, date, notes) in a hosted Supabase /
PostgreSQL table and derives statistics from the full history: a weekday ×
month heatmap, yearly and monthly counts, a monthly time series and a
forecast of the next occurrence.

Configuration lives in ~/.tet/config.yaml; TET_STORE_URL and TET_STORE_KEY
(or SUPABASE_URL and SUPABASE_KEY) provide the store credentials.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $TET_CONFIG or ~/.tet/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: console, json")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
}

// setup loads the configuration, configures logging and prepares the
// lazily opened store. Missing credentials stop the program here.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if errors.Is(err, config.ErrMissingSecret) {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "Set TET_STORE_URL and TET_STORE_KEY, or add them to the config file.")
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if logLevel != "" {
		if !logging.ValidLevel(logLevel) {
			return fmt.Errorf("unknown log level %q", logLevel)
		}
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	storeCfg := cfg.Store
	stores = store.NewHandle(func() (store.EventStore, error) {
		return store.Open(context.Background(), storeCfg)
	})
	app = tracker.New(stores)
	return nil
}
