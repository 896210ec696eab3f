package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-event-tracker/internal/export"
)

var (
	historyFormat string
	historyLocale string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the running history of all events",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyFormat, "format", "md", "Output format: md, csv")
	historyCmd.Flags().StringVar(&historyLocale, "locale", "", "Label language: en, de (default from config)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyFormat != export.Markdown && historyFormat != export.CSV {
		return fmt.Errorf("unknown format %q (want md or csv)", historyFormat)
	}
	labels, err := resolveLabels(historyLocale)
	if err != nil {
		return err
	}

	d := app.Dashboard(cmd.Context(), labels)
	if d.Degraded {
		fmt.Fprintln(os.Stderr, d.Notice)
	}
	if err := export.WriteHistory(os.Stdout, historyFormat, d.Report.Rows); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return nil
}
