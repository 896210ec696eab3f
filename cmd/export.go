package cmd

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-event-tracker/internal/export"
	"github.com/Tiliavir/trivial-event-tracker/internal/stats"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all events",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: "+strings.Join(export.Formats(), ", "))
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	if !slices.Contains(export.Formats(), exportFormat) {
		return fmt.Errorf("unknown format %q (want one of %s)", exportFormat, strings.Join(export.Formats(), ", "))
	}

	// Export never degrades: a failed fetch must not produce an empty file.
	events, err := app.Events(cmd.Context())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	events = stats.SortByDate(events)

	write := func(w io.Writer) error {
		return export.Write(w, exportFormat, events)
	}
	if exportOutput == "" {
		err = write(os.Stdout)
	} else {
		err = export.WriteFile(exportOutput, write)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if exportOutput != "" {
		fmt.Fprintf(os.Stderr, "Exported %d events to %s\n", len(events), exportOutput)
	}
	return nil
}
