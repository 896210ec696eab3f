package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-event-tracker/internal/stats"
	"github.com/Tiliavir/trivial-event-tracker/internal/timecalc"
	"github.com/Tiliavir/trivial-event-tracker/internal/tracker"
)

var (
	statsFormat string
	statsLocale string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics over the full event history",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsFormat, "format", "md", "Output format: md, json")
	statsCmd.Flags().StringVar(&statsLocale, "locale", "", "Label language: en, de (default from config)")
}

func runStats(cmd *cobra.Command, args []string) error {
	labels, err := resolveLabels(statsLocale)
	if err != nil {
		return err
	}
	d := app.Dashboard(cmd.Context(), labels)

	switch statsFormat {
	case "json":
		data, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "error encoding JSON:", err)
			os.Exit(2)
		}
		fmt.Println(string(data))
	case "md":
		printDashboard(os.Stdout, d, time.Now())
	default:
		return fmt.Errorf("unknown format %q (want md or json)", statsFormat)
	}
	return nil
}

// resolveLabels picks the flag locale, falling back to the configured one.
func resolveLabels(code string) (stats.Labels, error) {
	if code == "" {
		code = cfg.Display.Locale
	}
	return stats.Locale(code)
}

// printDashboard renders every section of the report as plain text.
func printDashboard(w io.Writer, d tracker.Dashboard, now time.Time) {
	if d.Notice != "" {
		fmt.Fprintln(w, d.Notice)
	}
	rep := d.Report
	if rep.Empty {
		return
	}

	fmt.Fprintf(w, "Events: %d (%s – %s)\n\n",
		len(rep.Rows),
		timecalc.FormatDate(rep.Rows[0].Date),
		timecalc.FormatDate(rep.Rows[len(rep.Rows)-1].Date))

	fmt.Fprintln(w, "Weekday × Month")
	printMatrix(w, rep.Matrix)
	if rep.Insight != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, rep.Insight.Text)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Per year")
	for _, y := range rep.Years {
		fmt.Fprintf(w, "  %-12d%d\n", y.Year, y.Count)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Per month")
	for _, m := range rep.Months {
		fmt.Fprintf(w, "  %-12s%d\n", m.Label, m.Count)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Per weekday")
	for _, wd := range rep.Weekdays {
		fmt.Fprintf(w, "  %-12s%3d  %s\n", wd.Label, wd.Count, strings.Repeat("█", wd.Count))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Monthly series (rolling mean over %d months)\n", stats.RollingWindow)
	for _, b := range rep.Series {
		fmt.Fprintf(w, "  %s  %3d  %-6s %s\n", b.Label, b.Count, b.Rolling.StringFixed(2), strings.Repeat("█", b.Count))
	}

	fmt.Fprintln(w)
	printForecast(w, rep.Forecast, now)
}

func printMatrix(w io.Writer, mx stats.Matrix) {
	width := 0
	for _, l := range mx.RowLabels {
		width = max(width, len([]rune(l)))
	}
	fmt.Fprintf(w, "  %-*s", width, "")
	for _, c := range mx.ColLabels {
		fmt.Fprintf(w, " %4s", abbrev(c))
	}
	fmt.Fprintln(w)
	for i, l := range mx.RowLabels {
		fmt.Fprintf(w, "  %s%s", l, strings.Repeat(" ", width-len([]rune(l))))
		for _, n := range mx.Counts[i] {
			fmt.Fprintf(w, " %4d", n)
		}
		fmt.Fprintln(w)
	}
}

// abbrev shortens a month label to three runes.
func abbrev(s string) string {
	r := []rune(s)
	if len(r) > 3 {
		return string(r[:3])
	}
	return s
}

func printForecast(w io.Writer, f stats.Forecast, now time.Time) {
	if !f.Available {
		fmt.Fprintln(w, "Forecast: not enough events (need at least 2).")
		return
	}
	fmt.Fprintf(w, "Average interval: %s days over %d intervals\n", f.MeanInterval.StringFixed(1), f.Intervals)
	fmt.Fprintf(w, "Next expected:    %s", timecalc.FormatDate(*f.Next))
	if days, ok := f.DaysFrom(now); ok {
		switch {
		case days > 0:
			fmt.Fprintf(w, " (in %s)", timecalc.FormatDays(days))
		case days < 0:
			fmt.Fprintf(w, " (%s overdue)", timecalc.FormatDays(-days))
		default:
			fmt.Fprint(w, " (today)")
		}
	}
	fmt.Fprintln(w)
}
