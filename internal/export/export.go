// Package export writes the raw event history and the running history table
// in the formats the CLI offers.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/trivial-event-tracker/internal/model"
	"github.com/Tiliavir/trivial-event-tracker/internal/stats"
	"github.com/Tiliavir/trivial-event-tracker/internal/timecalc"
)

// Supported formats.
const (
	CSV      = "csv"
	JSON     = "json"
	YAML     = "yaml"
	Markdown = "md"
)

// Formats lists the formats accepted by Write.
func Formats() []string {
	return []string{CSV, JSON, YAML, Markdown}
}

// Record is the export shape of one event: dates as YYYY-MM-DD, creation
// time as RFC 3339.
type Record struct {
	ID        int64  `json:"id" yaml:"id"`
	Date      string `json:"date" yaml:"date"`
	Name      string `json:"name" yaml:"name"`
	Notes     string `json:"notes" yaml:"notes"`
	CreatedAt string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// Records converts events into export records, keeping their order.
func Records(events []model.Event) []Record {
	out := make([]Record, len(events))
	for i, e := range events {
		out[i] = Record{
			ID:    e.ID,
			Date:  timecalc.FormatDate(e.Date),
			Name:  e.Name,
			Notes: e.Notes,
		}
		if e.CreatedAt != nil {
			out[i].CreatedAt = e.CreatedAt.UTC().Format(time.RFC3339)
		}
	}
	return out
}

// Write renders events in format.
func Write(w io.Writer, format string, events []model.Event) error {
	switch format {
	case CSV:
		return WriteCSV(w, events)
	case JSON:
		return WriteJSON(w, events)
	case YAML:
		return WriteYAML(w, events)
	case Markdown:
		return WriteMarkdown(w, events)
	default:
		return fmt.Errorf("unknown export format %q (want one of %s)", format, strings.Join(Formats(), ", "))
	}
}

// WriteCSV writes one line per event after a header line.
func WriteCSV(w io.Writer, events []model.Event) error {
	var b strings.Builder
	b.WriteString("id,date,name,notes,created_at\n")
	for _, r := range Records(events) {
		fmt.Fprintf(&b, "%d,%s,%s,%s,%s\n",
			r.ID,
			r.Date,
			csvEscape(r.Name),
			csvEscape(r.Notes),
			r.CreatedAt,
		)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteJSON writes an indented JSON array. An empty history is [].
func WriteJSON(w io.Writer, events []model.Event) error {
	data, err := json.MarshalIndent(Records(events), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteYAML writes a YAML sequence of records.
func WriteYAML(w io.Writer, events []model.Event) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Records(events)); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}

// WriteMarkdown writes a Markdown table.
func WriteMarkdown(w io.Writer, events []model.Event) error {
	if len(events) == 0 {
		_, err := io.WriteString(w, "No events found.\n")
		return err
	}
	var b strings.Builder
	b.WriteString("| ID | Date | Name | Notes |\n")
	b.WriteString("|---:|------|------|-------|\n")
	for _, r := range Records(events) {
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", r.ID, r.Date, mdEscape(r.Name), mdEscape(r.Notes))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteHistory renders the running history table as md or csv.
func WriteHistory(w io.Writer, format string, rows []stats.Row) error {
	var b strings.Builder
	switch format {
	case CSV:
		b.WriteString("seq,date,weekday,name,days_since_previous,notes\n")
		for _, r := range rows {
			fmt.Fprintf(&b, "%d,%s,%s,%s,%s,%s\n",
				r.Seq,
				timecalc.FormatDate(r.Date),
				csvEscape(r.WeekdayLabel),
				csvEscape(r.Name),
				interval(r.DaysSincePrevious, ""),
				csvEscape(r.Notes),
			)
		}
	case Markdown:
		if len(rows) == 0 {
			b.WriteString("No events found.\n")
			break
		}
		b.WriteString("| # | Date | Weekday | Event | Days since previous | Notes |\n")
		b.WriteString("|--:|------|---------|-------|--------------------:|-------|\n")
		for _, r := range rows {
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s |\n",
				r.Seq,
				timecalc.FormatDate(r.Date),
				r.WeekdayLabel,
				mdEscape(r.Name),
				interval(r.DaysSincePrevious, "–"),
				mdEscape(r.Notes),
			)
		}
	default:
		return fmt.Errorf("unknown history format %q (want md or csv)", format)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func interval(days *int, none string) string {
	if days == nil {
		return none
	}
	return strconv.Itoa(*days)
}

// WriteFile writes the output of fn to path atomically: a temp file in the
// same directory is renamed over path only after fn succeeds.
func WriteFile(path string, fn func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := fn(tmp); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// mdEscape keeps a value inside one table cell.
func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", "<br>")
	return strings.ReplaceAll(s, "\n", "<br>")
}
