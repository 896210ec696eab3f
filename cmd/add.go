package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-event-tracker/internal/model"
	"github.com/Tiliavir/trivial-event-tracker/internal/timecalc"
	"github.com/Tiliavir/trivial-event-tracker/internal/validation"
)

var (
	addDate  string
	addNotes string
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Record an event",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addDate, "date", "", "Event date as YYYY-MM-DD (default today)")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "Optional notes")
}

func runAdd(cmd *cobra.Command, args []string) error {
	ev, err := buildEvent(args[0], addDate, addNotes, time.Now())
	if err != nil {
		return err
	}

	if err := app.Record(cmd.Context(), ev); err != nil {
		var verr *validation.RequestValidationError
		if errors.As(err, &verr) {
			fmt.Fprintln(os.Stderr, "Invalid event:", verr)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "Event was not saved:", err)
		os.Exit(2)
	}

	fmt.Printf("Recorded %q on %s.\n", ev.Name, timecalc.FormatDate(ev.Date))
	return nil
}

// buildEvent turns the command line into an insert. An empty date means
// today in local time.
func buildEvent(name, date, notes string, now time.Time) (model.NewEvent, error) {
	ev := model.NewEvent{Name: name, Notes: notes}
	if date == "" {
		ev.Date = timecalc.Day(now)
	} else {
		t, err := timecalc.ParseDate(date)
		if err != nil {
			return model.NewEvent{}, fmt.Errorf("invalid --date %q: want YYYY-MM-DD", date)
		}
		ev.Date = t
	}
	return ev.Normalize(), nil
}
