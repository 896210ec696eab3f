package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/Tiliavir/trivial-event-tracker/internal/timecalc"
)

// Event is a single tracked occurrence as read back from the store.
type Event struct {
	ID        int64      `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	Date      time.Time  `json:"date" yaml:"date"`
	Notes     string     `json:"notes" yaml:"notes"`
	CreatedAt *time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// NewEvent is the input for a single insert. Date is truncated to the day.
type NewEvent struct {
	Name  string    `json:"name" validate:"required,max=200"`
	Date  time.Time `json:"date" validate:"required"`
	Notes string    `json:"notes" validate:"max=5000"`
}

// Normalize trims whitespace from the text fields and drops the time of day.
func (n NewEvent) Normalize() NewEvent {
	n.Name = strings.TrimSpace(n.Name)
	n.Notes = strings.TrimSpace(n.Notes)
	if !n.Date.IsZero() {
		n.Date = timecalc.Day(n.Date)
	}
	return n
}

// Row is the table representation of an event in the remote "events" table.
type Row struct {
	ID        int64      `json:"id,omitempty"`
	EventName string     `json:"event_name"`
	EventDate string     `json:"event_date"`
	Notes     *string    `json:"notes"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// ToRow converts an insert input into its table form.
func ToRow(n NewEvent) Row {
	notes := n.Notes
	return Row{
		EventName: n.Name,
		EventDate: timecalc.FormatDate(n.Date),
		Notes:     &notes,
	}
}

// Event converts a fetched row back into an Event.
func (r Row) Event() (Event, error) {
	d, err := timecalc.ParseDate(r.EventDate)
	if err != nil {
		return Event{}, fmt.Errorf("row %d: %w", r.ID, err)
	}
	ev := Event{
		ID:        r.ID,
		Name:      r.EventName,
		Date:      d,
		CreatedAt: r.CreatedAt,
	}
	if r.Notes != nil {
		ev.Notes = *r.Notes
	}
	return ev, nil
}
