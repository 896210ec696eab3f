package model_test

import (
	"testing"
	"time"

	"github.com/Tiliavir/trivial-event-tracker/internal/model"
)

func TestToRowAndBack(t *testing.T) {
	in := model.NewEvent{
		Name:  "Kopfschmerzen",
		Date:  time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		Notes: "after lunch",
	}
	row := model.ToRow(in)
	if row.EventDate != "2024-01-03" {
		t.Errorf("EventDate = %q, want %q", row.EventDate, "2024-01-03")
	}
	if row.Notes == nil || *row.Notes != "after lunch" {
		t.Errorf("Notes = %v, want %q", row.Notes, "after lunch")
	}

	ev, err := row.Event()
	if err != nil {
		t.Fatalf("Event: %v", err)
	}
	if ev.Name != in.Name || ev.Notes != in.Notes || !ev.Date.Equal(in.Date) {
		t.Errorf("round trip = %+v, want %+v", ev, in)
	}
}

func TestRowEventNullNotes(t *testing.T) {
	row := model.Row{ID: 7, EventName: "Migraine", EventDate: "2024-02-07"}
	ev, err := row.Event()
	if err != nil {
		t.Fatalf("Event: %v", err)
	}
	if ev.Notes != "" {
		t.Errorf("Notes = %q, want empty", ev.Notes)
	}
	if ev.ID != 7 {
		t.Errorf("ID = %d, want 7", ev.ID)
	}
}

func TestRowEventBadDate(t *testing.T) {
	row := model.Row{ID: 3, EventName: "x", EventDate: "not a date"}
	if _, err := row.Event(); err == nil {
		t.Fatal("expected error for unparseable event_date")
	}
}

func TestNormalize(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	in := model.NewEvent{
		Name:  "  Run  ",
		Date:  time.Date(2024, 5, 1, 23, 45, 0, 0, loc),
		Notes: " 5k \n",
	}
	got := in.Normalize()
	if got.Name != "Run" {
		t.Errorf("Name = %q, want %q", got.Name, "Run")
	}
	if got.Notes != "5k" {
		t.Errorf("Notes = %q, want %q", got.Notes, "5k")
	}
	want := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	if !got.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", got.Date, want)
	}
}
