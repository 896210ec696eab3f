package timecalc_test

import (
	"testing"
	"time"

	"github.com/Tiliavir/trivial-event-tracker/internal/timecalc"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2024-01-03", "2024-01-03"},
		{"2024-01-03T00:00:00Z", "2024-01-03"},
		{"2024-01-03T23:30:00+01:00", "2024-01-03"},
		{"2024-02-29T12:00:00.123456Z", "2024-02-29"},
		{"2024-03-01T08:15:00", "2024-03-01"},
	}
	for _, tt := range tests {
		got, err := timecalc.ParseDate(tt.input)
		if err != nil {
			t.Errorf("ParseDate(%q): %v", tt.input, err)
			continue
		}
		if timecalc.FormatDate(got) != tt.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.input, timecalc.FormatDate(got), tt.want)
		}
		if got.Location() != time.UTC || got.Hour() != 0 {
			t.Errorf("ParseDate(%q) = %v, want UTC midnight", tt.input, got)
		}
	}
}

func TestParseDateInvalid(t *testing.T) {
	for _, s := range []string{"", "yesterday", "2024-13-01", "03.01.2024"} {
		if _, err := timecalc.ParseDate(s); err == nil {
			t.Errorf("ParseDate(%q): expected error", s)
		}
	}
}

func TestDayKeepsLocalDate(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	evening := time.Date(2026, 2, 27, 22, 30, 0, 0, loc)
	got := timecalc.Day(evening)
	want := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Day = %v, want %v", got, want)
	}
}

func TestDaysBetween(t *testing.T) {
	d := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		a, b time.Time
		want int
	}{
		{d, d, 0},
		{d, d.AddDate(0, 0, 10), 10},
		{d.AddDate(0, 0, 10), d, -10},
		{d, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), 366},
		{time.Date(1700, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 118338},
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(1700, 1, 1, 0, 0, 0, 0, time.UTC), -118338},
	}
	for _, tt := range tests {
		if got := timecalc.DaysBetween(tt.a, tt.b); got != tt.want {
			t.Errorf("DaysBetween(%s, %s) = %d, want %d",
				timecalc.FormatDate(tt.a), timecalc.FormatDate(tt.b), got, tt.want)
		}
	}
}

func TestMonthRange(t *testing.T) {
	from := time.Date(2023, 11, 20, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 7, 0, 0, 0, 0, time.UTC)
	months := timecalc.MonthRange(from, to)
	want := []string{"2023-11", "2023-12", "2024-01", "2024-02"}
	if len(months) != len(want) {
		t.Fatalf("MonthRange len = %d, want %d", len(months), len(want))
	}
	for i, m := range months {
		if got := m.Format(timecalc.MonthLayout); got != want[i] {
			t.Errorf("MonthRange[%d] = %q, want %q", i, got, want[i])
		}
	}

	if got := timecalc.MonthRange(to, from); got != nil {
		t.Errorf("MonthRange reversed = %v, want nil", got)
	}
}
