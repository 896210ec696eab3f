// Package stats turns the raw event history into every derived view the
// dashboard shows. Compute is a pure function of its input: the same events
// always yield the same Report.
package stats

import (
	"sort"
	"time"

	"github.com/Tiliavir/trivial-event-tracker/internal/model"
	"github.com/Tiliavir/trivial-event-tracker/internal/timecalc"
)

// Row is an event enriched with calendar fields and its distance to the
// previous event in date order.
type Row struct {
	model.Event
	Seq               int          `json:"seq"`
	Weekday           time.Weekday `json:"-"`
	WeekdayLabel      string       `json:"weekday"`
	Month             time.Month   `json:"-"`
	MonthLabel        string       `json:"month"`
	Year              int          `json:"year"`
	DaysSincePrevious *int         `json:"days_since_previous"`
}

// YearCount is the number of events in one calendar year.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// MonthCount is the number of events in one month name across all years.
type MonthCount struct {
	Month time.Month `json:"-"`
	Label string     `json:"month"`
	Count int        `json:"count"`
}

// WeekdayCount is the number of events on one weekday across all weeks.
type WeekdayCount struct {
	Weekday time.Weekday `json:"-"`
	Label   string       `json:"weekday"`
	Count   int          `json:"count"`
}

// Report holds every view derived from one pipeline run. For an empty
// history Empty is true and all aggregates are nil.
type Report struct {
	Empty    bool           `json:"empty"`
	Locale   string         `json:"locale"`
	Rows     []Row          `json:"rows"`
	Matrix   Matrix         `json:"matrix"`
	Insight  *Insight       `json:"insight,omitempty"`
	Years    []YearCount    `json:"years"`
	Months   []MonthCount   `json:"months"`
	Weekdays []WeekdayCount `json:"weekdays"`
	Series   []MonthBucket  `json:"series"`
	Forecast Forecast       `json:"forecast"`
}

// Compute runs the full pipeline over events.
func Compute(events []model.Event, labels Labels) Report {
	if labels.Code == "" {
		labels = MustLocale(DefaultLocale)
	}
	rep := Report{Locale: labels.Code}
	if len(events) == 0 {
		rep.Empty = true
		return rep
	}

	rows := Enrich(SortByDate(events), labels)
	rep.Rows = rows
	rep.Matrix = BuildMatrix(rows, labels)
	rep.Insight = PeakInsight(rep.Matrix, labels)
	rep.Years = CountByYear(rows)
	rep.Months = CountByMonth(rows, labels)
	rep.Weekdays = CountByWeekday(rows, labels)
	rep.Series = MonthlySeries(rows)
	rep.Forecast = Predict(rows)
	return rep
}

// SortByDate returns a copy of events in ascending date order. Events on
// the same date keep their input order.
func SortByDate(events []model.Event) []model.Event {
	sorted := make([]model.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// Enrich derives calendar labels and intervals for date-sorted events.
func Enrich(sorted []model.Event, labels Labels) []Row {
	rows := make([]Row, len(sorted))
	for i, ev := range sorted {
		rows[i] = Row{
			Event:        ev,
			Seq:          i + 1,
			Weekday:      ev.Date.Weekday(),
			WeekdayLabel: labels.Weekday(ev.Date.Weekday()),
			Month:        ev.Date.Month(),
			MonthLabel:   labels.Month(ev.Date.Month()),
			Year:         ev.Date.Year(),
		}
		if i > 0 {
			d := timecalc.DaysBetween(sorted[i-1].Date, ev.Date)
			rows[i].DaysSincePrevious = &d
		}
	}
	return rows
}

// CountByYear counts events per calendar year, ascending.
func CountByYear(rows []Row) []YearCount {
	counts := map[int]int{}
	for _, r := range rows {
		counts[r.Year]++
	}
	years := make([]YearCount, 0, len(counts))
	for y, c := range counts {
		years = append(years, YearCount{Year: y, Count: c})
	}
	sort.Slice(years, func(i, j int) bool { return years[i].Year < years[j].Year })
	return years
}

// CountByMonth counts events per month name across all years, in calendar
// order. Months without events are omitted.
func CountByMonth(rows []Row, labels Labels) []MonthCount {
	var counts [12]int
	for _, r := range rows {
		counts[r.Month-1]++
	}
	var months []MonthCount
	for i, c := range counts {
		if c == 0 {
			continue
		}
		m := time.Month(i + 1)
		months = append(months, MonthCount{Month: m, Label: labels.Month(m), Count: c})
	}
	return months
}

// CountByWeekday counts events per weekday, Monday first. Weekdays without
// events are omitted.
func CountByWeekday(rows []Row, labels Labels) []WeekdayCount {
	var counts [7]int
	for _, r := range rows {
		counts[WeekdayIndex(r.Weekday)]++
	}
	var days []WeekdayCount
	for i, c := range counts {
		if c == 0 {
			continue
		}
		wd := Weekdays[i]
		days = append(days, WeekdayCount{Weekday: wd, Label: labels.Weekday(wd), Count: c})
	}
	return days
}
