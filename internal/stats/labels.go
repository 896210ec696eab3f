package stats

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DefaultLocale is used when no display locale is configured.
const DefaultLocale = "en"

// Weekdays lists weekdays in canonical ISO order, Monday first.
var Weekdays = [7]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// WeekdayIndex returns the ISO position of wd (Monday=0 … Sunday=6).
func WeekdayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// Labels maps canonical weekdays and months to display names. Ordering is
// always derived from the canonical values, never from the labels.
type Labels struct {
	Code     string
	weekdays [7]string  // indexed by WeekdayIndex
	months   [12]string // indexed by month-1
	insight  string     // weekday, month, count
}

var locales = map[string]Labels{
	"en": {
		Code:     "en",
		weekdays: [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"},
		months: [12]string{"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December"},
		insight: "Most events happen on a %s in %s (%d times).",
	},
	"de": {
		Code:     "de",
		weekdays: [7]string{"Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag", "Sonntag"},
		months: [12]string{"Januar", "Februar", "März", "April", "Mai", "Juni",
			"Juli", "August", "September", "Oktober", "November", "Dezember"},
		insight: "Die meisten Events fallen auf einen %s im %s (%d-mal).",
	},
}

// Locale returns the label table for code, e.g. "en" or "de".
func Locale(code string) (Labels, error) {
	l, ok := locales[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return Labels{}, fmt.Errorf("unknown locale %q (available: %s)", code, strings.Join(Locales(), ", "))
	}
	return l, nil
}

// MustLocale is like Locale but falls back to DefaultLocale.
func MustLocale(code string) Labels {
	if l, err := Locale(code); err == nil {
		return l
	}
	return locales[DefaultLocale]
}

// Locales returns the available locale codes, sorted.
func Locales() []string {
	codes := make([]string, 0, len(locales))
	for c := range locales {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Weekday returns the display name of wd.
func (l Labels) Weekday(wd time.Weekday) string {
	return l.weekdays[WeekdayIndex(wd)]
}

// Month returns the display name of m.
func (l Labels) Month(m time.Month) string {
	return l.months[m-1]
}

// Insight renders the peak-combination sentence.
func (l Labels) Insight(wd time.Weekday, m time.Month, count int) string {
	return fmt.Sprintf(l.insight, l.Weekday(wd), l.Month(m), count)
}
