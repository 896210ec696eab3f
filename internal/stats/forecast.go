package stats

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Tiliavir/trivial-event-tracker/internal/timecalc"
)

// Forecast predicts the next occurrence from the mean gap between events.
// With fewer than two events Available is false and every other field is nil.
type Forecast struct {
	Available    bool             `json:"available"`
	Intervals    int              `json:"intervals"`
	MeanInterval *decimal.Decimal `json:"mean_interval_days,omitempty"`
	RoundedDays  *int             `json:"rounded_interval_days,omitempty"`
	Last         *time.Time       `json:"last_date,omitempty"`
	Next         *time.Time       `json:"next_date,omitempty"`
}

// Predict computes the forecast for date-sorted rows. The mean is exact and
// rounded half to even to whole days.
func Predict(rows []Row) Forecast {
	if len(rows) < 2 {
		return Forecast{}
	}
	sum := decimal.Zero
	n := 0
	for _, r := range rows {
		if r.DaysSincePrevious == nil {
			continue
		}
		sum = sum.Add(decimal.NewFromInt(int64(*r.DaysSincePrevious)))
		n++
	}
	mean := sum.Div(decimal.NewFromInt(int64(n)))
	days := int(mean.RoundBank(0).IntPart())
	last := rows[len(rows)-1].Date
	next := timecalc.AddDays(last, days)
	return Forecast{
		Available:    true,
		Intervals:    n,
		MeanInterval: &mean,
		RoundedDays:  &days,
		Last:         &last,
		Next:         &next,
	}
}

// DaysFrom returns the days from today until the predicted date; negative
// when the prediction is already overdue. ok is false when unavailable.
func (f Forecast) DaysFrom(today time.Time) (days int, ok bool) {
	if !f.Available || f.Next == nil {
		return 0, false
	}
	return timecalc.DaysBetween(today, *f.Next), true
}
