package stats

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Tiliavir/trivial-event-tracker/internal/timecalc"
)

// RollingWindow is the number of monthly buckets in the trailing mean.
const RollingWindow = 3

// MonthBucket is one calendar month of the time series.
type MonthBucket struct {
	Start   time.Time       `json:"start"`
	Label   string          `json:"label"`
	Count   int             `json:"count"`
	Rolling decimal.Decimal `json:"rolling_mean"`
}

// MonthlySeries buckets date-sorted rows by calendar month, from the first
// to the last event month. Months without events are included with 0.
func MonthlySeries(rows []Row) []MonthBucket {
	if len(rows) == 0 {
		return nil
	}
	months := timecalc.MonthRange(rows[0].Date, rows[len(rows)-1].Date)
	index := make(map[time.Time]int, len(months))
	buckets := make([]MonthBucket, len(months))
	for i, m := range months {
		index[m] = i
		buckets[i] = MonthBucket{Start: m, Label: m.Format(timecalc.MonthLayout)}
	}
	for _, r := range rows {
		buckets[index[timecalc.MonthStart(r.Date)]].Count++
	}

	sum := 0
	for i := range buckets {
		sum += buckets[i].Count
		if i >= RollingWindow {
			sum -= buckets[i-RollingWindow].Count
		}
		n := min(i+1, RollingWindow)
		buckets[i].Rolling = decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(n))).Round(2)
	}
	return buckets
}
