package stats

import "time"

// Matrix is a dense weekday × month cross-tabulation over the weekdays and
// months that occur in the data. Rows run Monday..Sunday and columns
// January..December; absent weekdays or months get no row or column.
type Matrix struct {
	Weekdays  []time.Weekday `json:"-"`
	Months    []time.Month   `json:"-"`
	RowLabels []string       `json:"rows"`
	ColLabels []string       `json:"columns"`
	Counts    [][]int        `json:"counts"`
}

// Insight names the most frequent weekday/month combination.
type Insight struct {
	Weekday      time.Weekday `json:"-"`
	WeekdayLabel string       `json:"weekday"`
	Month        time.Month   `json:"-"`
	MonthLabel   string       `json:"month"`
	Count        int          `json:"count"`
	Text         string       `json:"text"`
}

// BuildMatrix cross-tabulates rows by weekday and month.
func BuildMatrix(rows []Row, labels Labels) Matrix {
	var cells [7][12]int
	var haveDay [7]bool
	var haveMonth [12]bool
	for _, r := range rows {
		d, m := WeekdayIndex(r.Weekday), int(r.Month)-1
		cells[d][m]++
		haveDay[d] = true
		haveMonth[m] = true
	}

	var mx Matrix
	var cols []int
	for m := 0; m < 12; m++ {
		if haveMonth[m] {
			cols = append(cols, m)
			mx.Months = append(mx.Months, time.Month(m+1))
			mx.ColLabels = append(mx.ColLabels, labels.Month(time.Month(m+1)))
		}
	}
	for d, wd := range Weekdays {
		if !haveDay[d] {
			continue
		}
		mx.Weekdays = append(mx.Weekdays, wd)
		mx.RowLabels = append(mx.RowLabels, labels.Weekday(wd))
		line := make([]int, len(cols))
		for j, m := range cols {
			line[j] = cells[d][m]
		}
		mx.Counts = append(mx.Counts, line)
	}
	return mx
}

// At returns the count for a weekday/month pair, 0 when absent.
func (mx Matrix) At(wd time.Weekday, m time.Month) int {
	for i, w := range mx.Weekdays {
		if w != wd {
			continue
		}
		for j, mm := range mx.Months {
			if mm == m {
				return mx.Counts[i][j]
			}
		}
	}
	return 0
}

// Peak returns the cell with the highest count. On ties the first cell in
// row-major order wins. ok is false for an empty matrix.
func (mx Matrix) Peak() (wd time.Weekday, m time.Month, count int, ok bool) {
	for i, line := range mx.Counts {
		for j, c := range line {
			if !ok || c > count {
				wd, m, count, ok = mx.Weekdays[i], mx.Months[j], c, true
			}
		}
	}
	return wd, m, count, ok
}

// PeakInsight returns the peak combination when it occurred more than once.
// A single occurrence is not reported as a pattern.
func PeakInsight(mx Matrix, labels Labels) *Insight {
	wd, m, count, ok := mx.Peak()
	if !ok || count <= 1 {
		return nil
	}
	return &Insight{
		Weekday:      wd,
		WeekdayLabel: labels.Weekday(wd),
		Month:        m,
		MonthLabel:   labels.Month(m),
		Count:        count,
		Text:         labels.Insight(wd, m, count),
	}
}
