package stats

import (
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
)

// MonthTotal is the absolute expense total for one calendar month.
type MonthTotal struct {
	Month time.Time
	Total float64
	Count int
}

// MonthStart returns the first day of t's month in UTC.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthlyExpenses totals expense amounts per calendar month, oldest first.
// The series is contiguous: it starts at the first month with an expense and
// months without spending appear with a zero total. With a non-zero through
// it ends at through's month, zero-filled up to it, and later expenses are
// ignored; otherwise it ends at the last month with an expense.
func MonthlyExpenses(txns []model.Transaction, through time.Time) []MonthTotal {
	var last time.Time
	if !through.IsZero() {
		last = MonthStart(through)
	}

	byMonth := make(map[time.Time]*MonthTotal)
	var first time.Time
	for _, t := range txns {
		if !t.IsExpense() {
			continue
		}
		m := MonthStart(t.Date)
		if m.After(last) {
			if !through.IsZero() {
				continue
			}
			last = m
		}
		if first.IsZero() || m.Before(first) {
			first = m
		}
		mt, ok := byMonth[m]
		if !ok {
			mt = &MonthTotal{Month: m}
			byMonth[m] = mt
		}
		mt.Total += t.AbsAmount()
		mt.Count++
	}
	if len(byMonth) == 0 {
		return nil
	}

	var series []MonthTotal
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		if mt, ok := byMonth[m]; ok {
			series = append(series, *mt)
			continue
		}
		series = append(series, MonthTotal{Month: m})
	}
	return series
}

// Totals extracts the totals of a monthly series.
func Totals(series []MonthTotal) []float64 {
	out := make([]float64, len(series))
	for i, mt := range series {
		out[i] = mt.Total
	}
	return out
}
