package insight

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/money"
	mstats "github.com/montanaflynn/stats"
)

// SeasonLevel classifies a month's seasonality index.
type SeasonLevel string

// Season levels.
const (
	SeasonHigh   SeasonLevel = "high"
	SeasonNormal SeasonLevel = "normal"
	SeasonLow    SeasonLevel = "low"
)

const (
	seasonHighIndex = 1.2
	seasonLowIndex  = 0.8
)

// MonthSeason is one calendar month's row in the seasonality table.
type MonthSeason struct {
	Month   time.Month
	Level   SeasonLevel
	Total   float64
	Average float64
	Index   float64
	Count   int
}

// Seasonality builds the 12-month seasonality table from expense history.
// Each month's average is its spend per transaction; the baseline is the
// mean of all twelve averages, counting empty months as zero.
func Seasonality(txns []model.Transaction) [12]MonthSeason {
	var table [12]MonthSeason
	for i := range table {
		table[i].Month = time.Month(i + 1)
	}

	for _, t := range txns {
		if !t.IsExpense() {
			continue
		}
		row := &table[t.Date.Month()-1]
		row.Total += t.AbsAmount()
		row.Count++
	}

	averages := make([]float64, len(table))
	for i := range table {
		if table[i].Count > 0 {
			table[i].Average = table[i].Total / float64(table[i].Count)
		}
		averages[i] = table[i].Average
	}

	overall, _ := mstats.Mean(averages)
	for i := range table {
		if overall > 0 {
			table[i].Index = table[i].Average / overall
		}
		switch {
		case table[i].Index > seasonHighIndex:
			table[i].Level = SeasonHigh
		case table[i].Index < seasonLowIndex:
			table[i].Level = SeasonLow
		default:
			table[i].Level = SeasonNormal
		}
	}

	return table
}

// SeasonalityAnalyzer warns when the current month is historically expensive.
type SeasonalityAnalyzer struct{}

// Name implements Analyzer.
func (SeasonalityAnalyzer) Name() string { return "seasonality" }

// Analyze implements Analyzer.
func (a SeasonalityAnalyzer) Analyze(_ context.Context, req *Request) ([]model.Insight, error) {
	table := Seasonality(req.Transactions)
	current := table[req.Now.Month()-1]
	if current.Level != SeasonHigh {
		return nil, nil
	}

	above := (current.Index - 1) * 100
	return []model.Insight{{
		ID:       ID(a.Name(), fmt.Sprintf("%d-%02d", req.Now.Year(), int(current.Month))),
		Category: model.InsightSeasonal,
		Impact:   model.ImpactMedium,
		Priority: model.PriorityMedium,
		Message: fmt.Sprintf("%s is typically an expensive month: your average transaction runs %s above baseline (%s vs %s).",
			current.Month, money.Percent(above), money.Format(current.Average), money.Format(current.Average/current.Index)),
		Recommendation: fmt.Sprintf("Set aside extra room in your %s budget.", current.Month),
		Actionable:     true,
	}}, nil
}
