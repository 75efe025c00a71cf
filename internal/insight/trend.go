package insight

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/money"
	"github.com/Veraticus/spice-insights/internal/stats"
)

// Trend thresholds in percent. The high threshold is inclusive.
const (
	TrendMinChange  = 15.0
	TrendHighChange = 25.0
)

// PercentChange returns the change from previous to latest in percent.
// ok is false when previous is zero.
func PercentChange(previous, latest float64) (float64, bool) {
	if previous == 0 {
		return 0, false
	}
	return (latest - previous) / previous * 100, true
}

// TrendImpact classifies a percent change. ok is false when the change is
// too small to report.
func TrendImpact(change float64) (model.Impact, bool) {
	magnitude := math.Abs(change)
	switch {
	case magnitude >= TrendHighChange:
		return model.ImpactHigh, true
	case magnitude > TrendMinChange:
		return model.ImpactMedium, true
	default:
		return 0, false
	}
}

// TrendAnalyzer compares the last month with spending to the calendar month
// before it. A quiet previous month has no baseline, so nothing is reported.
type TrendAnalyzer struct{}

// Name implements Analyzer.
func (TrendAnalyzer) Name() string { return "trend" }

// Analyze implements Analyzer.
func (a TrendAnalyzer) Analyze(_ context.Context, req *Request) ([]model.Insight, error) {
	series := stats.MonthlyExpenses(req.Transactions, time.Time{})
	if len(series) < 2 {
		return nil, nil
	}

	previous, latest := series[len(series)-2], series[len(series)-1]
	change, ok := PercentChange(previous.Total, latest.Total)
	if !ok {
		return nil, nil
	}
	impact, ok := TrendImpact(change)
	if !ok {
		return nil, nil
	}

	insight := model.Insight{
		ID:       ID(a.Name(), latest.Month.Format("2006-01")),
		Category: model.InsightTrend,
		Impact:   impact,
	}

	if change > 0 {
		insight.Message = fmt.Sprintf("Spending rose %s from %s to %s (%s to %s).",
			money.Percent(change), previous.Month.Format("January"), latest.Month.Format("January"),
			money.Format(previous.Total), money.Format(latest.Total))
		insight.Recommendation = fmt.Sprintf("Look at what changed in %s and rein in the categories that grew.", latest.Month.Format("January"))
		insight.Priority = priorityFor(impact)
		insight.Actionable = true
		return []model.Insight{insight}, nil
	}

	insight.Message = fmt.Sprintf("Nice work! Spending fell %s from %s to %s (%s to %s).",
		money.Percent(-change), previous.Month.Format("January"), latest.Month.Format("January"),
		money.Format(previous.Total), money.Format(latest.Total))
	return []model.Insight{insight}, nil
}
