package insight

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/money"
	"github.com/Veraticus/spice-insights/internal/stats"
)

// Forecast tuning.
const (
	MinForecastMonths = 3
	// ForecastGrowthThreshold is the ratio to the latest month a prediction must exceed.
	ForecastGrowthThreshold = 1.10
)

// Forecast is a next-month projection for one category.
type Forecast struct {
	Category   string
	Latest     stats.MonthTotal
	Predicted  float64
	Confidence float64
}

// Increase is the predicted change over the latest month in percent.
func (f Forecast) Increase() float64 {
	if f.Latest.Total == 0 {
		return 0
	}
	return (f.Predicted - f.Latest.Total) / f.Latest.Total * 100
}

// ForecastCategory fits a line through a category's monthly totals from its
// first month of spending through now's month, counting quiet months as zero.
// Latest is now's month. ok is false when there are too few months to fit or
// nothing was spent in now's month.
func ForecastCategory(category string, txns []model.Transaction, now time.Time) (Forecast, bool) {
	series := stats.MonthlyExpenses(txns, now)
	if len(series) < MinForecastMonths {
		return Forecast{}, false
	}
	latest := series[len(series)-1]
	if latest.Total == 0 {
		return Forecast{}, false
	}

	fit, err := stats.FitLine(stats.Totals(series))
	if err != nil {
		return Forecast{}, false
	}

	return Forecast{
		Category:   category,
		Latest:     latest,
		Predicted:  fit.Next(),
		Confidence: fit.RSquared,
	}, true
}

// ForecastAnalyzer projects each category's spending one month ahead.
type ForecastAnalyzer struct{}

// Name implements Analyzer.
func (ForecastAnalyzer) Name() string { return "forecast" }

// Analyze implements Analyzer.
func (a ForecastAnalyzer) Analyze(_ context.Context, req *Request) ([]model.Insight, error) {
	var insights []model.Insight
	for _, g := range stats.GroupBy(req.HistoryExpenses(), stats.ByCategory) {
		f, ok := ForecastCategory(g.Key, g.Items, req.Now)
		if !ok || f.Predicted <= f.Latest.Total*ForecastGrowthThreshold {
			continue
		}

		insights = append(insights, model.Insight{
			ID:       ID(a.Name(), g.Key+"/"+f.Latest.Month.Format("2006-01")),
			Category: model.InsightForecast,
			Impact:   model.ImpactMedium,
			Priority: model.PriorityMedium,
			Message: fmt.Sprintf("%s spending is projected to reach %s next month, %s above %s's %s (confidence %s).",
				g.Key, money.Format(f.Predicted), money.Percent(f.Increase()),
				f.Latest.Month.Format("January"), money.Format(f.Latest.Total), money.Percent(f.Confidence*100)),
			Recommendation: fmt.Sprintf("Set a monthly cap of %s for %s.", money.Format(f.Latest.Total), g.Key),
			Actionable:     true,
		})
	}
	return insights, nil
}
