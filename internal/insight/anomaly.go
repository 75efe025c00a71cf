package insight

import (
	"context"
	"fmt"

	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/money"
	"github.com/Veraticus/spice-insights/internal/stats"
)

// Anomaly thresholds in standard deviations above the category mean.
const (
	AnomalyFlagSigma = 2.0
	AnomalyHighSigma = 3.0
)

// AnomalyAnalyzer flags window expenses far above their category's mean.
type AnomalyAnalyzer struct{}

// Name implements Analyzer.
func (AnomalyAnalyzer) Name() string { return "anomaly" }

// Analyze implements Analyzer.
func (a AnomalyAnalyzer) Analyze(_ context.Context, req *Request) ([]model.Insight, error) {
	groups := stats.GroupBy(req.WindowExpenses(), stats.ByCategory).AtLeast(stats.MinAnomalyGroup)

	var insights []model.Insight
	for _, g := range groups {
		// Identical amounts leave nothing to compare against.
		if g.StdDev == 0 {
			continue
		}

		flagAt := g.Mean + AnomalyFlagSigma*g.StdDev
		highAt := g.Mean + AnomalyHighSigma*g.StdDev

		for i, t := range g.Items {
			amount := t.AbsAmount()
			if amount <= flagAt {
				continue
			}

			impact := model.ImpactMedium
			if amount > highAt {
				impact = model.ImpactHigh
			}
			sigmas := (amount - g.Mean) / g.StdDev

			insights = append(insights, model.Insight{
				ID:       ID(a.Name(), fmt.Sprintf("%s/%d/%s", g.Key, i, t.Date.Format(model.DateLayout))),
				Category: model.InsightAnomaly,
				Impact:   impact,
				Priority: priorityFor(impact),
				Message: fmt.Sprintf("Unusual %s charge at %s in %s on %s, %.1f standard deviations above the category average of %s.",
					money.Format(amount), t.Vendor, g.Key, t.Date.Format(model.DateLayout), sigmas, money.Format(g.Mean)),
				Recommendation: "Review this transaction to confirm it was expected.",
				Actionable:     true,
			})
		}
	}

	return insights, nil
}
