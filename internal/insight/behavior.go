package insight

import (
	"context"
	"fmt"
	"sort"

	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/money"
	"github.com/Veraticus/spice-insights/internal/stats"
)

// Behavior thresholds.
const (
	BehaviorTopVendors     = 3
	BehaviorMinVisits      = 8 // exclusive
	BehaviorHighSpend      = 200.0
	BehaviorReductionShare = 0.20
)

// BehaviorAnalyzer calls out the vendors visited most often in the window.
type BehaviorAnalyzer struct{}

// Name implements Analyzer.
func (BehaviorAnalyzer) Name() string { return "behavior" }

// Analyze implements Analyzer.
func (a BehaviorAnalyzer) Analyze(_ context.Context, req *Request) ([]model.Insight, error) {
	groups := stats.GroupBy(req.WindowExpenses(), stats.ByVendor)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})
	if len(groups) > BehaviorTopVendors {
		groups = groups[:BehaviorTopVendors]
	}

	var insights []model.Insight
	for _, g := range groups {
		if g.Count <= BehaviorMinVisits {
			continue
		}

		impact := model.ImpactMedium
		if g.Total > BehaviorHighSpend {
			impact = model.ImpactHigh
		}

		reduction := money.Round(g.Total * BehaviorReductionShare)
		name := g.Items[len(g.Items)-1].Vendor

		insights = append(insights, model.Insight{
			ID:       ID(a.Name(), g.Key),
			Category: model.InsightBehavior,
			Impact:   impact,
			Priority: priorityFor(impact),
			Message: fmt.Sprintf("You visited %s %d times, averaging %s per visit and %s in total.",
				name, g.Count, money.Format(g.Mean), money.Format(g.Total)),
			Recommendation:         fmt.Sprintf("Cutting %s visits by 20%% would save about %s.", name, money.Format(reduction)),
			EstimatedAnnualSavings: savings(annualize(reduction, req.WindowDays(), g)),
			Actionable:             true,
		})
	}

	return insights, nil
}

// annualize scales an amount observed over days to a year. An unbounded
// window falls back to the span the group covers.
func annualize(amount float64, days int, g stats.Group) float64 {
	if days <= 0 {
		days = model.DaysBetween(g.First, g.Last) + 1
	}
	return money.Round(amount * 365 / float64(days))
}
