package insight

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/money"
	"github.com/Veraticus/spice-insights/internal/stats"
)

// Recent activity thresholds.
const (
	DailySpikeFactor     = 2.0
	WeeklyCategoryFactor = 1.5
	LargeRecentFactor    = 3.0

	trailingDays = 30
	weekDays     = 7
	recentDays   = 3
)

// ActivityAnalyzer looks at the last few days relative to "today".
type ActivityAnalyzer struct{}

// Name implements Analyzer.
func (ActivityAnalyzer) Name() string { return "recent_activity" }

// Analyze implements Analyzer.
func (a ActivityAnalyzer) Analyze(_ context.Context, req *Request) ([]model.Insight, error) {
	expenses := req.HistoryExpenses()
	today := req.Today()

	var insights []model.Insight
	if insight, ok := a.dailySpike(expenses, today); ok {
		insights = append(insights, insight)
	}
	insights = append(insights, a.weeklyCategories(expenses, today)...)
	insights = append(insights, a.largeRecent(expenses, today)...)
	return insights, nil
}

// dailySpike compares today's spend with the daily average of the 30 days before it.
func (a ActivityAnalyzer) dailySpike(expenses []model.Transaction, today time.Time) (model.Insight, bool) {
	spent := sum(stats.Within(expenses, model.DateRange{Start: today, End: today}))
	trailing := sum(stats.Within(expenses, model.DateRange{
		Start: today.AddDate(0, 0, -trailingDays),
		End:   today.AddDate(0, 0, -1),
	}))

	daily := trailing / trailingDays
	if daily == 0 || spent <= daily*DailySpikeFactor {
		return model.Insight{}, false
	}

	return model.Insight{
		ID:       ID(a.Name(), "day/"+today.Format(model.DateLayout)),
		Category: model.InsightActivity,
		Impact:   model.ImpactMedium,
		Priority: model.PriorityMedium,
		Message: fmt.Sprintf("You spent %s today, %.1fx your 30-day daily average of %s.",
			money.Format(spent), spent/daily, money.Format(daily)),
		Recommendation: "Check today's purchases for anything unplanned.",
		Actionable:     true,
	}, true
}

// weeklyCategories compares each category's last 7 days with a weekly rate
// derived from the 30 days before that week.
func (a ActivityAnalyzer) weeklyCategories(expenses []model.Transaction, today time.Time) []model.Insight {
	weekStart := today.AddDate(0, 0, -(weekDays - 1))
	week := stats.GroupBy(stats.Within(expenses, model.DateRange{Start: weekStart, End: today}), stats.ByCategory)
	baseline := stats.GroupBy(stats.Within(expenses, model.DateRange{
		Start: weekStart.AddDate(0, 0, -trailingDays),
		End:   weekStart.AddDate(0, 0, -1),
	}), stats.ByCategory)

	var insights []model.Insight
	for _, g := range week {
		base, ok := baseline.Find(g.Key)
		if !ok {
			continue
		}
		weekly := base.Total / trailingDays * weekDays
		if g.Total <= weekly*WeeklyCategoryFactor {
			continue
		}

		insights = append(insights, model.Insight{
			ID:       ID(a.Name(), "week/"+g.Key+"/"+today.Format(model.DateLayout)),
			Category: model.InsightActivity,
			Impact:   model.ImpactMedium,
			Priority: model.PriorityLow,
			Message: fmt.Sprintf("%s spending this week is %s, above your usual weekly %s.",
				g.Key, money.Format(g.Total), money.Format(weekly)),
			Recommendation: fmt.Sprintf("Slow down on %s for the rest of the week.", g.Key),
			Actionable:     true,
		})
	}
	return insights
}

// largeRecent flags expenses in the last 3 days well above the average expense.
func (a ActivityAnalyzer) largeRecent(expenses []model.Transaction, today time.Time) []model.Insight {
	average := stats.Describe(absAmounts(expenses)).Mean
	if average == 0 {
		return nil
	}

	recent := stats.Within(expenses, model.DateRange{Start: today.AddDate(0, 0, -(recentDays - 1)), End: today})

	var insights []model.Insight
	for i, t := range recent {
		if t.AbsAmount() <= average*LargeRecentFactor {
			continue
		}
		insights = append(insights, model.Insight{
			ID:       ID(a.Name(), fmt.Sprintf("large/%s/%s/%d", t.Date.Format(model.DateLayout), model.NormalizeVendor(t.Vendor), i)),
			Category: model.InsightActivity,
			Impact:   model.ImpactLow,
			Priority: model.PriorityLow,
			Message: fmt.Sprintf("%s at %s on %s is %.1fx your average transaction of %s.",
				money.Format(t.AbsAmount()), t.Vendor, t.Date.Format(model.DateLayout), t.AbsAmount()/average, money.Format(average)),
			Actionable: false,
		})
	}
	return insights
}

func sum(txns []model.Transaction) float64 {
	var total float64
	for _, t := range txns {
		total += t.AbsAmount()
	}
	return total
}

func absAmounts(txns []model.Transaction) []float64 {
	out := make([]float64, len(txns))
	for i, t := range txns {
		out[i] = t.AbsAmount()
	}
	return out
}
