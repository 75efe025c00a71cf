package insight

import (
	"context"
	"fmt"

	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/money"
)

// Subscription commentary thresholds.
const (
	SubscriptionCostThreshold = 100.0
	SubscriptionTrimShare     = 0.20
)

// SubscriptionCostAnalyzer comments on the monthly cost of active subscriptions.
type SubscriptionCostAnalyzer struct{}

// Name implements Analyzer.
func (SubscriptionCostAnalyzer) Name() string { return "subscription_cost" }

// Analyze implements Analyzer.
func (a SubscriptionCostAnalyzer) Analyze(_ context.Context, req *Request) ([]model.Insight, error) {
	var (
		count   int
		monthly float64
	)
	for _, s := range req.ActiveSubscriptions {
		if !s.IsActive() {
			continue
		}
		count++
		monthly += s.MonthlyCost()
	}

	if count == 0 {
		return []model.Insight{{
			ID:       ID(a.Name(), "none"),
			Category: model.InsightSubscriptions,
			Impact:   model.ImpactPositive,
			Message:  "You have no active subscriptions, so nothing is quietly renewing.",
		}}, nil
	}

	if monthly <= SubscriptionCostThreshold {
		return nil, nil
	}

	trim := money.Round(monthly * SubscriptionTrimShare)
	return []model.Insight{{
		ID:       ID(a.Name(), "cost"),
		Category: model.InsightSubscriptions,
		Impact:   model.ImpactMedium,
		Priority: model.PriorityMedium,
		Message: fmt.Sprintf("Your %d active subscriptions cost %s per month.",
			count, money.Format(monthly)),
		Recommendation: fmt.Sprintf("Trimming 20%% would save %s per month (%s per year).",
			money.Format(trim), money.Format(trim*12)),
		EstimatedAnnualSavings: savings(money.Round(trim * 12)),
		Actionable:             true,
	}}, nil
}
