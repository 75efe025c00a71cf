package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/service"
)

func savings(v float64) *float64 { return &v }

func TestRenderInsights(t *testing.T) {
	window := model.DateRange{
		Start: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
	}
	insights := []model.Insight{
		{
			ID:                     "a",
			Category:               model.InsightSubscriptions,
			Impact:                 model.ImpactHigh,
			Message:                "You pay for 3 streaming services",
			Recommendation:         "Cancel one you rarely use",
			EstimatedAnnualSavings: savings(180),
			Actionable:             true,
			Priority:               model.PriorityHigh,
		},
		{
			ID:       "b",
			Category: model.InsightGoal,
			Impact:   model.ImpactPositive,
			Message:  "You saved 20% of income",
		},
	}

	out := RenderInsights(window, insights)

	assert.Contains(t, out, "Spending Insights")
	assert.Contains(t, out, "Jun 1, 2024 - Jun 30, 2024")
	assert.Contains(t, out, "[HIGH]")
	assert.Contains(t, out, "You pay for 3 streaming services")
	assert.Contains(t, out, "Cancel one you rarely use")
	assert.Contains(t, out, "[POSITIVE]")
	assert.Contains(t, out, "$180.00")
}

func TestRenderInsight_NoRecommendation(t *testing.T) {
	out := RenderInsight(model.Insight{Impact: model.ImpactLow, Message: "Quiet month"})
	assert.Contains(t, out, "[LOW] Quiet month")
	assert.NotContains(t, out, "→")
}

func TestRenderCandidates(t *testing.T) {
	assert.Contains(t, RenderCandidates(nil), "No new recurring charges")

	out := RenderCandidates([]model.Candidate{
		{
			DisplayName:          "Netflix",
			Category:             "Streaming",
			BillingCycle:         model.CycleMonthly,
			AverageAmount:        15.99,
			EstimatedMonthlyCost: 15.99,
			Confidence:           0.9,
			TransactionCount:     6,
			PredictedNext:        time.Date(2024, 7, 8, 0, 0, 0, 0, time.UTC),
		},
		{
			DisplayName:          "Domain Host",
			BillingCycle:         model.CycleYearly,
			AverageAmount:        120,
			EstimatedMonthlyCost: 10,
			Confidence:           0.7,
			TransactionCount:     2,
		},
	})

	assert.Contains(t, out, "2 Subscription Candidates")
	assert.Contains(t, out, "Netflix")
	assert.Contains(t, out, "Domain Host")
	assert.Contains(t, out, "Jul 8, 2024")
	assert.Contains(t, out, "$25.99")
}

func TestRenderSubscriptions(t *testing.T) {
	assert.Contains(t, RenderSubscriptions(nil), "No confirmed subscriptions")

	out := RenderSubscriptions([]model.Subscription{
		{Name: "Gym", Amount: 40, Frequency: model.FrequencyMonthly, Status: model.StatusActive},
		{Name: "Domain", Amount: 120, Frequency: model.FrequencyYearly, Status: model.StatusActive},
		{Name: "Old", Amount: 99, Frequency: model.FrequencyMonthly, Status: model.StatusForgotten},
	})

	assert.Contains(t, out, "Gym")
	assert.Contains(t, out, "Old")
	assert.Contains(t, out, "$50.00/month")
	assert.Contains(t, out, "$600.00/year")
}

func TestRenderImportResult(t *testing.T) {
	assert.Contains(t, RenderImportResult(service.ImportResult{Source: "ofx"}), "No transactions found in ofx")

	out := RenderImportResult(service.ImportResult{Source: "plaid", Fetched: 10, New: 7})
	assert.Contains(t, out, "Imported 7 new transactions from plaid")
	assert.Contains(t, out, "3 already stored")

	out = RenderImportResult(service.ImportResult{Source: "plaid", Fetched: 4, New: 4})
	assert.NotContains(t, out, "already stored")
}

func TestWindowLabel(t *testing.T) {
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		want   string
		window model.DateRange
	}{
		{name: "unbounded", window: model.DateRange{}, want: "All time"},
		{name: "open start", window: model.DateRange{End: day}, want: "Through Mar 5, 2024"},
		{name: "open end", window: model.DateRange{Start: day}, want: "Since Mar 5, 2024"},
		{name: "closed", window: model.DateRange{Start: day, End: day.AddDate(0, 0, 1)}, want: "Mar 5, 2024 - Mar 6, 2024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WindowLabel(tt.window))
		})
	}
}
