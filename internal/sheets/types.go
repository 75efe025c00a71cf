package sheets

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/money"
)

// Tab names in the exported spreadsheet.
const (
	InsightsTab      = "Insights"
	CandidatesTab    = "Candidates"
	SubscriptionsTab = "Subscriptions"
)

// InsightRow represents a single row in the Insights tab.
type InsightRow struct {
	ID             string
	Category       string
	Impact         string
	Priority       string
	Message        string
	Recommendation string
	AnnualSavings  decimal.Decimal
	Actionable     bool
}

// CandidateRow represents a single row in the Candidates tab.
type CandidateRow struct {
	LastSeen      time.Time
	PredictedNext time.Time
	Vendor        string
	Category      string
	Cycle         string
	Regularity    string
	AverageAmount decimal.Decimal
	MonthlyCost   decimal.Decimal
	Confidence    float64
	Count         int
}

// SubscriptionRow represents a single row in the Subscriptions tab.
type SubscriptionRow struct {
	NextBilling time.Time
	Name        string
	Category    string
	Frequency   string
	Status      string
	Amount      decimal.Decimal
	MonthlyCost decimal.Decimal
}

// Report holds all the data for the complete spreadsheet export.
type Report struct {
	Window              model.DateRange
	GeneratedAt         time.Time
	TotalSavings        decimal.Decimal
	SubscriptionMonthly decimal.Decimal
	Insights            []InsightRow
	Candidates          []CandidateRow
	Subscriptions       []SubscriptionRow
}

// BuildReport converts engine output into sheet rows. Insights keep the
// engine's order; subscriptions are sorted by monthly cost, largest first.
func BuildReport(window model.DateRange, generatedAt time.Time, insights []model.Insight, candidates []model.Candidate, subs []model.Subscription) Report {
	report := Report{
		Window:              window,
		GeneratedAt:         generatedAt,
		TotalSavings:        decimal.Zero,
		SubscriptionMonthly: decimal.Zero,
	}

	for _, in := range insights {
		row := InsightRow{
			ID:             in.ID,
			Category:       string(in.Category),
			Impact:         in.Impact.String(),
			Message:        in.Message,
			Recommendation: in.Recommendation,
			AnnualSavings:  money.Decimal(in.Savings()),
			Actionable:     in.Actionable,
		}
		if in.Priority != model.PriorityNone {
			row.Priority = in.Priority.String()
		}
		report.TotalSavings = report.TotalSavings.Add(row.AnnualSavings)
		report.Insights = append(report.Insights, row)
	}

	for _, c := range candidates {
		report.Candidates = append(report.Candidates, CandidateRow{
			LastSeen:      c.LastSeen,
			PredictedNext: c.PredictedNext,
			Vendor:        c.DisplayName,
			Category:      c.Category,
			Cycle:         string(c.BillingCycle),
			Regularity:    string(c.Pattern.Regularity),
			AverageAmount: money.Decimal(c.AverageAmount),
			MonthlyCost:   money.Decimal(c.EstimatedMonthlyCost),
			Confidence:    c.Confidence,
			Count:         c.TransactionCount,
		})
	}

	for _, s := range subs {
		row := SubscriptionRow{
			NextBilling: s.NextBilling,
			Name:        s.Name,
			Category:    s.Category,
			Frequency:   string(s.Frequency),
			Status:      string(s.Status),
			Amount:      money.Decimal(s.Amount),
			MonthlyCost: money.Decimal(s.MonthlyCost()),
		}
		if s.IsActive() {
			report.SubscriptionMonthly = report.SubscriptionMonthly.Add(row.MonthlyCost)
		}
		report.Subscriptions = append(report.Subscriptions, row)
	}
	sort.SliceStable(report.Subscriptions, func(i, j int) bool {
		return report.Subscriptions[i].MonthlyCost.GreaterThan(report.Subscriptions[j].MonthlyCost)
	})

	return report
}
