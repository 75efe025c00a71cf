package insight

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/money"
	"github.com/Veraticus/spice-insights/internal/stats"
)

// TargetSavingsRate is the savings rate, in percent, the goal analyzer aims for.
const TargetSavingsRate = 20.0

// SavingsRate holds one month's income against its expenses.
type SavingsRate struct {
	Income   float64
	Expenses float64
}

// Rate is (income - expenses) / income in percent, or 0 without income.
func (s SavingsRate) Rate() float64 {
	if s.Income == 0 {
		return 0
	}
	return (s.Income - s.Expenses) / s.Income * 100
}

// Gap is the additional saving needed to reach the target rate.
func (s SavingsRate) Gap() float64 {
	return s.Income*TargetSavingsRate/100 - (s.Income - s.Expenses)
}

// MonthSavings totals income and expenses dated inside month.
func MonthSavings(txns []model.Transaction, month model.DateRange) SavingsRate {
	var s SavingsRate
	for _, t := range stats.Within(txns, month) {
		switch {
		case t.Amount > 0:
			s.Income += t.Amount
		case t.Amount < 0:
			s.Expenses += t.AbsAmount()
		}
	}
	return s
}

// CalendarMonth returns the range covering t's calendar month.
func CalendarMonth(t time.Time) model.DateRange {
	start := stats.MonthStart(t)
	return model.DateRange{Start: start, End: start.AddDate(0, 1, -1)}
}

// SavingsAnalyzer compares the current month's savings rate to the target.
type SavingsAnalyzer struct{}

// Name implements Analyzer.
func (SavingsAnalyzer) Name() string { return "savings_rate" }

// Analyze implements Analyzer.
func (a SavingsAnalyzer) Analyze(_ context.Context, req *Request) ([]model.Insight, error) {
	month := CalendarMonth(req.Now)
	s := MonthSavings(req.Transactions, month)
	// a month with no activity has no rate to judge
	if s.Income == 0 && s.Expenses == 0 {
		return nil, nil
	}

	id := ID(a.Name(), month.Start.Format("2006-01"))
	rate := s.Rate()

	if rate < TargetSavingsRate {
		gap := money.Round(s.Gap())
		return []model.Insight{{
			ID:       id,
			Category: model.InsightGoal,
			Impact:   model.ImpactHigh,
			Priority: model.PriorityHigh,
			Message: fmt.Sprintf("Your savings rate this month is %s, below the %s target.",
				money.Percent(rate), money.Percent(TargetSavingsRate)),
			Recommendation:         fmt.Sprintf("Cut %s in spending this month to reach a %s savings rate.", money.Format(gap), money.Percent(TargetSavingsRate)),
			EstimatedAnnualSavings: savings(money.Round(gap * 12)),
			Actionable:             true,
		}}, nil
	}

	return []model.Insight{{
		ID:       id,
		Category: model.InsightGoal,
		Impact:   model.ImpactPositive,
		Message:  fmt.Sprintf("Great job! You are saving %s of your income this month.", money.Percent(rate)),
	}}, nil
}
