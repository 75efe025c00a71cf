// Package insight turns a transaction history into rule-based spending insights.
package insight

import (
	"context"
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/stats"
	"github.com/google/uuid"
)

// Analyzer produces insights from a request snapshot. Analyzers are pure:
// the same request always yields the same insights.
type Analyzer interface {
	// Name identifies the analyzer in logs and insight IDs.
	Name() string
	// Analyze returns the insights the analyzer finds. An empty result is normal.
	Analyze(ctx context.Context, req *Request) ([]model.Insight, error)
}

// Request is the input to one insight pass.
type Request struct {
	// Now anchors every "current month" and "today" calculation.
	Now time.Time
	// Window bounds the window-scoped analyzers. A zero window means all history.
	Window model.DateRange
	// Transactions is the owner's full history.
	Transactions []model.Transaction
	// ActiveSubscriptions feeds the subscription cost commentary.
	ActiveSubscriptions []model.Subscription
}

// WindowExpenses returns the expense transactions inside the window.
func (r *Request) WindowExpenses() []model.Transaction {
	return stats.Expenses(stats.Within(r.Transactions, r.Window))
}

// HistoryExpenses returns every expense transaction.
func (r *Request) HistoryExpenses() []model.Transaction {
	return stats.Expenses(r.Transactions)
}

// Today is the calendar day of Now.
func (r *Request) Today() time.Time {
	return model.Day(r.Now)
}

// WindowDays returns the inclusive number of days in the window, or 0 when unbounded.
func (r *Request) WindowDays() int {
	if r.Window.Start.IsZero() || r.Window.End.IsZero() {
		return 0
	}
	return model.DaysBetween(r.Window.Start, r.Window.End) + 1
}

var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/Veraticus/spice-insights/insight"))

// ID derives a stable insight ID from the producing analyzer and a key
// unique within that analyzer's output.
func ID(analyzer, key string) string {
	return uuid.NewSHA1(namespace, []byte(analyzer+"/"+key)).String()
}

func priorityFor(impact model.Impact) model.Priority {
	switch impact {
	case model.ImpactHigh:
		return model.PriorityHigh
	case model.ImpactMedium:
		return model.PriorityMedium
	case model.ImpactLow:
		return model.PriorityLow
	default:
		return model.PriorityNone
	}
}

func savings(amount float64) *float64 {
	return &amount
}
