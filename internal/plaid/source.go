package plaid

import (
	"context"
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
)

// DefaultLookback bounds an open-ended import; Plaid keeps about two years of history.
const DefaultLookback = 730 * 24 * time.Hour

// Source adapts a TransactionFetcher to service.TransactionSource.
type Source struct {
	fetcher TransactionFetcher
	now     func() time.Time
}

// NewSource wraps fetcher.
func NewSource(fetcher TransactionFetcher) *Source {
	return &Source{fetcher: fetcher, now: time.Now}
}

// Name implements service.TransactionSource.
func (s *Source) Name() string { return "plaid" }

// Fetch implements service.TransactionSource. Plaid needs explicit dates,
// so open ends are filled with DefaultLookback and today.
func (s *Source) Fetch(ctx context.Context, r model.DateRange) ([]model.Transaction, error) {
	end := r.End
	if end.IsZero() {
		end = model.Day(s.now())
	}
	start := r.Start
	if start.IsZero() {
		start = model.Day(end.Add(-DefaultLookback))
	}
	return s.fetcher.GetTransactions(ctx, start, end)
}
