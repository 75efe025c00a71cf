package plaid

import (
	"context"
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
)

// TransactionFetcher is what Source needs from Plaid: posted transactions
// between two calendar days, and the linked account IDs.
type TransactionFetcher interface {
	GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error)
	GetAccounts(ctx context.Context) ([]string, error)
}
