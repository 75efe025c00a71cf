// Package service defines the persistence contract and the orchestration that
// feeds stored history into subscription detection and insight generation.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
// Nil dates leave that side of the range open; no dates at all returns the
// owner's full history.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	OwnerID   int64
	Limit     int
	Offset    int
}

// Comprehensive returns a filter for an owner's full history.
func Comprehensive(ownerID int64) TransactionFilter {
	return TransactionFilter{OwnerID: ownerID}
}

// Bounded returns a filter limited to a date range.
func Bounded(ownerID int64, r model.DateRange) TransactionFilter {
	f := TransactionFilter{OwnerID: ownerID}
	if !r.Start.IsZero() {
		start := model.Day(r.Start)
		f.StartDate = &start
	}
	if !r.End.IsZero() {
		end := model.Day(r.End)
		f.EndDate = &end
	}
	return f
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetTransactionCount(ctx context.Context, ownerID int64) (int, error)

	// Subscription operations
	SaveSubscription(ctx context.Context, subscription *model.Subscription) error
	ListSubscriptions(ctx context.Context, ownerID int64) ([]model.Subscription, error)
	ListActiveSubscriptions(ctx context.Context, ownerID int64) ([]model.Subscription, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// TransactionSource is anything that can produce transactions for import.
type TransactionSource interface {
	// Name identifies the source in logs.
	Name() string
	// Fetch returns the transactions dated inside the range.
	Fetch(ctx context.Context, r model.DateRange) ([]model.Transaction, error)
}
