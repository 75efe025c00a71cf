package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
)

// SaveSubscription stores a confirmed subscription. Saving a second
// subscription for the same owner and vendor returns common.ErrDuplicateEntry.
func (s *SQLiteStorage) SaveSubscription(ctx context.Context, sub *model.Subscription) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSubscription(sub); err != nil {
		return err
	}

	createdAt := sub.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscriptions (
			id, owner_id, name, vendor_key, amount, frequency,
			next_billing, category, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sub.ID,
		sub.OwnerID,
		sub.Name,
		sub.VendorKey,
		sub.Amount,
		string(sub.Frequency),
		sub.NextBilling.Format(model.DateLayout),
		sub.Category,
		string(sub.Status),
		createdAt.UTC(),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("%w: subscription for %q", common.ErrDuplicateEntry, sub.VendorKey)
		}
		return fmt.Errorf("failed to save subscription: %w", err)
	}

	sub.CreatedAt = createdAt
	return nil
}

// ListSubscriptions returns every stored subscription for an owner, by name.
func (s *SQLiteStorage) ListSubscriptions(ctx context.Context, ownerID int64) ([]model.Subscription, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listSubscriptions(ctx, s.db, ownerID, false)
}

// ListActiveSubscriptions returns the owner's active and trial subscriptions.
func (s *SQLiteStorage) ListActiveSubscriptions(ctx context.Context, ownerID int64) ([]model.Subscription, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listSubscriptions(ctx, s.db, ownerID, true)
}

func (s *SQLiteStorage) listSubscriptions(ctx context.Context, q queryable, ownerID int64, activeOnly bool) ([]model.Subscription, error) {
	query := `
		SELECT id, owner_id, name, vendor_key, amount, frequency,
		       next_billing, category, status, created_at
		FROM subscriptions
		WHERE owner_id = ?`
	args := []any{ownerID}

	if activeOnly {
		query += " AND status IN (?, ?)"
		args = append(args, string(model.StatusActive), string(model.StatusTrial))
	}
	query += " ORDER BY name ASC, id ASC"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var subs []model.Subscription
	for rows.Next() {
		var (
			sub         model.Subscription
			frequency   string
			status      string
			nextBilling string
			category    sql.NullString
		)

		if err := rows.Scan(
			&sub.ID,
			&sub.OwnerID,
			&sub.Name,
			&sub.VendorKey,
			&sub.Amount,
			&frequency,
			&nextBilling,
			&category,
			&status,
			&sub.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}

		parsed, err := time.Parse(model.DateLayout, nextBilling)
		if err != nil {
			return nil, fmt.Errorf("failed to parse next billing %q: %w", nextBilling, err)
		}

		sub.NextBilling = parsed
		sub.Frequency = model.Frequency(frequency)
		sub.Status = model.SubscriptionStatus(status)
		sub.Category = category.String

		subs = append(subs, sub)
	}

	return subs, rows.Err()
}
