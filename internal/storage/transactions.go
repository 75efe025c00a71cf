package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/service"
)

// SaveTransactions saves multiple transactions to the database. Transactions
// whose hash is already stored are skipped.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	// Validate inputs
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.saveTransactionsTx(ctx, tx, transactions)
	})
}

func (s *SQLiteStorage) saveTransactionsTx(ctx context.Context, tx *sql.Tx, transactions []model.Transaction) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (
			id, owner_id, hash, date, vendor, description,
			amount, category, type, source
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, txn := range transactions {
		// Generate hash if not already set
		if txn.Hash == "" {
			txn.Hash = txn.GenerateHash()
		}
		if txn.Type == "" {
			txn.Type = model.TypeFromAmount(txn.Amount)
		}
		if txn.Source == "" {
			txn.Source = model.SourceManual
		}

		_, err = stmt.ExecContext(ctx,
			txn.ID,
			txn.OwnerID,
			txn.Hash,
			txn.Date.Format(model.DateLayout),
			txn.Vendor,
			txn.Description,
			txn.Amount,
			txn.Category,
			string(txn.Type),
			string(txn.Source),
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
		}
	}

	return nil
}

// GetTransactions retrieves an owner's transactions in date order. Without
// dates in the filter it returns the full history.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	return s.getTransactionsTx(ctx, s.db, filter)
}

func (s *SQLiteStorage) getTransactionsTx(ctx context.Context, q queryable, filter service.TransactionFilter) ([]model.Transaction, error) {
	var (
		query strings.Builder
		args  = []any{filter.OwnerID}
	)

	query.WriteString(`
		SELECT id, owner_id, hash, date, vendor, description,
		       amount, category, type, source
		FROM transactions
		WHERE owner_id = ?`)

	if filter.StartDate != nil {
		query.WriteString(" AND date >= ?")
		args = append(args, filter.StartDate.Format(model.DateLayout))
	}
	if filter.EndDate != nil {
		query.WriteString(" AND date <= ?")
		args = append(args, filter.EndDate.Format(model.DateLayout))
	}

	query.WriteString(" ORDER BY date ASC, id ASC")

	if filter.Limit > 0 {
		query.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := q.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTransactions(rows)
}

// GetTransactionCount returns the number of stored transactions for an owner.
func (s *SQLiteStorage) GetTransactionCount(ctx context.Context, ownerID int64) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE owner_id = ?`, ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// scanTransactions reads transaction rows in the column order used by getTransactionsTx.
func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	var transactions []model.Transaction
	for rows.Next() {
		var (
			txn         model.Transaction
			date        string
			description sql.NullString
			category    sql.NullString
			txType      string
			source      string
		)

		err := rows.Scan(
			&txn.ID,
			&txn.OwnerID,
			&txn.Hash,
			&date,
			&txn.Vendor,
			&description,
			&txn.Amount,
			&category,
			&txType,
			&source,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		parsed, err := time.Parse(model.DateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date %q of transaction %s: %w", date, txn.ID, err)
		}

		txn.Date = parsed
		txn.Description = description.String
		txn.Category = category.String
		txn.Type = model.TransactionType(txType)
		txn.Source = model.TransactionSource(source)

		transactions = append(transactions, txn)
	}

	return transactions, rows.Err()
}
