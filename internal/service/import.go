package service

import (
	"context"
	"fmt"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
)

// ImportResult summarizes one import run.
type ImportResult struct {
	Source  string
	Fetched int
	// New counts transactions that were not already stored.
	New int
}

// Duplicates is the number of fetched transactions the store already had.
func (r ImportResult) Duplicates() int {
	return r.Fetched - r.New
}

// Import fetches r from src and stores the result for ownerID.
// Re-importing the same statement is a no-op because storage dedupes on hash.
func Import(ctx context.Context, store Storage, src TransactionSource, ownerID int64, r model.DateRange) (ImportResult, error) {
	result := ImportResult{Source: src.Name()}
	logger := common.LoggerFromContext(ctx).With("source", src.Name(), "owner_id", ownerID)

	txns, err := src.Fetch(ctx, r)
	if err != nil {
		return result, fmt.Errorf("fetching from %s: %w", src.Name(), err)
	}
	result.Fetched = len(txns)
	if len(txns) == 0 {
		logger.Info("Nothing to import")
		return result, nil
	}

	for i := range txns {
		txns[i].OwnerID = ownerID
		// owner is part of the hash
		txns[i].Hash = txns[i].GenerateHash()
	}

	before, err := store.GetTransactionCount(ctx, ownerID)
	if err != nil {
		return result, fmt.Errorf("counting transactions: %w", err)
	}
	if err := store.SaveTransactions(ctx, txns); err != nil {
		return result, fmt.Errorf("saving %s transactions: %w", src.Name(), err)
	}
	after, err := store.GetTransactionCount(ctx, ownerID)
	if err != nil {
		return result, fmt.Errorf("counting transactions: %w", err)
	}

	result.New = after - before
	logger.Info("Imported transactions", "fetched", result.Fetched, "new", result.New)
	return result, nil
}
