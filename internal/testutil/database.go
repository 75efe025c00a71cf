// Package testutil provides test databases and transaction fixtures.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/storage"
)

// TestDB is a migrated in-memory database scoped to a single test.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database, optionally seeded with
// transactions. It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t, testutil.NewHistory(1).
//		Monthly("Netflix", "Streaming", 15.99, start, 6).
//		Build())
func SetupTestDB(t *testing.T, seed []model.Transaction) *TestDB {
	t.Helper()

	// Create in-memory SQLite storage
	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Run migrations
	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Register cleanup
	t.Cleanup(func() {
		_ = store.Close()
	})

	db := &TestDB{Storage: store, t: t}
	if len(seed) > 0 {
		db.MustSave(seed)
	}
	return db
}

// MustSave stores transactions or fails the test.
func (db *TestDB) MustSave(txns []model.Transaction) {
	db.t.Helper()
	if err := db.Storage.SaveTransactions(context.Background(), txns); err != nil {
		db.t.Fatalf("failed to seed transactions: %v", err)
	}
}

// MustSaveSubscription stores a subscription or fails the test.
func (db *TestDB) MustSaveSubscription(sub model.Subscription) {
	db.t.Helper()
	if err := db.Storage.SaveSubscription(context.Background(), &sub); err != nil {
		db.t.Fatalf("failed to seed subscription: %v", err)
	}
}
