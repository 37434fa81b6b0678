package testutil

import (
	"testing"

	"craftbench/internal/database"
	"craftbench/internal/pending"
)

// NewTestDatabase creates a new in-memory SQLite database with migrations
// applied. The database is automatically closed when the test completes.
func NewTestDatabase(t *testing.T) *database.SQLiteDatabase {
	t.Helper()

	db, err := database.NewSQLiteDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// NewTestPendingStore creates an in-memory pending store.
func NewTestPendingStore() *pending.Store {
	return pending.NewMemoryStore()
}

// NewTestSQLitePendingStore creates a pending store backed by a fresh
// in-memory database.
func NewTestSQLitePendingStore(t *testing.T) *pending.Store {
	t.Helper()
	return pending.NewSQLiteStore(NewTestDatabase(t))
}
