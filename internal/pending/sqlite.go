package pending

import (
	"fmt"

	"craftbench/internal/bench"
)

// Table is the persistence a SQLite-backed store needs. It is implemented by
// database.SQLiteDatabase.
type Table interface {
	PutPendingEdit(e bench.PendingEdit) error
	// GetPendingEdit returns nil when scratchPath has no row.
	GetPendingEdit(scratchPath string) (*bench.PendingEdit, error)
	DeletePendingEdit(scratchPath string) error
	ListPendingEdits() ([]bench.PendingEdit, error)
}

// tableBackend adapts a Table to backend.
type tableBackend struct {
	t Table
}

// NewSQLiteStore creates a Store whose entries survive restarts, so a draft
// proposed by one invocation can be accepted by a later one.
func NewSQLiteStore(t Table) *Store {
	return &Store{b: &tableBackend{t: t}}
}

func (b *tableBackend) put(e bench.PendingEdit) error {
	if err := b.t.PutPendingEdit(e); err != nil {
		return fmt.Errorf("storing pending edit: %w", err)
	}
	return nil
}

func (b *tableBackend) get(scratchPath string) (*bench.PendingEdit, error) {
	e, err := b.t.GetPendingEdit(scratchPath)
	if err != nil {
		return nil, fmt.Errorf("loading pending edit: %w", err)
	}
	return e, nil
}

func (b *tableBackend) remove(scratchPath string) error {
	if err := b.t.DeletePendingEdit(scratchPath); err != nil {
		return fmt.Errorf("deleting pending edit: %w", err)
	}
	return nil
}

func (b *tableBackend) list() ([]bench.PendingEdit, error) {
	edits, err := b.t.ListPendingEdits()
	if err != nil {
		return nil, fmt.Errorf("listing pending edits: %w", err)
	}
	return edits, nil
}
