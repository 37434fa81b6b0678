package bench

import "time"

// PendingEdit records one proposed rewrite awaiting review. ScratchPath is
// its identity.
type PendingEdit struct {
	ScratchPath string
	OriginalID  string
	CommandName string
	Model       string
	CreatedAt   time.Time
}

// PendingState is the state of a scratch path: NoPendingEdit or Proposed.
type PendingState interface {
	isPendingState()
}

// NoPendingEdit means nothing is pending for the scratch path.
type NoPendingEdit struct{}

// Proposed means the scratch path holds a draft for Edit.OriginalID.
type Proposed struct {
	Edit PendingEdit
}

func (NoPendingEdit) isPendingState() {}
func (Proposed) isPendingState()      {}

// PendingStore maps scratch paths to pending edits. Each call is atomic; a
// multi-step operation spanning several calls is not.
type PendingStore interface {
	// Put inserts or replaces the entry keyed by e.ScratchPath.
	Put(e PendingEdit) error

	// Get returns the entry for scratchPath, if any.
	Get(scratchPath string) (PendingEdit, bool, error)

	// Lookup returns the tagged state of scratchPath.
	Lookup(scratchPath string) (PendingState, error)

	// Remove deletes the entry. Removing an absent key is a no-op.
	Remove(scratchPath string) error

	// Has reports whether scratchPath has an entry.
	Has(scratchPath string) (bool, error)

	// List returns all entries ordered by scratch path.
	List() ([]PendingEdit, error)
}
