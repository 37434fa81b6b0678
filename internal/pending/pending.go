package pending

import (
	"fmt"
	"sync"

	"craftbench/internal/bench"
)

// backend abstracts where entries live. Concurrency is managed by Store.mu,
// so backends do not need to be safe for concurrent use.
type backend interface {
	put(e bench.PendingEdit) error
	// get returns nil when scratchPath has no entry.
	get(scratchPath string) (*bench.PendingEdit, error)
	remove(scratchPath string) error
	// list returns entries ordered by scratch path.
	list() ([]bench.PendingEdit, error)
}

// Store implements bench.PendingStore on top of a pluggable backend. Each
// method holds the lock for a single backend call.
type Store struct {
	b  backend
	mu sync.Mutex
}

var _ bench.PendingStore = (*Store)(nil)

// Put inserts or replaces the entry keyed by e.ScratchPath.
func (s *Store) Put(e bench.PendingEdit) error {
	if e.ScratchPath == "" {
		return fmt.Errorf("pending edit has no scratch path")
	}
	if e.OriginalID == "" {
		return fmt.Errorf("pending edit for %s has no original resource", e.ScratchPath)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.put(e)
}

// Get returns the entry for scratchPath.
func (s *Store) Get(scratchPath string) (bench.PendingEdit, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.b.get(scratchPath)
	if err != nil {
		return bench.PendingEdit{}, false, err
	}
	if e == nil {
		return bench.PendingEdit{}, false, nil
	}
	return *e, true, nil
}

// Lookup returns bench.Proposed when scratchPath has an entry and
// bench.NoPendingEdit otherwise.
func (s *Store) Lookup(scratchPath string) (bench.PendingState, error) {
	e, ok, err := s.Get(scratchPath)
	if err != nil {
		return nil, err
	}
	if !ok {
		return bench.NoPendingEdit{}, nil
	}
	return bench.Proposed{Edit: e}, nil
}

// Remove deletes the entry for scratchPath. Absent keys are ignored.
func (s *Store) Remove(scratchPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.remove(scratchPath)
}

// Has reports whether scratchPath has an entry.
func (s *Store) Has(scratchPath string) (bool, error) {
	_, ok, err := s.Get(scratchPath)
	return ok, err
}

// List returns every entry ordered by scratch path.
func (s *Store) List() ([]bench.PendingEdit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.list()
}
