package pending

import (
	"sort"

	"craftbench/internal/bench"
)

// memoryBackend keeps entries for the lifetime of the process.
type memoryBackend struct {
	entries map[string]bench.PendingEdit
}

// NewMemoryStore creates a Store that forgets everything when the process
// exits. Drafts still on disk at that point are left behind.
func NewMemoryStore() *Store {
	return &Store{b: &memoryBackend{entries: make(map[string]bench.PendingEdit)}}
}

func (m *memoryBackend) put(e bench.PendingEdit) error {
	m.entries[e.ScratchPath] = e
	return nil
}

func (m *memoryBackend) get(scratchPath string) (*bench.PendingEdit, error) {
	e, ok := m.entries[scratchPath]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *memoryBackend) remove(scratchPath string) error {
	delete(m.entries, scratchPath)
	return nil
}

func (m *memoryBackend) list() ([]bench.PendingEdit, error) {
	edits := make([]bench.PendingEdit, 0, len(m.entries))
	for _, e := range m.entries {
		edits = append(edits, e)
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].ScratchPath < edits[j].ScratchPath })
	return edits, nil
}
