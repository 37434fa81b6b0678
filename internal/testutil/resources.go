package testutil

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"sync"

	"craftbench/internal/bench"
)

// MemoryResourceStore is an in-memory bench.ResourceStore for testing. IDs
// are slash-separated paths.
type MemoryResourceStore struct {
	mu    sync.Mutex
	files map[string]string

	// Per-ID failures injected by tests.
	ReadErr   map[string]error
	WriteErr  map[string]error
	DeleteErr map[string]error

	Writes []string
}

var _ bench.ResourceStore = (*MemoryResourceStore)(nil)

// NewMemoryResourceStore creates an empty store.
func NewMemoryResourceStore() *MemoryResourceStore {
	return &MemoryResourceStore{
		files:     make(map[string]string),
		ReadErr:   make(map[string]error),
		WriteErr:  make(map[string]error),
		DeleteErr: make(map[string]error),
	}
}

// AddFile adds a file to the store.
func (m *MemoryResourceStore) AddFile(id, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[id] = content
}

// Content returns the content of id and whether it exists.
func (m *MemoryResourceStore) Content(id string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.files[id]
	return c, ok
}

// IDs returns every stored ID in sorted order.
func (m *MemoryResourceStore) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.files))
	for id := range m.files {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *MemoryResourceStore) ReadText(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ReadErr[id]; err != nil {
		return "", err
	}
	c, ok := m.files[id]
	if !ok {
		return "", fmt.Errorf("%s: %w", id, fs.ErrNotExist)
	}
	return c, nil
}

func (m *MemoryResourceStore) WriteText(_ context.Context, id string, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.WriteErr[id]; err != nil {
		return err
	}
	m.files[id] = content
	m.Writes = append(m.Writes, id)
	return nil
}

func (m *MemoryResourceStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.DeleteErr[id]; err != nil {
		return err
	}
	if _, ok := m.files[id]; !ok {
		return fmt.Errorf("%s: %w", id, fs.ErrNotExist)
	}
	delete(m.files, id)
	return nil
}

func (m *MemoryResourceStore) Basename(id string) string {
	return path.Base(id)
}

func (m *MemoryResourceStore) Dirname(id string) string {
	return path.Dir(id)
}

func (m *MemoryResourceStore) Join(dir, name string) string {
	return path.Join(dir, name)
}
