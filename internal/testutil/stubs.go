package testutil

import (
	"context"
	"errors"
	"sync"

	"craftbench/internal/bench"
)

// StubCompleter returns queued replies and records every request. When the
// queue is empty it returns Default.
type StubCompleter struct {
	mu       sync.Mutex
	replies  []string
	Default  string
	Err      error
	Requests []bench.CompletionRequest
}

var _ bench.Completer = (*StubCompleter)(nil)

// NewStubCompleter creates a completer that replies in order.
func NewStubCompleter(replies ...string) *StubCompleter {
	return &StubCompleter{replies: replies}
}

func (c *StubCompleter) Complete(_ context.Context, req bench.CompletionRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Requests = append(c.Requests, req)
	if c.Err != nil {
		return "", c.Err
	}
	if len(c.replies) == 0 {
		return c.Default, nil
	}
	r := c.replies[0]
	c.replies = c.replies[1:]
	return r, nil
}

// StubCredentials is an in-memory bench.CredentialProvider.
type StubCredentials struct {
	mu sync.Mutex

	Stored string
	// Prompted is returned, and stored, by PromptForToken.
	Prompted    string
	PromptCalls int
	TokenErr    error
}

var _ bench.CredentialProvider = (*StubCredentials)(nil)

func (c *StubCredentials) Token(context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Stored, c.TokenErr
}

func (c *StubCredentials) SetToken(_ context.Context, token string) error {
	if token == "" {
		return errors.New("token must not be empty")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Stored = token
	return nil
}

func (c *StubCredentials) PromptForToken(context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.PromptCalls++
	if c.Prompted != "" {
		c.Stored = c.Prompted
	}
	return c.Prompted, nil
}

// DiffCall records one ShowDiff.
type DiffCall struct {
	Left  string
	Right string
	Title string
}

// RecordingSurface is a bench.EditingSurface that records calls. Showing a
// diff or resource focuses its right-hand side.
type RecordingSurface struct {
	mu        sync.Mutex
	active    string
	listeners []func(string)

	Diffs      []DiffCall
	Shown      []string
	CloseCalls int
	DiffErr    error

	// Saved lists SaveResource calls. OnSave, when set, runs for each one.
	Saved  []string
	OnSave func(id string) error
}

var _ bench.EditingSurface = (*RecordingSurface)(nil)

// NewRecordingSurface creates a surface with nothing focused.
func NewRecordingSurface() *RecordingSurface {
	return &RecordingSurface{}
}

func (s *RecordingSurface) ShowDiff(_ context.Context, left, right, title string) error {
	s.mu.Lock()
	s.Diffs = append(s.Diffs, DiffCall{Left: left, Right: right, Title: title})
	err := s.DiffErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.SetActive(right)
	return nil
}

func (s *RecordingSurface) ShowResource(_ context.Context, id string) error {
	s.mu.Lock()
	s.Shown = append(s.Shown, id)
	s.mu.Unlock()
	s.SetActive(id)
	return nil
}

func (s *RecordingSurface) CloseActiveView(context.Context) error {
	s.mu.Lock()
	s.CloseCalls++
	s.mu.Unlock()
	s.SetActive("")
	return nil
}

func (s *RecordingSurface) SaveResource(_ context.Context, id string) error {
	s.mu.Lock()
	s.Saved = append(s.Saved, id)
	fn := s.OnSave
	s.mu.Unlock()
	if fn != nil {
		return fn(id)
	}
	return nil
}

func (s *RecordingSurface) ActiveResource(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, nil
}

func (s *RecordingSurface) OnActiveResourceChanged(fn func(id string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// SetActive focuses id and notifies listeners.
func (s *RecordingSurface) SetActive(id string) {
	s.mu.Lock()
	s.active = id
	listeners := append([]func(string){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(id)
	}
}
