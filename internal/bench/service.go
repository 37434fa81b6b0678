package bench

import (
	"errors"
	"fmt"
)

// Dependencies are the collaborators a Service is built from. Logger,
// Journal, Clock and IDGenerator are optional.
type Dependencies struct {
	Registry    *Registry
	Store       PendingStore
	Resources   ResourceStore
	Credentials CredentialProvider
	Surface     EditingSurface
	Prompter    Prompter
	Journal     Journal
	Logger      Logger
	Clock       Clock
	IDs         IDGenerator

	// ScratchRoot is the directory drafts are written to, one file per
	// pending edit, named by the proposed destination filename.
	ScratchRoot string
	Settings    Settings
}

// Service runs the propose, accept, retry and discard transitions of the
// pending-edit lifecycle.
type Service struct {
	registry    *Registry
	store       PendingStore
	resources   ResourceStore
	credentials CredentialProvider
	surface     EditingSurface
	prompter    Prompter
	journal     Journal
	logger      Logger
	clock       Clock
	ids         IDGenerator
	scratchRoot string
	settings    Settings
}

// NewService creates a Service from deps.
func NewService(deps Dependencies) *Service {
	s := &Service{
		registry:    deps.Registry,
		store:       deps.Store,
		resources:   deps.Resources,
		credentials: deps.Credentials,
		surface:     deps.Surface,
		prompter:    deps.Prompter,
		journal:     deps.Journal,
		logger:      deps.Logger,
		clock:       deps.Clock,
		ids:         deps.IDs,
		scratchRoot: deps.ScratchRoot,
		settings:    deps.Settings,
	}
	if s.journal == nil {
		s.journal = NopJournal{}
	}
	if s.logger == nil {
		s.logger = NewNopLogger()
	}
	if s.clock == nil {
		s.clock = RealClock{}
	}
	if s.ids == nil {
		s.ids = UUIDGenerator{}
	}
	return s
}

// Settings returns the model selection settings the service was built with.
func (s *Service) Settings() Settings { return s.settings }

// Commands returns the registered command definitions in registration order.
func (s *Service) Commands() []CommandDefinition { return s.registry.All() }

// Pending lists every pending edit.
func (s *Service) Pending() ([]PendingEdit, error) {
	edits, err := s.store.List()
	if err != nil {
		return nil, fmt.Errorf("listing pending edits: %w", err)
	}
	return edits, nil
}

// History returns up to limit journal events, newest first.
func (s *Service) History(limit int) ([]Event, error) {
	events, err := s.journal.Events(limit)
	if err != nil {
		return nil, fmt.Errorf("reading journal: %w", err)
	}
	return events, nil
}

// PendingFor reports the pending edit held by resourceID, if it is a scratch
// artifact, along with the command that produced it.
func (s *Service) PendingFor(resourceID string) (CommandDefinition, PendingEdit, bool, error) {
	if resourceID == "" {
		return CommandDefinition{}, PendingEdit{}, false, nil
	}
	edit, ok, err := s.store.Get(resourceID)
	if err != nil || !ok {
		return CommandDefinition{}, PendingEdit{}, false, err
	}
	def, ok := s.registry.Lookup(edit.CommandName)
	if !ok {
		return CommandDefinition{}, PendingEdit{}, false, nil
	}
	return def, edit, true, nil
}

// WatchActive shows the accept affordance whenever the surface focuses a
// resource with a pending edit.
func (s *Service) WatchActive() {
	s.surface.OnActiveResourceChanged(func(id string) {
		def, edit, ok, err := s.PendingFor(id)
		if err != nil {
			s.logger.Warn("checking active resource", "resource", id, "error", err)
			return
		}
		if !ok {
			return
		}
		s.prompter.Info(fmt.Sprintf("%s: %s (%s)", def.Label(), def.Tooltip(), s.resources.Basename(edit.OriginalID)))
	})
}

func (s *Service) record(kind EventKind, edit PendingEdit, destination string) {
	e := Event{
		ID:          s.ids.New(),
		Kind:        kind,
		CommandName: edit.CommandName,
		OriginalID:  edit.OriginalID,
		ScratchPath: edit.ScratchPath,
		Destination: destination,
		Model:       edit.Model,
		OccurredAt:  s.clock.Now(),
	}
	if err := s.journal.Record(e); err != nil {
		s.logger.Warn("recording journal event", "kind", string(kind), "error", err)
	}
}

// ReportedError wraps an error whose message has already been shown to the
// user through the Prompter.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string { return e.Err.Error() }
func (e *ReportedError) Unwrap() error { return e.Err }

// IsReported reports whether err was already shown to the user.
func IsReported(err error) bool {
	var r *ReportedError
	return errors.As(err, &r)
}

func reported(err error) error { return &ReportedError{Err: err} }
