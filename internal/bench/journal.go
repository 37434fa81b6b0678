package bench

import "time"

// EventKind names a transition of the pending-edit lifecycle.
type EventKind string

const (
	EventProposed  EventKind = "proposed"
	EventAccepted  EventKind = "accepted"
	EventRetried   EventKind = "retried"
	EventDiscarded EventKind = "discarded"
)

// Event is one journal entry.
type Event struct {
	ID          string
	Kind        EventKind
	CommandName string
	OriginalID  string
	ScratchPath string
	Destination string
	Model       string
	OccurredAt  time.Time
}

// Journal records lifecycle events for later inspection.
type Journal interface {
	Record(e Event) error
	// Events returns up to limit events, newest first.
	Events(limit int) ([]Event, error)
}

// NopJournal records nothing.
type NopJournal struct{}

func (NopJournal) Record(Event) error           { return nil }
func (NopJournal) Events(int) ([]Event, error) { return nil, nil }
