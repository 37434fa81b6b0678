package bench

import "context"

const (
	defaultAcceptLabel   = "Accept Edits"
	defaultAcceptTooltip = "Save Proposed Edits"
	defaultDiffTitle     = "Proposed Edits"
)

// Document is the content of a resource as read at the start of an operation.
type Document struct {
	ID      string
	Name    string
	Content string
}

// Verdict is the outcome of an eligibility check. A denial carries the reason
// shown to the user.
type Verdict struct {
	Denied bool
	Reason string
}

// Allow returns a Verdict permitting the command to run.
func Allow() Verdict { return Verdict{} }

// Deny returns a Verdict refusing the command with the given reason.
func Deny(reason string) Verdict { return Verdict{Denied: true, Reason: reason} }

// TransformInput is passed to a command's transform.
type TransformInput struct {
	Content         string
	DestinationName string
	Model           string
}

// CommandDefinition describes one edit-proposing command. Definitions are
// built once at startup and never mutated.
type CommandDefinition struct {
	Name string

	// RequireCredential makes Propose obtain an API token before doing any work.
	RequireCredential bool

	// Eligibility is optional; a nil predicate allows every document.
	Eligibility func(doc Document) Verdict

	// Transform returns the proposed content. An empty string means the
	// transform produced nothing.
	Transform func(ctx context.Context, in TransformInput) (string, error)

	// DeriveDestinationName is optional; nil keeps the document's name.
	DeriveDestinationName func(ctx context.Context, doc Document, p Prompter) (string, error)

	AcceptLabel   string
	AcceptTooltip string
	DiffTitle     string
}

// Label returns the accept label, falling back to the default.
func (d CommandDefinition) Label() string {
	if d.AcceptLabel == "" {
		return defaultAcceptLabel
	}
	return d.AcceptLabel
}

// Tooltip returns the accept tooltip, falling back to the default.
func (d CommandDefinition) Tooltip() string {
	if d.AcceptTooltip == "" {
		return defaultAcceptTooltip
	}
	return d.AcceptTooltip
}

// Title returns the diff title, falling back to the default.
func (d CommandDefinition) Title() string {
	if d.DiffTitle == "" {
		return defaultDiffTitle
	}
	return d.DiffTitle
}

func (d CommandDefinition) check(doc Document) Verdict {
	if d.Eligibility == nil {
		return Allow()
	}
	return d.Eligibility(doc)
}

func (d CommandDefinition) destinationName(ctx context.Context, doc Document, p Prompter) (string, error) {
	if d.DeriveDestinationName == nil {
		return doc.Name, nil
	}
	return d.DeriveDestinationName(ctx, doc, p)
}
