package bench

import "context"

// CompletionRequest is a single chat completion: an optional system prompt
// followed by the user content.
type CompletionRequest struct {
	SystemPrompt string
	Content      string
	Model        string
}

// Completer sends content to a language model and returns its reply. It may
// escalate to a larger-context model once when the reply is truncated.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
