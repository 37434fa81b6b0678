package bench

import (
	"context"
	"errors"
)

// ErrPromptCancelled is returned by Prompter methods when the user dismisses
// the prompt.
var ErrPromptCancelled = errors.New("prompt cancelled")

// Prompter asks the user questions and shows short messages.
type Prompter interface {
	Choose(ctx context.Context, title string, options []string) (string, error)
	Confirm(ctx context.Context, message string, options []string) (string, error)
	InputText(ctx context.Context, prompt string) (string, error)
	// InputSecret is InputText without echoing the answer.
	InputSecret(ctx context.Context, prompt string) (string, error)
	Warn(msg string)
	Error(msg string)
	Info(msg string)
}
