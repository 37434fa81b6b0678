package commands

import (
	"context"

	"craftbench/internal/bench"
)

const hardenPrompt = principalEngineer +
	`The output of your response will be saved as a new file and expected to work as-is so make sure you only output code and no extra comments/questions.
Your peer has requested that you look over the provided code and try to make sure it is robust.
This means checking for things like error handling, security issues, bugs, performance issues, and more.
If you notice any issues or ways that the code could be obviously improved then please go ahead and make the changes.
If you don't see any issues or changes that need to be made then just return the original code as-is.
Please second-guess any changes you are making and if not 100% necessary then don't make the change.
REMEMBER TO ONLY OUTPUT THE FILE CONTENTS, NO EXTRA COMMENTS, MARKDOWN, OR QUESTIONS.
`

const polishPrompt = principalEngineer +
	`The output of your response will be saved as the new version of the file and expected to work the same.
Your peer has requested that you look over the provided code and try to make sure it looks polished.
You are specifically looking for things like typos in variable names/comments, inconsistent formatting, improving readability of the code, etc.
Avoid making any changes that could change the functionality of the code.
Try to match the existing style of the file, and don't do things like change all quotes to double quotes, etc.
`

// Harden asks for fixes to error handling, security issues and bugs.
func Harden(c bench.Completer) bench.CommandDefinition {
	return bench.CommandDefinition{
		Name:              "harden",
		RequireCredential: true,
		Transform: func(ctx context.Context, in bench.TransformInput) (string, error) {
			return complete(ctx, c, hardenPrompt, in)
		},
		AcceptLabel:   "Accept Edits",
		AcceptTooltip: "Accepted hardened edits.",
		DiffTitle:     "Hardened Edits",
	}
}

// Polish asks for readability fixes that keep behavior unchanged.
func Polish(c bench.Completer) bench.CommandDefinition {
	return bench.CommandDefinition{
		Name:              "polish",
		RequireCredential: true,
		Transform: func(ctx context.Context, in bench.TransformInput) (string, error) {
			return complete(ctx, c, polishPrompt, in)
		},
		AcceptLabel:   "Accept Edits",
		AcceptTooltip: "Accepted polished edits.",
		DiffTitle:     "Polished Edits",
	}
}
