// Package commands defines the built-in edit-proposing commands.
package commands

import (
	"context"
	"fmt"
	"strings"

	"craftbench/internal/bench"
)

const principalEngineer = "You are a Principal Software Engineer with many years of experience in this programming language and domain.\n"

// Builtin returns the built-in command definitions in menu order.
func Builtin(completer bench.Completer) []bench.CommandDefinition {
	return []bench.CommandDefinition{
		Craft(completer),
		Harden(completer),
		Polish(completer),
		ToTypeScript(completer),
	}
}

// Matcher reports whether a resource is excluded.
type Matcher interface {
	Match(id string) bool
}

// Guard makes every definition in defs refuse resources matched by m, in
// addition to its own eligibility check.
func Guard(defs []bench.CommandDefinition, m Matcher) []bench.CommandDefinition {
	out := make([]bench.CommandDefinition, len(defs))
	for i, def := range defs {
		inner := def.Eligibility
		def.Eligibility = func(doc bench.Document) bench.Verdict {
			if m.Match(doc.ID) {
				return bench.Deny(fmt.Sprintf("%s is excluded by the ignore patterns.", doc.Name))
			}
			if inner == nil {
				return bench.Allow()
			}
			return inner(doc)
		}
		out[i] = def
	}
	return out
}

// withFilename appends the name of the file being produced to a system prompt.
func withFilename(prompt, name string) string {
	return prompt + fmt.Sprintf("The filename being worked on is %q\n", name)
}

// complete sends content with the given system prompt and model.
func complete(ctx context.Context, c bench.Completer, system string, in bench.TransformInput) (string, error) {
	return c.Complete(ctx, bench.CompletionRequest{
		SystemPrompt: withFilename(system, in.DestinationName),
		Content:      in.Content,
		Model:        in.Model,
	})
}

// lineStripFences drops a leading line starting with ``` and a trailing line
// ending with ```.
func lineStripFences(s string) string {
	lines := strings.Split(s, "\n")
	if strings.HasPrefix(lines[0], "```") {
		lines = lines[1:]
	}
	if n := len(lines); n > 0 && strings.HasSuffix(lines[n-1], "```") {
		lines = lines[:n-1]
	}
	return strings.Join(lines, "\n")
}
