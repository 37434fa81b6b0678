package commands

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"craftbench/internal/bench"
)

const (
	jsToTSPrefix   = "Please convert the following user-provided JavaScript to TypeScript.\n"
	jsxToTSXPrefix = "Please convert the following user-provided JSX to TSX.\n"
)

const typeScriptPrompt = `You are an expert TypeScript engineer with many years of experience with both JS and TS.
You don't have any other options so don't ask questions.
The output of your response will be saved as a new file with the correct extension and expect to work as-is.
Try not to use "any" or "unknown" unless you absolutely have to.
The code should function the exact same as it did previously and for the most part should read the exact same as it did previously other than the type changes.
If you are unable to convert a line or are forced to use "any" you can leave a comment above it with prefix "TS-CONVERSION: ", although avoid doing so at all costs.
`

var (
	jsExt  = regexp.MustCompile(`\.jsx?$`)
	jsxTag = regexp.MustCompile(`<\w+`)
)

// ToTypeScript converts a .js or .jsx file to .ts or .tsx.
func ToTypeScript(c bench.Completer) bench.CommandDefinition {
	return bench.CommandDefinition{
		Name:              "toTypeScript",
		RequireCredential: true,
		Eligibility: func(doc bench.Document) bench.Verdict {
			if !jsExt.MatchString(doc.Name) {
				return bench.Deny("This command only works on JavaScript or JSX files.")
			}
			return bench.Allow()
		},
		DeriveDestinationName: typeScriptName,
		Transform: func(ctx context.Context, in bench.TransformInput) (string, error) {
			prefix := jsToTSPrefix
			if strings.HasSuffix(in.DestinationName, ".tsx") {
				prefix = jsxToTSXPrefix
			}
			return complete(ctx, c, prefix+typeScriptPrompt, in)
		},
		AcceptLabel:   "Convert",
		AcceptTooltip: "Convert to TypeScript",
		DiffTitle:     "TypeScript Conversion",
	}
}

// typeScriptName maps foo.jsx to foo.tsx. A .js file that looks like it
// contains JSX asks the user; everything else becomes .ts.
func typeScriptName(ctx context.Context, doc bench.Document, p bench.Prompter) (string, error) {
	tsx := strings.HasSuffix(doc.Name, ".jsx")

	if !tsx && jsxTag.MatchString(doc.Content) {
		tsx = true
		choice, err := p.Choose(ctx, "Convert to TSX or TS?", []string{"TSX", "TS"})
		switch {
		case errors.Is(err, bench.ErrPromptCancelled):
		case err != nil:
			return "", fmt.Errorf("choosing extension: %w", err)
		case choice == "TS":
			tsx = false
		}
	}

	ext := ".ts"
	if tsx {
		ext = ".tsx"
	}
	return jsExt.ReplaceAllString(doc.Name, ext), nil
}
