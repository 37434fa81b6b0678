package commands

import (
	"context"
	"strings"

	"craftbench/internal/bench"
)

const craftPrompt = principalEngineer +
	`The output of your response will be saved as a new file and expected to work as-is so make sure you only output code and no extra comments/questions.
A request is a comment that starts with "craft:".
Your task is to perform all craft requests in the code provided by updating the file to accomplish the request and returning the updated file.
The updated file that you output should be ready to commit to a production database and feel complete and follow best practices.
You should delete all comments from the original file that start with "craft:" in your response.
If you are absolutely unable to complete a request then respond with only an error like this: "ERROR: Unable to complete request because ..."
You are able to modify multiple parts of the file if needed.
Make sure imports are added in correct place (top of file most likely).
REMEMBER TO ONLY OUTPUT THE FILE CONTENTS, NO EXTRA COMMENTS, MARKDOWN, OR QUESTIONS.
`

// Craft carries out the "craft:" requests written as comments in a file.
func Craft(c bench.Completer) bench.CommandDefinition {
	return bench.CommandDefinition{
		Name:              "craft",
		RequireCredential: true,
		Eligibility: func(doc bench.Document) bench.Verdict {
			if !strings.Contains(doc.Content, "craft:") {
				return bench.Deny("Please add a comment starting with 'craft:' to your file to indicate what you want to accomplish.")
			}
			return bench.Allow()
		},
		Transform: func(ctx context.Context, in bench.TransformInput) (string, error) {
			reply, err := complete(ctx, c, craftPrompt, in)
			if err != nil || reply == "" {
				return "", err
			}
			// The model sometimes wraps the file in a code fence anyway,
			// mostly when the file holds nothing but the craft comment.
			return StripFences(reply), nil
		},
		AcceptLabel:   "Accept Craft",
		AcceptTooltip: "Accepted crafted edits.",
		DiffTitle:     "Crafted Edits",
	}
}
