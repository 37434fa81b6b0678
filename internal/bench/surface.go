package bench

import "context"

// EditingSurface presents resources and diffs to the user.
type EditingSurface interface {
	ShowDiff(ctx context.Context, leftID, rightID, title string) error
	ShowResource(ctx context.Context, id string) error
	CloseActiveView(ctx context.Context) error
	// SaveResource writes edits the surface holds for id but has not yet
	// written, so that reading id sees what the user sees.
	SaveResource(ctx context.Context, id string) error
	// ActiveResource returns the focused resource, or "" if none.
	ActiveResource(ctx context.Context) (string, error)
	// OnActiveResourceChanged registers fn to be called with the newly focused
	// resource ID ("" when nothing is focused).
	OnActiveResourceChanged(fn func(id string))
}
