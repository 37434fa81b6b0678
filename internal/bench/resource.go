package bench

import "context"

// ResourceStore reads and writes resources addressed by path-like IDs.
type ResourceStore interface {
	ReadText(ctx context.Context, id string) (string, error)
	WriteText(ctx context.Context, id string, content string) error
	Delete(ctx context.Context, id string) error
	Basename(id string) string
	Dirname(id string) string
	// Join builds the ID of name inside the directory dir, as returned by Dirname.
	Join(dir, name string) string
}
