package bench

import "context"

// CredentialProvider supplies the API token used by transforms.
type CredentialProvider interface {
	// Token returns the stored token, or "" if none is available.
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	// PromptForToken asks the user for a token and stores it. It returns ""
	// if the user declines or enters nothing.
	PromptForToken(ctx context.Context) (string, error)
}
