// Package credential stores and retrieves the OpenAI API token.
package credential

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"craftbench/internal/bench"
)

// DefaultTokenEnv is consulted before the sealed token file.
const DefaultTokenEnv = "OPENAI_API_KEY"

const (
	promptProvideToken = "To use this extension, you need to provide an OpenAI API token. Would you like to provide one now?"
	promptEnterToken   = "Please enter your OpenAI API token"
	optionYes          = "Yes"
	optionNo           = "No"
)

// Sealer encrypts the token at rest.
type Sealer interface {
	// Setup creates the key material. It is called once, before the first
	// Encrypt, when IsConfigured is false.
	Setup() error
	IsConfigured() bool
	Encrypt(r io.Reader, w io.Writer) error
	Decrypt(r io.Reader, w io.Writer) error
}

// Provider implements bench.CredentialProvider. The token is read from an
// environment variable when set, and otherwise from a sealed file.
type Provider struct {
	sealer    Sealer
	tokenPath string
	envVar    string
	prompter  bench.Prompter
	getenv    func(string) string
}

var _ bench.CredentialProvider = (*Provider)(nil)

// NewProvider creates a Provider. envVar defaults to DefaultTokenEnv.
func NewProvider(sealer Sealer, tokenPath, envVar string, prompter bench.Prompter) *Provider {
	if envVar == "" {
		envVar = DefaultTokenEnv
	}
	return &Provider{
		sealer:    sealer,
		tokenPath: tokenPath,
		envVar:    envVar,
		prompter:  prompter,
		getenv:    os.Getenv,
	}
}

// LoadEnvFiles loads .env from the working directory and from home, if
// present. Variables already set in the environment are not overwritten.
func LoadEnvFiles(home string) {
	files := []string{".env"}
	if home != "" {
		files = append(files, filepath.Join(home, ".env"))
	}
	for _, f := range files {
		// Missing files are expected.
		_ = godotenv.Load(f)
	}
}

// Token returns the API token, or "" if none is stored.
func (p *Provider) Token(_ context.Context) (string, error) {
	if v := strings.TrimSpace(p.getenv(p.envVar)); v != "" {
		return v, nil
	}

	sealed, err := os.ReadFile(p.tokenPath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading token file: %w", err)
	}

	var plain bytes.Buffer
	if err := p.sealer.Decrypt(bytes.NewReader(sealed), &plain); err != nil {
		return "", fmt.Errorf("decrypting token: %w", err)
	}
	return strings.TrimSpace(plain.String()), nil
}

// SetToken seals token and writes it to the token file.
func (p *Provider) SetToken(_ context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token must not be empty")
	}

	if !p.sealer.IsConfigured() {
		if err := p.sealer.Setup(); err != nil {
			return fmt.Errorf("setting up token encryption: %w", err)
		}
	}

	var sealed bytes.Buffer
	if err := p.sealer.Encrypt(strings.NewReader(token), &sealed); err != nil {
		return fmt.Errorf("encrypting token: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(p.tokenPath), 0700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}
	if err := os.WriteFile(p.tokenPath, sealed.Bytes(), 0600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}

// Clear removes the stored token. It does not touch the environment.
func (p *Provider) Clear() error {
	if err := os.Remove(p.tokenPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}

// PromptForToken asks whether to provide a token and, if so, reads and
// stores it. It returns "" if the user declines or enters nothing.
func (p *Provider) PromptForToken(ctx context.Context) (string, error) {
	if p.prompter == nil {
		return "", nil
	}

	answer, err := p.prompter.Confirm(ctx, promptProvideToken, []string{optionYes, optionNo})
	if errors.Is(err, bench.ErrPromptCancelled) || (err == nil && answer != optionYes) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("asking for token: %w", err)
	}

	token, err := p.prompter.InputSecret(ctx, promptEnterToken)
	if errors.Is(err, bench.ErrPromptCancelled) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", nil
	}
	if err := p.SetToken(ctx, token); err != nil {
		return "", err
	}
	return token, nil
}
