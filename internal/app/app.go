package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"craftbench/internal/bench"
	"craftbench/internal/commands"
	"craftbench/internal/config"
	"craftbench/internal/credential"
	"craftbench/internal/database"
	"craftbench/internal/encryption"
	"craftbench/internal/openai"
	"craftbench/internal/pending"
	"craftbench/internal/prompt"
	"craftbench/internal/resource"
	"craftbench/internal/surface"
)

const escalateMessage = "Ran out of tokens. Trying again with larger context model..."

// Options adjust how a CraftApp talks to the user. The zero value uses the
// process's standard streams.
type Options struct {
	In     io.Reader
	Out    io.Writer
	Stderr io.Writer

	// Verbose mirrors the log file to Stderr.
	Verbose bool

	// WorkDir is searched for an ignore file. Defaults to the working directory.
	WorkDir string

	// Prompter replaces the terminal prompter.
	Prompter bench.Prompter

	// Editor opens a draft for manual editing. Defaults to $EDITOR.
	Editor func(ctx context.Context, path string) error
}

// CraftApp is the application layer between the CLI and bench.Service.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string paths, and releases resources on Close.
type CraftApp struct {
	cfg         *config.Config
	db          *database.SQLiteDatabase
	local       *resource.OSStore
	credentials *credential.Provider
	surface     surface.Surface
	prompter    bench.Prompter
	service     *bench.Service
	editor      func(ctx context.Context, path string) error
	op          *Operation
	logger      *slogAdapter
	logFile     *os.File
}

// NewCraftApp creates a fully wired CraftApp from the given config.
// operation identifies the CLI command being run (e.g. "Propose", "Accept").
// The caller must call Close when done.
func NewCraftApp(ctx context.Context, cfg *config.Config, operation string, opts Options) (*CraftApp, error) {
	if cfg.ScratchDir == "" || !filepath.IsAbs(cfg.ScratchDir) {
		return nil, fmt.Errorf("scratch_dir must be an absolute path, got %q", cfg.ScratchDir)
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	op := NewOperation(operation, "", time.Now())
	var mirror io.Writer
	if opts.Verbose {
		mirror = opts.Stderr
	}
	l, logFile, err := newLogger(cfg.LogDir, op.ID, mirror)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: l}

	a := &CraftApp{cfg: cfg, op: op, logger: logger, logFile: logFile, local: resource.NewOSStore()}
	if err := a.wire(ctx, opts); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *CraftApp) wire(ctx context.Context, opts Options) error {
	cfg := a.cfg

	a.prompter = opts.Prompter
	if a.prompter == nil {
		a.prompter = prompt.NewTerminal(opts.In, opts.Out)
	}
	a.editor = opts.Editor
	if a.editor == nil {
		a.editor = runEditor(opts.In, opts.Out, opts.Stderr)
	}

	resources, err := resource.NewStoreFromConfig(ctx, cfg.Resources)
	if err != nil {
		return fmt.Errorf("creating resource store: %w", err)
	}

	sealer, err := encryption.NewSealerFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating sealer: %w", err)
	}
	a.credentials = credential.NewProvider(sealer, cfg.Encryption.TokenPath, cfg.OpenAI.TokenEnv, a.prompter)

	a.db, err = database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	store, err := pending.NewStoreFromConfig(cfg.Pending, a.db)
	if err != nil {
		return fmt.Errorf("creating pending store: %w", err)
	}

	settings := bench.Settings{
		UseLargeModel:    cfg.Models.UseLargeModel,
		AllowLargerRetry: !cfg.Models.DisableLargerRetry,
	}
	completer := openai.NewClient(a.credentials, openai.Options{
		BaseURL:      cfg.OpenAI.BaseURL,
		DefaultModel: settings.DefaultModel(),
		OnEscalate:   func(_, _ string) { a.prompter.Info(escalateMessage) },
		Logger:       a.logger,
	})

	ignore, err := a.ignoreMatcher(opts.WorkDir)
	if err != nil {
		return err
	}
	registry, err := bench.NewRegistry(commands.Guard(commands.Builtin(completer), ignore)...)
	if err != nil {
		return fmt.Errorf("registering commands: %w", err)
	}

	a.surface, err = surface.NewSurfaceFromConfig(cfg.Surface, resources, opts.Out)
	if err != nil {
		return fmt.Errorf("creating surface: %w", err)
	}

	a.service = bench.NewService(bench.Dependencies{
		Registry:    registry,
		Store:       store,
		Resources:   resources,
		Credentials: a.credentials,
		Surface:     a.surface,
		Prompter:    a.prompter,
		Journal:     a.db,
		Logger:      a.logger,
		ScratchRoot: cfg.ScratchDir,
		Settings:    settings,
	})
	a.service.WatchActive()
	return nil
}

// ignoreMatcher combines the configured patterns with the ignore file in
// workDir.
func (a *CraftApp) ignoreMatcher(workDir string) (*resource.IgnoreMatcher, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		workDir = wd
	}
	patterns := append([]string{}, a.cfg.Resources.Ignore...)
	filePatterns, err := resource.ParseIgnoreFile(filepath.Join(workDir, resource.IgnoreFileName))
	if err != nil {
		return nil, err
	}
	return resource.NewIgnoreMatcher(append(patterns, filePatterns...)), nil
}

// resolveID turns a raw CLI argument into a resource ID. s3:// IDs pass
// through; anything else becomes an absolute path.
func resolveID(raw string) (string, error) {
	if strings.HasPrefix(raw, "s3://") {
		return raw, nil
	}
	abs, err := filepath.Abs(raw)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return abs, nil
}

func (a *CraftApp) begin(params string) {
	a.op.Parameters = params
	a.logger.Info("operation started", "operation", a.op.Name, "parameters", params)
}

// Propose runs command against the file at rawPath.
func (a *CraftApp) Propose(ctx context.Context, command, rawPath string) (*bench.Proposal, error) {
	a.begin(command + " " + rawPath)
	id := rawPath
	if !strings.HasPrefix(rawPath, "s3://") {
		p, err := a.local.Resolve(rawPath)
		if err != nil {
			return nil, err
		}
		id = p
	}
	p, err := a.service.Propose(ctx, command, id)
	a.op.Finish(err)
	return p, err
}

// Accept commits the draft at rawScratch. It returns nil when nothing is
// pending there.
func (a *CraftApp) Accept(ctx context.Context, rawScratch string) (*bench.Acceptance, error) {
	a.begin(rawScratch)
	id, err := resolveID(rawScratch)
	if err != nil {
		return nil, err
	}
	acc, err := a.service.Accept(ctx, id)
	a.op.Finish(err)
	return acc, err
}

// Retry re-proposes the draft at rawScratch with the larger model.
func (a *CraftApp) Retry(ctx context.Context, rawScratch string) (*bench.Proposal, error) {
	a.begin(rawScratch)
	id, err := resolveID(rawScratch)
	if err != nil {
		return nil, err
	}
	p, err := a.service.RetryWithLargerModel(ctx, id)
	a.op.Finish(err)
	return p, err
}

// Discard drops the draft at rawScratch.
func (a *CraftApp) Discard(ctx context.Context, rawScratch string) error {
	a.begin(rawScratch)
	id, err := resolveID(rawScratch)
	if err != nil {
		return err
	}
	err = a.service.Discard(ctx, id)
	a.op.Finish(err)
	return err
}

// Pending lists every pending edit.
func (a *CraftApp) Pending() ([]bench.PendingEdit, error) {
	return a.service.Pending()
}

// History returns the most recent journal events.
func (a *CraftApp) History(limit int) ([]bench.Event, error) {
	return a.service.History(limit)
}

// Commands returns the registered commands.
func (a *CraftApp) Commands() []bench.CommandDefinition {
	return a.service.Commands()
}

// Settings returns the model selection settings.
func (a *CraftApp) Settings() bench.Settings {
	return a.service.Settings()
}

// SetToken seals and stores token.
func (a *CraftApp) SetToken(ctx context.Context, token string) error {
	return a.credentials.SetToken(ctx, token)
}

// PromptForToken asks the user for a token and stores it.
func (a *CraftApp) PromptForToken(ctx context.Context) (string, error) {
	return a.credentials.PromptForToken(ctx)
}

// ClearToken removes the stored token.
func (a *CraftApp) ClearToken() error {
	return a.credentials.Clear()
}

// Close logs the operation outcome and closes all resources.
func (a *CraftApp) Close() error {
	var firstErr error

	if a.surface != nil {
		if err := a.surface.Close(); err != nil {
			firstErr = fmt.Errorf("closing surface: %w", err)
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing database: %w", err)
		}
	}

	a.logger.Info("operation finished",
		"operation", a.op.Name,
		"status", a.op.Status,
		"elapsed", a.op.Elapsed(time.Now()).Truncate(time.Millisecond).String())

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
