package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"craftbench/internal/bench"
	"craftbench/internal/config"
	"craftbench/internal/testutil"
)

type apiReply struct {
	content string
	finish  string
}

// chatServer answers chat completions from a queue and records the models
// requested.
type chatServer struct {
	mu      sync.Mutex
	replies []apiReply
	models  []string
}

func (s *chatServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Model string `json:"model"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.models = append(s.models, body.Model)
	rep := apiReply{content: "", finish: "stop"}
	if len(s.replies) > 0 {
		rep = s.replies[0]
		s.replies = s.replies[1:]
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  body.Model,
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": rep.content},
			"finish_reason": rep.finish,
		}},
	})
}

func (s *chatServer) requested() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.models...)
}

type testApp struct {
	*CraftApp
	prompter *testutil.ScriptedPrompter
	api      *chatServer
	workDir  string
	out      *bytes.Buffer
}

func newTestApp(t *testing.T, mutate func(cfg *config.Config, opts *Options), replies ...string) *testApp {
	t.Helper()

	api := &chatServer{}
	for _, r := range replies {
		api.replies = append(api.replies, apiReply{content: r, finish: "stop"})
	}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	base := t.TempDir()
	cfg := config.NewConfig(base)
	cfg.ScratchDir = filepath.Join(base, "scratch")
	cfg.Database = config.DatabaseConfig{Type: "memory"}
	cfg.Encryption.Type = "test"
	cfg.OpenAI.BaseURL = srv.URL + "/v1"
	t.Setenv("OPENAI_API_KEY", "sk-test")

	prompter := testutil.NewScriptedPrompter()
	out := &bytes.Buffer{}
	opts := Options{
		In:       strings.NewReader(""),
		Out:      out,
		Stderr:   out,
		WorkDir:  t.TempDir(),
		Prompter: prompter,
	}
	if mutate != nil {
		mutate(cfg, &opts)
	}

	a, err := NewCraftApp(context.Background(), cfg, "Test", opts)
	if err != nil {
		t.Fatalf("NewCraftApp() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })

	return &testApp{CraftApp: a, prompter: prompter, api: api, workDir: opts.WorkDir, out: out}
}

func (ta *testApp) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(ta.workDir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func fileContent(t *testing.T, path string) (string, bool) {
	t.Helper()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false
	}
	if err != nil {
		t.Fatal(err)
	}
	return string(data), true
}

func TestCraftApp_ProposeAndAccept(t *testing.T) {
	ctx := context.Background()
	ta := newTestApp(t, nil, "const x: number = 1;")
	orig := ta.writeFile(t, "foo.js", "const x = 1;")
	ta.prompter.Queue(testutil.Answer{Value: "Convert"})

	p, err := ta.Propose(ctx, "toTypeScript", orig)
	if err != nil {
		t.Fatalf("Propose() error = %v", err)
	}
	if filepath.Base(p.Edit.ScratchPath) != "foo.ts" {
		t.Errorf("scratch = %s, want foo.ts", p.Edit.ScratchPath)
	}
	if !strings.Contains(ta.out.String(), "+const x: number = 1;") {
		t.Errorf("diff output = %q", ta.out.String())
	}

	acc, err := ta.Review(ctx, p)
	if err != nil {
		t.Fatalf("Review() error = %v", err)
	}
	want := filepath.Join(ta.workDir, "foo.ts")
	if acc == nil || acc.Destination != want {
		t.Fatalf("Review() = %+v, want destination %s", acc, want)
	}
	if got, _ := fileContent(t, want); got != "const x: number = 1;" {
		t.Errorf("foo.ts = %q", got)
	}
	if _, ok := fileContent(t, orig); ok {
		t.Error("foo.js still exists")
	}
	if _, ok := fileContent(t, p.Edit.ScratchPath); ok {
		t.Error("draft still exists")
	}
	if !slices.Contains(ta.prompter.Infos, "Saved "+want) {
		t.Errorf("infos = %q", ta.prompter.Infos)
	}

	events, err := ta.History(10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(events) != 2 || events[0].Kind != bench.EventAccepted {
		t.Errorf("History() = %+v", events)
	}
}

func TestCraftApp_ReviewRetry(t *testing.T) {
	ctx := context.Background()
	ta := newTestApp(t, nil, "first draft", "second draft")
	orig := ta.writeFile(t, "app.go", "package main")
	ta.prompter.Queue(testutil.Answer{Value: choiceRetry})
	ta.prompter.Queue(testutil.Answer{Value: "Accept Edits"})

	p, err := ta.Propose(ctx, "polish", orig)
	if err != nil {
		t.Fatalf("Propose() error = %v", err)
	}
	if _, err := ta.Review(ctx, p); err != nil {
		t.Fatalf("Review() error = %v", err)
	}

	if got := ta.api.requested(); !slices.Equal(got, []string{bench.BaseModel, bench.LargeModel}) {
		t.Errorf("models = %v", got)
	}
	if got, _ := fileContent(t, orig); got != "second draft" {
		t.Errorf("app.go = %q, want the retried draft", got)
	}
	if len(ta.prompter.Options) != 2 || slices.Contains(ta.prompter.Options[1], choiceRetry) {
		t.Errorf("options = %v, want retry offered once", ta.prompter.Options)
	}
}

func TestCraftApp_ReviewRetryDisabled(t *testing.T) {
	ctx := context.Background()
	ta := newTestApp(t, func(cfg *config.Config, _ *Options) {
		cfg.Models.DisableLargerRetry = true
	}, "draft")
	orig := ta.writeFile(t, "app.go", "package main")
	ta.prompter.Queue(testutil.Answer{Value: choiceDiscard})

	p, err := ta.Propose(ctx, "harden", orig)
	if err != nil {
		t.Fatalf("Propose() error = %v", err)
	}
	if _, err := ta.Review(ctx, p); err != nil {
		t.Fatalf("Review() error = %v", err)
	}
	if slices.Contains(ta.prompter.Options[0], choiceRetry) {
		t.Errorf("options = %v, want no retry", ta.prompter.Options[0])
	}
}

func TestCraftApp_ReviewEdit(t *testing.T) {
	ctx := context.Background()
	ta := newTestApp(t, func(_ *config.Config, opts *Options) {
		opts.Editor = func(_ context.Context, path string) error {
			return os.WriteFile(path, []byte("hand edited"), 0644)
		}
	}, "draft")
	orig := ta.writeFile(t, "app.go", "package main")
	ta.prompter.Queue(testutil.Answer{Value: choiceEdit})
	ta.prompter.Queue(testutil.Answer{Value: "Accept Edits"})

	p, err := ta.Propose(ctx, "polish", orig)
	if err != nil {
		t.Fatalf("Propose() error = %v", err)
	}
	if _, err := ta.Review(ctx, p); err != nil {
		t.Fatalf("Review() error = %v", err)
	}
	if got, _ := fileContent(t, orig); got != "hand edited" {
		t.Errorf("app.go = %q, want the edited draft", got)
	}
}

func TestCraftApp_ReviewDiscard(t *testing.T) {
	tests := []struct {
		name    string
		answers []string
	}{
		{name: "discard chosen", answers: []string{choiceDiscard}},
		{name: "prompt cancelled with memory store"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			ta := newTestApp(t, nil, "draft")
			orig := ta.writeFile(t, "app.go", "package main")
			for _, a := range tt.answers {
				ta.prompter.Queue(testutil.Answer{Value: a})
			}

			p, err := ta.Propose(ctx, "polish", orig)
			if err != nil {
				t.Fatalf("Propose() error = %v", err)
			}
			acc, err := ta.Review(ctx, p)
			if err != nil || acc != nil {
				t.Fatalf("Review() = %+v, %v; want nil, nil", acc, err)
			}

			if got, _ := fileContent(t, orig); got != "package main" {
				t.Errorf("app.go = %q, want untouched", got)
			}
			if _, ok := fileContent(t, p.Edit.ScratchPath); ok {
				t.Error("draft still exists")
			}
			pending, _ := ta.Pending()
			if len(pending) != 0 {
				t.Errorf("Pending() = %v, want none", pending)
			}
		})
	}
}

func TestCraftApp_CancelKeepsPersistentProposal(t *testing.T) {
	ctx := context.Background()
	ta := newTestApp(t, func(cfg *config.Config, _ *Options) {
		cfg.Pending.Type = "sqlite"
	}, "draft")
	orig := ta.writeFile(t, "app.go", "package main")

	p, err := ta.Propose(ctx, "polish", orig)
	if err != nil {
		t.Fatalf("Propose() error = %v", err)
	}
	if _, err := ta.Review(ctx, p); err != nil {
		t.Fatalf("Review() error = %v", err)
	}

	pending, err := ta.Pending()
	if err != nil || len(pending) != 1 {
		t.Fatalf("Pending() = %v, %v; want one edit", pending, err)
	}

	if _, err := ta.Accept(ctx, p.Edit.ScratchPath); err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	if got, _ := fileContent(t, orig); got != "draft" {
		t.Errorf("app.go = %q, want draft", got)
	}
}

func TestCraftApp_IgnoreFile(t *testing.T) {
	ctx := context.Background()
	ta := newTestApp(t, func(_ *config.Config, opts *Options) {
		ignore := filepath.Join(opts.WorkDir, ".craftignore")
		if err := os.WriteFile(ignore, []byte("# generated\n*.gen.js\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}, "draft")
	orig := ta.writeFile(t, "api.gen.js", "const x = 1;")

	_, err := ta.Propose(ctx, "toTypeScript", orig)
	var eligibility *bench.EligibilityError
	if !errors.As(err, &eligibility) {
		t.Fatalf("Propose() error = %v, want EligibilityError", err)
	}
	if len(ta.prompter.Warnings) != 1 || !strings.Contains(ta.prompter.Warnings[0], "excluded") {
		t.Errorf("warnings = %q", ta.prompter.Warnings)
	}
	if got := ta.api.requested(); len(got) != 0 {
		t.Errorf("completion requested for an ignored file: %v", got)
	}
}

func TestNewCraftApp_RejectsRelativeScratchDir(t *testing.T) {
	tests := []struct {
		name    string
		scratch string
	}{
		{name: "empty", scratch: ""},
		{name: "relative", scratch: "proposed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := t.TempDir()
			cfg := config.NewConfig(base)
			cfg.ScratchDir = tt.scratch
			cfg.Database = config.DatabaseConfig{Type: "memory"}
			cfg.Encryption.Type = "test"

			workDir := t.TempDir()
			orig := filepath.Join(workDir, "foo.go")
			if err := os.WriteFile(orig, []byte("package foo"), 0644); err != nil {
				t.Fatal(err)
			}
			chdir(t, workDir)

			a, err := NewCraftApp(context.Background(), cfg, "Test", Options{
				In:       strings.NewReader(""),
				Out:      &bytes.Buffer{},
				WorkDir:  workDir,
				Prompter: testutil.NewScriptedPrompter(),
			})
			if err == nil {
				a.Close()
				t.Fatal("NewCraftApp() error = nil, want scratch_dir error")
			}
			if !strings.Contains(err.Error(), "scratch_dir") {
				t.Errorf("NewCraftApp() error = %v, want scratch_dir error", err)
			}
			if got, _ := fileContent(t, orig); got != "package foo" {
				t.Errorf("foo.go = %q, want untouched", got)
			}
		})
	}
}

func TestCraftApp_DraftInScratchDirIsNotProposed(t *testing.T) {
	ctx := context.Background()
	var scratch string
	ta := newTestApp(t, func(cfg *config.Config, _ *Options) {
		scratch = cfg.ScratchDir
	}, "REWRITTEN")
	if err := os.MkdirAll(scratch, 0755); err != nil {
		t.Fatal(err)
	}
	orphan := filepath.Join(scratch, "bar.go")
	if err := os.WriteFile(orphan, []byte("package bar"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := ta.Propose(ctx, "polish", orphan)
	if !errors.Is(err, bench.ErrDraftResource) {
		t.Fatalf("Propose() error = %v, want ErrDraftResource", err)
	}
	if got, ok := fileContent(t, orphan); !ok || got != "package bar" {
		t.Errorf("bar.go = %q (exists %t), want untouched", got, ok)
	}
	if got := ta.api.requested(); len(got) != 0 {
		t.Errorf("completion requested for a draft: %v", got)
	}
}

func TestCraftApp_Escalation(t *testing.T) {
	ctx := context.Background()
	ta := newTestApp(t, nil)
	ta.api.replies = []apiReply{
		{content: "cut off", finish: "length"},
		{content: "complete", finish: "stop"},
	}
	orig := ta.writeFile(t, "app.go", "package main")

	p, err := ta.Propose(ctx, "polish", orig)
	if err != nil {
		t.Fatalf("Propose() error = %v", err)
	}
	if got, _ := fileContent(t, p.Edit.ScratchPath); got != "complete" {
		t.Errorf("draft = %q", got)
	}
	if got := ta.api.requested(); !slices.Equal(got, []string{"gpt-3.5-turbo", "gpt-3.5-turbo-16k"}) {
		t.Errorf("models = %v", got)
	}
	if !slices.Contains(ta.prompter.Infos, escalateMessage) {
		t.Errorf("infos = %q, want escalation notice", ta.prompter.Infos)
	}
}

func TestCraftApp_ProposeMissingFile(t *testing.T) {
	ta := newTestApp(t, nil)
	if _, err := ta.Propose(context.Background(), "polish", filepath.Join(ta.workDir, "missing.go")); err == nil {
		t.Fatal("Propose() expected error")
	}
	if got := ta.api.requested(); len(got) != 0 {
		t.Errorf("completion requested for a missing file: %v", got)
	}
}

func TestCraftApp_Token(t *testing.T) {
	ctx := context.Background()
	ta := newTestApp(t, nil)
	t.Setenv("OPENAI_API_KEY", "")

	if err := ta.SetToken(ctx, "sk-stored"); err != nil {
		t.Fatalf("SetToken() error = %v", err)
	}
	if _, ok := fileContent(t, ta.cfg.Encryption.TokenPath); !ok {
		t.Error("sealed token file not written")
	}
	if err := ta.ClearToken(); err != nil {
		t.Fatalf("ClearToken() error = %v", err)
	}
	if _, ok := fileContent(t, ta.cfg.Encryption.TokenPath); ok {
		t.Error("sealed token file still exists")
	}
}

func TestCraftApp_Commands(t *testing.T) {
	ta := newTestApp(t, nil)
	var names []string
	for _, d := range ta.Commands() {
		names = append(names, d.Name)
	}
	if want := []string{"craft", "harden", "polish", "toTypeScript"}; !slices.Equal(names, want) {
		t.Errorf("Commands() = %v, want %v", names, want)
	}
}

func TestResolveID(t *testing.T) {
	if got, _ := resolveID("s3://bucket/a.js"); got != "s3://bucket/a.js" {
		t.Errorf("resolveID(s3) = %q", got)
	}
	got, err := resolveID("rel/a.js")
	if err != nil || !filepath.IsAbs(got) {
		t.Errorf("resolveID(rel) = %q, %v", got, err)
	}
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir for Go < 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
