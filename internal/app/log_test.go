package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCraftHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		opID    string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			opID:    "20240615T143045Z",
			level:   slog.LevelInfo,
			message: "proposed edit",
			want:    "2024-06-15T14:30:45Z\tINFO\t20240615T143045Z\tproposed edit\n",
		},
		{
			name:    "debug level",
			opID:    "op-456",
			level:   slog.LevelDebug,
			message: "accept: nothing pending",
			want:    "2024-06-15T14:30:45Z\tDEBUG\top-456\taccept: nothing pending\n",
		},
		{
			name:    "with record attrs",
			opID:    "op-789",
			level:   slog.LevelInfo,
			message: "running transform",
			attrs:   []slog.Attr{slog.String("command", "polish"), slog.Int("attempt", 2)},
			want:    "2024-06-15T14:30:45Z\tINFO\top-789\trunning transform\tcommand=polish\tattempt=2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &craftHandler{w: &buf, opID: tt.opID}

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			for _, a := range tt.attrs {
				r.AddAttrs(a)
			}

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestCraftHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &craftHandler{w: &buf, opID: "op-1"}

	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "openai")}).(*craftHandler)

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "requesting completion", 0)
	r.AddAttrs(slog.String("model", "gpt-4"))

	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "component=openai") {
		t.Errorf("expected pre-set attr component=openai, got: %q", got)
	}
	if !strings.Contains(got, "model=gpt-4") {
		t.Errorf("expected record attr model=gpt-4, got: %q", got)
	}
}

func TestCraftHandler_WithAttrs_doesNotMutateOriginal(t *testing.T) {
	var buf bytes.Buffer
	h := &craftHandler{w: &buf, opID: "op-1", attrs: []slog.Attr{slog.String("a", "1")}}

	h2 := h.WithAttrs([]slog.Attr{slog.String("b", "2")}).(*craftHandler)

	if len(h.attrs) != 1 {
		t.Errorf("original handler attrs modified: got %d, want 1", len(h.attrs))
	}
	if len(h2.attrs) != 2 {
		t.Errorf("new handler attrs: got %d, want 2", len(h2.attrs))
	}
}

func TestCraftHandler_Enabled(t *testing.T) {
	h := &craftHandler{}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if !h.Enabled(context.Background(), level) {
			t.Errorf("Enabled(%v) = false, want true", level)
		}
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("file only", func(t *testing.T) {
		dir := t.TempDir()

		logger, f, err := newLogger(dir, "test-op", nil)
		if err != nil {
			t.Fatalf("newLogger() error = %v", err)
		}
		defer f.Close()

		logger.Info("hello", "k", "v")

		data, err := os.ReadFile(filepath.Join(dir, "craftbench.log"))
		if err != nil {
			t.Fatalf("reading log file: %v", err)
		}
		if !strings.Contains(string(data), "\ttest-op\thello\tk=v") {
			t.Errorf("log file = %q", data)
		}
	})

	t.Run("verbose also writes stderr", func(t *testing.T) {
		var stderr bytes.Buffer
		logger, f, err := newLogger(t.TempDir(), "test-op", &stderr)
		if err != nil {
			t.Fatalf("newLogger() error = %v", err)
		}
		defer f.Close()

		logger.Warn("careful")
		if !strings.Contains(stderr.String(), "WARN\ttest-op\tcareful") {
			t.Errorf("stderr = %q", stderr.String())
		}
	})
}
