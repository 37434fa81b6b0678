package resource

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewIgnoreMatcher(t *testing.T) {
	t.Run("skips blank lines and comments", func(t *testing.T) {
		t.Parallel()
		m := NewIgnoreMatcher([]string{"", "  ", "# comment", "*.min.js"})
		if len(m.patterns) != 1 {
			t.Fatalf("expected 1 pattern, got %d", len(m.patterns))
		}
		if m.patterns[0].pattern != "*.min.js" {
			t.Errorf("expected *.min.js, got %s", m.patterns[0].pattern)
		}
	})

	t.Run("classifies path vs segment patterns", func(t *testing.T) {
		t.Parallel()
		m := NewIgnoreMatcher([]string{"node_modules", "dist/bundle.js", "/vendor/"})
		if m.patterns[0].matchPath {
			t.Error("node_modules should not be a path pattern")
		}
		if !m.patterns[1].matchPath {
			t.Error("dist/bundle.js should be a path pattern")
		}
		if m.patterns[2].matchPath || m.patterns[2].pattern != "vendor" {
			t.Errorf("/vendor/ parsed as %+v, want segment pattern vendor", m.patterns[2])
		}
	})
}

func TestIgnoreMatcher_Match(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		id       string
		want     bool
	}{
		{
			name:     "glob matches file name",
			patterns: []string{"*.min.js"},
			id:       "/work/app.min.js",
			want:     true,
		},
		{
			name:     "glob does not match other file",
			patterns: []string{"*.min.js"},
			id:       "/work/app.js",
			want:     false,
		},
		{
			name:     "directory name excludes everything below it",
			patterns: []string{"node_modules"},
			id:       filepath.Join("/work", "node_modules", "left-pad", "index.js"),
			want:     true,
		},
		{
			name:     "path pattern matches trailing segments",
			patterns: []string{"dist/bundle.js"},
			id:       filepath.Join("/work", "web", "dist", "bundle.js"),
			want:     true,
		},
		{
			name:     "path pattern does not match different parent",
			patterns: []string{"dist/bundle.js"},
			id:       filepath.Join("/work", "src", "bundle.js"),
			want:     false,
		},
		{
			name:     "path pattern with glob",
			patterns: []string{"build/*.o"},
			id:       filepath.Join("build", "main.o"),
			want:     true,
		},
		{
			name:     "question mark does not match multiple chars",
			patterns: []string{"?.txt"},
			id:       "ab.txt",
			want:     false,
		},
		{
			name:     "s3 key segments are matched",
			patterns: []string{"node_modules"},
			id:       "s3://bucket/site/node_modules/x.js",
			want:     true,
		},
		{
			name:     "s3 bucket name alone does not match file glob",
			patterns: []string{"*.min.js"},
			id:       "s3://assets/site/app.js",
			want:     false,
		},
		{
			name:     "bad pattern never matches",
			patterns: []string{"[unclosed"},
			id:       "/work/[unclosed",
			want:     false,
		},
		{
			name:     "no patterns matches nothing",
			patterns: nil,
			id:       "anything.txt",
			want:     false,
		},
		{
			name:     "empty id",
			patterns: []string{"*.log"},
			id:       "",
			want:     false,
		},
	}

	for _, tt := range tests {
		tt := tt // capture range variable (pre-Go 1.22 loop semantics)
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := NewIgnoreMatcher(tt.patterns)
			if got := m.Match(tt.id); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestParseIgnoreFile(t *testing.T) {
	t.Run("reads patterns from file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), IgnoreFileName)
		content := "*.min.js\n# comment\n\nnode_modules\ndist/bundle.js\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("writing test file: %v", err)
		}

		patterns, err := ParseIgnoreFile(path)
		if err != nil {
			t.Fatalf("ParseIgnoreFile() error = %v", err)
		}
		if len(patterns) != 5 {
			t.Fatalf("expected 5 raw lines, got %d", len(patterns))
		}

		m := NewIgnoreMatcher(patterns)
		if len(m.patterns) != 3 {
			t.Errorf("expected 3 parsed patterns, got %d", len(m.patterns))
		}
	})

	t.Run("returns nil for missing file", func(t *testing.T) {
		t.Parallel()
		patterns, err := ParseIgnoreFile("/nonexistent/" + IgnoreFileName)
		if err != nil {
			t.Fatalf("ParseIgnoreFile() error = %v", err)
		}
		if patterns != nil {
			t.Errorf("expected nil patterns, got %v", patterns)
		}
	})
}
