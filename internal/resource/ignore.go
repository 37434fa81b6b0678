package resource

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"strings"
)

// IgnoreFileName is read from the working directory and added to the
// configured ignore patterns.
const IgnoreFileName = ".craftignore"

// ignorePattern is a parsed ignore pattern with its matching strategy.
type ignorePattern struct {
	pattern   string
	matchPath bool // true = match against trailing path segments; false = match any single segment
}

// IgnoreMatcher checks resource IDs against a set of ignore patterns.
// Patterns without '/' match any single path segment, so "node_modules"
// excludes everything below such a directory. Patterns with '/' match a
// trailing run of segments.
type IgnoreMatcher struct {
	patterns []ignorePattern
}

// NewIgnoreMatcher creates an IgnoreMatcher from raw pattern strings.
// Blank lines and lines starting with '#' are skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	var patterns []ignorePattern
	for _, raw := range rawPatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		patterns = append(patterns, ignorePattern{
			pattern:   strings.Trim(raw, "/"),
			matchPath: strings.Contains(strings.Trim(raw, "/"), "/"),
		})
	}
	return &IgnoreMatcher{patterns: patterns}
}

// Match reports whether id should be ignored.
func (m *IgnoreMatcher) Match(id string) bool {
	if len(m.patterns) == 0 {
		return false
	}

	id = strings.TrimPrefix(id, s3Scheme)
	segments := strings.Split(strings.Trim(toSlash(id), "/"), "/")

	for _, p := range m.patterns {
		for i := range segments {
			var candidate string
			if p.matchPath {
				candidate = path.Join(segments[i:]...)
			} else {
				candidate = segments[i]
			}
			// Bad patterns never match.
			if ok, err := path.Match(p.pattern, candidate); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// ParseIgnoreFile reads an ignore file and returns the raw pattern strings.
// Returns nil and no error if the file does not exist.
func ParseIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		patterns = append(patterns, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return patterns, nil
}

func toSlash(p string) string {
	if os.PathSeparator == '/' {
		return p
	}
	return strings.ReplaceAll(p, string(os.PathSeparator), "/")
}
