package surface

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineKind classifies a line of a diff.
type LineKind int

const (
	LineContext LineKind = iota
	LineAdded
	LineRemoved
)

// Line is one line of a diff. OldLine and NewLine are 1-based and zero when
// the line is absent from that side.
type Line struct {
	Kind    LineKind
	Text    string
	OldLine int
	NewLine int
}

// Hunk is a run of changed lines with surrounding context.
type Hunk struct {
	OldStart, OldCount int
	NewStart, NewCount int
	Lines              []Line
}

// TextDiff returns the line diff between before and after.
func TextDiff(before, after string) []Line {
	dmp := diffmatchpatch.New()
	beforeRunes, afterRunes, lineArray := dmp.DiffLinesToRunes(before, after)
	diffs := dmp.DiffMainRunes(beforeRunes, afterRunes, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var lines []Line
	oldLine := 1
	newLine := 1
	for _, d := range diffs {
		chunkLines := strings.Split(d.Text, "\n")
		if len(chunkLines) > 0 && chunkLines[len(chunkLines)-1] == "" {
			chunkLines = chunkLines[:len(chunkLines)-1]
		}
		for _, text := range chunkLines {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				lines = append(lines, Line{Kind: LineContext, Text: text, OldLine: oldLine, NewLine: newLine})
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				lines = append(lines, Line{Kind: LineRemoved, Text: text, OldLine: oldLine})
				oldLine++
			case diffmatchpatch.DiffInsert:
				lines = append(lines, Line{Kind: LineAdded, Text: text, NewLine: newLine})
				newLine++
			}
		}
	}
	return lines
}

// Hunks groups the changed lines of before and after into hunks, keeping
// context unchanged lines around each change. Identical inputs give no hunks.
func Hunks(before, after string, context int) []Hunk {
	if context < 0 {
		context = 0
	}
	lines := TextDiff(before, after)

	var changes []int
	for i, l := range lines {
		if l.Kind != LineContext {
			changes = append(changes, i)
		}
	}
	if len(changes) == 0 {
		return nil
	}

	var hunks []Hunk
	start := max(changes[0]-context, 0)
	end := changes[0]
	for _, c := range changes[1:] {
		// Split when more than 2*context unchanged lines separate two changes.
		if c-end-1 > 2*context {
			hunks = append(hunks, newHunk(lines, start, min(end+context+1, len(lines))))
			start = c - context
		}
		end = c
	}
	hunks = append(hunks, newHunk(lines, start, min(end+context+1, len(lines))))
	return hunks
}

// newHunk builds the hunk covering lines[from:to].
func newHunk(lines []Line, from, to int) Hunk {
	h := Hunk{Lines: lines[from:to]}
	for _, l := range h.Lines {
		if l.OldLine > 0 {
			if h.OldCount == 0 {
				h.OldStart = l.OldLine
			}
			h.OldCount++
		}
		if l.NewLine > 0 {
			if h.NewCount == 0 {
				h.NewStart = l.NewLine
			}
			h.NewCount++
		}
	}

	// An empty side is numbered by the line before it, as in unified diffs.
	for _, l := range lines[:from] {
		if h.OldCount == 0 && l.OldLine > 0 {
			h.OldStart = l.OldLine
		}
		if h.NewCount == 0 && l.NewLine > 0 {
			h.NewStart = l.NewLine
		}
	}
	return h
}
