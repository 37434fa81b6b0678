package surface

import (
	"strings"
	"testing"
)

func TestTextDiff(t *testing.T) {
	lines := TextDiff("a\nb\nc\n", "a\nB\nc\n")

	want := []Line{
		{Kind: LineContext, Text: "a", OldLine: 1, NewLine: 1},
		{Kind: LineRemoved, Text: "b", OldLine: 2},
		{Kind: LineAdded, Text: "B", NewLine: 2},
		{Kind: LineContext, Text: "c", OldLine: 3, NewLine: 3},
	}
	if len(lines) != len(want) {
		t.Fatalf("len(lines) = %d, want %d: %+v", len(lines), len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("lines[%d] = %+v, want %+v", i, lines[i], want[i])
		}
	}
}

func TestTextDiff_ReplacedLineAmongSimilarLines(t *testing.T) {
	before := numbered(1, 20)
	after := strings.Replace(before, "line "+strings.Repeat("x", 10)+"\n", "changed\n", 1)

	var removed, added []Line
	for _, l := range TextDiff(before, after) {
		switch l.Kind {
		case LineRemoved:
			removed = append(removed, l)
		case LineAdded:
			added = append(added, l)
		}
	}
	if len(removed) != 1 || removed[0].Text != "line "+strings.Repeat("x", 10) || removed[0].OldLine != 10 {
		t.Errorf("removed = %+v, want line 10", removed)
	}
	if len(added) != 1 || added[0].Text != "changed" || added[0].NewLine != 10 {
		t.Errorf("added = %+v, want \"changed\" at line 10", added)
	}
}

func numbered(from, to int) string {
	var b strings.Builder
	for i := from; i <= to; i++ {
		b.WriteString("line ")
		b.WriteString(strings.Repeat("x", i))
		b.WriteString("\n")
	}
	return b.String()
}

func TestHunks(t *testing.T) {
	before := numbered(1, 20)

	t.Run("identical input has no hunks", func(t *testing.T) {
		if h := Hunks(before, before, 3); len(h) != 0 {
			t.Errorf("Hunks() = %d hunks, want 0", len(h))
		}
	})

	t.Run("single change keeps context", func(t *testing.T) {
		after := strings.Replace(before, "line "+strings.Repeat("x", 10)+"\n", "changed\n", 1)
		hunks := Hunks(before, after, 3)
		if len(hunks) != 1 {
			t.Fatalf("len(hunks) = %d, want 1", len(hunks))
		}
		h := hunks[0]
		if h.OldStart != 7 || h.OldCount != 7 || h.NewStart != 7 || h.NewCount != 7 {
			t.Errorf("header = -%d,%d +%d,%d, want -7,7 +7,7", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
		}
		if len(h.Lines) != 8 {
			t.Errorf("len(Lines) = %d, want 8", len(h.Lines))
		}
	})

	t.Run("distant changes split into hunks", func(t *testing.T) {
		after := strings.Replace(before, "line x\n", "first\n", 1)
		after = strings.Replace(after, "line "+strings.Repeat("x", 20)+"\n", "last\n", 1)
		if got := len(Hunks(before, after, 3)); got != 2 {
			t.Errorf("len(hunks) = %d, want 2", got)
		}
	})

	t.Run("near changes merge", func(t *testing.T) {
		after := strings.Replace(before, "line "+strings.Repeat("x", 5)+"\n", "five\n", 1)
		after = strings.Replace(after, "line "+strings.Repeat("x", 9)+"\n", "nine\n", 1)
		if got := len(Hunks(before, after, 3)); got != 1 {
			t.Errorf("len(hunks) = %d, want 1", got)
		}
	})

	t.Run("new file", func(t *testing.T) {
		hunks := Hunks("", "a\nb\n", 3)
		if len(hunks) != 1 {
			t.Fatalf("len(hunks) = %d, want 1", len(hunks))
		}
		h := hunks[0]
		if h.OldStart != 0 || h.OldCount != 0 || h.NewStart != 1 || h.NewCount != 2 {
			t.Errorf("header = -%d,%d +%d,%d, want -0,0 +1,2", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
		}
	})
}
