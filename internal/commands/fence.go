package commands

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New()

// StripFences removes a markdown code fence wrapped around a model reply.
// A reply that is exactly one fenced block yields the block's body; anything
// else falls back to dropping a fence line at either end.
func StripFences(reply string) string {
	source := []byte(reply)
	doc := markdown.Parser().Parse(text.NewReader(source))

	if doc.ChildCount() == 1 {
		if block, ok := doc.FirstChild().(*ast.FencedCodeBlock); ok {
			var b strings.Builder
			lines := block.Lines()
			end := 0
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(source))
				end = seg.Stop
			}
			body := b.String()
			// An unclosed fence at the end of the reply gets a newline the
			// reply never had.
			if !strings.HasSuffix(reply, "\n") && !closesFence(source, end) {
				body = strings.TrimSuffix(body, "\n")
			}
			return body
		}
	}
	return lineStripFences(reply)
}

// closesFence reports whether a closing fence follows offset end in source.
func closesFence(source []byte, end int) bool {
	if end > len(source) {
		return false
	}
	rest := strings.TrimSpace(string(source[end:]))
	return strings.HasPrefix(rest, "```") || strings.HasPrefix(rest, "~~~")
}
