// Package markdown converts markup-bearing text into plain text.
//
// Wikipedia extracts occasionally carry HTML fragments and markdown
// artifacts (heading markers, emphasis stars, list bullets). The chat
// pipeline only ever surfaces plain sentences, so everything rendered
// to the user goes through ToPlaintext first.
package markdown

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`\s{2,}`)
)

// ToPlaintext strips markdown and HTML from source and collapses
// whitespace. The result keeps sentence punctuation intact so callers
// can still split on sentence boundaries.
func ToPlaintext(source string) string {
	if source == "" {
		return ""
	}

	src := []byte(source)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			// Block boundaries become single spaces.
			if n.Type() == ast.TypeBlock {
				b.WriteString(" ")
			}
			return ast.WalkContinue, nil
		}

		switch v := n.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteString(" ")
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.AutoLink:
			b.Write(v.URL(src))
		case *ast.HTMLBlock:
			// Raw HTML blocks have no text children. Keep the inner
			// text, drop the tags.
			for i := 0; i < v.Lines().Len(); i++ {
				line := v.Lines().At(i)
				b.Write(tagPattern.ReplaceAll(line.Value(src), []byte(" ")))
			}
		}
		return ast.WalkContinue, nil
	})

	return Normalize(b.String())
}

// Normalize collapses runs of whitespace and replaces typographic
// punctuation that the downstream charset filter would otherwise drop.
func Normalize(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	s = strings.NewReplacer("•", " ", "–", "-", "—", "-").Replace(s)
	s = spacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
