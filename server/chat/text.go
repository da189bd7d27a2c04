package chat

import (
	"regexp"
	"strings"

	"github.com/sweax/sweax/plugin/markdown"
)

// outputCharset keeps Turkish letters, digits and common punctuation.
// Everything else (foreign scripts, stray symbols) is stripped from
// model and source text before it reaches the user.
var outputCharset = regexp.MustCompile(`[^a-zA-ZçğıöşüÇĞİÖŞÜ0-9 ,.\n!?;:"'()\[\]\-]`)

func filterOutput(text string) string {
	return strings.TrimSpace(outputCharset.ReplaceAllString(text, ""))
}

const maxListItems = 8

// bulletize renders text as a dashed list, one sentence per item.
func bulletize(text string) string {
	sentences := markdown.SplitSentences(text)
	if len(sentences) > maxListItems {
		sentences = sentences[:maxListItems]
	}
	items := make([]string, 0, len(sentences))
	for _, s := range sentences {
		items = append(items, "- "+strings.TrimSpace(s))
	}
	return strings.Join(items, "\n")
}
