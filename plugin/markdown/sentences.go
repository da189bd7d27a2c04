package markdown

import (
	"regexp"
	"strings"
)

var sentenceBoundary = regexp.MustCompile(`(?:[.!?])\s+`)

// SplitSentences splits text on sentence-ending punctuation followed
// by whitespace. Terminal punctuation stays attached to its sentence.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	last := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(text, -1) {
		// loc[0] is the punctuation character; keep it.
		sentences = append(sentences, strings.TrimSpace(text[last:loc[0]+1]))
		last = loc[1]
	}
	if rest := strings.TrimSpace(text[last:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

// LimitSentences keeps at most count sentences and hard-caps the
// result at maxChars runes with a trailing ellipsis marker.
func LimitSentences(text string, count, maxChars int) string {
	if count < 1 {
		count = 1
	}
	sentences := SplitSentences(text)
	if len(sentences) > count {
		sentences = sentences[:count]
	}
	out := strings.Join(sentences, " ")
	if maxChars > 0 {
		runes := []rune(out)
		if len(runes) > maxChars {
			out = strings.TrimSpace(string(runes[:maxChars])) + "..."
		}
	}
	return out
}
