package router

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	quotePattern = regexp.MustCompile(`["'’“”]`)
	// A leading run of Title-Case words, Turkish letters included.
	titleRunPattern = regexp.MustCompile(`[A-ZÇĞİÖŞÜ][a-zçğıöşü]+(?:\s+[A-ZÇĞİÖŞÜ][a-zçğıöşü]+)*`)

	// Question-suffix words that are never part of the topic itself.
	// Matched word by word; regexp \b cannot be used here because it
	// only understands ASCII word boundaries.
	suffixWords = wordSet(
		"hayatı", "hayatını", "tarihi", "kuruluşu", "nedir", "kimdir",
		"kim", "kimin", "anlat", "özetle", "özeti", "biyografisi",
		"hakkında", "bilgi", "ver",
	)
)

// ExtractTopic pulls the candidate topic name out of a knowledge
// question: query-suffix words are stripped, the first rune is
// capitalized (Turkish casing rules) and the longest leading run of
// Title-Case words wins. Falls back to the first remaining word, then
// to the supplied fallback (typically the conversation's last topic).
func ExtractTopic(input, fallback string) string {
	clean := quotePattern.ReplaceAllString(input, "")
	clean = StripWords(clean, suffixWords)
	clean = capitalizeFirst(clean)

	if run := titleRunPattern.FindString(clean); run != "" {
		return strings.TrimSpace(run)
	}

	if words := strings.Fields(clean); len(words) > 0 {
		return words[0]
	}
	return fallback
}

// ExtractFormat scans for length and layout markers in the input.
func ExtractFormat(input string) Format {
	s := strings.ToLower(input)
	f := Format{Length: LengthNormal, Layout: LayoutParagraph}

	if containsAny(s, []string{"kısa", "özet", "özetle"}) {
		f.Length = LengthShort
	}
	if containsAny(s, []string{"uzun", "detaylı", "ayrıntılı"}) {
		f.Length = LengthLong
	}
	if containsAny(s, []string{"devam", "daha fazla"}) {
		f.Length = LengthContinue
	}
	if containsAny(s, []string{"madde", "liste"}) {
		f.Layout = LayoutList
	}
	return f
}

// StripWords removes every word whose Turkish-lowered form is in the
// given set and rejoins the rest with single spaces.
func StripWords(s string, stop map[string]bool) string {
	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		trimmed := strings.Trim(w, "?!.,:;")
		if !stop[strings.ToLowerSpecial(unicode.TurkishCase, trimmed)] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// capitalizeFirst upper-cases the first rune using Turkish casing
// (dotless/dotted i), leaving the rest of the string untouched.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	upper := unicode.TurkishCase.ToUpper(r)
	if upper == r {
		return s
	}
	return string(upper) + s[size:]
}
