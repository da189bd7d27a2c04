package chat

import (
	"strings"
	"unicode"
)

const (
	identityAnswerDefault = "Ben Sweax, Türkçe konuşan yerli bir asistanım. Kısa ve net cevap veririm gardaş."
	identityAnswerOrigin  = "Beni Adana'da bir geliştirici yazdı; yerel modellerle çalışırım, verilerin dışarı çıkmaz."
)

// answerIdentity returns the canned reply for a question about the
// assistant itself.
func answerIdentity(input string) string {
	s := strings.ToLowerSpecial(unicode.TurkishCase, input)
	if strings.Contains(s, "kim yaptı") || strings.Contains(s, "seni kim") {
		return identityAnswerOrigin
	}
	return identityAnswerDefault
}
