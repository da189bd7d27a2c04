package router

import (
	"regexp"
	"strconv"
	"strings"
)

// RuleMatcher implements keyword and regex based intent matching.
// Matching is case-insensitive over the lowered input; all methods are
// side-effect free.
type RuleMatcher struct {
	arithmeticPattern *regexp.Regexp
	digitPattern      *regexp.Regexp
	yearsFromPattern  *regexp.Regexp
	textDatePattern   *regexp.Regexp
	reasoningPattern  *regexp.Regexp

	identityKeywords     []string
	translateKeywords    []string
	recipeKeywords       []string
	currentEventsPhrases []string
	currentEventsWords   map[string]bool
	knowledgeKeywords    []string
}

// NewRuleMatcher creates a rule matcher with the built-in Turkish
// keyword sets.
func NewRuleMatcher() *RuleMatcher {
	return &RuleMatcher{
		// Full-string character class for safe arithmetic input.
		arithmeticPattern: regexp.MustCompile(`^[0-9\s+\-*/.()]+$`),
		digitPattern:      regexp.MustCompile(`[0-9]`),
		yearsFromPattern:  regexp.MustCompile(`(\d+)\s*yıl\s*sonra`),
		// "12 mart", "12 mart 2024" style explicit dates.
		textDatePattern: regexp.MustCompile(`\b(\d{1,2})\s+(ocak|şubat|mart|nisan|mayıs|haziran|temmuz|ağustos|eylül|ekim|kasım|aralık)(\s+\d{4})?\b`),
		// Math/proof requests route to the reasoning model.
		reasoningPattern: regexp.MustCompile(`(\d+[+\-*/])|neden|kanıtla|ispat|hesapla`),

		identityKeywords: []string{
			"sen kimsin", "kimsin sen", "adın ne", "adın nedir",
			"seni kim yaptı", "kim yaptı seni", "nesin sen", "sen nesin",
		},
		translateKeywords: []string{
			"çevir", "tercüme",
		},
		recipeKeywords: []string{
			"tarif", "nasıl yapılır", "yapımı", "yemeği",
		},
		currentEventsPhrases: []string{
			"az önce", "son dakika", "bu hafta", "geçen hafta",
		},
		// Matched token by token, not by substring: "maç" must not fire
		// on "amaç" and nothing here may shadow the founding/founder
		// nouns ("kuruluşu", "kurucusu") of the knowledge set below.
		currentEventsWords: wordSet(
			"bugün", "bugünkü", "dün", "dünkü",
			"fiyat", "fiyatı", "fiyatlar", "fiyatları",
			"skor", "skoru", "skorlar", "skorları",
			"maç", "maçı", "maçta", "maçlar",
			"seçim", "seçimi", "seçimde", "seçimler",
			"deprem", "depremi", "depremde",
		),
		knowledgeKeywords: []string{
			"kimdir", "nedir", "hayatı", "hayatını", "biyografisi",
			"kim", "kimin", "annesi", "babası",
			"nerede doğdu", "nerede öldü", "ne zaman doğdu", "ne zaman öldü",
			"ne zaman", "nasıl",
			"tarihi", "kuruluşu", "kurucusu", "savaşı", "antlaşması", "devrimi",
			"başkanı", "lideri", "ülkesi", "şehri", "devleti",
		},
	}
}

// IsSafeArithmetic reports whether the whole input is made of digits,
// whitespace, the four operators, dots and parentheses. Words and any
// other character reject the input so it can never reach the evaluator.
func (m *RuleMatcher) IsSafeArithmetic(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}
	return m.arithmeticPattern.MatchString(input) && m.digitPattern.MatchString(input)
}

// IsIdentityQuestion reports whether the input asks about the
// assistant itself.
func (m *RuleMatcher) IsIdentityQuestion(input string) bool {
	return containsAny(lower(input), m.identityKeywords)
}

// IsTranslateRequest reports whether the input asks for a translation.
func (m *RuleMatcher) IsTranslateRequest(input string) bool {
	return containsAny(lower(input), m.translateKeywords)
}

// IsRecipeQuery reports whether the input asks for a dish recipe.
func (m *RuleMatcher) IsRecipeQuery(input string) bool {
	return containsAny(lower(input), m.recipeKeywords)
}

// IsCurrentEvents reports whether the input is about something recent
// enough that an encyclopedia summary would be stale: recency markers,
// volatile nouns (prices, scores) or an explicit day-month date.
func (m *RuleMatcher) IsCurrentEvents(input string) bool {
	s := lower(input)
	if containsAny(s, m.currentEventsPhrases) {
		return true
	}
	if containsWord(s, m.currentEventsWords) {
		return true
	}
	return m.textDatePattern.MatchString(s)
}

// IsKnowledgeQuery reports whether the input is a canonical
// encyclopedic question. Current-events markers always take priority:
// a question that is both is never a knowledge query.
func (m *RuleMatcher) IsKnowledgeQuery(input string) bool {
	s := lower(input)
	if m.IsCurrentEvents(s) {
		return false
	}
	if containsAny(s, m.knowledgeKeywords) {
		return true
	}
	return strings.HasSuffix(strings.TrimSpace(s), "?")
}

// MatchDateTime extracts a date/time question from the input, or
// returns a query with kind DateTimeNone.
func (m *RuleMatcher) MatchDateTime(input string) DateTimeQuery {
	s := lower(input)

	switch {
	case strings.Contains(s, "saat kaç"), strings.Contains(s, "şu an saat"):
		return DateTimeQuery{Kind: DateTimeClock}
	case strings.Contains(s, "hangi yıldayız"), strings.Contains(s, "yıl kaç"):
		return DateTimeQuery{Kind: DateTimeYear}
	}

	if match := m.yearsFromPattern.FindStringSubmatch(s); match != nil {
		years, err := strconv.Atoi(match[1])
		if err == nil {
			return DateTimeQuery{Kind: DateTimeYearsFrom, Years: years}
		}
	}

	switch {
	case strings.Contains(s, "ayın kaçı"):
		return DateTimeQuery{Kind: DateTimeToday}
	case strings.Contains(s, "hangi aydayız"):
		return DateTimeQuery{Kind: DateTimeMonth}
	case strings.Contains(s, "günlerden ne"), strings.Contains(s, "hangi gün"):
		return DateTimeQuery{Kind: DateTimeWeekday}
	case strings.Contains(s, "yarın tarih"):
		return DateTimeQuery{Kind: DateTimeTomorrow}
	case strings.Contains(s, "dün tarih"):
		return DateTimeQuery{Kind: DateTimeYesterday}
	}

	return DateTimeQuery{Kind: DateTimeNone}
}

// SelectModel picks the model kind for the generative fallback.
func (m *RuleMatcher) SelectModel(input string) ModelKind {
	if m.reasoningPattern.MatchString(lower(input)) {
		return ModelReasoning
	}
	return ModelDefault
}

func lower(s string) string {
	return strings.ToLower(s)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// containsWord matches whole words only, with trailing punctuation
// trimmed the same way StripWords does.
func containsWord(s string, words map[string]bool) bool {
	for _, w := range strings.Fields(s) {
		if words[strings.Trim(w, "?!.,:;")] {
			return true
		}
	}
	return false
}
