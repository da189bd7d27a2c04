// Package router provides rule-based intent detection for the chat
// dispatcher. All matchers are pure text predicates with no I/O; the
// dispatcher evaluates them in a fixed priority order.
package router

// Intent represents the type of user intent.
type Intent string

const (
	IntentIdentity      Intent = "identity"
	IntentTranslate     Intent = "translate"
	IntentDateTime      Intent = "datetime"
	IntentArithmetic    Intent = "arithmetic"
	IntentRecipe        Intent = "recipe"
	IntentCurrentEvents Intent = "current_events"
	IntentKnowledge     Intent = "knowledge"
	IntentFallback      Intent = "fallback"
)

// DateTimeKind identifies which date/time question was asked.
type DateTimeKind string

const (
	DateTimeNone      DateTimeKind = ""
	DateTimeClock     DateTimeKind = "clock"      // "saat kaç"
	DateTimeYear      DateTimeKind = "year"       // "hangi yıldayız"
	DateTimeYearsFrom DateTimeKind = "years_from" // "5 yıl sonra"
	DateTimeToday     DateTimeKind = "today"      // "ayın kaçı"
	DateTimeMonth     DateTimeKind = "month"      // "hangi aydayız"
	DateTimeWeekday   DateTimeKind = "weekday"    // "günlerden ne"
	DateTimeTomorrow  DateTimeKind = "tomorrow"   // "yarın tarih"
	DateTimeYesterday DateTimeKind = "yesterday"  // "dün tarih"
)

// DateTimeQuery is the extracted value of a date/time question.
type DateTimeQuery struct {
	Kind DateTimeKind
	// Years holds N for "N yıl sonra" questions.
	Years int
}

// LengthMode controls how many sentences a knowledge answer targets.
type LengthMode string

const (
	LengthNormal   LengthMode = "normal"
	LengthShort    LengthMode = "short"
	LengthLong     LengthMode = "long"
	LengthContinue LengthMode = "continue"
)

// Layout controls how a knowledge answer is rendered.
type Layout string

const (
	LayoutParagraph Layout = "paragraph"
	LayoutList      Layout = "list"
)

// Format is the extracted (length, layout) pair of a knowledge query.
type Format struct {
	Length LengthMode
	Layout Layout
}

// Sentences maps a length mode to its target sentence count.
func (f Format) Sentences() int {
	switch f.Length {
	case LengthShort:
		return 3
	case LengthLong:
		return 12
	case LengthContinue:
		return 15
	default:
		return 6
	}
}

// ModelKind selects which configured model name a request should use.
type ModelKind string

const (
	// ModelDefault is the general-purpose chat model.
	ModelDefault ModelKind = "default"
	// ModelReasoning is used for math and proof-style requests.
	ModelReasoning ModelKind = "reasoning"
)
