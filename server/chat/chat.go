// Package chat implements the response dispatcher: it routes each user
// message through a fixed ladder of handlers (identity, translation,
// date/time, arithmetic, recipe, current events, encyclopedic lookup,
// generative fallback) and persists both sides of the turn.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/sweax/sweax/internal/observability"
	"github.com/sweax/sweax/plugin/ai"
	"github.com/sweax/sweax/plugin/ai/router"
	"github.com/sweax/sweax/plugin/translate"
	"github.com/sweax/sweax/plugin/websearch"
	"github.com/sweax/sweax/plugin/wiki"
	"github.com/sweax/sweax/server/knowledge"
	"github.com/sweax/sweax/server/timezone"
	"github.com/sweax/sweax/store"
)

// Fixed user-facing strings. Failures inside a stage degrade to one of
// these; the dispatcher never surfaces an error to its caller.
const (
	replyEmptyInput       = "Bir şeyler yazmalısın gardaş."
	replyArithmeticBroken = "Gardaş bu işlem yanlış yazılmış, bi daha bak hele."
	replyWikiNotFound     = "❌ Bu konu hakkında Wikipedia'da bilgi bulunamadı."
	replyTranslateNoCred  = "⚠️ Çeviri servisi yapılandırılmamış."
	replyTranslateNoText  = "Çevirmemi istediğin metni de yazmalısın."
	replyTranslateFailed  = "Özür dilerim, çeviri servisine şu an ulaşamıyorum."
	replyRecipeNotFound   = "❌ Bu yemek için güvenilir bir tarif bulamadım."
	replyNewsUnavailable  = "Şu an güncel kaynaklara ulaşamıyorum, biraz sonra tekrar dene."
	replyModelFailed      = "Özür dilerim, şu an cevap üretemiyorum. Birazdan tekrar dener misin?"
)

const (
	systemPromptPersona = "Sen Türkçe konuşan, kısa ve net cevap veren, dobra bir asistansın. " +
		"Hakaret/nefret yok. Uydurma bilgi verme. Bilmiyorsan söyle."
	systemPromptTurkishOnly = "Sadece Türkçe yanıt ver. " +
		"Yabancı dillerde kelime, karakter veya sembol kullanma. " +
		"Yanıtlarında Latin dışı harf kullanmak kesinlikle yasaktır. " +
		"Eğer soruda yabancı dil varsa, Türkçe çevir ve sadece Türkçe açıkla. " +
		"Kısa, doğru, net ol."

	historyWindow = 10
	// Paraphrased encyclopedic text shorter than this is discarded in
	// favor of the raw summary.
	paraphraseFloor = 40
)

// Completer is the slice of the model provider the dispatcher needs.
type Completer interface {
	Chat(ctx context.Context, model string, messages []ai.Message) (string, error)
	ChatModel() string
	ReasoningModel() string
}

// Dispatcher routes a user message to the first handler that claims it.
type Dispatcher struct {
	store     *store.Store
	knowledge *knowledge.Service
	provider  Completer
	matcher   *router.RuleMatcher
	wiki      *wiki.Client
	translate *translate.Client
	search    *websearch.Client
	location  *time.Location
	now       func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

func WithWikiClient(c *wiki.Client) Option {
	return func(d *Dispatcher) { d.wiki = c }
}

func WithTranslateClient(c *translate.Client) Option {
	return func(d *Dispatcher) { d.translate = c }
}

func WithSearchClient(c *websearch.Client) Option {
	return func(d *Dispatcher) { d.search = c }
}

func WithLocation(loc *time.Location) Option {
	return func(d *Dispatcher) { d.location = loc }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

func NewDispatcher(st *store.Store, kn *knowledge.Service, provider Completer, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:     st,
		knowledge: kn,
		provider:  provider,
		matcher:   router.NewRuleMatcher(),
		location:  timezone.LocationEuropeIstanbul,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Speak answers a single user message within a conversation. The reply
// is always a non-empty text; stage failures degrade to fixed strings
// and are never raised to the caller.
func (d *Dispatcher) Speak(ctx context.Context, conversationID int32, input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return replyEmptyInput
	}

	reqCtx, ok := observability.FromContext(ctx)
	if !ok {
		reqCtx = observability.NewRequestContext(slog.Default(), 0, conversationID)
		ctx = observability.WithRequestContext(ctx, reqCtx)
	}

	stage, reply := d.dispatch(ctx, conversationID, input)
	d.persistTurn(ctx, conversationID, input, reply)

	reqCtx.Info("turn answered",
		slog.String(observability.LogFieldStage, string(stage)),
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()),
		slog.Int(observability.LogFieldMessageLen, len(reply)),
	)
	return reply
}

// dispatch evaluates the stage ladder in strict order; the first stage
// that claims the input answers it.
func (d *Dispatcher) dispatch(ctx context.Context, conversationID int32, input string) (router.Intent, string) {
	if d.matcher.IsIdentityQuestion(input) {
		return router.IntentIdentity, answerIdentity(input)
	}

	if d.matcher.IsTranslateRequest(input) {
		return router.IntentTranslate, d.answerTranslate(ctx, input)
	}

	if query := d.matcher.MatchDateTime(input); query.Kind != router.DateTimeNone {
		return router.IntentDateTime, answerDateTime(query, d.now().In(d.location))
	}

	if d.matcher.IsSafeArithmetic(input) {
		return router.IntentArithmetic, answerArithmetic(input)
	}

	if d.matcher.IsRecipeQuery(input) {
		return router.IntentRecipe, d.answerRecipe(ctx, input)
	}

	if d.matcher.IsCurrentEvents(input) {
		return router.IntentCurrentEvents, d.answerCurrentEvents(ctx, input)
	}

	if d.matcher.IsKnowledgeQuery(input) {
		if reply, ok := d.answerKnowledge(ctx, conversationID, input); ok {
			return router.IntentKnowledge, reply
		}
	}

	return router.IntentFallback, d.answerFallback(ctx, conversationID, input)
}

func (d *Dispatcher) answerTranslate(ctx context.Context, input string) string {
	if d.translate == nil || !d.translate.HasCredential() {
		return replyTranslateNoCred
	}

	code, text := translate.ResolveLanguage(input)
	if strings.TrimSpace(text) == "" {
		return replyTranslateNoText
	}

	translated, err := d.translate.Translate(ctx, text, code)
	if err != nil {
		d.warn(ctx, "translation failed", err)
		return replyTranslateFailed
	}
	return fmt.Sprintf("🌐 Çeviri (%s): %s", code, translated)
}

func (d *Dispatcher) answerRecipe(ctx context.Context, input string) string {
	if reply := lookupBuiltinRecipe(input); reply != "" {
		return reply
	}

	// Unknown dish: ground a short model recipe on allowlisted pages
	// when any are reachable.
	var grounding string
	if d.search != nil {
		results := d.search.Search(ctx, input+" tarifi", 2)
		for _, text := range d.search.FetchAllPageTexts(ctx, results, 600) {
			grounding += " " + text
		}
	}
	if d.provider == nil {
		return replyRecipeNotFound
	}

	messages := []ai.Message{
		ai.SystemMessage(systemPromptTurkishOnly),
		ai.SystemMessage("Kısa, adım adım ve güvenilir bir tarif özeti ver."),
	}
	if strings.TrimSpace(grounding) != "" {
		messages = append(messages, ai.SystemMessage("Arka plan bilgisi (kullanıcıya kaynak gösterme): "+strings.TrimSpace(grounding)))
	}
	messages = append(messages, ai.UserMessage(input))

	reply, err := d.provider.Chat(ctx, d.provider.ChatModel(), messages)
	if err != nil || strings.TrimSpace(reply) == "" {
		if err != nil {
			d.warn(ctx, "recipe fallback failed", err)
		}
		return replyRecipeNotFound
	}
	return filterOutput(reply)
}

func (d *Dispatcher) answerCurrentEvents(ctx context.Context, input string) string {
	if d.search == nil {
		return replyNewsUnavailable
	}

	results := d.search.Search(ctx, input, 2)
	if len(results) == 0 {
		return replyNewsUnavailable
	}

	texts := d.search.FetchAllPageTexts(ctx, results, 600)
	var grounding string
	for _, t := range texts {
		grounding += " " + t
	}

	if d.provider != nil && strings.TrimSpace(grounding) != "" {
		messages := []ai.Message{
			ai.SystemMessage(systemPromptTurkishOnly),
			ai.SystemMessage("Aşağıdaki haber metinlerine dayanarak soruyu kısaca yanıtla. Metinlerde olmayan bilgiyi uydurma: " + strings.TrimSpace(grounding)),
			ai.UserMessage(input),
		}
		if reply, err := d.provider.Chat(ctx, d.provider.ChatModel(), messages); err == nil && strings.TrimSpace(reply) != "" {
			return filterOutput(reply)
		} else if err != nil {
			d.warn(ctx, "news summarization failed", err)
		}
	}

	// No model available: list the sources instead of guessing.
	lines := []string{"📰 Güncel kaynaklar:"}
	for _, r := range results {
		lines = append(lines, fmt.Sprintf("- %s (%s)", r.Title, r.URL))
	}
	return strings.Join(lines, "\n")
}

// answerKnowledge resolves the topic and fetches an encyclopedic
// summary. ok is false when no topic could be resolved, which lets the
// generative fallback take the turn instead.
func (d *Dispatcher) answerKnowledge(ctx context.Context, conversationID int32, input string) (string, bool) {
	if d.wiki == nil {
		return "", false
	}

	lastTopic := d.lastTopic(ctx, conversationID)
	topic := router.ExtractTopic(input, lastTopic)
	if topic == "" {
		return "", false
	}

	format := router.ExtractFormat(input)
	summary := d.wiki.FetchSummary(ctx, topic, format.Sentences())
	if summary == nil || summary.Text == "" {
		// Anti-hallucination guard: a miss is a fixed answer, never a
		// model-generated guess.
		return replyWikiNotFound, true
	}

	d.cacheSummary(ctx, topic, summary)

	text := d.paraphrase(ctx, input, summary.Text)
	if format.Layout == router.LayoutList {
		text = bulletize(text)
	}
	text = filterOutput(text)

	title := summary.Title
	if title == "" {
		title = topic
	}
	d.rememberTopic(ctx, conversationID, title)

	sourceURL := summary.URL
	if sourceURL == "" {
		sourceURL = "https://tr.wikipedia.org"
	}
	return fmt.Sprintf("📘 Kaynak: %s\n\n%s", sourceURL, text), true
}

func (d *Dispatcher) answerFallback(ctx context.Context, conversationID int32, input string) string {
	if d.provider == nil {
		return replyModelFailed
	}

	messages := []ai.Message{
		ai.SystemMessage(systemPromptTurkishOnly),
		ai.SystemMessage(systemPromptPersona),
	}
	if grounding := d.gatherGrounding(ctx, input); grounding != "" {
		messages = append(messages, ai.SystemMessage("Arka plan bilgisi (kullanıcıya gösterme, sadece doğruluk için kullan): "+grounding))
	}

	history, err := d.store.ListRecentMessages(ctx, conversationID, historyWindow)
	if err != nil {
		d.warn(ctx, "history load failed", err)
	}
	for _, m := range history {
		switch m.Role {
		case store.MessageRoleAssistant:
			messages = append(messages, ai.Message{Role: "assistant", Content: m.Content})
		case store.MessageRoleUser:
			messages = append(messages, ai.UserMessage(m.Content))
		}
	}
	messages = append(messages, ai.UserMessage(input))

	model := d.provider.ChatModel()
	if d.matcher.SelectModel(input) == router.ModelReasoning {
		model = d.provider.ReasoningModel()
	}

	reply, err := d.provider.Chat(ctx, model, messages)
	if err != nil || strings.TrimSpace(reply) == "" {
		if err != nil {
			d.warn(ctx, "model call failed", err)
		}
		return replyModelFailed
	}
	return filterOutput(reply)
}

// gatherGrounding collects hidden context from the knowledge cache,
// refreshing it from the encyclopedia on a cold miss. The text informs
// the model but is never shown to the user.
func (d *Dispatcher) gatherGrounding(ctx context.Context, input string) string {
	if d.knowledge == nil {
		return ""
	}

	records, err := d.knowledge.FindSimilar(ctx, input, 3)
	if err != nil {
		d.warn(ctx, "grounding lookup failed", err)
		return ""
	}
	if len(records) > 0 {
		parts := make([]string, 0, len(records))
		for _, r := range records {
			parts = append(parts, truncateRunes(r.Content, 300))
		}
		return strings.Join(parts, " ")
	}

	if d.wiki == nil {
		return ""
	}
	topic := router.ExtractTopic(input, "")
	if topic == "" {
		return ""
	}
	summary := d.wiki.FetchSummary(ctx, topic, 5)
	if summary == nil || summary.Text == "" {
		return ""
	}
	if _, err := d.knowledge.Record(ctx, topic, summary.Text, summary.URL, summary.Lang); err != nil {
		d.warn(ctx, "grounding cache failed", err)
	}
	return summary.Text
}

// paraphrase asks the model to rewrite the fetched summary as natural
// prose, keeping the raw text when the rewrite fails or is too short.
func (d *Dispatcher) paraphrase(ctx context.Context, input, text string) string {
	if d.provider == nil {
		return text
	}
	messages := []ai.Message{
		ai.SystemMessage(systemPromptTurkishOnly),
		ai.SystemMessage("Aşağıdaki ansiklopedi metnini anlamını değiştirmeden, akıcı Türkçe cümlelerle yeniden yaz. Yeni bilgi ekleme: " + text),
		ai.UserMessage(input),
	}
	rewritten, err := d.provider.Chat(ctx, d.provider.ChatModel(), messages)
	if err != nil || len([]rune(strings.TrimSpace(rewritten))) < paraphraseFloor {
		return text
	}
	return rewritten
}

func (d *Dispatcher) cacheSummary(ctx context.Context, topic string, summary *wiki.Summary) {
	if d.knowledge == nil {
		return
	}
	cached, err := d.knowledge.Lookup(ctx, topic)
	if err != nil {
		d.warn(ctx, "knowledge lookup failed", err)
		return
	}
	if cached != nil {
		return
	}
	if _, err := d.knowledge.Record(ctx, topic, summary.Text, summary.URL, summary.Lang); err != nil {
		d.warn(ctx, "knowledge cache failed", err)
	}
}

func (d *Dispatcher) lastTopic(ctx context.Context, conversationID int32) string {
	conversation, err := d.store.GetConversation(ctx, &store.FindConversation{ID: &conversationID})
	if err != nil || conversation == nil {
		return ""
	}
	return conversation.LastTopic
}

func (d *Dispatcher) rememberTopic(ctx context.Context, conversationID int32, topic string) {
	updatedTs := d.now().Unix()
	if _, err := d.store.UpdateConversation(ctx, &store.UpdateConversation{
		ID:        conversationID,
		LastTopic: &topic,
		UpdatedTs: &updatedTs,
	}); err != nil {
		d.warn(ctx, "topic memory update failed", err)
	}
}

// persistTurn writes exactly one user and one assistant message and
// refreshes the conversation timestamp.
func (d *Dispatcher) persistTurn(ctx context.Context, conversationID int32, input, reply string) {
	now := d.now().Unix()
	if _, err := d.store.CreateMessage(ctx, &store.Message{
		UID:            shortuuid.New(),
		ConversationID: conversationID,
		Role:           store.MessageRoleUser,
		Content:        input,
		CreatedTs:      now,
	}); err != nil {
		d.warn(ctx, "user turn persist failed", err)
	}
	if _, err := d.store.CreateMessage(ctx, &store.Message{
		UID:            shortuuid.New(),
		ConversationID: conversationID,
		Role:           store.MessageRoleAssistant,
		Content:        reply,
		CreatedTs:      now,
	}); err != nil {
		d.warn(ctx, "assistant turn persist failed", err)
	}

	updatedTs := now
	if _, err := d.store.UpdateConversation(ctx, &store.UpdateConversation{
		ID:        conversationID,
		UpdatedTs: &updatedTs,
	}); err != nil {
		d.warn(ctx, "conversation touch failed", err)
	}
}

func (d *Dispatcher) warn(ctx context.Context, msg string, err error) {
	if reqCtx, ok := observability.FromContext(ctx); ok {
		reqCtx.Warn(msg, slog.String("error", err.Error()))
		return
	}
	slog.Warn(msg, "error", err)
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
