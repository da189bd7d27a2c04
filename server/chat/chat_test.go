package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/sweax/sweax/internal/profile"
	"github.com/sweax/sweax/plugin/ai"
	"github.com/sweax/sweax/plugin/ai/router"
	"github.com/sweax/sweax/plugin/wiki"
	"github.com/sweax/sweax/server/knowledge"
	"github.com/sweax/sweax/server/timezone"
	"github.com/sweax/sweax/store"
	"github.com/sweax/sweax/store/db"
)

type fakeCompleter struct {
	reply        string
	err          error
	models       []string
	lastMessages []ai.Message
}

func (f *fakeCompleter) Chat(_ context.Context, model string, messages []ai.Message) (string, error) {
	f.models = append(f.models, model)
	f.lastMessages = messages
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeCompleter) ChatModel() string      { return "qwen2.5:7b-instruct" }
func (f *fakeCompleter) ReasoningModel() string { return "deepseek-r1:7b" }

func newTestStore(t *testing.T) *store.Store {
	p := &profile.Profile{Mode: "prod", Data: t.TempDir(), Driver: "sqlite"}
	p.DSN = filepath.Join(p.Data, "chat_test.db")

	driver, err := db.NewDBDriver(p)
	require.NoError(t, err)
	ts := store.New(driver, p)
	require.NoError(t, ts.Migrate(context.Background()))
	t.Cleanup(func() { _ = ts.Close() })
	return ts
}

func newTestConversation(t *testing.T, ts *store.Store) *store.Conversation {
	conversation, err := ts.CreateConversation(context.Background(), &store.Conversation{
		UID:       "conv-test",
		CreatorID: 1,
		CreatedTs: 1700000000,
		UpdatedTs: 1700000000,
	})
	require.NoError(t, err)
	return conversation
}

// istanbulAfternoon is 14:05 in Istanbul (UTC+3).
func istanbulAfternoon() time.Time {
	return time.Date(2026, 3, 9, 11, 5, 0, 0, time.UTC)
}

func TestSpeakArithmetic(t *testing.T) {
	ts := newTestStore(t)
	conversation := newTestConversation(t, ts)
	d := NewDispatcher(ts, nil, nil)

	require.Equal(t, "Sonuç: 11", d.Speak(context.Background(), conversation.ID, "3 + 4 * 2"))
	require.Equal(t, replyArithmeticBroken, d.Speak(context.Background(), conversation.ID, "3 / 0"))
	require.Equal(t, replyArithmeticBroken, d.Speak(context.Background(), conversation.ID, "3 + + )"))
}

func TestSpeakDateTime(t *testing.T) {
	ts := newTestStore(t)
	conversation := newTestConversation(t, ts)
	d := NewDispatcher(ts, nil, nil, WithClock(istanbulAfternoon))

	reply := d.Speak(context.Background(), conversation.ID, "saat kaç")
	require.Contains(t, reply, "14:05")

	reply = d.Speak(context.Background(), conversation.ID, "hangi yıldayız")
	require.Equal(t, "2026 yılındayız.", reply)

	reply = d.Speak(context.Background(), conversation.ID, "5 yıl sonra hangi yıl olur")
	require.Equal(t, "5 yıl sonra: 2031", reply)

	reply = d.Speak(context.Background(), conversation.ID, "bugün günlerden ne")
	// 2026-03-09 is a Monday.
	require.Equal(t, "Bugün Pazartesi.", reply)
}

func TestSpeakRecipeBuiltin(t *testing.T) {
	ts := newTestStore(t)
	conversation := newTestConversation(t, ts)
	d := NewDispatcher(ts, nil, nil)

	reply := d.Speak(context.Background(), conversation.ID, "menemen tarifi")
	require.Contains(t, reply, "Menemen Tarifi")
	require.Contains(t, reply, "Malzemeler: 3 domates, 3 yumurta, 2 sivri biber, 1 yemek kaşığı tereyağı, tuz.")
	require.Contains(t, reply, "4) Tuzla tadını ayarla. İsteğe göre pul biber/peynir eklenebilir.")
}

func TestSpeakRecipeUnknownDish(t *testing.T) {
	ts := newTestStore(t)
	conversation := newTestConversation(t, ts)
	d := NewDispatcher(ts, nil, nil)

	reply := d.Speak(context.Background(), conversation.ID, "lazanya tarifi")
	require.Equal(t, replyRecipeNotFound, reply)
}

func TestSpeakIdentity(t *testing.T) {
	ts := newTestStore(t)
	conversation := newTestConversation(t, ts)
	d := NewDispatcher(ts, nil, nil)

	require.Equal(t, identityAnswerDefault, d.Speak(context.Background(), conversation.ID, "sen kimsin"))
	require.Equal(t, identityAnswerOrigin, d.Speak(context.Background(), conversation.ID, "seni kim yaptı"))
}

func TestSpeakTranslateUnconfigured(t *testing.T) {
	ts := newTestStore(t)
	conversation := newTestConversation(t, ts)
	d := NewDispatcher(ts, nil, nil)

	reply := d.Speak(context.Background(), conversation.ID, "bunu ingilizceye çevir: merhaba")
	require.Equal(t, replyTranslateNoCred, reply)
}

func TestSpeakEmptyInput(t *testing.T) {
	ts := newTestStore(t)
	conversation := newTestConversation(t, ts)
	d := NewDispatcher(ts, nil, nil)

	require.Equal(t, replyEmptyInput, d.Speak(context.Background(), conversation.ID, "   "))

	// Nothing persisted for a rejected input.
	messages, err := ts.ListRecentMessages(context.Background(), conversation.ID, 10)
	require.NoError(t, err)
	require.Empty(t, messages)
}

func TestSpeakPersistsTurn(t *testing.T) {
	ts := newTestStore(t)
	conversation := newTestConversation(t, ts)
	d := NewDispatcher(ts, nil, nil)

	reply := d.Speak(context.Background(), conversation.ID, "2 + 2")
	require.Equal(t, "Sonuç: 4", reply)

	messages, err := ts.ListRecentMessages(context.Background(), conversation.ID, 10)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, store.MessageRoleUser, messages[0].Role)
	require.Equal(t, "2 + 2", messages[0].Content)
	require.Equal(t, store.MessageRoleAssistant, messages[1].Role)
	require.Equal(t, reply, messages[1].Content)
}

func newMissWikiClient(t *testing.T) *wiki.Client {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	return wiki.NewClient("tr", "en", wiki.WithBaseURLFunc(func(string) string { return srv.URL }))
}

func newHitWikiClient(t *testing.T, extract, title, pageURL string) *wiki.Client {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"extract": extract,
			"title":   title,
			"type":    "standard",
			"content_urls": map[string]any{
				"desktop": map[string]any{"page": pageURL},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return wiki.NewClient("tr", "en", wiki.WithBaseURLFunc(func(string) string { return srv.URL }))
}

func TestSpeakKnowledgeMissIsFixedString(t *testing.T) {
	ts := newTestStore(t)
	conversation := newTestConversation(t, ts)
	model := &fakeCompleter{reply: "uydurma cevap"}
	d := NewDispatcher(ts, nil, model, WithWikiClient(newMissWikiClient(t)))

	reply := d.Speak(context.Background(), conversation.ID, "Fiktifya nedir")
	require.Equal(t, replyWikiNotFound, reply)
	// The generative fallback must never answer a knowledge miss.
	require.Empty(t, model.models)
}

func TestSpeakKnowledgeHit(t *testing.T) {
	ts := newTestStore(t)
	conversation := newTestConversation(t, ts)
	kn := knowledge.NewService(ts, nil)
	client := newHitWikiClient(t, "İstanbul, Türkiye'nin en kalabalık şehridir.", "İstanbul", "https://tr.wikipedia.org/wiki/İstanbul")
	d := NewDispatcher(ts, kn, nil, WithWikiClient(client))

	reply := d.Speak(context.Background(), conversation.ID, "istanbul tarihi")
	require.Contains(t, reply, "📘 Kaynak: https://tr.wikipedia.org/wiki/İstanbul")
	require.Contains(t, reply, "İstanbul, Türkiye'nin en kalabalık şehridir.")

	// The resolved title becomes the rolling topic.
	updated, err := ts.GetConversation(context.Background(), &store.FindConversation{ID: &conversation.ID})
	require.NoError(t, err)
	require.Equal(t, "İstanbul", updated.LastTopic)

	// The summary is cached for grounding lookups.
	cached, err := kn.Lookup(context.Background(), "İstanbul")
	require.NoError(t, err)
	require.NotNil(t, cached)
}

// Founder and founding questions are encyclopedic even though their
// nouns share letters with the sports/currency markers; they must reach
// the lookup stage, never the news path.
func TestSpeakFounderQuestionUsesKnowledgeStage(t *testing.T) {
	ts := newTestStore(t)
	conversation := newTestConversation(t, ts)
	client := newHitWikiClient(t, "Mustafa Kemal Atatürk, Türkiye Cumhuriyeti'nin kurucusudur.", "Türkiye Cumhuriyeti", "https://tr.wikipedia.org/wiki/Türkiye_Cumhuriyeti")
	d := NewDispatcher(ts, nil, nil, WithWikiClient(client))

	reply := d.Speak(context.Background(), conversation.ID, "Türkiye Cumhuriyeti'nin kurucusu kimdir")
	require.NotEqual(t, replyNewsUnavailable, reply)
	require.Contains(t, reply, "📘 Kaynak:")

	reply = d.Speak(context.Background(), conversation.ID, "Osmanlı Devleti'nin kuruluşu nedir")
	require.NotEqual(t, replyNewsUnavailable, reply)
	require.Contains(t, reply, "📘 Kaynak:")
}

func TestSpeakKnowledgeTopicMemoryFallback(t *testing.T) {
	ts := newTestStore(t)
	conversation := newTestConversation(t, ts)
	client := newHitWikiClient(t, "İstanbul, Türkiye'nin en kalabalık şehridir.", "İstanbul", "https://tr.wikipedia.org/wiki/İstanbul")
	d := NewDispatcher(ts, nil, nil, WithWikiClient(client))

	_ = d.Speak(context.Background(), conversation.ID, "istanbul tarihi")

	// Elliptical follow-up with no topic of its own reuses the memory.
	reply := d.Speak(context.Background(), conversation.ID, "tarihi özetle")
	require.Contains(t, reply, "📘 Kaynak:")
}

func TestSpeakKnowledgeListLayout(t *testing.T) {
	ts := newTestStore(t)
	conversation := newTestConversation(t, ts)
	client := newHitWikiClient(t, "Birinci cümle. İkinci cümle. Üçüncü cümle.", "Konu", "https://tr.wikipedia.org/wiki/Konu")
	d := NewDispatcher(ts, nil, nil, WithWikiClient(client))

	reply := d.Speak(context.Background(), conversation.ID, "Konu tarihi madde madde")
	require.Contains(t, reply, "- Birinci cümle.")
	require.Contains(t, reply, "- İkinci cümle.")
}

func TestSpeakCurrentEventsBeatsKnowledge(t *testing.T) {
	ts := newTestStore(t)
	conversation := newTestConversation(t, ts)
	model := &fakeCompleter{reply: "cevap"}
	// No search client configured: the stage degrades to its fixed
	// string, proving the encyclopedic stage never ran.
	d := NewDispatcher(ts, nil, model, WithWikiClient(newHitWikiClient(t, "bayat özet", "Dolar", "https://tr.wikipedia.org/wiki/Dolar")))

	reply := d.Speak(context.Background(), conversation.ID, "bugün dolar fiyatı nedir")
	require.Equal(t, replyNewsUnavailable, reply)
	require.Empty(t, model.models)
}

func TestSpeakFallbackUsesHistoryAndPersona(t *testing.T) {
	ts := newTestStore(t)
	conversation := newTestConversation(t, ts)
	model := &fakeCompleter{reply: "Merhaba! Nasıl yardımcı olabilirim?"}
	d := NewDispatcher(ts, nil, model)

	reply := d.Speak(context.Background(), conversation.ID, "selam")
	require.Equal(t, "Merhaba! Nasıl yardımcı olabilirim?", reply)
	require.Equal(t, []string{"qwen2.5:7b-instruct"}, model.models)

	require.GreaterOrEqual(t, len(model.lastMessages), 3)
	require.Equal(t, "system", model.lastMessages[0].Role)
	require.Equal(t, systemPromptTurkishOnly, model.lastMessages[0].Content)
	require.Equal(t, systemPromptPersona, model.lastMessages[1].Content)
	require.Equal(t, "selam", model.lastMessages[len(model.lastMessages)-1].Content)

	// The next turn carries the history.
	_ = d.Speak(context.Background(), conversation.ID, "tekrar selam")
	var sawHistory bool
	for _, m := range model.lastMessages {
		if m.Role == "assistant" && m.Content == reply {
			sawHistory = true
		}
	}
	require.True(t, sawHistory)
}

func TestSpeakFallbackReasoningModel(t *testing.T) {
	ts := newTestStore(t)
	conversation := newTestConversation(t, ts)
	model := &fakeCompleter{reply: "ispat tamam"}
	d := NewDispatcher(ts, nil, model)

	_ = d.Speak(context.Background(), conversation.ID, "bu teoremi ispat et")
	require.Equal(t, []string{"deepseek-r1:7b"}, model.models)
}

func TestSpeakFallbackModelFailure(t *testing.T) {
	ts := newTestStore(t)
	conversation := newTestConversation(t, ts)
	model := &fakeCompleter{err: errors.New("connection refused")}
	d := NewDispatcher(ts, nil, model)

	reply := d.Speak(context.Background(), conversation.ID, "selam")
	require.Equal(t, replyModelFailed, reply)

	// The failed turn is still persisted with the apologetic reply.
	messages, err := ts.ListRecentMessages(context.Background(), conversation.ID, 10)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, replyModelFailed, messages[1].Content)
}

func TestSpeakFallbackFiltersOutput(t *testing.T) {
	ts := newTestStore(t)
	conversation := newTestConversation(t, ts)
	model := &fakeCompleter{reply: "Merhaba 你好 дорогой!"}
	d := NewDispatcher(ts, nil, model)

	reply := d.Speak(context.Background(), conversation.ID, "selam")
	require.Equal(t, "Merhaba  !", reply)
}

func TestAnswerDateTimeTable(t *testing.T) {
	now := time.Date(2026, 3, 9, 14, 5, 0, 0, timezone.LocationEuropeIstanbul)
	m := router.NewRuleMatcher()

	tests := []struct {
		input string
		want  string
	}{
		{"saat kaç", "Şu an saat (İstanbul): 14:05"},
		{"hangi yıldayız", "2026 yılındayız."},
		{"3 yıl sonra", "3 yıl sonra: 2029"},
		{"ayın kaçı", "Bugün tarih: 09.03.2026 (İstanbul)."},
		{"hangi aydayız", "Mart ayındayız."},
		{"günlerden ne", "Bugün Pazartesi."},
		{"yarın tarih ne", "Yarın: 10.03.2026"},
		{"dün tarih neydi", "Dün: 08.03.2026"},
	}
	for _, tt := range tests {
		query := m.MatchDateTime(tt.input)
		require.Equal(t, tt.want, answerDateTime(query, now), "input %q", tt.input)
	}
}
