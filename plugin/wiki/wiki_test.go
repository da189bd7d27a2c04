package wiki

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePage struct {
	Extract string
	Title   string
	PageURL string
	Type    string
}

// newFakeWiki serves /{lang}/api/rest_v1/page/summary/{term}.
func newFakeWiki(t *testing.T, pages map[string]map[string]fakePage) (*httptest.Server, Option) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
		require.Len(t, parts, 2)
		lang := parts[0]
		term := strings.TrimPrefix(parts[1], "api/rest_v1/page/summary/")

		page, ok := pages[lang][term]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"extract": page.Extract,
			"title":   page.Title,
			"type":    page.Type,
			"content_urls": map[string]any{
				"desktop": map[string]any{"page": page.PageURL},
			},
		})
	}))
	t.Cleanup(server.Close)

	return server, WithBaseURLFunc(func(lang string) string {
		return server.URL + "/" + lang
	})
}

func TestFetchSummaryPrimaryLanguage(t *testing.T) {
	_, opt := newFakeWiki(t, map[string]map[string]fakePage{
		"tr": {
			"Atatürk": {
				Extract: "Mustafa Kemal Atatürk Türk asker ve devlet adamıdır. Türkiye Cumhuriyeti'nin kurucusudur. Selanik'te doğdu. Harp Okulu'nda okudu.",
				Title:   "Mustafa Kemal Atatürk",
				PageURL: "https://tr.wikipedia.org/wiki/Mustafa_Kemal_Atat%C3%BCrk",
				Type:    "standard",
			},
		},
	})

	client := NewClient("tr", "en", opt)
	summary := client.FetchSummary(context.Background(), "Atatürk kimdir", 2)
	require.NotNil(t, summary)

	assert.Equal(t, "tr", summary.Lang)
	assert.Equal(t, "Mustafa Kemal Atatürk", summary.Title)
	assert.Equal(t, "standard", summary.Type)
	assert.Equal(t, "Mustafa Kemal Atatürk Türk asker ve devlet adamıdır. Türkiye Cumhuriyeti'nin kurucusudur.", summary.Text)
	assert.Contains(t, summary.URL, "wikipedia.org")
}

func TestFetchSummaryFallbackLanguage(t *testing.T) {
	_, opt := newFakeWiki(t, map[string]map[string]fakePage{
		"tr": {},
		"en": {
			"Photosynthesis": {
				Extract: "Photosynthesis is a biological process.",
				Title:   "Photosynthesis",
				PageURL: "https://en.wikipedia.org/wiki/Photosynthesis",
				Type:    "standard",
			},
		},
	})

	client := NewClient("tr", "en", opt)
	summary := client.FetchSummary(context.Background(), "Photosynthesis", 3)
	require.NotNil(t, summary)
	assert.Equal(t, "en", summary.Lang)
}

func TestFetchSummaryTotalMiss(t *testing.T) {
	_, opt := newFakeWiki(t, map[string]map[string]fakePage{})

	client := NewClient("tr", "en", opt)
	assert.Nil(t, client.FetchSummary(context.Background(), "Bilinmeyen Konu", 3))
}

func TestFetchSummaryEmptyExtractIsMiss(t *testing.T) {
	_, opt := newFakeWiki(t, map[string]map[string]fakePage{
		"tr": {"Konu": {Extract: "", Title: "Konu"}},
	})

	client := NewClient("tr", "", opt)
	assert.Nil(t, client.FetchSummary(context.Background(), "Konu", 3))
}

// Identical responses must produce byte-identical cleaned text.
func TestFetchSummaryIdempotent(t *testing.T) {
	_, opt := newFakeWiki(t, map[string]map[string]fakePage{
		"tr": {
			"Ankara": {
				Extract: "Ankara  Türkiye'nin <b>başkentidir</b>. Nüfusu yüksektir.",
				Title:   "Ankara",
				PageURL: "https://tr.wikipedia.org/wiki/Ankara",
			},
		},
	})

	client := NewClient("tr", "en", opt)
	first := client.FetchSummary(context.Background(), "Ankara", 2)
	second := client.FetchSummary(context.Background(), "Ankara", 2)
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, "Ankara Türkiye'nin başkentidir. Nüfusu yüksektir.", first.Text)
}

func TestFetchSummaryUnreachableServer(t *testing.T) {
	client := NewClient("tr", "en", WithBaseURLFunc(func(string) string {
		return "http://127.0.0.1:0"
	}))
	assert.Nil(t, client.FetchSummary(context.Background(), "Atatürk", 3))
}

func TestCleanTopic(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Atatürk kimdir", "Atatürk"},
		{"fotosentez nedir", "fotosentez"},
		{`"Çanakkale Savaşı" hakkında bilgi ver`, "Çanakkale Savaşı"},
		{"İstanbul", "İstanbul"},
		{"kimdir", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, CleanTopic(tt.input), tt.input)
	}
}
