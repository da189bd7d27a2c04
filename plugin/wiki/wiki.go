// Package wiki fetches topic summaries from the Wikipedia REST API.
//
// Lookups try the primary language first (Turkish by default) and fall
// back to a secondary language. A topic with no usable extract in
// either language is a first-class "no knowledge" outcome, not an
// error: callers receive nil and must answer with their own fixed
// message instead of fabricating content.
package wiki

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/go-resty/resty/v2"

	"github.com/sweax/sweax/plugin/markdown"
)

const (
	defaultTimeout = 12 * time.Second
	userAgent      = "SweaxBot/1.0 (+educational use)"

	// maxSummaryChars hard-caps a summary regardless of the sentence
	// budget so a single run-on extract cannot flood the chat.
	maxSummaryChars = 1500
)

// Summary is a cleaned topic summary with its source metadata.
type Summary struct {
	Text  string
	URL   string
	Title string
	Lang  string
	Type  string // "standard" or "disambiguation"
}

// summaryResponse mirrors the REST summary endpoint payload.
type summaryResponse struct {
	Extract     string `json:"extract"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// Question words stripped from raw topic strings before the lookup
// ("Atatürk kimdir" queries the page "Atatürk"). Matched word by word
// with Turkish-aware lowering; regexp \b only understands ASCII word
// boundaries and would miss words like "hayatı".
var questionWords = map[string]bool{
	"kimdir": true, "kimdi": true, "kimmiş": true, "kim": true, "kimin": true,
	"nedir": true, "hayatı": true, "hayatını": true, "biyografisi": true,
	"tarihi": true, "anlamı": true, "özeti": true, "özetle": true,
	"anlat": true, "anlatırmısın": true, "hikayesi": true,
	"hakkında": true, "bilgi": true, "ver": true,
}

// Client queries the Wikipedia REST summary endpoint.
type Client struct {
	http         *resty.Client
	primaryLang  string
	fallbackLang string
	// baseURLFor allows tests to point a language at a local server.
	baseURLFor func(lang string) string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURLFunc overrides endpoint resolution per language.
func WithBaseURLFunc(fn func(lang string) string) Option {
	return func(c *Client) {
		c.baseURLFor = fn
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// NewClient creates a Wikipedia summary client.
func NewClient(primaryLang, fallbackLang string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetHeader("User-Agent", userAgent).
			SetTimeout(defaultTimeout),
		primaryLang:  primaryLang,
		fallbackLang: fallbackLang,
		baseURLFor: func(lang string) string {
			return "https://" + lang + ".wikipedia.org"
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchSummary returns the cleaned summary for a topic, truncated to
// the requested sentence count, or nil when neither language yields a
// usable extract. Network and parse failures degrade to nil as well.
func (c *Client) FetchSummary(ctx context.Context, topic string, sentences int) *Summary {
	term := CleanTopic(topic)
	if term == "" {
		return nil
	}

	for _, lang := range []string{c.primaryLang, c.fallbackLang} {
		if lang == "" {
			continue
		}
		data := c.fetchForLang(ctx, term, lang)
		if data == nil {
			continue
		}

		extract := markdown.ToPlaintext(data.Extract)
		if extract == "" {
			continue
		}

		pageURL := data.ContentURLs.Desktop.Page
		if pageURL == "" {
			pageURL = c.baseURLFor(lang) + "/"
		}
		pageType := data.Type
		if pageType == "" {
			pageType = "standard"
		}

		return &Summary{
			Text:  markdown.LimitSentences(extract, sentences, maxSummaryChars),
			URL:   pageURL,
			Title: data.Title,
			Lang:  lang,
			Type:  pageType,
		}
	}

	return nil
}

func (c *Client) fetchForLang(ctx context.Context, term, lang string) *summaryResponse {
	endpoint := c.baseURLFor(lang) + "/api/rest_v1/page/summary/" + url.PathEscape(term)

	var data summaryResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&data).
		Get(endpoint)
	if err != nil {
		slog.Debug("wiki summary request failed", "lang", lang, "term", term, "error", err)
		return nil
	}
	if resp.StatusCode() != http.StatusOK {
		slog.Debug("wiki summary non-200", "lang", lang, "term", term, "status", resp.StatusCode())
		return nil
	}
	if data.Extract == "" {
		return nil
	}
	return &data
}

// CleanTopic strips question words and quotes from a raw topic string.
func CleanTopic(topic string) string {
	clean := strings.NewReplacer(`"`, "", "'", "", "’", "", "“", "", "”", "").Replace(topic)

	words := strings.Fields(clean)
	kept := words[:0]
	for _, w := range words {
		trimmed := strings.Trim(w, "?!.,:;")
		if !questionWords[strings.ToLowerSpecial(unicode.TurkishCase, trimmed)] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}
