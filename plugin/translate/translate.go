// Package translate provides a thin client for a LibreTranslate-style
// translation endpoint.
package translate

import (
	"context"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const defaultTimeout = 15 * time.Second

// DefaultTarget is used when the request names no target language.
const DefaultTarget = "en"

// languageCodes maps Turkish language names to ISO 639-1 codes.
var languageCodes = map[string]string{
	"türkçe":     "tr",
	"ingilizce":  "en",
	"almanca":    "de",
	"fransızca":  "fr",
	"ispanyolca": "es",
	"italyanca":  "it",
	"rusça":      "ru",
	"arapça":     "ar",
	"japonca":    "ja",
	"çince":      "zh",
}

// ResolveLanguage scans the input for a named target language and
// returns its code together with the input stripped of the language
// name and trigger words. Defaults to DefaultTarget when no language
// is named.
func ResolveLanguage(input string) (code, remainder string) {
	code = DefaultTarget
	words := strings.Fields(input)
	kept := words[:0]
	for _, w := range words {
		lowered := strings.ToLowerSpecial(unicode.TurkishCase, strings.Trim(w, "?!.,:;"))
		// Genitive forms like "ingilizceye" still name the language.
		matched := false
		for name, c := range languageCodes {
			if strings.HasPrefix(lowered, name) {
				code = c
				matched = true
				break
			}
		}
		if matched || lowered == "çevir" || lowered == "çevirir" || lowered == "tercüme" || lowered == "et" || lowered == "misin" {
			continue
		}
		kept = append(kept, w)
	}
	return code, strings.TrimSpace(strings.Join(kept, " "))
}

// Client calls the translation endpoint.
type Client struct {
	http    *resty.Client
	baseURL string
	apiKey  string
}

// NewClient creates a translation client. An empty apiKey is allowed;
// callers are expected to check HasCredential and short-circuit with
// their own warning message instead of calling Translate.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		http:    resty.New().SetTimeout(defaultTimeout),
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// HasCredential reports whether the client is configured to make
// translation calls.
func (c *Client) HasCredential() bool {
	return c.baseURL != "" && c.apiKey != ""
}

type translateRequest struct {
	Query  string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

// Translate translates text into the target language code.
func (c *Client) Translate(ctx context.Context, text, target string) (string, error) {
	if target == "" {
		target = DefaultTarget
	}

	var result translateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(&translateRequest{
			Query:  text,
			Source: "auto",
			Target: target,
			APIKey: c.apiKey,
		}).
		SetResult(&result).
		Post(c.baseURL + "/translate")
	if err != nil {
		return "", errors.Wrap(err, "translation request failed")
	}
	if resp.StatusCode() != http.StatusOK {
		return "", errors.Errorf("translation endpoint returned status %d", resp.StatusCode())
	}
	if result.TranslatedText == "" {
		return "", errors.New("empty translation response")
	}
	return result.TranslatedText, nil
}
