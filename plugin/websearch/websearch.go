// Package websearch provides a lightweight web retrieval fallback for
// current-events questions. Results are filtered to a fixed allowlist
// of trusted news domains; nothing outside the allowlist is ever
// surfaced. Every failure degrades to an empty result, never an error.
package websearch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

const (
	defaultSearchURL = "https://duckduckgo.com/lite/"
	defaultTimeout   = 15 * time.Second
	userAgent        = "SweaxBot/1.0 (+educational use)"

	// maxConcurrentFetches bounds parallel page downloads.
	maxConcurrentFetches = 3
)

// AllowedDomains is the fixed set of trusted news sources.
var AllowedDomains = []string{
	"reuters.com",
	"bbc.com",
	"bbc.co.uk",
	"aa.com.tr",
	"dw.com",
	"tr.euronews.com",
	"euronews.com",
}

// Result is a single search hit.
type Result struct {
	Title string
	URL   string
}

// Client performs searches and page fetches.
type Client struct {
	http      *http.Client
	searchURL string
	allowed   []string
}

// Option configures a Client.
type Option func(*Client)

// WithSearchURL overrides the search endpoint (used in tests).
func WithSearchURL(u string) Option {
	return func(c *Client) { c.searchURL = u }
}

// WithAllowedDomains overrides the domain allowlist (used in tests).
func WithAllowedDomains(domains []string) Option {
	return func(c *Client) { c.allowed = domains }
}

// NewClient creates a web search client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: defaultTimeout},
		searchURL: defaultSearchURL,
		allowed:   AllowedDomains,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search queries the search endpoint and returns up to maxResults hits
// whose host is in the allowlist. Any failure returns an empty slice.
func (c *Client) Search(ctx context.Context, query string, maxResults int) []Result {
	if maxResults < 1 {
		maxResults = 3
	}

	endpoint := c.searchURL + "?q=" + url.QueryEscape(query)
	doc := c.fetchDocument(ctx, endpoint)
	if doc == nil {
		return nil
	}

	var results []Result
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(results) >= maxResults {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			href := attr(n, "href")
			title := strings.TrimSpace(nodeText(n))
			if strings.HasPrefix(href, "http") && c.isAllowed(href) && title != "" {
				if runes := []rune(title); len(runes) > 120 {
					title = string(runes[:120])
				}
				results = append(results, Result{Title: title, URL: href})
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return results
}

// FetchPageText downloads a page and extracts heading and paragraph
// text only, truncated to maxChars runes. Returns "" on any failure.
func (c *Client) FetchPageText(ctx context.Context, pageURL string, maxChars int) string {
	doc := c.fetchDocument(ctx, pageURL)
	if doc == nil {
		return ""
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h1", "h2", "p":
				if t := strings.TrimSpace(nodeText(n)); t != "" {
					parts = append(parts, t)
				}
				return
			case "script", "style", "nav", "footer":
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	full := strings.Join(parts, " ")
	if maxChars > 0 {
		runes := []rune(full)
		if len(runes) > maxChars {
			full = string(runes[:maxChars])
		}
	}
	return full
}

// FetchAllPageTexts fetches several result pages concurrently,
// preserving result order. Failed pages come back as empty strings.
func (c *Client) FetchAllPageTexts(ctx context.Context, results []Result, maxChars int) []string {
	texts := make([]string, len(results))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, r := range results {
		g.Go(func() error {
			texts[i] = c.FetchPageText(gctx, r.URL, maxChars)
			return nil
		})
	}
	// Workers never return errors; failures are empty strings.
	_ = g.Wait()
	return texts
}

func (c *Client) isAllowed(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range c.allowed {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func (c *Client) fetchDocument(ctx context.Context, rawURL string) *html.Node {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Debug("web fetch failed", "url", rawURL, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Debug("web fetch non-200", "url", rawURL, "status", resp.StatusCode)
		return nil
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		slog.Debug("web page parse failed", "url", rawURL, "error", err)
		return nil
	}
	return doc
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
