// Package crawler fetches the district website's public pages and flattens
// them into plain text for use as grounding material in answers.
package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Crawler walks a site breadth-first, staying on the seed host and stopping
// at the page and character budgets. The collected text is capped at twice
// MaxChars while crawling and truncated to MaxChars on return, so one huge
// page cannot starve the rest of the site out of the result.
type Crawler struct {
	// MaxPages bounds how many pages are fetched per crawl.
	MaxPages int
	// MaxChars bounds the returned text length.
	MaxChars int
	// PageTimeout bounds each individual page fetch.
	PageTimeout time.Duration
	// OnPage, when set, is called after each fetched page with its URL.
	OnPage func(pageURL string)

	client *http.Client
}

// New creates a crawler with the given budgets.
func New(maxPages, maxChars int, pageTimeout time.Duration) *Crawler {
	return &Crawler{
		MaxPages:    maxPages,
		MaxChars:    maxChars,
		PageTimeout: pageTimeout,
		client:      &http.Client{},
	}
}

// Crawl fetches up to MaxPages pages starting from seedURL and returns their
// combined text. Links leaving the seed host are never followed.
func (c *Crawler) Crawl(ctx context.Context, seedURL string) (string, error) {
	seed, err := url.Parse(seedURL)
	if err != nil || seed.Host == "" {
		return "", fmt.Errorf("invalid seed URL %q", seedURL)
	}

	charBudget := c.MaxChars * 2
	seedKey := normalizeURL(seed)
	queue := []string{seedKey}
	visited := map[string]bool{seedKey: true}

	var text strings.Builder
	fetched := 0

	for len(queue) > 0 && fetched < c.MaxPages && text.Len() < charBudget {
		pageURL := queue[0]
		queue = queue[1:]

		body, err := c.fetch(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			// Broken links and server hiccups just skip the page.
			continue
		}
		fetched++

		pageText, links := extract(body, pageURL)
		if pageText != "" {
			text.WriteString(pageText)
			text.WriteString("\n\n")
		}
		if c.OnPage != nil {
			c.OnPage(pageURL)
		}

		for _, link := range links {
			u, err := url.Parse(link)
			if err != nil {
				continue
			}
			if u.Host != seed.Host {
				continue
			}
			key := normalizeURL(u)
			if visited[key] {
				continue
			}
			visited[key] = true
			queue = append(queue, key)
		}
	}

	if fetched == 0 {
		return "", fmt.Errorf("no pages could be fetched from %s", seedURL)
	}

	out := text.String()
	if len(out) > c.MaxChars {
		out = out[:c.MaxChars]
	}
	return out, nil
}

func (c *Crawler) fetch(ctx context.Context, pageURL string) (io.ReadCloser, error) {
	fetchCtx := ctx
	if c.PageTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, c.PageTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "districtbot/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("status %d for %s", resp.StatusCode, pageURL)
	}

	// Drain the body within the page timeout, not lazily later.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	return io.NopCloser(strings.NewReader(string(body))), nil
}

// extract tokenizes an HTML page into visible text plus the absolute URLs of
// its links. Script and style contents are dropped; block-ish tags become
// newlines so headings and paragraphs stay separated.
func extract(body io.ReadCloser, baseURL string) (string, []string) {
	defer body.Close()

	base, _ := url.Parse(baseURL)
	z := html.NewTokenizer(body)

	var text strings.Builder
	var links []string
	skipDepth := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapseBlankLines(text.String()), links

		case html.StartTagToken:
			tok := z.Token()
			switch tok.Data {
			case "script", "style", "noscript":
				skipDepth++
			case "p", "div", "br", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6":
				text.WriteString("\n")
			case "a":
				for _, attr := range tok.Attr {
					if attr.Key != "href" {
						continue
					}
					if href := resolveLink(base, attr.Val); href != "" {
						links = append(links, href)
					}
				}
			}

		case html.EndTagToken:
			tok := z.Token()
			switch tok.Data {
			case "script", "style", "noscript":
				if skipDepth > 0 {
					skipDepth--
				}
			case "p", "div", "li", "tr":
				text.WriteString("\n")
			}

		case html.SelfClosingTagToken:
			if tok := z.Token(); tok.Data == "br" {
				text.WriteString("\n")
			}

		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			if s := strings.TrimSpace(z.Token().Data); s != "" {
				text.WriteString(s)
				text.WriteString(" ")
			}
		}
	}
}

func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "javascript:") {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

// normalizeURL canonicalizes a URL for the visited set and the frontier so
// /about, /about/, /about?ref=home and /about#team count as one page.
func normalizeURL(u *url.URL) string {
	c := *u
	c.Fragment = ""
	c.RawQuery = ""
	c.Path = strings.TrimRight(c.Path, "/")
	c.Host = strings.ToLower(c.Host)
	return c.String()
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n")
}
