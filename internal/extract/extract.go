// Package extract retrieves full article text. Failure is an expected
// outcome here (paywalls, bot walls, malformed markup), so the extractor
// returns empty strings instead of errors and lets the caller fall back to
// the feed summary.
package extract

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/egysentiment/collector/internal/identity"
	"github.com/egysentiment/collector/internal/logger"
)

type Extractor struct {
	client *http.Client
	ua     identity.Provider
}

func New(timeout time.Duration, ua identity.Provider) *Extractor {
	return &Extractor{
		client: &http.Client{Timeout: timeout},
		ua:     ua,
	}
}

// FullText fetches the article and extracts its title and body text.
// Both come back empty when anything goes wrong.
func (e *Extractor) FullText(ctx context.Context, rawURL string) (title, body string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", ""
	}
	req.Header.Set("User-Agent", e.ua.Next())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := e.client.Do(req)
	if err != nil {
		logger.Debug("article fetch failed", "url", rawURL, "error", err)
		return "", ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Debug("article fetch rejected", "url", rawURL, "status", resp.StatusCode)
		return "", ""
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", ""
	}

	article, err := readability.FromReader(bytes.NewReader(data), u)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		return strings.TrimSpace(article.Title), Clean(article.TextContent)
	}

	// Readability gives up on some regional sites; fall back to collecting
	// paragraph text from common content containers.
	return fallbackParagraphs(data)
}

var fallbackSelectors = []string{
	"article p",
	".article-body p",
	".post-content p",
	".entry-content p",
	".content p",
	"main p",
	"p",
}

func fallbackParagraphs(data []byte) (title, body string) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", ""
	}

	title = strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	// Three paragraphs from one selector is treated as a solid hit; otherwise
	// keep the first non-empty result as a last resort.
	var paragraphs []string
	for _, selector := range fallbackSelectors {
		var found []string
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) > 20 {
				found = append(found, text)
			}
		})
		if len(found) >= 3 {
			paragraphs = found
			break
		}
		if len(paragraphs) == 0 && len(found) > 0 {
			paragraphs = found
		}
	}

	if len(paragraphs) == 0 {
		return title, ""
	}
	return title, Clean(strings.Join(paragraphs, "\n\n"))
}

// Clean normalizes whitespace in extracted text.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	lines := strings.Split(text, "\n")
	var kept []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		kept = append(kept, strings.Join(strings.Fields(line), " "))
	}
	return strings.Join(kept, "\n")
}
