// Package scrape implements the HTML listing channel of source acquisition
// and the paginated archive walk used by the historical backfill.
package scrape

import (
	"bytes"
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/egysentiment/collector/internal/config"
	"github.com/egysentiment/collector/internal/fetch"
	"github.com/egysentiment/collector/internal/logger"
	"github.com/egysentiment/collector/internal/news"
	"github.com/egysentiment/collector/internal/retry"
)

// Listings scrapes each configured listing page, extracting up to perSource
// linked entries per site. A polite delay separates sources so live sites
// are not hammered back to back.
func Listings(ctx context.Context, chain *fetch.Chain, sources []config.ScrapeSource, perSource int, delay time.Duration) []news.Candidate {
	var entries []news.Candidate

	for i, src := range sources {
		if i > 0 {
			select {
			case <-ctx.Done():
				return entries
			case <-time.After(delay):
			}
		}

		found := listingOnce(ctx, chain, src, perSource)
		if len(found) > 0 {
			logger.Info("scraped listing", "source", src.Name, "entries", len(found))
		}
		entries = append(entries, found...)
	}

	return entries
}

func listingOnce(ctx context.Context, chain *fetch.Chain, src config.ScrapeSource, perSource int) []news.Candidate {
	body, err := chain.Get(ctx, src.URL, fetch.AcceptHTML)
	if err != nil {
		logger.Warn("listing fetch failed", "source", src.Name, "error", err)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		logger.Warn("listing parse failed", "source", src.Name, "error", err)
		return nil
	}

	// The cap bounds the selection window: only the first perSource selector
	// matches are considered, and link- or title-less matches inside that
	// window are dropped rather than backfilled from deeper in the page.
	var entries []news.Candidate
	doc.Find(src.Selector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= perSource {
			return false
		}

		href, _ := s.Attr("href")
		title := strings.TrimSpace(s.Text())
		if href == "" || title == "" {
			return true
		}

		entries = append(entries, news.Candidate{
			Title: title,
			Link:  ResolveLink(src.Base, href),
		})
		return true
	})

	return entries
}

// ArchiveURLs walks an archive's pages collecting article URLs, oldest page
// last. Individual page failures are retried once and then skipped.
func ArchiveURLs(ctx context.Context, chain *fetch.Chain, src config.ArchiveSource, delay time.Duration) []string {
	var urls []string

	for page := 1; page <= src.Pages; page++ {
		pageURL := strings.ReplaceAll(src.Pattern, "{page}", strconv.Itoa(page))

		var body []byte
		err := retry.Do(ctx, retry.Config{MaxAttempts: 2, Delay: 2 * time.Second}, func() error {
			var ferr error
			body, ferr = chain.Get(ctx, pageURL, fetch.AcceptHTML)
			return ferr
		})
		if err != nil {
			logger.Debug("archive page skipped", "source", src.Name, "page", page, "error", err)
			continue
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			continue
		}

		doc.Find(src.Selector).Each(func(_ int, s *goquery.Selection) {
			if href, ok := s.Attr("href"); ok && href != "" {
				urls = append(urls, ResolveLink(src.Base, href))
			}
		})

		select {
		case <-ctx.Done():
			return urls
		case <-time.After(delay):
		}
	}

	logger.Info("archive walked", "source", src.Name, "urls", len(urls))
	return urls
}

// ResolveLink resolves a possibly-relative href against the source base URL.
// An empty base returns the href unchanged.
func ResolveLink(base, href string) string {
	if base == "" {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	u, err := b.Parse(href)
	if err != nil {
		return href
	}
	return u.String()
}
