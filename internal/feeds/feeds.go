// Package feeds implements the structured feed channel of source
// acquisition.
package feeds

import (
	"context"

	"github.com/mmcdole/gofeed"

	"github.com/egysentiment/collector/internal/fetch"
	"github.com/egysentiment/collector/internal/logger"
	"github.com/egysentiment/collector/internal/news"
)

// FetchAll downloads and parses every feed URL through the transport chain,
// returning the flattened candidate list. A failing feed is logged and
// skipped; it never aborts the run.
func FetchAll(ctx context.Context, chain *fetch.Chain, urls []string) []news.Candidate {
	parser := gofeed.NewParser()
	var entries []news.Candidate
	okCount := 0

	for _, url := range urls {
		body, err := chain.Get(ctx, url, fetch.AcceptFeed)
		if err != nil {
			logger.Warn("feed fetch failed", "url", url, "error", err)
			continue
		}

		feed, err := parser.ParseString(string(body))
		if err != nil {
			logger.Warn("feed parse failed", "url", url, "error", err)
			continue
		}

		if len(feed.Items) == 0 {
			logger.Warn("feed returned no entries", "url", url)
			continue
		}

		for _, it := range feed.Items {
			entries = append(entries, news.Candidate{
				Title:     it.Title,
				Summary:   it.Description,
				Link:      it.Link,
				Published: it.Published,
			})
		}
		okCount++
		logger.Info("feed loaded", "url", url, "entries", len(feed.Items))
	}

	logger.Info("feed channel done", "ok", okCount, "total", len(urls))
	return entries
}
