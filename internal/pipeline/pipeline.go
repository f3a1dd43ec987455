// Package pipeline wires the acquisition channels, relevance filter,
// extractor and labeler into the two ingestion runs: the daily collect and
// the historical backfill.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/egysentiment/collector/internal/config"
	"github.com/egysentiment/collector/internal/corpus"
	"github.com/egysentiment/collector/internal/extract"
	"github.com/egysentiment/collector/internal/feeds"
	"github.com/egysentiment/collector/internal/fetch"
	"github.com/egysentiment/collector/internal/logger"
	"github.com/egysentiment/collector/internal/metrics"
	"github.com/egysentiment/collector/internal/news"
	"github.com/egysentiment/collector/internal/scrape"
	"github.com/egysentiment/collector/internal/sentiment"
)

// Labeler is the classification dependency; the production implementation is
// sentiment.Client.
type Labeler interface {
	Classify(ctx context.Context, text string) sentiment.Result
}

type Pipeline struct {
	cfg       *config.Config
	sources   *config.Sources
	feedChain *fetch.Chain
	listChain *fetch.Chain
	extractor *extract.Extractor
	labeler   Labeler
	store     *corpus.Store
	metrics   *metrics.Metrics
}

func New(cfg *config.Config, sources *config.Sources, feedChain, listChain *fetch.Chain, extractor *extract.Extractor, labeler Labeler, store *corpus.Store) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		sources:   sources,
		feedChain: feedChain,
		listChain: listChain,
		extractor: extractor,
		labeler:   labeler,
		store:     store,
		metrics:   metrics.Global,
	}
}

// Collect runs one incremental acquisition pass: feeds plus listing pages,
// filtered for relevance, extracted, labeled and appended. Records are
// persisted one at a time so an interrupted run keeps its progress.
func (p *Pipeline) Collect(ctx context.Context) (int, error) {
	start := time.Now()

	candidates := feeds.FetchAll(ctx, p.feedChain, p.sources.Feeds)
	candidates = append(candidates, scrape.Listings(ctx, p.listChain, p.sources.Scrape, p.cfg.ScrapePerSourceCap, p.cfg.ScrapeDelay)...)
	p.metrics.AddEntriesSeen(len(candidates))

	relevant := news.Filter(candidates, p.sources.Keywords)
	p.metrics.AddEntriesRelevant(len(relevant))
	logger.Info("relevance filter applied", "seen", len(candidates), "relevant", len(relevant))

	existing, err := p.store.Sources()
	if err != nil {
		p.metrics.SetError(err.Error())
		return 0, err
	}

	added := 0
	for _, cand := range relevant {
		if ctx.Err() != nil {
			break
		}

		link := strings.TrimSpace(cand.Link)
		if link == "" {
			continue
		}
		if _, known := existing[link]; known {
			p.metrics.AddDuplicatesKnown(1)
			continue
		}

		rec, labelErr := p.process(ctx, cand, "")
		if labelErr != nil {
			logger.Warn("candidate skipped", "link", link, "error", labelErr)
			continue
		}

		if err := p.store.Append(rec); err != nil {
			p.metrics.SetError(err.Error())
			return added, fmt.Errorf("persisting record: %w", err)
		}
		existing[link] = struct{}{}
		p.metrics.IncrementAppended()
		added++
	}

	p.metrics.SetLastRun(time.Since(start))
	logger.Info("collect run done", "added", added, "took", time.Since(start).Round(time.Second))
	return added, nil
}

// Backfill walks the configured archives and ingests historical articles.
// Unlike Collect there is no feed summary to fall back to, so articles whose
// extraction yields no usable title and body are skipped, and relevance is
// judged on the extracted text itself.
func (p *Pipeline) Backfill(ctx context.Context) (int, error) {
	start := time.Now()

	existing, err := p.store.Sources()
	if err != nil {
		p.metrics.SetError(err.Error())
		return 0, err
	}

	added := 0
	for _, archive := range p.sources.Archives {
		discovered := scrape.ArchiveURLs(ctx, p.listChain, archive, p.cfg.ScrapeDelay)
		p.metrics.AddEntriesSeen(len(discovered))

		// The per-source cap counts URLs not yet in the corpus, so repeated
		// runs keep advancing deeper into the archive.
		var urls []string
		for _, link := range discovered {
			if _, known := existing[link]; known {
				p.metrics.AddDuplicatesKnown(1)
				continue
			}
			urls = append(urls, link)
			if len(urls) == p.cfg.BackfillPerSourceCap {
				break
			}
		}

		for _, link := range urls {
			if ctx.Err() != nil {
				return added, ctx.Err()
			}
			// A URL can surface in more than one archive within a run.
			if _, known := existing[link]; known {
				continue
			}

			title, body := p.extractor.FullText(ctx, link)
			if strings.TrimSpace(title) == "" || strings.TrimSpace(body) == "" {
				continue
			}
			if !news.Match(title+" "+body, p.sources.Keywords) {
				continue
			}
			p.metrics.AddEntriesRelevant(1)

			cand := news.Candidate{Title: title, Link: link}
			rec, labelErr := p.processExtracted(ctx, cand, body, archive.Name)
			if labelErr != nil {
				continue
			}

			if err := p.store.Append(rec); err != nil {
				p.metrics.SetError(err.Error())
				return added, fmt.Errorf("persisting record: %w", err)
			}
			existing[link] = struct{}{}
			p.metrics.IncrementAppended()
			added++
		}
	}

	p.metrics.SetLastRun(time.Since(start))
	logger.Info("backfill run done", "added", added, "took", time.Since(start).Round(time.Second))
	return added, nil
}

// process extracts, labels and assembles the record for one candidate.
func (p *Pipeline) process(ctx context.Context, cand news.Candidate, sourceName string) (corpus.Record, error) {
	_, body := p.extractor.FullText(ctx, cand.Link)
	return p.processExtracted(ctx, cand, body, sourceName)
}

func (p *Pipeline) processExtracted(ctx context.Context, cand news.Candidate, body, sourceName string) (corpus.Record, error) {
	text := BuildText(cand.Title, cand.Summary, body, p.cfg.MinFullTextChars, p.cfg.MaxTextChars)
	if strings.TrimSpace(text) == "" {
		return corpus.Record{}, fmt.Errorf("no usable text")
	}

	res := p.labeler.Classify(ctx, text)
	p.metrics.IncrementLabeled(res.Degraded)
	if res.Degraded {
		logger.Warn("degraded label persisted", "link", cand.Link, "reason", res.Reasoning)
	}

	return corpus.Record{
		Text:       text,
		Title:      strings.TrimSpace(cand.Title),
		Sentiment:  res.Sentiment,
		Reasoning:  res.Reasoning,
		Source:     strings.TrimSpace(cand.Link),
		SourceName: sourceName,
		Published:  cand.Published,
		Timestamp:  time.Now().Format(time.RFC3339),
	}, nil
}

// BuildText composes the persisted article text. A body shorter than minBody
// runes is treated as a failed extraction and the feed summary is used
// instead; either way the result is capped at maxLen runes.
func BuildText(title, summary, body string, minBody, maxLen int) string {
	title = strings.TrimSpace(title)
	summary = strings.TrimSpace(summary)
	body = strings.TrimSpace(body)

	var text string
	if utf8.RuneCountInString(body) >= minBody {
		text = join(title, body)
	} else {
		text = join(title, summary)
	}

	if runes := []rune(text); len(runes) > maxLen {
		text = string(runes[:maxLen])
	}
	return strings.TrimSpace(text)
}

func join(title, rest string) string {
	switch {
	case title == "":
		return rest
	case rest == "":
		return title
	default:
		return title + ". " + rest
	}
}
