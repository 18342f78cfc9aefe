// Package news collects financial headlines over RSS, scores them with the
// sentiment analyzer, and feeds the stored article records.
package news

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/raghuchilukamari/investor-gps/internal/infra"
	"github.com/raghuchilukamari/investor-gps/internal/sentiment"
	"github.com/raghuchilukamari/investor-gps/pkg/models"
)

// Source is one financial news RSS feed.
type Source struct {
	Name   string
	RSSURL string
}

// DefaultSources lists the configured macro/markets news feeds.
var DefaultSources = []Source{
	{Name: "CNBC Economy", RSSURL: "https://www.cnbc.com/id/20910258/device/rss/rss.html"},
	{Name: "CNBC Markets", RSSURL: "https://www.cnbc.com/id/100003114/device/rss/rss.html"},
	{Name: "MarketWatch Top Stories", RSSURL: "https://feeds.content.dowjones.io/public/rss/mw_topstories"},
	{Name: "Yahoo Finance", RSSURL: "https://finance.yahoo.com/news/rssindex"},
}

// ArticleStore persists scored articles.
type ArticleStore interface {
	SaveNewsArticle(ctx context.Context, art *models.NewsArticle) (int64, error)
}

// Collector fetches, scores, and stores news articles.
type Collector struct {
	sources  []Source
	analyzer *sentiment.Analyzer
	store    ArticleStore
	cache    *infra.Cache
	limiter  *infra.RateLimiter
	parser   *gofeed.Parser
}

// NewCollector creates a collector with the default sources. A nil store
// disables persistence; collected articles are still returned scored.
func NewCollector(analyzer *sentiment.Analyzer, store ArticleStore) *Collector {
	return NewCollectorWithSources(analyzer, store, DefaultSources)
}

// NewCollectorWithSources creates a collector over custom feeds.
func NewCollectorWithSources(analyzer *sentiment.Analyzer, store ArticleStore, sources []Source) *Collector {
	return &Collector{
		sources:  sources,
		analyzer: analyzer,
		store:    store,
		cache:    infra.NewCache(10 * time.Minute),
		limiter:  infra.NewRateLimiter(2, time.Second), // conservative: 2 req/s
		parser:   gofeed.NewParser(),
	}
}

func collectKey(limit int) string {
	return fmt.Sprintf("news:collect:%d", limit)
}

// Collect fetches all configured feeds, scores each headline+summary, and
// persists the results. A failed source is skipped, not fatal; articles are
// returned newest-first, truncated to limit when limit > 0.
func (c *Collector) Collect(ctx context.Context, limit int) ([]models.NewsArticle, error) {
	cacheKey := collectKey(limit)
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.([]models.NewsArticle), nil
	}

	var all []models.NewsArticle
	for _, src := range c.sources {
		articles, err := c.fetchRSS(ctx, src)
		if err != nil {
			log.Printf("news: skipping %s: %v", src.Name, err)
			continue
		}
		all = append(all, articles...)
	}

	for i := range all {
		res := c.analyzer.AnalyzeText(all[i].Title + " " + all[i].Summary)
		all[i].SentimentScore = res.CombinedScore
		all[i].SentimentLabel = res.Label
		all[i].Confidence = res.Confidence

		if c.store != nil {
			if _, err := c.store.SaveNewsArticle(ctx, &all[i]); err != nil {
				return nil, fmt.Errorf("store article %q: %w", all[i].Title, err)
			}
		}
	}

	sort.Slice(all, func(i, j int) bool { return all[i].PublishedAt.After(all[j].PublishedAt) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	c.cache.Cleanup()
	c.cache.Set(cacheKey, all)
	return all, nil
}

// ForceCollect drops any cached result for this limit and pulls every
// source again.
func (c *Collector) ForceCollect(ctx context.Context, limit int) ([]models.NewsArticle, error) {
	c.cache.Invalidate(collectKey(limit))
	return c.Collect(ctx, limit)
}

// fetchRSS parses one RSS feed into unscored articles.
func (c *Collector) fetchRSS(ctx context.Context, src Source) ([]models.NewsArticle, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := c.parser.ParseURLWithContext(src.RSSURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", src.Name, err)
	}

	articles := make([]models.NewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		a := models.NewsArticle{
			Title:   item.Title,
			URL:     item.Link,
			Source:  src.Name,
			Summary: cleanHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		}
		articles = append(articles, a)
	}

	return articles, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
