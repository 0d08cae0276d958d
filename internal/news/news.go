// Package news fetches company headlines from financial RSS feeds.
package news

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/atuladas/finvar/internal/infra"
	"github.com/atuladas/finvar/pkg/models"
)

// DefaultCompanyFeedURL is the Yahoo Finance per-ticker headline feed.
// The single %s verb takes the ticker symbol.
const DefaultCompanyFeedURL = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US"

// Service fetches and caches company news.
type Service struct {
	companyFeedURL string
	cache          *infra.Cache
	limiter        *infra.RateLimiter
	parser         *gofeed.Parser
}

// New creates a news service backed by the default Yahoo Finance feed.
func New() *Service {
	return NewWithFeed(DefaultCompanyFeedURL)
}

// NewWithFeed creates a news service with a custom per-ticker feed URL
// template.
func NewWithFeed(companyFeedURL string) *Service {
	return &Service{
		companyFeedURL: companyFeedURL,
		cache:          infra.NewCache(10 * time.Minute),
		limiter:        infra.NewRateLimiter(2, time.Second),
		parser:         gofeed.NewParser(),
	}
}

// CompanyNews returns recent headlines for a ticker, newest first.
func (s *Service) CompanyNews(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	cacheKey := fmt.Sprintf("news:%s", symbol)
	if cached, ok := s.cache.Get(cacheKey); ok {
		return capped(cached.([]models.NewsItem), limit), nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := s.parser.ParseURLWithContext(fmt.Sprintf(s.companyFeedURL, symbol), ctx)
	if err != nil {
		return nil, fmt.Errorf("parse news feed for %s: %w", symbol, err)
	}

	items := make([]models.NewsItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		n := models.NewsItem{
			Title:   item.Title,
			Link:    item.Link,
			Summary: cleanHTML(item.Description),
			Source:  feed.Title,
		}
		if item.PublishedParsed != nil {
			n.PublishedAt = *item.PublishedParsed
		}
		items = append(items, n)
	}
	sortByDate(items)

	s.cache.Set(cacheKey, items)
	return capped(items, limit), nil
}

func capped(items []models.NewsItem, limit int) []models.NewsItem {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
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

// sortByDate sorts items newest first. Insertion sort is fine for feed-sized
// slices.
func sortByDate(items []models.NewsItem) {
	for i := 1; i < len(items); i++ {
		key := items[i]
		j := i - 1
		for j >= 0 && items[j].PublishedAt.Before(key.PublishedAt) {
			items[j+1] = items[j]
			j--
		}
		items[j+1] = key
	}
}
