// Package feed reads RSS and Atom feeds as a read-only article source.
package feed

import (
	"cmp"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"ArticlesAggregator/internal/domain"
	"ArticlesAggregator/internal/ports"
)

const upstreamName = "rss"

// RSSSource merges the items of several feeds, newest first.
type RSSSource struct {
	parser *gofeed.Parser
	feeds  []string
	logger *slog.Logger
}

var _ ports.ArticleSource = (*RSSSource)(nil)

func NewRSSSource(feeds []string, client *http.Client, logger *slog.Logger) *RSSSource {
	parser := gofeed.NewParser()
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	parser.Client = client
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RSSSource{parser: parser, feeds: feeds, logger: logger}
}

type feedItem struct {
	article   domain.RawArticle
	published time.Time
}

// List fetches every feed in parallel. A failing feed is skipped as long as
// at least one feed answers; when all of them fail the source is unavailable.
func (s *RSSSource) List(ctx context.Context, count int) ([]domain.RawArticle, error) {
	if len(s.feeds) == 0 {
		return nil, fmt.Errorf("rss: no feeds configured")
	}

	results := make([][]feedItem, len(s.feeds))
	failures := make([]error, len(s.feeds))

	var group errgroup.Group
	for i, feedURL := range s.feeds {
		group.Go(func() error {
			items, err := s.fetch(ctx, feedURL)
			if err != nil {
				s.logger.Warn("feed fetch failed", "feed", feedURL, "error", err)
				failures[i] = err
				return nil
			}
			results[i] = items
			return nil
		})
	}
	_ = group.Wait()

	if err := allFailed(failures); err != nil {
		return nil, err
	}

	var merged []feedItem
	seen := map[string]struct{}{}
	for _, items := range results {
		for _, item := range items {
			if _, ok := seen[item.article.ID]; ok {
				continue
			}
			seen[item.article.ID] = struct{}{}
			merged = append(merged, item)
		}
	}

	slices.SortStableFunc(merged, func(a, b feedItem) int {
		return cmp.Compare(b.published.UnixNano(), a.published.UnixNano())
	})

	articles := make([]domain.RawArticle, 0, min(max(count, 0), len(merged)))
	for _, item := range merged {
		if len(articles) >= count {
			break
		}
		articles = append(articles, item.article)
	}
	return articles, nil
}

// Add is not supported: feeds are read-only.
func (s *RSSSource) Add(context.Context, domain.RawArticle) (domain.RawArticle, error) {
	return domain.RawArticle{}, fmt.Errorf("rss: %w", domain.ErrReadOnlySource)
}

func (s *RSSSource) fetch(ctx context.Context, feedURL string) ([]feedItem, error) {
	parsed, err := s.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		if isTransportFailure(err) {
			return nil, domain.UpstreamError(upstreamName, "list", err)
		}
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	items := make([]feedItem, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" || item.Link == "" {
			continue
		}

		var published time.Time
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		}

		items = append(items, feedItem{
			article: domain.RawArticle{
				ID:         articleID(item.Link),
				Title:      title,
				URL:        item.Link,
				AuthorName: authorName(item),
			},
			published: published,
		})
	}
	return items, nil
}

func isTransportFailure(err error) bool {
	var httpErr gofeed.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= http.StatusInternalServerError
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// allFailed reports an error only when no feed succeeded. Connectivity wins
// over parse failures so the service can fall back.
func allFailed(failures []error) error {
	var connectivity []error
	for _, err := range failures {
		if err == nil {
			return nil
		}
		if domain.IsConnectivity(err) {
			connectivity = append(connectivity, err)
		}
	}
	if len(connectivity) > 0 {
		return fmt.Errorf("all feeds failed: %w", errors.Join(connectivity...))
	}
	return fmt.Errorf("all feeds failed: %w", errors.Join(failures...))
}

func authorName(item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return strings.TrimSpace(item.Author.Name)
	}
	for _, person := range item.Authors {
		if person != nil && person.Name != "" {
			return strings.TrimSpace(person.Name)
		}
	}
	return ""
}

func articleID(link string) string {
	h := sha256.Sum256([]byte(link))
	return fmt.Sprintf("%x", h[:16])
}
