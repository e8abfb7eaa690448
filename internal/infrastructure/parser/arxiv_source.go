package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ArticlesAggregator/internal/domain"
	"ArticlesAggregator/internal/ports"
)

const (
	arxivBaseURL  = "https://arxiv.org"
	arxivUpstream = "arxiv"
)

// Category is one listing page to crawl, e.g. https://export.arxiv.org/list/cs.AI/pastweek.
type Category struct {
	Name string
	URL  string
}

// ArxivSource lists the newest entries of arXiv category pages as raw articles.
// The first listed author of each entry becomes the article author.
type ArxivSource struct {
	client     *http.Client
	categories []Category
	pageSize   int
	logger     *slog.Logger
}

var _ ports.ArticleSource = (*ArxivSource)(nil)

// NewArxivSource wires an HTTP client; pageSize defaults to 200.
func NewArxivSource(client *http.Client, categories []Category, logger *slog.Logger) *ArxivSource {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ArxivSource{client: client, categories: categories, pageSize: 200, logger: logger}
}

// List walks the configured categories in order until count unique entries are collected.
func (a *ArxivSource) List(ctx context.Context, count int) ([]domain.RawArticle, error) {
	if len(a.categories) == 0 {
		return nil, fmt.Errorf("arxiv: no categories configured")
	}

	results := make([]domain.RawArticle, 0, max(count, 0))
	seen := map[string]struct{}{}

	for _, cat := range a.categories {
		skip := 0
		for len(results) < count {
			pageURL, err := buildPageURL(cat.URL, skip, a.pageSize)
			if err != nil {
				return nil, fmt.Errorf("category %s: %w", cat.Name, err)
			}

			doc, err := a.fetchDocument(ctx, pageURL)
			if err != nil {
				return nil, fmt.Errorf("category %s: %w", cat.Name, err)
			}

			entries := extractArticles(doc)
			a.logger.Debug("arxiv page parsed", "category", cat.Name, "skip", skip, "entries", len(entries))

			for _, article := range entries {
				if _, ok := seen[article.ID]; ok {
					continue
				}
				seen[article.ID] = struct{}{}
				results = append(results, article)
				if len(results) == count {
					break
				}
			}

			if len(entries) < a.pageSize {
				break
			}
			skip += a.pageSize
		}
		if len(results) >= count {
			break
		}
	}

	return results, nil
}

// Add is not supported: arXiv listings are read-only.
func (a *ArxivSource) Add(context.Context, domain.RawArticle) (domain.RawArticle, error) {
	return domain.RawArticle{}, fmt.Errorf("arxiv: %w", domain.ErrReadOnlySource)
}

func (a *ArxivSource) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "ArticlesAggregator/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, domain.UpstreamError(arxivUpstream, "list", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewConnectivityError(arxivUpstream, "list", fmt.Errorf("arxiv returned %s", resp.Status))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func extractArticles(doc *goquery.Document) []domain.RawArticle {
	var collected []domain.RawArticle

	doc.Find("dl > dt").Each(func(i int, dt *goquery.Selection) {
		article, ok := parseEntry(dt, dt.Next())
		if ok {
			collected = append(collected, article)
		}
	})

	return collected
}

func parseEntry(dt, dd *goquery.Selection) (domain.RawArticle, bool) {
	link := dt.Find("a[href*=\"/abs/\"]").First()
	href, _ := link.Attr("href")

	id := strings.TrimSpace(link.Text())
	if id == "" {
		id = strings.TrimPrefix(href, "/abs/")
	}

	if href != "" && !strings.HasPrefix(href, "http") {
		href = strings.TrimSuffix(arxivBaseURL, "/") + href
	}
	if id == "" {
		id = href
	}

	title := strings.TrimSpace(dd.Find(".list-title").First().Text())
	title = strings.TrimPrefix(title, "Title:")
	title = strings.TrimSpace(title)

	author := strings.TrimSpace(dd.Find(".list-authors a").First().Text())

	if id == "" || title == "" {
		return domain.RawArticle{}, false
	}

	return domain.RawArticle{
		ID:         id,
		Title:      title,
		URL:        href,
		AuthorName: author,
	}, true
}

func buildPageURL(base string, skip, pageSize int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid category url %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("skip", strconv.Itoa(skip))
	query.Set("show", strconv.Itoa(pageSize))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
