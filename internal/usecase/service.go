package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ArticlesAggregator/internal/async"
	"ArticlesAggregator/internal/domain"
	"ArticlesAggregator/internal/ports"
)

// DefaultBatchSize is the batch requested when Deps.Count is not set.
const DefaultBatchSize = 5

var errNoArticleSource = errors.New("article source is not configured")

// ServiceDeps wires all driven adapters into the aggregation service.
type ServiceDeps struct {
	Articles ports.ArticleSource
	Authors  ports.AuthorSource
	// Cache is shared by both fetch paths; a fresh cache is created when nil.
	Cache    *FallbackCache
	Notifier ports.Notifier
	IDs      ports.IDGenerator
	// Count is the batch size requested from the article source on every read.
	Count       int
	Parallelism int
	Logger      *slog.Logger
	Clock       func() time.Time
}

// Service aggregates articles with their authors and serves the last good batch
// when the article source is unreachable.
type Service struct {
	articles ports.ArticleSource
	enricher *Enricher
	cache    *FallbackCache
	notifier ports.Notifier
	ids      ports.IDGenerator
	count    int
	logger   *slog.Logger
	clock    func() time.Time
}

// NewService constructs the aggregation service.
func NewService(deps ServiceDeps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	cache := deps.Cache
	if cache == nil {
		cache = NewFallbackCache()
	}
	ids := deps.IDs
	if ids == nil {
		ids = TimestampIDs{Clock: clock}
	}
	count := deps.Count
	if count <= 0 {
		count = DefaultBatchSize
	}

	return &Service{
		articles: deps.Articles,
		enricher: NewEnricher(deps.Authors, deps.Parallelism, logger),
		cache:    cache,
		notifier: deps.Notifier,
		ids:      ids,
		count:    count,
		logger:   logger,
		clock:    clock,
	}
}

// Count returns the batch size requested from the article source.
func (s *Service) Count() int {
	return s.count
}

// Cache exposes the fallback cache shared by both fetch paths.
func (s *Service) Cache() *FallbackCache {
	return s.cache
}

// FetchArticles lists and enriches a batch on the calling goroutine.
//
// A connectivity failure of the article source is absorbed: the last good batch
// (or an empty one) is returned with a nil error. Other failures are returned.
func (s *Service) FetchArticles(ctx context.Context) ([]domain.DisplayArticle, error) {
	if s.articles == nil {
		return nil, errNoArticleSource
	}

	raws, err := s.articles.List(ctx, s.count)
	return s.complete(ctx, domain.PathBlocking, raws, err)
}

// FetchArticlesAsync starts a fetch and returns without waiting for the article source.
// The returned future follows the same enrichment and fallback rules as FetchArticles.
func (s *Service) FetchArticlesAsync(ctx context.Context) *async.Future[[]domain.DisplayArticle] {
	if s.articles == nil {
		return async.Resolved[[]domain.DisplayArticle](nil, errNoArticleSource)
	}

	var pending *async.Future[[]domain.RawArticle]
	if source, ok := s.articles.(ports.AsyncArticleSource); ok {
		pending = source.ListAsync(ctx, s.count)
	} else {
		pending = async.Go(func() ([]domain.RawArticle, error) {
			return s.articles.List(ctx, s.count)
		})
	}

	return async.Then(pending, func(raws []domain.RawArticle, err error) ([]domain.DisplayArticle, error) {
		return s.complete(ctx, domain.PathAsync, raws, err)
	})
}

// AddArticle validates and persists a new article.
// Missing url or author default to "Unknown"; an empty title is rejected.
func (s *Service) AddArticle(ctx context.Context, title, url, author string) (domain.RawArticle, error) {
	if strings.TrimSpace(title) == "" {
		return domain.RawArticle{}, fmt.Errorf("add article: %w: title is required", domain.ErrInvalidInput)
	}
	if s.articles == nil {
		return domain.RawArticle{}, errNoArticleSource
	}
	if strings.TrimSpace(url) == "" {
		url = domain.UnknownValue
	}
	if strings.TrimSpace(author) == "" {
		author = domain.UnknownValue
	}

	article := domain.RawArticle{
		ID:         s.ids.NewID(),
		Title:      title,
		URL:        url,
		AuthorName: author,
	}

	saved, err := s.articles.Add(ctx, article)
	if err != nil {
		if domain.IsConnectivity(err) {
			s.logger.Error("cannot reach article source", "operation", "add", "article", article.ID, "error", err)
			return domain.RawArticle{}, fmt.Errorf("add article %s: %w: %w", article.ID, domain.ErrSourceUnavailable, err)
		}
		return domain.RawArticle{}, fmt.Errorf("add article %s: %w", article.ID, err)
	}

	return saved, nil
}

// complete is the shared tail of both fetch paths.
func (s *Service) complete(ctx context.Context, path domain.FetchPath, raws []domain.RawArticle, err error) ([]domain.DisplayArticle, error) {
	if err != nil {
		if domain.IsConnectivity(err) {
			return s.fallback(ctx, path, err), nil
		}
		return nil, fmt.Errorf("list articles: %w", err)
	}

	batch := s.enricher.EnrichAll(ctx, raws)
	s.cache.Store(batch)
	s.logger.Debug("articles fetched", "path", path, "count", len(batch))

	return batch, nil
}

func (s *Service) fallback(ctx context.Context, path domain.FetchPath, cause error) []domain.DisplayArticle {
	batch, ok := s.cache.Snapshot()
	if !ok {
		batch = []domain.DisplayArticle{}
	}

	s.logger.Warn("serving fallback articles",
		"path", path,
		"served", len(batch),
		"stale", ok,
		"error", cause)

	if s.notifier != nil {
		event := domain.FallbackEvent{
			Path:       path,
			Cause:      cause,
			Served:     len(batch),
			Stale:      ok,
			OccurredAt: s.clock(),
		}
		if err := s.notifier.NotifyFallback(ctx, event); err != nil {
			s.logger.Warn("notify fallback", "error", err)
		}
	}

	return batch
}
