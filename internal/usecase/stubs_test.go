package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"ArticlesAggregator/internal/async"
	"ArticlesAggregator/internal/domain"
)

var errArticlesDown = domain.NewConnectivityError("articles-service", "list", errors.New("connection refused"))

type stubArticles struct {
	mu     sync.Mutex
	list   func(ctx context.Context, count int) ([]domain.RawArticle, error)
	add    func(ctx context.Context, article domain.RawArticle) (domain.RawArticle, error)
	counts []int
	added  []domain.RawArticle
}

func (s *stubArticles) List(ctx context.Context, count int) ([]domain.RawArticle, error) {
	s.mu.Lock()
	s.counts = append(s.counts, count)
	fn := s.list
	s.mu.Unlock()
	return fn(ctx, count)
}

func (s *stubArticles) Add(ctx context.Context, article domain.RawArticle) (domain.RawArticle, error) {
	s.mu.Lock()
	s.added = append(s.added, article)
	s.mu.Unlock()
	if s.add == nil {
		return article, nil
	}
	return s.add(ctx, article)
}

// setList swaps the list behaviour between calls.
func (s *stubArticles) setList(fn func(ctx context.Context, count int) ([]domain.RawArticle, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = fn
}

func returning(raws []domain.RawArticle, err error) func(context.Context, int) ([]domain.RawArticle, error) {
	return func(context.Context, int) ([]domain.RawArticle, error) {
		return raws, err
	}
}

// nativeAsyncArticles also implements ports.AsyncArticleSource.
type nativeAsyncArticles struct {
	stubArticles
	asyncCalls int
}

func (s *nativeAsyncArticles) ListAsync(ctx context.Context, count int) *async.Future[[]domain.RawArticle] {
	s.mu.Lock()
	s.asyncCalls++
	fn := s.list
	s.mu.Unlock()
	return async.Go(func() ([]domain.RawArticle, error) {
		return fn(ctx, count)
	})
}

type authorResult struct {
	info  domain.AuthorInfo
	err   error
	delay time.Duration
}

type stubAuthors map[string]authorResult

func (s stubAuthors) Lookup(_ context.Context, name string) (domain.AuthorInfo, error) {
	res, ok := s[name]
	if !ok {
		return domain.AuthorInfo{}, domain.ErrAuthorNotFound
	}
	if res.delay > 0 {
		time.Sleep(res.delay)
	}
	return res.info, res.err
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.FallbackEvent
	err    error
}

func (n *recordingNotifier) NotifyFallback(_ context.Context, event domain.FallbackEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.err
}

func (n *recordingNotifier) recorded() []domain.FallbackEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.FallbackEvent(nil), n.events...)
}

type fixedIDs string

func (f fixedIDs) NewID() string { return string(f) }

func scenarioRaws() []domain.RawArticle {
	return []domain.RawArticle{
		{ID: "1", Title: "A", URL: "u1", AuthorName: "bob"},
		{ID: "2", Title: "B", URL: "u2", AuthorName: "eve"},
	}
}

func scenarioAuthors() stubAuthors {
	return stubAuthors{
		"bob": {info: domain.AuthorInfo{Name: "bob", Blog: "b.com", Twitter: "@bob"}},
		"eve": {err: domain.ErrAuthorNotFound},
	}
}

func scenarioWant() []domain.DisplayArticle {
	return []domain.DisplayArticle{
		{ID: "1", Title: "A", URL: "u1", AuthorName: "bob", AuthorBlog: "b.com", AuthorTwitter: "@bob"},
		{ID: "2", Title: "B", URL: "u2", AuthorName: "eve", AuthorBlog: "", AuthorTwitter: ""},
	}
}
