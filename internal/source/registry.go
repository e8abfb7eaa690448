// Package source resolves configured backend names into article and author sources.
package source

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"ArticlesAggregator/internal/config"
	"ArticlesAggregator/internal/infrastructure/feed"
	"ArticlesAggregator/internal/infrastructure/httpsource"
	"ArticlesAggregator/internal/infrastructure/parser"
	"ArticlesAggregator/internal/infrastructure/storage"
	"ArticlesAggregator/internal/ports"
)

// ArticleFactory builds an article source from shared resources.
type ArticleFactory func(res *Resources) (ports.ArticleSource, error)

// AuthorFactory builds an author source from shared resources.
type AuthorFactory func(res *Resources) (ports.AuthorSource, error)

// Registry keeps a mapping from backend names to source factories.
type Registry struct {
	articles map[string]ArticleFactory
	authors  map[string]AuthorFactory
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		articles: map[string]ArticleFactory{},
		authors:  map[string]AuthorFactory{},
	}
}

// Default returns a registry with every built-in backend registered.
func Default() *Registry {
	r := NewRegistry()

	r.RegisterArticles(config.BackendSQLite, func(res *Resources) (ports.ArticleSource, error) {
		return res.SQLite()
	})
	r.RegisterArticles(config.BackendHTTP, func(res *Resources) (ports.ArticleSource, error) {
		if res.Config.Articles.URL == "" {
			return nil, fmt.Errorf("articles backend %s requires a url", config.BackendHTTP)
		}
		return httpsource.NewArticlesClient(res.Config.Articles.URL, res.HTTPClient), nil
	})
	r.RegisterArticles(config.BackendArxiv, func(res *Resources) (ports.ArticleSource, error) {
		categories := make([]parser.Category, 0, len(res.Config.Articles.Categories))
		for _, c := range res.Config.Articles.Categories {
			categories = append(categories, parser.Category{Name: c.Name, URL: c.URL})
		}
		return parser.NewArxivSource(res.HTTPClient, categories, res.Logger.With("component", "arxiv")), nil
	})
	r.RegisterArticles(config.BackendRSS, func(res *Resources) (ports.ArticleSource, error) {
		return feed.NewRSSSource(res.Config.Articles.Feeds, res.HTTPClient, res.Logger.With("component", "rss")), nil
	})

	r.RegisterAuthors(config.BackendSQLite, func(res *Resources) (ports.AuthorSource, error) {
		return res.SQLite()
	})
	r.RegisterAuthors(config.BackendHTTP, func(res *Resources) (ports.AuthorSource, error) {
		if res.Config.Authors.URL == "" {
			return nil, fmt.Errorf("authors backend %s requires a url", config.BackendHTTP)
		}
		return httpsource.NewAuthorsClient(res.Config.Authors.URL, res.HTTPClient), nil
	})

	return r
}

// RegisterArticles adds or replaces an article backend.
func (r *Registry) RegisterArticles(name string, factory ArticleFactory) {
	r.articles[name] = factory
}

// RegisterAuthors adds or replaces an author backend.
func (r *Registry) RegisterAuthors(name string, factory AuthorFactory) {
	r.authors[name] = factory
}

// ArticleBackends lists registered article backend names, sorted.
func (r *Registry) ArticleBackends() []string {
	names := make([]string, 0, len(r.articles))
	for name := range r.articles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build resolves the backends named in res.Config.
func (r *Registry) Build(res *Resources) (ports.ArticleSource, ports.AuthorSource, error) {
	articleFactory, ok := r.articles[res.Config.Articles.Backend]
	if !ok {
		return nil, nil, fmt.Errorf("articles backend %q is not registered", res.Config.Articles.Backend)
	}
	authorFactory, ok := r.authors[res.Config.Authors.Backend]
	if !ok {
		return nil, nil, fmt.Errorf("authors backend %q is not registered", res.Config.Authors.Backend)
	}

	articles, err := articleFactory(res)
	if err != nil {
		return nil, nil, fmt.Errorf("build articles backend %s: %w", res.Config.Articles.Backend, err)
	}
	authors, err := authorFactory(res)
	if err != nil {
		return nil, nil, fmt.Errorf("build authors backend %s: %w", res.Config.Authors.Backend, err)
	}
	return articles, authors, nil
}

// Resources are shared between factories. The SQLite store is opened at most once.
type Resources struct {
	Config     config.Config
	HTTPClient *http.Client
	Logger     *slog.Logger

	mu     sync.Mutex
	sqlite *storage.SQLiteStore
}

func NewResources(cfg config.Config, httpClient *http.Client, logger *slog.Logger) *Resources {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resources{Config: cfg, HTTPClient: httpClient, Logger: logger}
}

// SQLite opens the configured database on first use.
func (r *Resources) SQLite() (*storage.SQLiteStore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sqlite != nil {
		return r.sqlite, nil
	}
	store, err := storage.Open(r.Config.Database.Path)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("sqlite store opened", "path", r.Config.Database.Path)
	r.sqlite = store
	return store, nil
}

// Close releases whatever the factories opened.
func (r *Resources) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sqlite == nil {
		return nil
	}
	err := r.sqlite.Close()
	r.sqlite = nil
	return err
}
