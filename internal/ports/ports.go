package ports

import (
	"context"
	"time"

	"ArticlesAggregator/internal/async"
	"ArticlesAggregator/internal/domain"
)

// ArticleSource supplies and persists raw articles.
// List and Add report unreachable upstreams with errors matching domain.ErrConnectivity.
type ArticleSource interface {
	List(ctx context.Context, count int) ([]domain.RawArticle, error)
	Add(ctx context.Context, article domain.RawArticle) (domain.RawArticle, error)
}

// AsyncArticleSource is implemented by sources with a native deferred list call.
type AsyncArticleSource interface {
	ListAsync(ctx context.Context, count int) *async.Future[[]domain.RawArticle]
}

// AuthorSource resolves author metadata by name.
// Lookup fails with domain.ErrAuthorNotFound or a connectivity error.
type AuthorSource interface {
	Lookup(ctx context.Context, name string) (domain.AuthorInfo, error)
}

// Notifier receives the diagnostic signal emitted when a read is served from the fallback cache.
type Notifier interface {
	NotifyFallback(ctx context.Context, event domain.FallbackEvent) error
}

// IDGenerator issues identifiers for newly added articles.
type IDGenerator interface {
	NewID() string
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
