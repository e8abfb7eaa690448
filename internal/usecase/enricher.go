package usecase

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"ArticlesAggregator/internal/domain"
	"ArticlesAggregator/internal/ports"
)

const defaultParallelism = 4

var errNoAuthorSource = errors.New("author source is not configured")

// AuthorStatus classifies the result of one author lookup.
type AuthorStatus int

const (
	AuthorFound AuthorStatus = iota
	AuthorMissing
	AuthorUnreachable
	AuthorFailed
)

func (s AuthorStatus) String() string {
	switch s {
	case AuthorFound:
		return "found"
	case AuthorMissing:
		return "missing"
	case AuthorUnreachable:
		return "unreachable"
	default:
		return "failed"
	}
}

// AuthorOutcome is the explicit result of an author lookup.
type AuthorOutcome struct {
	Status AuthorStatus
	Author domain.AuthorInfo
	Err    error
}

// ResolveAuthor looks up name and folds the error into an outcome value.
func ResolveAuthor(ctx context.Context, authors ports.AuthorSource, name string) AuthorOutcome {
	if authors == nil {
		return AuthorOutcome{Status: AuthorUnreachable, Err: errNoAuthorSource}
	}

	info, err := authors.Lookup(ctx, name)
	switch {
	case err == nil:
		return AuthorOutcome{Status: AuthorFound, Author: info}
	case errors.Is(err, domain.ErrAuthorNotFound):
		return AuthorOutcome{Status: AuthorMissing, Err: err}
	case domain.IsConnectivity(err):
		return AuthorOutcome{Status: AuthorUnreachable, Err: err}
	default:
		return AuthorOutcome{Status: AuthorFailed, Err: err}
	}
}

// Enrich builds the display article for raw. Author fields stay empty unless the author was found.
func Enrich(raw domain.RawArticle, outcome AuthorOutcome) domain.DisplayArticle {
	article := domain.DisplayArticle{
		ID:         raw.ID,
		Title:      raw.Title,
		URL:        raw.URL,
		AuthorName: raw.AuthorName,
	}
	if outcome.Status == AuthorFound {
		article.AuthorBlog = outcome.Author.Blog
		article.AuthorTwitter = outcome.Author.Twitter
	}
	return article
}

// Enricher runs the enrichment pass over a batch of raw articles.
type Enricher struct {
	authors     ports.AuthorSource
	parallelism int
	logger      *slog.Logger
}

// NewEnricher wires the author source; parallelism <= 0 falls back to 4 concurrent lookups.
func NewEnricher(authors ports.AuthorSource, parallelism int, logger *slog.Logger) *Enricher {
	if parallelism <= 0 {
		parallelism = defaultParallelism
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Enricher{authors: authors, parallelism: parallelism, logger: logger}
}

// EnrichAll returns one display article per raw article, in input order.
// Author lookup failures only blank the author fields of the affected item.
func (e *Enricher) EnrichAll(ctx context.Context, raws []domain.RawArticle) []domain.DisplayArticle {
	out := make([]domain.DisplayArticle, len(raws))

	var g errgroup.Group
	g.SetLimit(e.parallelism)
	for i, raw := range raws {
		g.Go(func() error {
			outcome := ResolveAuthor(ctx, e.authors, raw.AuthorName)
			e.logOutcome(raw, outcome)
			out[i] = Enrich(raw, outcome)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (e *Enricher) logOutcome(raw domain.RawArticle, outcome AuthorOutcome) {
	switch outcome.Status {
	case AuthorFound:
		return
	case AuthorMissing:
		e.logger.Debug("author not found", "article", raw.ID, "author", raw.AuthorName)
	default:
		e.logger.Warn("cannot enrich article with author",
			"article", raw.ID,
			"author", raw.AuthorName,
			"status", outcome.Status.String(),
			"error", outcome.Err)
	}
}
