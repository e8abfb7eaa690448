package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"

	"ArticlesAggregator/internal/domain"
	"ArticlesAggregator/internal/ports"
)

const upstreamName = "sqlite"

const schema = `
CREATE TABLE IF NOT EXISTS articles (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	url        TEXT NOT NULL,
	author     TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_articles_created ON articles(created_at DESC);

CREATE TABLE IF NOT EXISTS authors (
	name    TEXT PRIMARY KEY,
	blog    TEXT NOT NULL DEFAULT '',
	twitter TEXT NOT NULL DEFAULT ''
);
`

// SQLiteStore persists articles and authors in a local SQLite database.
type SQLiteStore struct {
	db    *sql.DB
	clock func() time.Time
}

var (
	_ ports.ArticleSource = (*SQLiteStore)(nil)
	_ ports.AuthorSource  = (*SQLiteStore)(nil)
)

// Open creates the data directory if needed, opens the database and applies the schema.
func Open(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma journal_mode: %w", err)
	}

	store := NewSQLiteStore(db)
	if err := store.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLiteStore wires an already opened sql.DB.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, clock: time.Now}
}

// Migrate applies the schema; it is idempotent.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// List returns the newest count articles, newest first.
func (s *SQLiteStore) List(ctx context.Context, count int) ([]domain.RawArticle, error) {
	query, args, err := sq.Select("id", "title", "url", "author").
		From("articles").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(max(count, 0))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.UpstreamError(upstreamName, "list", err)
	}
	defer rows.Close()

	articles := make([]domain.RawArticle, 0, max(count, 0))
	for rows.Next() {
		var article domain.RawArticle
		if err := rows.Scan(&article.ID, &article.Title, &article.URL, &article.AuthorName); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.UpstreamError(upstreamName, "list", err)
	}

	return articles, nil
}

// Add inserts a new article.
func (s *SQLiteStore) Add(ctx context.Context, article domain.RawArticle) (domain.RawArticle, error) {
	query, args, err := sq.Insert("articles").
		Columns("id", "title", "url", "author", "created_at").
		Values(article.ID, article.Title, article.URL, article.AuthorName, s.clock().UTC()).
		ToSql()
	if err != nil {
		return domain.RawArticle{}, fmt.Errorf("build insert query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return domain.RawArticle{}, fmt.Errorf("insert article %s: %w", article.ID, err)
		}
		return domain.RawArticle{}, domain.UpstreamError(upstreamName, "add", err)
	}
	return article, nil
}

// Lookup returns the author stored under name.
func (s *SQLiteStore) Lookup(ctx context.Context, name string) (domain.AuthorInfo, error) {
	query, args, err := sq.Select("name", "blog", "twitter").
		From("authors").
		Where(sq.Eq{"name": name}).
		ToSql()
	if err != nil {
		return domain.AuthorInfo{}, fmt.Errorf("build lookup query: %w", err)
	}

	var author domain.AuthorInfo
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&author.Name, &author.Blog, &author.Twitter)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AuthorInfo{}, fmt.Errorf("lookup %q: %w", name, domain.ErrAuthorNotFound)
	}
	if err != nil {
		return domain.AuthorInfo{}, domain.UpstreamError(upstreamName, "lookup", err)
	}
	return author, nil
}

// SaveAuthor upserts author metadata.
func (s *SQLiteStore) SaveAuthor(ctx context.Context, author domain.AuthorInfo) error {
	query, args, err := sq.Insert("authors").
		Columns("name", "blog", "twitter").
		Values(author.Name, author.Blog, author.Twitter).
		Suffix("ON CONFLICT(name) DO UPDATE SET blog = excluded.blog, twitter = excluded.twitter").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert author %s: %w", author.Name, err)
	}
	return nil
}
