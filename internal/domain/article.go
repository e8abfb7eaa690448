package domain

import "time"

// UnknownValue replaces missing optional article fields on the write path.
const UnknownValue = "Unknown"

// RawArticle is an article record as returned by the upstream article source.
type RawArticle struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	AuthorName string `json:"author"`
}

// AuthorInfo is the author metadata keyed by author name.
type AuthorInfo struct {
	Name    string `json:"name"`
	Blog    string `json:"blog"`
	Twitter string `json:"twitter"`
}

// DisplayArticle is a raw article enriched with author metadata.
// AuthorBlog and AuthorTwitter are empty when author data is unavailable.
type DisplayArticle struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	URL           string `json:"url"`
	AuthorName    string `json:"authorName"`
	AuthorBlog    string `json:"authorBlog"`
	AuthorTwitter string `json:"authorTwitter"`
}

// FetchPath names the call path that produced a batch.
type FetchPath string

const (
	PathBlocking FetchPath = "blocking"
	PathAsync    FetchPath = "async"
)

// FallbackEvent describes one read that was served from the fallback cache.
type FallbackEvent struct {
	Path  FetchPath
	Cause error
	// Served is the number of cached articles handed to the caller.
	Served int
	// Stale is false when the cache had never been filled and an empty batch was served.
	Stale      bool
	OccurredAt time.Time
}
