// Package httpsource talks to remote articles and authors services over JSON/HTTP.
package httpsource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ArticlesAggregator/internal/async"
	"ArticlesAggregator/internal/domain"
	"ArticlesAggregator/internal/ports"
)

const (
	articlesUpstream = "articles-service"
	authorsUpstream  = "authors-service"
	defaultTimeout   = 10 * time.Second
)

// statusError is a non-2xx response that is not a connectivity failure.
type statusError struct {
	status string
	body   string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return "unexpected status " + e.status
	}
	return "unexpected status " + e.status + ": " + e.body
}

type client struct {
	baseURL  string
	upstream string
	http     *http.Client
}

func newClient(baseURL, upstream string, httpClient *http.Client) client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		upstream: upstream,
		http:     httpClient,
	}
}

// do sends one request and decodes a JSON response into v.
// Transport failures and 5xx responses are reported as connectivity errors.
func (c client) do(ctx context.Context, operation, method, path string, query url.Values, payload, v any) (int, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return 0, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, domain.UpstreamError(c.upstream, operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return resp.StatusCode, domain.NewConnectivityError(c.upstream, operation, readStatusError(resp))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, readStatusError(resp)
	}

	if v == nil {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

func readStatusError(resp *http.Response) error {
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return &statusError{status: resp.Status, body: strings.TrimSpace(string(payload))}
}

// ArticlesClient implements the article source against a remote articles service.
type ArticlesClient struct {
	client
}

var (
	_ ports.ArticleSource      = (*ArticlesClient)(nil)
	_ ports.AsyncArticleSource = (*ArticlesClient)(nil)
)

// NewArticlesClient builds a client; a nil httpClient gets a 10s timeout default.
func NewArticlesClient(baseURL string, httpClient *http.Client) *ArticlesClient {
	return &ArticlesClient{client: newClient(baseURL, articlesUpstream, httpClient)}
}

// List fetches up to count articles via GET /articles?amount=N.
func (c *ArticlesClient) List(ctx context.Context, count int) ([]domain.RawArticle, error) {
	query := url.Values{}
	query.Set("amount", strconv.Itoa(count))

	var articles []domain.RawArticle
	if _, err := c.do(ctx, "list", http.MethodGet, "/articles", query, nil, &articles); err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	if articles == nil {
		articles = []domain.RawArticle{}
	}
	return articles, nil
}

// ListAsync runs List on its own goroutine.
func (c *ArticlesClient) ListAsync(ctx context.Context, count int) *async.Future[[]domain.RawArticle] {
	return async.Go(func() ([]domain.RawArticle, error) {
		return c.List(ctx, count)
	})
}

// Add posts the article via POST /articles and returns the stored record.
func (c *ArticlesClient) Add(ctx context.Context, article domain.RawArticle) (domain.RawArticle, error) {
	var stored domain.RawArticle
	if _, err := c.do(ctx, "add", http.MethodPost, "/articles", nil, article, &stored); err != nil {
		return domain.RawArticle{}, fmt.Errorf("add article: %w", err)
	}
	if stored.ID == "" {
		stored = article
	}
	return stored, nil
}

// AuthorsClient implements the author source against a remote authors service.
type AuthorsClient struct {
	client
}

var _ ports.AuthorSource = (*AuthorsClient)(nil)

// NewAuthorsClient builds a client; a nil httpClient gets a 10s timeout default.
func NewAuthorsClient(baseURL string, httpClient *http.Client) *AuthorsClient {
	return &AuthorsClient{client: newClient(baseURL, authorsUpstream, httpClient)}
}

// Lookup fetches author metadata via GET /authors?name=X; 404 maps to domain.ErrAuthorNotFound.
func (c *AuthorsClient) Lookup(ctx context.Context, name string) (domain.AuthorInfo, error) {
	query := url.Values{}
	query.Set("name", name)

	var author domain.AuthorInfo
	status, err := c.do(ctx, "lookup", http.MethodGet, "/authors", query, nil, &author)
	if status == http.StatusNotFound {
		return domain.AuthorInfo{}, fmt.Errorf("lookup %q: %w", name, domain.ErrAuthorNotFound)
	}
	if err != nil {
		return domain.AuthorInfo{}, fmt.Errorf("lookup %q: %w", name, err)
	}
	return author, nil
}
