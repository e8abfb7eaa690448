package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"ArticlesAggregator/internal/domain"
)

type handler struct {
	service ArticleService
	logger  *slog.Logger
}

type addArticleRequest struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Author string `json:"author"`
}

func (h *handler) list(c *gin.Context) {
	articles, err := h.service.FetchArticles(c.Request.Context())
	if err != nil {
		h.fail(c, "list articles failed", err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

func (h *handler) listReactive(c *gin.Context) {
	ctx := c.Request.Context()
	articles, err := h.service.FetchArticlesAsync(ctx).Await(ctx)
	if err != nil {
		h.fail(c, "list articles failed", err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

func (h *handler) add(c *gin.Context) {
	var req addArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	article, err := h.service.AddArticle(c.Request.Context(), req.Title, req.URL, req.Author)
	if err != nil {
		h.fail(c, "add article failed", err)
		return
	}
	c.JSON(http.StatusCreated, article)
}

func (h *handler) fail(c *gin.Context, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(message, "error", err, "request_id", c.GetString("requestID"))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrReadOnlySource):
		return http.StatusNotImplemented
	case errors.Is(err, domain.ErrSourceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
