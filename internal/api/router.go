// Package api exposes the aggregation service over HTTP with gin.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ArticlesAggregator/internal/async"
	"ArticlesAggregator/internal/domain"
)

const requestIDHeader = "X-Request-ID"

// ArticleService is the subset of the aggregation service served over HTTP.
type ArticleService interface {
	FetchArticles(ctx context.Context) ([]domain.DisplayArticle, error)
	FetchArticlesAsync(ctx context.Context) *async.Future[[]domain.DisplayArticle]
	AddArticle(ctx context.Context, title, url, author string) (domain.RawArticle, error)
}

// Deps wires the router.
type Deps struct {
	Service    ArticleService
	APIVersion string
	BatchSize  int
	Logger     *slog.Logger
	Clock      func() time.Time
	// CacheUpdatedAt reports when the fallback cache was last refreshed; optional.
	CacheUpdatedAt func() time.Time
}

// NewRouter builds the gin engine with CORS, request IDs and request logging.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", requestIDHeader}
	corsConfig.ExposeHeaders = []string{requestIDHeader}
	router.Use(cors.New(corsConfig))

	router.Use(requestID(), requestLog(deps.Logger))

	h := &handler{service: deps.Service, logger: deps.Logger}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/articles", h.list)
		v1.GET("/articles/reactive", h.listReactive)
		v1.POST("/articles", h.add)
		v1.GET("/health", func(c *gin.Context) {
			body := gin.H{
				"status":     "healthy",
				"apiVersion": deps.APIVersion,
				"batchSize":  deps.BatchSize,
				"timestamp":  deps.Clock().UTC(),
			}
			if deps.CacheUpdatedAt != nil {
				if at := deps.CacheUpdatedAt(); !at.IsZero() {
					body["cacheUpdatedAt"] = at.UTC()
				}
			}
			c.JSON(http.StatusOK, body)
		})
	}

	return router
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"request_id", c.GetString("requestID"),
		)
	}
}
