package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ArticlesAggregator/internal/api"
	"ArticlesAggregator/internal/config"
	"ArticlesAggregator/internal/domain"
	"ArticlesAggregator/internal/infrastructure/scheduler"
	"ArticlesAggregator/internal/infrastructure/telegram"
	"ArticlesAggregator/internal/logging"
	"ArticlesAggregator/internal/ports"
	"ArticlesAggregator/internal/source"
	"ArticlesAggregator/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	resources *source.Resources
	service   *usecase.Service
	warmer    *usecase.Warmer
	router    http.Handler
}

// New resolves the configured backends and builds the service, warmer and HTTP router.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	return NewWithRegistry(cfg, baseLogger, source.Default())
}

// NewWithRegistry is New with a caller-supplied backend registry.
func NewWithRegistry(cfg config.Config, baseLogger *slog.Logger, registry *source.Registry) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	httpClient := &http.Client{Timeout: 15 * time.Second}
	resources := source.NewResources(cfg, httpClient, baseLogger.With("component", "source"))

	articles, authors, err := registry.Build(resources)
	if err != nil {
		_ = resources.Close()
		return nil, fmt.Errorf("resolve sources: %w", err)
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.Enabled() {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	service := usecase.NewService(usecase.ServiceDeps{
		Articles:    articles,
		Authors:     authors,
		Notifier:    notifier,
		Count:       cfg.API.BatchSize(),
		Parallelism: cfg.Enrichment.Parallelism,
		Logger:      baseLogger.With("component", "service"),
	})

	warmer := usecase.NewWarmer(
		scheduler.NewTickerScheduler(cfg.Scheduler.Interval()),
		service,
		baseLogger.With("component", "warmer"),
	)

	router := api.NewRouter(api.Deps{
		Service:        service,
		APIVersion:     cfg.API.Version,
		BatchSize:      service.Count(),
		Logger:         baseLogger.With("component", "api"),
		CacheUpdatedAt: service.Cache().UpdatedAt,
	})

	baseLogger.Info("application configured",
		"api_version", cfg.API.Version,
		"batch_size", service.Count(),
		"articles_backend", cfg.Articles.Backend,
		"authors_backend", cfg.Authors.Backend,
		"notifier", notifier != nil,
	)

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		resources: resources,
		service:   service,
		warmer:    warmer,
		router:    router,
	}, nil
}

// Service exposes the aggregation service for one-shot commands.
func (a *Application) Service() *usecase.Service {
	return a.service
}

// Handler returns the HTTP API.
func (a *Application) Handler() http.Handler {
	return a.router
}

// SaveAuthor seeds author metadata into the local SQLite store.
func (a *Application) SaveAuthor(ctx context.Context, author domain.AuthorInfo) error {
	store, err := a.resources.SQLite()
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	return store.SaveAuthor(ctx, author)
}

// Serve runs the HTTP API and the cache warmer until ctx is cancelled, then shuts both down.
func (a *Application) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.API.Listen,
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if err := a.warmer.Start(ctx); err != nil {
		return fmt.Errorf("start warmer: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		a.logger.Info("http api listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown requested")
	case serveErr = <-errCh:
		a.logger.Error("http api stopped", "error", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown", "error", err)
	}
	if err := a.warmer.Stop(shutdownCtx); err != nil {
		a.logger.Error("warmer shutdown", "error", err)
	}
	<-errCh

	a.logger.Info("servers stopped")
	return serveErr
}

// Close releases opened backends.
func (a *Application) Close() error {
	return a.resources.Close()
}
