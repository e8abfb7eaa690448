package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ArticlesAggregator/internal/ports"
)

// Warmer refreshes the fallback cache on a schedule using the async fetch path.
type Warmer struct {
	driver  ports.Scheduler
	service *Service
	logger  *slog.Logger
}

// NewWarmer returns a helper to start/stop recurring cache refreshes.
func NewWarmer(driver ports.Scheduler, service *Service, logger *slog.Logger) *Warmer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Warmer{driver: driver, service: service, logger: logger}
}

// Start registers the refresh job with the provided scheduler.
func (w *Warmer) Start(ctx context.Context) error {
	if w.driver == nil || w.service == nil {
		return nil
	}

	job := func(trigger time.Time) {
		batch, err := w.service.FetchArticlesAsync(ctx).Await(ctx)
		if errors.Is(err, context.Canceled) {
			w.logger.Debug("refresh cancelled", "trigger", trigger)
			return
		}
		if err != nil {
			w.logger.Warn("refresh articles", "trigger", trigger, "error", err)
			return
		}
		w.logger.Debug("refreshed articles", "trigger", trigger, "count", len(batch))
	}

	return w.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (w *Warmer) Stop(ctx context.Context) error {
	if w.driver == nil {
		return nil
	}

	return w.driver.Stop(ctx)
}
