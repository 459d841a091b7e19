package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kurochkindm/repetitor_bot/internal/cache"
	"github.com/kurochkindm/repetitor_bot/internal/service"
)

// Refresher управляет фоновым обновлением query-кэша
type Refresher struct {
	bookingService *service.BookingService
	store          *cache.Store
	logger         *zap.Logger
	interval       time.Duration
	stopChan       chan struct{}
}

// NewRefresher создаёт фоновый обновлятель кэша
func NewRefresher(bookingService *service.BookingService, store *cache.Store, interval time.Duration, logger *zap.Logger) *Refresher {
	return &Refresher{
		bookingService: bookingService,
		store:          store,
		logger:         logger,
		interval:       interval,
		stopChan:       make(chan struct{}),
	}
}

// Start запускает фоновое обновление
func (r *Refresher) Start(ctx context.Context) {
	r.logger.Info("Starting cache refresher", zap.Duration("interval", r.interval))
	go r.run(ctx)
}

// Stop останавливает фоновое обновление
func (r *Refresher) Stop() {
	r.logger.Info("Stopping cache refresher")
	close(r.stopChan)
}

func (r *Refresher) run(ctx context.Context) {
	// Первый прогрев сразу при старте
	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.refresh(ctx)
		case <-r.stopChan:
			r.logger.Info("Cache refresh task stopped")
			return
		case <-ctx.Done():
			r.logger.Info("Cache refresh task cancelled")
			return
		}
	}
}

// refresh сбрасывает списочные кэши и прогревает занятия текущего месяца
func (r *Refresher) refresh(ctx context.Context) {
	r.store.Invalidate(cache.KeyLessons, cache.KeyMyLessons, cache.KeyBroadcasts)

	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0)

	if _, err := r.bookingService.GetLessons(ctx, from, to); err != nil {
		r.logger.Warn("Cache warmup failed", zap.Error(err))
		return
	}

	r.logger.Debug("Cache refreshed")
}
