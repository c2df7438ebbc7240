// Package ratecache хранит последний снимок курсов и обновляет его в фоне.
//
// Кеш один на процесс. Чтение никогда не блокируется обновлением: отдаётся
// последний снимок, даже устаревший (stale-but-available). Параллельные
// вызовы Refresh схлопываются в один исходящий запрос через singleflight.
package ratecache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kseleznyov/crypto-checkout/internal/lib/sl"
	"github.com/kseleznyov/crypto-checkout/internal/metrics"
	"github.com/kseleznyov/crypto-checkout/internal/models"
)

// Feed описывает клиент внешнего прайс-фида.
type Feed interface {
	FetchRates(ctx context.Context, feedIDs []string) (map[string]float64, error)
}

// Cache — процессный кеш курсов с фоновым обновлением.
type Cache struct {
	feed      Feed
	feedIDs   []string
	interval  time.Duration
	freshness time.Duration
	log       *slog.Logger
	now       func() time.Time

	group singleflight.Group

	mu       sync.RWMutex
	snapshot *models.RateSnapshot
}

// New создает кеш курсов. interval — период фонового опроса фида,
// freshness — окно, после которого снимок считается устаревшим и чтение
// инициирует внеочередное фоновое обновление.
func New(feed Feed, feedIDs []string, interval, freshness time.Duration, log *slog.Logger) *Cache {
	return &Cache{
		feed:      feed,
		feedIDs:   feedIDs,
		interval:  interval,
		freshness: freshness,
		log:       log,
		now:       time.Now,
	}
}

// Run запускает фоновый цикл обновления до отмены контекста.
func (c *Cache) Run(ctx context.Context) {
	if _, err := c.Refresh(ctx); err != nil {
		c.log.Error("initial rate refresh failed", sl.Err(err))
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("rate cache refresher stopped")
			return
		case <-ticker.C:
			if _, err := c.Refresh(ctx); err != nil {
				c.log.Error("rate refresh failed, serving last snapshot", sl.Err(err))
			}
		}
	}
}

// Refresh опрашивает фид и замещает снимок. Повторные одновременные вызовы
// не порождают второй исходящий запрос. При ошибке прежний снимок остаётся
// доступным без ограничения срока.
func (c *Cache) Refresh(ctx context.Context) (*models.RateSnapshot, error) {
	const op = "ratecache.Refresh"

	v, err, _ := c.group.Do("refresh", func() (any, error) {
		rates, err := c.feed.FetchRates(ctx, c.feedIDs)
		if err != nil {
			metrics.RateRefreshFailuresTotal.Inc()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		snap := &models.RateSnapshot{Rates: rates, TakenAt: c.now()}

		c.mu.Lock()
		c.snapshot = snap
		c.mu.Unlock()

		metrics.RateSnapshotAgeSeconds.Set(0)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.RateSnapshot), nil
}

// Rate возвращает последний известный курс актива. Никогда не блокируется:
// если снимок устарел, обновление уходит в фон, а вызвавшему отдаётся
// прежнее значение.
func (c *Cache) Rate(feedID string) (float64, bool) {
	snap := c.Snapshot()
	if snap != nil && snap.Age(c.now()) > c.freshness {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), c.interval)
			defer cancel()
			if _, err := c.Refresh(ctx); err != nil {
				c.log.Warn("background rate refresh failed", sl.Err(err))
			}
		}()
	}
	return snap.Rate(feedID)
}

// Snapshot возвращает последний снимок курсов (может быть nil до первого
// успешного обновления).
func (c *Cache) Snapshot() *models.RateSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot != nil {
		metrics.RateSnapshotAgeSeconds.Set(c.snapshot.Age(c.now()).Seconds())
	}
	return c.snapshot
}
