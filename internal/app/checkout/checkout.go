package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/redis/go-redis/v9"

	"github.com/kseleznyov/crypto-checkout/internal/addresspool"
	"github.com/kseleznyov/crypto-checkout/internal/brand"
	"github.com/kseleznyov/crypto-checkout/internal/config"
	"github.com/kseleznyov/crypto-checkout/internal/lib/sl"
	"github.com/kseleznyov/crypto-checkout/internal/migrations"
	"github.com/kseleznyov/crypto-checkout/internal/rabbitmq"
	"github.com/kseleznyov/crypto-checkout/internal/ratecache"
	"github.com/kseleznyov/crypto-checkout/internal/ratefeed"
	services "github.com/kseleznyov/crypto-checkout/internal/services/checkout"
	"github.com/kseleznyov/crypto-checkout/internal/session"
	"github.com/kseleznyov/crypto-checkout/internal/storage"
)

// App — собранный сервис оформления.
type App struct {
	server  *http.Server
	logger  *slog.Logger
	db      *storage.Storage
	rates   *ratecache.Cache
	service *services.CheckoutService
	cfg     *config.Config
}

// New собирает все зависимости сервиса по конфигурации.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	brands, err := brand.Load(cfg.BrandsPath)
	if err != nil {
		return nil, err
	}

	leaser, err := newLeaser(ctx, cfg)
	if err != nil {
		return nil, err
	}

	pool, err := newPool(cfg, leaser)
	if err != nil {
		return nil, err
	}

	feed := ratefeed.NewClient(cfg.FeedURL, cfg.FeedTimeout)
	rates := ratecache.New(feed, brands.FeedIDs(), cfg.RefreshInterval, cfg.Freshness, logger)

	conn, err := rabbitmq.Connect(cfg.RabbitConnectionString, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetCheckoutQueues())
	if err != nil {
		return nil, err
	}
	publisher := rabbitmq.NewCheckoutPublisher(ch)

	checkoutService := services.NewCheckoutService(brands, rates, pool, db, publisher, session.Options{
		Window:        cfg.Window,
		NarrationTick: cfg.NarrationInterval,
	}, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, checkoutService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:  srv,
		logger:  logger,
		db:      db,
		rates:   rates,
		service: checkoutService,
		cfg:     cfg,
	}, nil
}

// newLeaser выбирает хранилище аренд адресов: Redis для нескольких реплик,
// иначе память процесса.
func newLeaser(ctx context.Context, cfg *config.Config) (addresspool.Leaser, error) {
	if !cfg.RedisConnection.Enabled {
		return addresspool.NewMemoryLeaser(cfg.Window), nil
	}

	const op = "app.checkout.newLeaser"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.RedisConnection.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})
	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return addresspool.NewRedisLeaser(db, cfg.Window), nil
}

// newPool выбирает источник адресов: внешний сервис выдачи либо статические
// пулы из конфигурационного файла.
func newPool(cfg *config.Config, leaser addresspool.Leaser) (session.AddressProvider, error) {
	if cfg.AddressServiceURL != "" {
		return addresspool.NewRemote(cfg.AddressServiceURL, cfg.AddressTimeout), nil
	}
	return addresspool.LoadPools(cfg.PoolsPath, leaser)
}

// Run запускает HTTP-сервер, фоновый опрос курсов и уборщика сессий,
// останавливая всё по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	go a.rates.Run(ctx)
	go a.service.RunJanitor(ctx, a.cfg.SessionTTL, a.cfg.JanitorInterval)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.db.Close(); closeErr != nil {
			a.logger.Error("failed to close storage", sl.Err(closeErr))
		}
		return err
	}
}
