// Package app wires the storefront service: storage, events, services,
// handlers, and the HTTP server lifecycle.
package app

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/soletrade/storefront/internal/cart"
	"github.com/soletrade/storefront/internal/catalog"
	"github.com/soletrade/storefront/internal/checkout"
	"github.com/soletrade/storefront/internal/config"
	"github.com/soletrade/storefront/internal/event"
	handler "github.com/soletrade/storefront/internal/handler/http"
	"github.com/soletrade/storefront/internal/repository/postgres"
	"github.com/soletrade/storefront/internal/repository/redis"
	"github.com/soletrade/storefront/pkg/database"
	"github.com/soletrade/storefront/pkg/health"
	"github.com/soletrade/storefront/pkg/kafka"
	"github.com/soletrade/storefront/pkg/tracing"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// App holds the wired storefront service and its resources.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	pool     *pgxpool.Pool
	redis    *goredis.Client
	producer *kafka.Producer

	server          *http.Server
	tracingShutdown func(context.Context) error
}

// New builds the application: connects storage, runs migrations, and wires
// services and handlers.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	tracingShutdown, err := tracing.InitTracer(ctx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := database.RunMigrations(ctx, pool, migrationsFS, "migrations", logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	var (
		producer *kafka.Producer
		events   event.Publisher = event.NopPublisher{}
	)
	if cfg.KafkaEnabled {
		producer = kafka.NewProducer(kafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		events = event.NewKafkaPublisher(producer, logger)
	}

	productRepo := postgres.NewProductRepository(pool)
	cartRepo := redis.NewCartRepository(redisClient, cfg.CartTTL)

	catalogSvc := catalog.NewService(productRepo, events, logger)
	cartSvc := cart.NewService(cartRepo, productRepo, events, logger)
	checkoutSvc := checkout.NewService(cartRepo, productRepo, events, logger)

	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	if producer != nil {
		healthHandler.Register("kafka", producer.Ping)
	}

	router := handler.NewRouter(handler.RouterDeps{
		Products: handler.NewProductHandler(catalogSvc, logger),
		Cart:     handler.NewCartHandler(cartSvc, logger),
		Checkout: handler.NewCheckoutHandler(checkoutSvc, logger),
		Health:   healthHandler,
		Logger:   logger,
		Service:  cfg.ServiceName,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		pool:            pool,
		redis:           redisClient,
		producer:        producer,
		server:          server,
		tracingShutdown: tracingShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until ctx is canceled, then shuts
// down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown", slog.String("error", err.Error()))
	}

	a.close(shutdownCtx)

	return nil
}

func (a *App) close(ctx context.Context) {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close", slog.String("error", err.Error()))
		}
	}
	if err := a.redis.Close(); err != nil {
		a.logger.Error("redis close", slog.String("error", err.Error()))
	}
	a.pool.Close()
	if err := a.tracingShutdown(ctx); err != nil {
		a.logger.Error("tracing shutdown", slog.String("error", err.Error()))
	}
}
