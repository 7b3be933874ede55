package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"farsha/internal/apiclient"
	"farsha/internal/booking"
	"farsha/internal/config"
	"farsha/internal/customer"
	"farsha/internal/database"
	"farsha/internal/domain"
	"farsha/internal/events"
	"farsha/internal/logging"
	"farsha/internal/metrics"
	"farsha/internal/partner"
	"farsha/internal/repository"
	"farsha/internal/session"
	"farsha/internal/web"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	sweepInterval = 10 * time.Minute
	// in-memory session, wizard and rate limit state idle longer than this is dropped
	idleLimit = 2 * time.Hour
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer (func() { _ = repository.Close(redisClient) })()
	}

	repo, cleanup, err := initRepository(ctx, cfg, redisClient, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	bus := events.NewEventBus()
	subscribeEventLog(bus, logger)

	client := apiclient.New(cfg.Backend, session.NewTokenSource(repo), logger)
	if redisClient != nil && cfg.Backend.CacheTTL() > 0 {
		client.UseRedisCache(redisClient, cfg.Backend.CacheTTL())
	}

	opts := session.Options{
		LoginRateLimit:  cfg.Session.LoginRateLimit,
		LoginRateWindow: cfg.Session.LoginWindow(),
	}
	customers := session.NewCustomerStore(client, repo, bus, opts, logger)
	partners := session.NewPartnerStore(client, repo, bus, opts, logger)
	client.OnUnauthorized(session.UnauthorizedHandler(customers, partners))

	bookings := booking.NewService(client, bus, cfg.Booking, logger)

	srv := web.NewServer(cfg.HTTP, web.Deps{
		Customers: customers,
		Partners:  partners,
		Booking:   bookings,
		Pages:     customer.NewService(client, bus, logger),
		Partner:   partner.NewService(client, bus, cfg.Exports, logger),
		Ready:     readiness(repo),
	}, logger)

	startMetrics(ctx, cfg, logger)
	go sweep(ctx, customers, partners, bookings, srv, logger)

	logger.Info().
		Str("backend", client.BaseURL()).
		Str("storage", cfg.Session.Storage).
		Int("http_port", cfg.HTTP.Port).
		Msg("farsha web started")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logger.Info().Msg("farsha web stopped")
	return err
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, baseLogger, closer, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		// sessions fail over to memory; the catalogue cache is skipped
		logger.Warn().Err(err).Msg("redis connection failed, continuing in degraded mode")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}
	return redisClient
}

func initRepository(ctx context.Context, cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) (domain.CredentialRepository, func(), error) {
	ttl := cfg.Session.TTL()
	noop := func() {}

	switch cfg.Session.Storage {
	case config.StorageRedis:
		if redisClient == nil {
			return nil, noop, errors.New("session storage redis without client")
		}
		repo := repository.NewFailoverCredentialRepository(
			repository.NewRedisCredentialRepository(redisClient, ttl),
			repository.NewMemoryCredentialRepository(ttl),
			repository.DefaultRecoveryPolicy,
			logging.Component(logger, "repository"),
		)
		return repo, noop, nil
	case config.StorageSQLite:
		store, err := database.NewCredentialStore(cfg.Session.SQLitePath, ttl)
		if err != nil {
			logger.Error().Err(err).Str("db_path", cfg.Session.SQLitePath).Msg("init credential store")
			return nil, noop, err
		}
		go database.NewJanitor(store, time.Hour, logging.Component(logger, "janitor")).Start(ctx)
		return store, func() { _ = store.Close() }, nil
	default:
		return repository.NewMemoryCredentialRepository(ttl), noop, nil
	}
}

func readiness(repo domain.CredentialRepository) func(context.Context) error {
	hc, ok := repo.(domain.HealthChecker)
	if !ok {
		return nil
	}
	return hc.Ping
}

func subscribeEventLog(bus *events.EventBus, logger *zerolog.Logger) {
	l := logging.Component(logger, "events")
	bus.SubscribeAll(func(e *events.Event) error {
		l.Debug().Str("type", e.Type).RawJSON("payload", e.Payload).Msg("event")
		return nil
	},
		events.EventSessionAuthenticated,
		events.EventSessionAnonymous,
		events.EventSessionExpired,
		events.EventBookingCreated,
		events.EventBookingCanceled,
		events.EventBookingRescheduled,
		events.EventBookingStatusChanged,
	)
}

func sweep(ctx context.Context, customers *session.CustomerStore, partners *session.PartnerStore, bookings *booking.Service, srv *web.Server, logger *zerolog.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := customers.Sweep(idleLimit) + partners.Sweep(idleLimit) + bookings.Sweep(idleLimit) + srv.SweepLimiters(idleLimit)
			if n > 0 {
				logger.Debug().Int("dropped", n).Msg("idle visitor state swept")
			}
		}
	}
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
