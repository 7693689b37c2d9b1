package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iho/pocketledger/internal/adapter/event"
	httpAdapter "github.com/iho/pocketledger/internal/adapter/http"
	"github.com/iho/pocketledger/internal/adapter/http/handler"
	"github.com/iho/pocketledger/internal/adapter/http/middleware"
	"github.com/iho/pocketledger/internal/adapter/report"
	"github.com/iho/pocketledger/internal/adapter/repository"
	"github.com/iho/pocketledger/internal/aggregation"
	"github.com/iho/pocketledger/internal/infrastructure/auth"
	"github.com/iho/pocketledger/internal/infrastructure/config"
	"github.com/iho/pocketledger/internal/infrastructure/eventpublisher"
	"github.com/iho/pocketledger/internal/infrastructure/logger"
	"github.com/iho/pocketledger/internal/infrastructure/metrics"
	"github.com/iho/pocketledger/internal/infrastructure/retry"
	"github.com/iho/pocketledger/internal/usecase"
)

const limiterCleanupInterval = 10 * time.Minute

func main() {
	// A missing .env file is fine; the environment may be set already.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

// run serves until ctx is cancelled, then shuts down gracefully.
func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewWithRegisterer(reg)

	backend, err := repository.NewFactory(log).Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close storage backend")
		}
	}()

	sink, closeSink, err := newEventSink(cfg, log)
	if err != nil {
		return err
	}
	defer closeSink()

	dispatcher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		Sink:    sink,
		Metrics: m,
		Logger:  log,
	})

	app, err := newApp(cfg, backend, dispatcher, m, reg, log)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      app.router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Str("storage", backend.Name).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		if err := dispatcher.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return app.limiter.RunCleanup(gctx, limiterCleanupInterval)
	})

	return g.Wait()
}

type app struct {
	router  http.Handler
	limiter *middleware.RateLimiter
}

// newApp wires use cases and handlers over an open backend.
func newApp(
	cfg *config.Config,
	backend *repository.Backend,
	publisher usecase.EventPublisher,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	log zerolog.Logger,
) (*app, error) {
	order, err := aggregation.ParseSeriesOrder(cfg.MonthlySeriesOrder)
	if err != nil {
		return nil, err
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	idGen := repository.NewULIDGenerator()
	retrier := retry.NewRetrier(log)

	credentialUC := usecase.NewCredentialUseCase(usecase.CredentialDeps{
		UserRepo:  backend.Users,
		Sessions:  backend.Sessions,
		Hasher:    auth.NewBcryptHasher(cfg.BcryptCost),
		Tokens:    jwtManager,
		IDGen:     idGen,
		Publisher: publisher,
		Metrics:   m,
		Logger:    log,
	})
	ledgerUC := usecase.NewLedgerUseCase(backend.Ledgers, idGen, retrier, publisher, m, log)
	summaryUC := usecase.NewSummaryUseCase(backend.Ledgers, usecase.SummaryConfig{
		Cache:    backend.Cache,
		CacheTTL: cfg.SummaryCacheTTL,
		Order:    order,
		Metrics:  m,
		Logger:   log,
	})
	reportUC := usecase.NewReportUseCase(backend.Ledgers, backend.Users, report.NewPDFRenderer(), m)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AuthHandler:        handler.NewAuthHandler(credentialUC),
		TransactionHandler: handler.NewTransactionHandler(ledgerUC),
		SummaryHandler:     handler.NewSummaryHandler(summaryUC),
		ReportHandler:      handler.NewReportHandler(reportUC),
		HealthHandler:      handler.NewHealthHandler(backend, backend.Name),
		TokenVerifier:      jwtManager,
		RateLimiter:        limiter,
		IdempotencyStore:   backend.Idempotency,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		Metrics:            m,
		MetricsHandler:     promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
		Logger:             log,
	})

	return &app{router: router, limiter: limiter}, nil
}

// newEventSink publishes to RabbitMQ when AMQP_URL is set and to the log
// otherwise.
func newEventSink(cfg *config.Config, log zerolog.Logger) (eventpublisher.Sink, func(), error) {
	if cfg.AMQPURL == "" {
		log.Info().Msg("AMQP_URL not set, events are only logged")
		return eventpublisher.NewLogPublisher(log), func() {}, nil
	}

	publisher, err := event.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to amqp: %w", err)
	}

	return publisher, func() {
		if err := publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close amqp publisher")
		}
	}, nil
}
