package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"budgetbook/internal/cache"
	"budgetbook/internal/config"
	"budgetbook/internal/database"
	"budgetbook/internal/middleware"
	"budgetbook/internal/models"
	"budgetbook/internal/repositories"
	"budgetbook/internal/server"
	"budgetbook/internal/services"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

const tokenCleanupInterval = time.Hour

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped gracefully")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Initialize(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	userRepo := repositories.NewUserRepository(db.DB)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db.DB)
	blacklistRepo := repositories.NewBlacklistedTokenRepository(db.DB)
	transactionRepo := repositories.NewTransactionRepository(db.DB)
	summaryRepo := repositories.NewMonthlySummaryRepository(db.DB)

	metrics := services.NewPrometheusMetrics(prometheus.DefaultRegisterer)
	tokenService := services.NewTokenService(&cfg.JWT)
	authService := services.NewAuthService(
		userRepo,
		refreshTokenRepo,
		blacklistRepo,
		services.NewPasswordService(&cfg.Security),
		tokenService,
		metrics,
		&cfg.Security,
		logger,
	)
	summaryService := services.NewSummaryService(summaryRepo, transactionRepo, metrics, logger)
	transactionService := services.NewTransactionService(transactionRepo, summaryService, metrics, logger)

	quoteCache := cache.New[models.Quote](cache.WithDefaultTTL(cfg.Quote.CacheTTL))
	breaker := services.NewQuoteCircuitBreaker(cfg.Quote.BreakerMaxFailures, cfg.Quote.BreakerResetTimeout, metrics, logger)
	quoteService := services.NewQuoteService(
		services.NewYahooQuoteProvider(&cfg.Quote, logger),
		quoteCache,
		cfg.Quote.CacheTTL,
		breaker,
		metrics,
		logger,
	)

	rateLimiter := middleware.NewIPRateLimiter(cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitBurst)

	e := server.New(cfg, server.Dependencies{
		Auth:         authService,
		Tokens:       tokenService,
		Blacklist:    blacklistRepo,
		Transactions: transactionService,
		Summaries:    summaryService,
		Quotes:       quoteService,
		Database:     db,
		RateLimiter:  rateLimiter,
		Gatherer:     prometheus.DefaultGatherer,
	}, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      e,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server", "addr", srv.Addr, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		rateLimiter.Run(gctx)
		return nil
	})

	g.Go(func() error {
		runPeriodically(gctx, tokenCleanupInterval, func(ctx context.Context) {
			removed, err := db.CleanupExpiredTokens(ctx)
			if err != nil {
				logger.Error("expired token cleanup failed", "error", err)
				return
			}
			logger.Info("expired tokens removed", "count", removed)
		})
		return nil
	})

	return g.Wait()
}

func runPeriodically(ctx context.Context, interval time.Duration, fn func(ctx context.Context)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}
