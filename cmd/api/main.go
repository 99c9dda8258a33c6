package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"haberozet/internal/config"
	hhttp "haberozet/internal/handler/http"
	hdigest "haberozet/internal/handler/http/digest"
	"haberozet/internal/handler/http/requestid"
	hsummary "haberozet/internal/handler/http/summary"
	pgRepo "haberozet/internal/infra/adapter/persistence/postgres"
	"haberozet/internal/infra/cache"
	"haberozet/internal/infra/cleaner"
	"haberozet/internal/infra/db"
	"haberozet/internal/infra/fetcher"
	"haberozet/internal/infra/summarizer"
	"haberozet/internal/nlp/token"
	"haberozet/internal/observability/logging"
	"haberozet/internal/observability/metrics"
	"haberozet/internal/observability/tracing"
	"haberozet/internal/resilience/circuitbreaker"
	"haberozet/internal/usecase/fetch"
	"haberozet/internal/usecase/summarize"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.Log.Format, logging.ParseLevel(cfg.Log.Level))
	slog.SetDefault(logger)

	shutdownTracing := tracing.InitProvider(tracing.ProviderConfig{
		ServiceName:    "haberozet-api",
		ServiceVersion: cfg.Version,
		SampleRatio:    cfg.TraceSampleRatio,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	database := initDatabase(ctx, logger, cfg)
	if database != nil {
		defer func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close database", slog.Any("error", err))
			}
		}()
		go reportDBStats(ctx, database)
	}

	backend := initBackend(ctx, logger, cfg)
	svc := summarize.NewService(token.Default(), backend, newCache(cfg), summarize.Config{
		DefaultMethod: cfg.Summary.DefaultMethod,
		TextRank:      summarize.DefaultConfig().TextRank,
	})

	var limiter *hhttp.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = hhttp.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	mux := setupRoutes(logger, cfg, svc, initFetcher(logger), database, backend, limiter)
	handler := applyMiddleware(logger, cfg, mux, limiter)

	runServer(ctx, logger, cfg, handler)

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracer shutdown failed", slog.Any("error", err))
	}
}

// initDatabase opens the digest store when DATABASE_URL is set. Without it the
// API serves summaries only.
func initDatabase(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) *sql.DB {
	if cfg.DatabaseURL == "" {
		logger.Info("DATABASE_URL not set, digest endpoints disabled")
		return nil
	}
	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(ctx, database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

func reportDBStats(ctx context.Context, database *sql.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := database.Stats()
			metrics.UpdateDBConnectionStats(stats.InUse, stats.Idle)
		}
	}
}

// initBackend loads the abstractive generator in the background so that a
// slow or failing provider never delays startup. Until it is ready the
// abstractive method reports itself unavailable.
func initBackend(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) *summarize.Backend {
	genCfg, err := summarizer.LoadConfigFromEnv()
	if err != nil {
		logger.Warn("abstractive summarization disabled", slog.Any("error", err))
		return nil
	}
	backend := summarizer.NewBackend(genCfg, cfg.TokenBudget)
	if backend == nil {
		logger.Info("abstractive summarization disabled")
		return nil
	}
	go func() {
		if err := backend.Init(ctx); err != nil {
			logger.Error("abstractive backend unavailable", slog.Any("error", err))
		}
	}()
	logger.Info("abstractive summarization enabled", slog.String("provider", genCfg.Provider))
	return backend
}

func newCache(cfg *config.AppConfig) summarize.Cache {
	if cfg.Summary.CacheSize <= 0 {
		return nil
	}
	return cache.NewSummaryLRU(cfg.Summary.CacheSize, cfg.Summary.CacheTTL)
}

func initFetcher(logger *slog.Logger) fetch.ArticleFetcher {
	fetchCfg, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		logger.Error("invalid content fetch configuration, url input disabled", slog.Any("error", err))
		return nil
	}
	return fetcher.NewReadabilityFetcher(fetchCfg, cleaner.Default())
}

func setupRoutes(
	logger *slog.Logger,
	cfg *config.AppConfig,
	svc *summarize.Service,
	articles fetch.ArticleFetcher,
	database *sql.DB,
	backend *summarize.Backend,
	limiter *hhttp.RateLimiter,
) *http.ServeMux {
	mux := http.NewServeMux()

	hsummary.Register(mux, svc, articles, cfg.Summary.DefaultSentences, logger)
	if database != nil {
		repo := pgRepo.NewDigestRepo(circuitbreaker.NewDBCircuitBreaker(database))
		hdigest.Register(mux, repo, logger)
	}

	mux.Handle("GET /health", &hhttp.HealthHandler{
		DB:      database,
		Backend: backend,
		Limiter: limiter,
		Version: cfg.Version,
	})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{DB: database})
	mux.Handle("GET /live", hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())
	return mux
}

// applyMiddleware wraps handler, outermost first: request ID, tracing,
// logging, panic recovery, metrics, rate limiting, timeout, body limit.
func applyMiddleware(logger *slog.Logger, cfg *config.AppConfig, handler http.Handler, limiter *hhttp.RateLimiter) http.Handler {
	h := hhttp.LimitRequestBody(cfg.Server.MaxBodyBytes)(handler)
	h = hhttp.Timeout(cfg.Server.RequestTimeout)(h)
	if limiter != nil {
		h = limiter.Limit(h)
	}
	h = hhttp.MetricsMiddleware(h)
	h = hhttp.Recover(logger)(h)
	h = hhttp.Logging(logger)(h)
	h = tracing.Middleware(h)
	return requestid.Middleware(h)
}

// runServer blocks until SIGINT or SIGTERM, then drains in-flight requests.
func runServer(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig, handler http.Handler) {
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 5*time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.Server.Addr),
			slog.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
