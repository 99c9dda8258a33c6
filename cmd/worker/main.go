package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"haberozet/internal/domain/entity"
	pgRepo "haberozet/internal/infra/adapter/persistence/postgres"
	"haberozet/internal/infra/cache"
	"haberozet/internal/infra/cleaner"
	"haberozet/internal/infra/db"
	"haberozet/internal/infra/fetcher"
	"haberozet/internal/infra/notifier"
	"haberozet/internal/infra/scraper"
	"haberozet/internal/infra/summarizer"
	workerPkg "haberozet/internal/infra/worker"
	"haberozet/internal/nlp/token"
	"haberozet/internal/observability/logging"
	"haberozet/internal/observability/metrics"
	"haberozet/internal/repository"
	"haberozet/internal/resilience/circuitbreaker"
	"haberozet/internal/usecase/digest"
	fetchUC "haberozet/internal/usecase/fetch"
	"haberozet/internal/usecase/notify"
	"haberozet/internal/usecase/summarize"
	pkgconfig "haberozet/pkg/config"
)

func main() {
	_ = godotenv.Load()

	logger := logging.New(os.Stdout,
		pkgconfig.GetEnvString("LOG_FORMAT", "json"),
		logging.ParseLevel(pkgconfig.GetEnvString("LOG_LEVEL", "info")))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database := initDatabase(ctx, logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics(prometheus.DefaultRegisterer)
	workerConfig := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("feeds", len(workerConfig.Feeds)),
		slog.Int("parallelism", workerConfig.Parallelism),
		slog.String("method", string(workerConfig.Method)),
		slog.Duration("run_timeout", workerConfig.RunTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	notifyService := setupNotifications(logger, workerConfig)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := notifyService.Shutdown(shutdownCtx); err != nil {
			logger.Warn("notification shutdown incomplete", slog.Any("error", err))
		}
	}()

	startMetricsServer(ctx, logger, workerConfig.MetricsPort)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, notifyService, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	repo := pgRepo.NewDigestRepo(circuitbreaker.NewDBCircuitBreaker(database))
	svc := setupDigestService(ctx, logger, repo, notifyService, workerConfig)

	startCronWorker(ctx, logger, &countingRunner{svc: svc, repo: repo, logger: logger}, workerConfig, workerMetrics, healthServer)
}

// initDatabase opens the digest store and applies pending migrations.
func initDatabase(ctx context.Context, logger *slog.Logger) *sql.DB {
	database, err := db.Open(ctx, os.Getenv("DATABASE_URL"))
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

func setupNotifications(logger *slog.Logger, cfg *workerPkg.WorkerConfig) notify.Service {
	var channels []notify.Channel

	if discordConfig := loadDiscordConfig(logger); discordConfig.Enabled {
		channels = append(channels, notify.NewDiscordChannel(discordConfig))
		logger.Info("Discord channel initialized", slog.String("status", "enabled"))
	} else {
		logger.Info("Discord channel disabled")
	}

	if slackConfig := loadSlackConfig(logger); slackConfig.Enabled {
		channels = append(channels, notify.NewSlackChannel(slackConfig))
		logger.Info("Slack channel initialized", slog.String("status", "enabled"))
	} else {
		logger.Info("Slack channel disabled")
	}

	logger.Info("Notification service initialized",
		slog.Int("channels", len(channels)),
		slog.Int("max_concurrent", cfg.NotifyMaxConcurrent))
	return notify.NewService(channels, cfg.NotifyMaxConcurrent)
}

// setupDigestService wires feed reading, article download and summarization
// into the digest pipeline.
func setupDigestService(
	ctx context.Context,
	logger *slog.Logger,
	repo repository.DigestRepository,
	notifyService notify.Service,
	cfg *workerPkg.WorkerConfig,
) *digest.Service {
	feedReader := scraper.NewRSSReader(createHTTPClient())

	var articles fetchUC.ArticleFetcher
	fetchConfig, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		logger.Warn("invalid content fetch configuration, article download disabled", slog.Any("error", err))
	} else {
		articles = fetcher.NewReadabilityFetcher(fetchConfig, cleaner.Default())
		logger.Info("Content fetching enabled",
			slog.Int("min_content_length", fetchConfig.MinContentLength),
			slog.Duration("timeout", fetchConfig.Timeout))
	}

	summarizeConfig := summarize.DefaultConfig()
	summarizeConfig.DefaultMethod = cfg.Method
	summarizeSvc := summarize.NewService(
		token.Default(),
		createBackend(ctx, logger, cfg.Method),
		cache.NewSummaryLRU(pkgconfig.GetEnvInt("SUMMARY_CACHE_SIZE", 256), pkgconfig.GetEnvDuration("SUMMARY_CACHE_TTL", time.Hour)),
		summarizeConfig,
	)

	return digest.NewService(feedReader, articles, summarizeSvc, repo, notifyService, digest.Config{
		Parallelism:    cfg.Parallelism,
		Sentences:      cfg.Sentences,
		Method:         cfg.Method,
		FetchThreshold: pkgconfig.GetEnvInt("CONTENT_FETCH_THRESHOLD", digest.DefaultConfig().FetchThreshold),
	})
}

// createBackend loads the abstractive generator when the digest method needs it.
// A worker configured for abstractive digests without a generator falls back
// to TextRank on every item.
func createBackend(ctx context.Context, logger *slog.Logger, method entity.Method) *summarize.Backend {
	if method != entity.MethodAbstractive {
		return nil
	}
	genConfig, err := summarizer.LoadConfigFromEnv()
	if err != nil {
		logger.Warn("abstractive summarization disabled", slog.Any("error", err))
		return nil
	}
	backend := summarizer.NewBackend(genConfig, pkgconfig.GetEnvInt("ABSTRACTIVE_TOKEN_BUDGET", 512))
	if backend == nil {
		return nil
	}
	if err := backend.Init(ctx); err != nil {
		logger.Error("abstractive backend unavailable", slog.Any("error", err))
	}
	return backend
}

// createHTTPClient creates the feed HTTP client. TLS 1.2+ is enforced.
func createHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

// countingRunner refreshes the stored digest gauge after every run.
type countingRunner struct {
	svc    *digest.Service
	repo   repository.DigestRepository
	logger *slog.Logger
}

func (r *countingRunner) Run(ctx context.Context, feeds []string) (*digest.RunStats, error) {
	stats, err := r.svc.Run(ctx, feeds)
	if n, countErr := r.repo.Count(ctx); countErr == nil {
		metrics.UpdateDigestsTotal(int(n))
	} else {
		r.logger.Warn("failed to count digests", slog.Any("error", countErr))
	}
	return stats, err
}

// loadDiscordConfig reads DISCORD_ENABLED and DISCORD_WEBHOOK_URL. An enabled
// channel with a webhook outside https://discord.com/api/webhooks/ is disabled.
func loadDiscordConfig(logger *slog.Logger) notifier.DiscordConfig {
	if !pkgconfig.GetEnvBool("DISCORD_ENABLED", false) {
		return notifier.DiscordConfig{Enabled: false}
	}
	webhookURL := os.Getenv("DISCORD_WEBHOOK_URL")
	if !validWebhook(logger, "Discord", webhookURL, "discord.com", "/api/webhooks/") {
		return notifier.DiscordConfig{Enabled: false}
	}
	return notifier.DiscordConfig{
		Enabled:    true,
		WebhookURL: webhookURL,
		Timeout:    30 * time.Second,
	}
}

// loadSlackConfig reads SLACK_ENABLED and SLACK_WEBHOOK_URL. An enabled
// channel with a webhook outside https://hooks.slack.com/services/ is disabled.
func loadSlackConfig(logger *slog.Logger) notifier.SlackConfig {
	if !pkgconfig.GetEnvBool("SLACK_ENABLED", false) {
		return notifier.SlackConfig{Enabled: false}
	}
	webhookURL := os.Getenv("SLACK_WEBHOOK_URL")
	if !validWebhook(logger, "Slack", webhookURL, "hooks.slack.com", "/services/") {
		return notifier.SlackConfig{Enabled: false}
	}
	return notifier.SlackConfig{
		Enabled:    true,
		WebhookURL: webhookURL,
		Timeout:    30 * time.Second,
	}
}

func validWebhook(logger *slog.Logger, name, webhookURL, host, pathPrefix string) bool {
	if webhookURL == "" {
		logger.Warn(name + " webhook URL is empty, disabling notifications")
		return false
	}
	u, err := url.Parse(webhookURL)
	if err != nil {
		logger.Warn("Invalid "+name+" webhook URL format, disabling notifications", slog.Any("error", err))
		return false
	}
	if u.Scheme != "https" {
		logger.Warn(name + " webhook URL must use HTTPS, disabling notifications")
		return false
	}
	if u.Host != host {
		logger.Warn("Invalid "+name+" webhook host, disabling notifications", slog.String("host", u.Host))
		return false
	}
	if !strings.HasPrefix(u.Path, pathPrefix) {
		logger.Warn("Invalid "+name+" webhook path, disabling notifications", slog.String("path", u.Path))
		return false
	}
	return true
}

// startCronWorker schedules the digest job and blocks until ctx is canceled.
func startCronWorker(
	ctx context.Context,
	logger *slog.Logger,
	runner workerPkg.DigestRunner,
	cfg *workerPkg.WorkerConfig,
	workerMetrics *workerPkg.WorkerMetrics,
	healthServer *workerPkg.HealthServer,
) {
	c, err := workerPkg.NewScheduler(cfg, logger)
	if err != nil {
		logger.Error("failed to create scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	job := workerPkg.NewJob(ctx, runner, cfg, workerMetrics, healthServer, logger)
	if _, err := c.AddJob(cfg.CronSchedule, job); err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))

	<-ctx.Done()
	healthServer.SetReady(false)
	logger.Info("worker stopping, waiting for running digest")
	<-c.Stop().Done()
	logger.Info("worker stopped")
}
