package worker

import (
	"fmt"
	"log/slog"
	"time"

	"haberozet/internal/domain/entity"
	"haberozet/internal/pkg/config"
)

// WorkerConfig controls the scheduled digest worker.
//
// Environment variables:
//   - DIGEST_CRON: five-field cron expression (default: "*/30 * * * *")
//   - DIGEST_TIMEZONE: IANA timezone of the schedule (default: "Europe/Istanbul")
//   - DIGEST_FEEDS: comma-separated RSS/Atom URLs (default: none)
//   - DIGEST_PARALLELISM: items summarized at once, 1-32 (default: 4)
//   - DIGEST_SENTENCES: summary length, 1-10 (default: 3)
//   - DIGEST_METHOD: tfidf|textrank|abstractive (default: textrank)
//   - DIGEST_TIMEOUT: bound of one run, 1m-4h (default: 30m)
//   - NOTIFY_MAX_CONCURRENT: notification sends in flight, 1-50 (default: 10)
//   - WORKER_HEALTH_PORT: health server port, 1024-65535 (default: 9091)
//   - METRICS_PORT: metrics server port, 1024-65535 (default: 9090)
type WorkerConfig struct {
	CronSchedule        string
	Timezone            string
	Feeds               []string
	Parallelism         int
	Sentences           int
	Method              entity.Method
	RunTimeout          time.Duration
	NotifyMaxConcurrent int
	HealthPort          int
	MetricsPort         int
}

// DefaultConfig runs every half hour, Istanbul time, with no feeds.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:        "*/30 * * * *",
		Timezone:            "Europe/Istanbul",
		Parallelism:         4,
		Sentences:           3,
		Method:              entity.MethodTextRank,
		RunTimeout:          30 * time.Minute,
		NotifyMaxConcurrent: 10,
		HealthPort:          9091,
		MetricsPort:         9090,
	}
}

// Validate reports every invalid field at once.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	for _, feed := range c.Feeds {
		if err := config.ValidateFeedURL(feed); err != nil {
			errs = append(errs, fmt.Errorf("feeds: %w", err))
		}
	}
	if err := config.ValidateIntRange(c.Parallelism, 1, 32); err != nil {
		errs = append(errs, fmt.Errorf("parallelism: %w", err))
	}
	if err := config.ValidateIntRange(c.Sentences, 1, 10); err != nil {
		errs = append(errs, fmt.Errorf("sentences: %w", err))
	}
	if err := validateMethod(string(c.Method)); err != nil {
		errs = append(errs, fmt.Errorf("method: %w", err))
	}
	if err := config.ValidateDuration(c.RunTimeout, time.Minute, 4*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("run timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.NotifyMaxConcurrent, 1, 50); err != nil {
		errs = append(errs, fmt.Errorf("notify max concurrent: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := config.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}
	if c.HealthPort == c.MetricsPort {
		errs = append(errs, fmt.Errorf("health and metrics ports must differ"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

func validateMethod(name string) error {
	if _, ok := entity.LookupMethod(name); !ok {
		return fmt.Errorf("unknown summarization method %q", name)
	}
	return nil
}

// LoadConfigFromEnv never fails: each rejected value falls back to its
// default, is logged and is counted in metrics.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) *WorkerConfig {
	cfg := DefaultConfig()
	fallback := false

	note := func(field string, warnings []string, applied bool) {
		if !applied {
			return
		}
		fallback = true
		metrics.RecordFallback(field)
		for _, w := range warnings {
			logger.Warn("configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", w))
		}
	}

	schedule := config.LoadEnvString("DIGEST_CRON", cfg.CronSchedule, config.ValidateCronSchedule)
	cfg.CronSchedule = schedule.Value
	note("cron_schedule", schedule.Warnings, schedule.FallbackApplied)

	tz := config.LoadEnvString("DIGEST_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = tz.Value
	note("timezone", tz.Warnings, tz.FallbackApplied)

	feeds := config.LoadEnvList("DIGEST_FEEDS", cfg.Feeds, config.ValidateFeedURL)
	cfg.Feeds = feeds.Value
	note("feeds", feeds.Warnings, feeds.FallbackApplied)

	parallelism := config.LoadEnvInt("DIGEST_PARALLELISM", cfg.Parallelism, func(v int) error {
		return config.ValidateIntRange(v, 1, 32)
	})
	cfg.Parallelism = parallelism.Value
	note("parallelism", parallelism.Warnings, parallelism.FallbackApplied)

	sentences := config.LoadEnvInt("DIGEST_SENTENCES", cfg.Sentences, func(v int) error {
		return config.ValidateIntRange(v, 1, 10)
	})
	cfg.Sentences = sentences.Value
	note("sentences", sentences.Warnings, sentences.FallbackApplied)

	method := config.LoadEnvString("DIGEST_METHOD", string(cfg.Method), validateMethod)
	cfg.Method = entity.ParseMethod(method.Value)
	note("method", method.Warnings, method.FallbackApplied)

	timeout := config.LoadEnvDuration("DIGEST_TIMEOUT", cfg.RunTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, time.Minute, 4*time.Hour)
	})
	cfg.RunTimeout = timeout.Value
	note("run_timeout", timeout.Warnings, timeout.FallbackApplied)

	notifyMax := config.LoadEnvInt("NOTIFY_MAX_CONCURRENT", cfg.NotifyMaxConcurrent, func(v int) error {
		return config.ValidateIntRange(v, 1, 50)
	})
	cfg.NotifyMaxConcurrent = notifyMax.Value
	note("notify_max_concurrent", notifyMax.Warnings, notifyMax.FallbackApplied)

	port := func(v int) error { return config.ValidateIntRange(v, 1024, 65535) }

	health := config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, port)
	cfg.HealthPort = health.Value
	note("health_port", health.Warnings, health.FallbackApplied)

	metricsPort := config.LoadEnvInt("METRICS_PORT", cfg.MetricsPort, port)
	cfg.MetricsPort = metricsPort.Value
	note("metrics_port", metricsPort.Warnings, metricsPort.FallbackApplied)

	if cfg.HealthPort == cfg.MetricsPort {
		def := DefaultConfig()
		logger.Warn("health and metrics ports collide, using defaults",
			slog.Int("port", cfg.HealthPort))
		cfg.HealthPort, cfg.MetricsPort = def.HealthPort, def.MetricsPort
		note("ports", nil, true)
	}

	metrics.SetFallbackActive(fallback)
	metrics.RecordLoadTimestamp()
	return &cfg
}
