package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"haberozet/internal/handler/http/respond"
	"haberozet/internal/usecase/digest"
)

// DigestRunner is implemented by digest.Service.
type DigestRunner interface {
	Run(ctx context.Context, feedURLs []string) (*digest.RunStats, error)
}

// Job is the cron.Job that runs one digest over the configured feeds.
type Job struct {
	runner  DigestRunner
	feeds   []string
	timeout time.Duration
	metrics *WorkerMetrics
	logger  *slog.Logger
	health  *HealthServer // optional
	baseCtx context.Context
}

// NewJob binds runner to the feeds and timeout of cfg. Runs are canceled
// when ctx is.
func NewJob(ctx context.Context, runner DigestRunner, cfg *WorkerConfig, metrics *WorkerMetrics, health *HealthServer, logger *slog.Logger) *Job {
	return &Job{
		runner:  runner,
		feeds:   cfg.Feeds,
		timeout: cfg.RunTimeout,
		metrics: metrics,
		logger:  logger,
		health:  health,
		baseCtx: ctx,
	}
}

// Run implements cron.Job.
func (j *Job) Run() {
	j.RunOnce(j.baseCtx)
}

// RunOnce runs a digest synchronously and records its outcome.
func (j *Job) RunOnce(ctx context.Context) {
	if len(j.feeds) == 0 {
		j.metrics.RecordJobRun("skipped")
		j.logger.Warn("digest skipped: no feeds configured")
		return
	}

	start := time.Now()
	j.metrics.RecordJobRun("started")
	j.logger.Info("digest started", slog.Int("feeds", len(j.feeds)))

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	stats, err := j.runner.Run(ctx, j.feeds)
	j.metrics.RecordJobDuration(time.Since(start).Seconds())
	if j.health != nil {
		j.health.RecordRun(stats, err)
	}
	if err != nil {
		j.metrics.RecordJobRun("failure")
		j.logger.Error("digest failed", slog.String("error", respond.SanitizeError(err)))
		return
	}

	j.metrics.RecordJobRun("success")
	j.metrics.RecordFeedsProcessed(stats.Feeds)
	j.metrics.RecordLastSuccess()

	j.logger.Info("digest completed",
		slog.String("run_id", stats.RunID),
		slog.Int("feeds", stats.Feeds),
		slog.Int64("feed_errors", stats.FeedErrors),
		slog.Int64("items", stats.Items),
		slog.Int64("stored", stats.Stored),
		slog.Int64("duplicates", stats.Duplicates),
		slog.Int64("failed", stats.Failed),
		slog.Duration("duration", stats.Duration),
	)
}

// NewScheduler returns a stopped cron scheduler in the configured timezone.
// A run that is still in progress when the next tick fires makes that tick
// a no-op.
func NewScheduler(cfg *WorkerConfig, logger *slog.Logger) (*cron.Cron, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	cl := cronLogger{logger: logger}
	return cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	), nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]any{slog.Any("error", err)}, keysAndValues...)...)
}
