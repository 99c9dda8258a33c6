// Package digest summarizes new items of configured news feeds and stores
// the results.
package digest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"haberozet/internal/domain/entity"
	"haberozet/internal/observability/metrics"
	"haberozet/internal/repository"
	"haberozet/internal/usecase/fetch"
	"haberozet/internal/usecase/notify"
	"haberozet/internal/usecase/summarize"
)

// Summarizer is the summarization entry point used for each item.
type Summarizer interface {
	Summarize(ctx context.Context, req summarize.Request) entity.SummaryResult
}

// Config controls a digest run.
type Config struct {
	Parallelism int
	Sentences   int
	Method      entity.Method
	// FetchThreshold is the feed content length, in runes, from which the
	// article page is no longer downloaded.
	FetchThreshold int
}

// DefaultConfig summarizes four items at a time into three TextRank sentences.
func DefaultConfig() Config {
	return Config{
		Parallelism:    4,
		Sentences:      3,
		Method:         entity.MethodTextRank,
		FetchThreshold: 1500,
	}
}

// Service runs digests. Articles and Notify may be nil.
type Service struct {
	Feeds      fetch.FeedReader
	Articles   fetch.ArticleFetcher
	Summarizer Summarizer
	Repo       repository.DigestRepository
	Notify     notify.Service
	config     Config
}

func NewService(
	feeds fetch.FeedReader,
	articles fetch.ArticleFetcher,
	summarizer Summarizer,
	repo repository.DigestRepository,
	notifyService notify.Service,
	config Config,
) *Service {
	if config.Parallelism < 1 {
		config.Parallelism = 1
	}
	if config.Sentences < 1 {
		config.Sentences = DefaultConfig().Sentences
	}
	if _, ok := entity.LookupMethod(string(config.Method)); !ok {
		config.Method = entity.DefaultMethod
	}
	return &Service{
		Feeds:      feeds,
		Articles:   articles,
		Summarizer: summarizer,
		Repo:       repo,
		Notify:     notifyService,
		config:     config,
	}
}

// RunStats counts the outcome of one run.
type RunStats struct {
	RunID      string
	Feeds      int
	FeedErrors int64
	Items      int64
	Stored     int64
	Duplicates int64
	Failed     int64
	Duration   time.Duration
}

// Run processes every feed in order. Feed read failures and per-item
// summarization failures are counted and skipped; storage errors and
// cancellation abort the run.
func (s *Service) Run(ctx context.Context, feedURLs []string) (*RunStats, error) {
	start := time.Now()
	stats := &RunStats{RunID: uuid.NewString(), Feeds: len(feedURLs)}
	logger := slog.Default().With(slog.String("run_id", stats.RunID))

	defer func() {
		stats.Duration = time.Since(start)
		metrics.RecordDigestRun(stats.Duration, stats.Stored, stats.Duplicates, stats.Failed)
	}()

	for _, feedURL := range feedURLs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := s.processFeed(ctx, logger, feedURL, stats); err != nil {
			return stats, fmt.Errorf("feed %s: %w", feedURL, err)
		}
	}

	if n, err := s.Repo.Count(ctx); err == nil {
		metrics.UpdateDigestsTotal(int(n))
	}

	logger.InfoContext(ctx, "digest run completed",
		slog.Int("feeds", stats.Feeds),
		slog.Int64("feed_errors", stats.FeedErrors),
		slog.Int64("items", stats.Items),
		slog.Int64("stored", stats.Stored),
		slog.Int64("duplicates", stats.Duplicates),
		slog.Int64("failed", stats.Failed),
		slog.Duration("duration", time.Since(start)))

	return stats, nil
}

func (s *Service) processFeed(ctx context.Context, logger *slog.Logger, feedURL string, stats *RunStats) error {
	items, err := s.Feeds.Read(ctx, feedURL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		stats.FeedErrors++
		logger.WarnContext(ctx, "failed to read feed",
			slog.String("feed_url", feedURL),
			slog.Any("error", err))
		return nil
	}
	if len(items) == 0 {
		logger.InfoContext(ctx, "feed is empty", slog.String("feed_url", feedURL))
		return nil
	}

	urls := make([]string, 0, len(items))
	for _, item := range items {
		urls = append(urls, item.URL)
	}
	exists, err := s.Repo.ExistsByURLBatch(ctx, urls)
	if err != nil {
		return fmt.Errorf("check stored urls: %w", err)
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.config.Parallelism)

	for _, item := range items {
		atomic.AddInt64(&stats.Items, 1)
		if exists[item.URL] {
			atomic.AddInt64(&stats.Duplicates, 1)
			continue
		}
		eg.Go(func() error {
			return s.processItem(egCtx, logger, feedURL, item, stats)
		})
	}

	return eg.Wait()
}

func (s *Service) processItem(ctx context.Context, logger *slog.Logger, feedURL string, item fetch.FeedItem, stats *RunStats) error {
	title, text := s.content(ctx, logger, item)
	if err := ctx.Err(); err != nil {
		return err
	}

	res := s.Summarizer.Summarize(ctx, summarize.Request{
		Text:           text,
		SentenceTarget: s.config.Sentences,
		Method:         string(s.config.Method),
	})
	if res.Failed() {
		if err := ctx.Err(); err != nil {
			return err
		}
		atomic.AddInt64(&stats.Failed, 1)
		logger.WarnContext(ctx, "summarization failed, skipping item",
			slog.String("url", item.URL),
			slog.String("error", res.Error))
		return nil
	}

	method := res.Method
	if method == "" {
		method = s.config.Method
	}
	d := &entity.Digest{
		FeedURL:          feedURL,
		URL:              item.URL,
		Title:            title,
		Summary:          res.Summary,
		Method:           method,
		SentenceCount:    res.SentenceCount,
		CompressionRatio: res.CompressionRatio,
		PublishedAt:      item.PublishedAt,
	}
	if err := s.Repo.Create(ctx, d); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			atomic.AddInt64(&stats.Duplicates, 1)
			return nil
		}
		return fmt.Errorf("store digest: %w", err)
	}
	atomic.AddInt64(&stats.Stored, 1)

	if s.Notify != nil {
		s.Notify.NotifyNewDigest(ctx, d)
	}
	return nil
}

// content returns the item title and the text to summarize. The article page
// is fetched when the feed carries less than FetchThreshold runes and the
// fetched text is used only if it is longer; feed content is the fallback.
func (s *Service) content(ctx context.Context, logger *slog.Logger, item fetch.FeedItem) (string, string) {
	title, text := item.Title, item.Content
	if s.Articles == nil || utf8.RuneCountInString(text) >= s.config.FetchThreshold {
		metrics.RecordContentFetchSkipped()
		return title, text
	}

	doc, err := s.Articles.Fetch(ctx, item.URL)
	if err != nil {
		logger.DebugContext(ctx, "article fetch failed, using feed content",
			slog.String("url", item.URL),
			slog.Any("error", err))
		return title, text
	}
	if title == "" {
		title = doc.Title
	}
	if utf8.RuneCountInString(doc.Text) > utf8.RuneCountInString(text) {
		text = doc.Text
	}
	return title, text
}
