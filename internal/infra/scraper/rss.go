// Package scraper reads RSS and Atom news feeds for the digest worker.
// It uses the gofeed library to parse feed content with reliability patterns.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"haberozet/internal/observability/metrics"
	"haberozet/internal/resilience/circuitbreaker"
	"haberozet/internal/resilience/retry"
	"haberozet/internal/usecase/fetch"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"
)

// RSSReader implements fetch.FeedReader using the gofeed library.
// It includes circuit breaker and retry logic for improved reliability.
type RSSReader struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	userAgent      string
}

// NewRSSReader creates a new RSSReader with the given HTTP client.
func NewRSSReader(client *http.Client) *RSSReader {
	cbConfig := circuitbreaker.FeedFetchConfig()
	cbConfig.IsSuccessful = func(err error) bool {
		// a malformed feed is the publisher's content problem, not an outage
		return err == nil || errors.Is(err, fetch.ErrInvalidFeedFormat) || errors.Is(err, context.Canceled)
	}

	return &RSSReader{
		client:         client,
		circuitBreaker: circuitbreaker.New(cbConfig),
		retryConfig:    retry.FeedFetchConfig(),
		userAgent:      "HaberOzetBot/1.0",
	}
}

// Read retrieves and parses an RSS/Atom feed. Items without a link are
// skipped; HTML in item content is reduced to text.
func (r *RSSReader) Read(ctx context.Context, feedURL string) ([]fetch.FeedItem, error) {
	items, err := retry.Do(ctx, r.retryConfig, func() ([]fetch.FeedItem, error) {
		items, err := circuitbreaker.Do(r.circuitBreaker, func() ([]fetch.FeedItem, error) {
			return r.doRead(ctx, feedURL)
		})
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.WarnContext(ctx, "feed fetch circuit breaker open, request rejected",
				slog.String("service", "feed-fetch"),
				slog.String("url", feedURL),
				slog.String("state", r.circuitBreaker.State().String()))
		}
		return items, err
	})
	if err != nil {
		metrics.RecordFeedReadError(classify(err))
		return nil, err
	}
	return items, nil
}

// doRead performs the actual feed fetch without retry or circuit breaker.
func (r *RSSReader) doRead(ctx context.Context, feedURL string) ([]fetch.FeedItem, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = r.userAgent
	fp.Client = r.client

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		var httpErr gofeed.HTTPError
		switch {
		case errors.As(err, &httpErr):
			return nil, fmt.Errorf("%w: %w", fetch.ErrFeedFetchFailed,
				&retry.HTTPError{StatusCode: httpErr.StatusCode, Message: httpErr.Status})
		case errors.Is(err, gofeed.ErrFeedTypeNotDetected):
			return nil, fmt.Errorf("%w: %v", fetch.ErrInvalidFeedFormat, err)
		default:
			return nil, fmt.Errorf("%w: %w", fetch.ErrFeedFetchFailed, err)
		}
	}

	items := make([]fetch.FeedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		link := strings.TrimSpace(it.Link)
		if link == "" {
			continue
		}

		pubAt := time.Now()
		if it.PublishedParsed != nil {
			pubAt = *it.PublishedParsed
		} else if it.UpdatedParsed != nil {
			pubAt = *it.UpdatedParsed
		}

		// prefer full content over the description
		content := it.Content
		if content == "" {
			content = it.Description
		}

		items = append(items, fetch.FeedItem{
			Title:       strings.TrimSpace(it.Title),
			URL:         link,
			Content:     htmlToText(content),
			PublishedAt: pubAt,
		})
	}

	return items, nil
}

// htmlToText keeps paragraph boundaries of HTML feed content as blank lines.
func htmlToText(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}

	var paragraphs []string
	doc.Find("p, li, h1, h2, h3, blockquote").Each(func(_ int, sel *goquery.Selection) {
		if t := strings.Join(strings.Fields(sel.Text()), " "); t != "" {
			paragraphs = append(paragraphs, t)
		}
	})
	if len(paragraphs) == 0 {
		return strings.Join(strings.Fields(doc.Text()), " ")
	}
	return strings.Join(paragraphs, "\n\n")
}

func classify(err error) string {
	var httpErr *retry.HTTPError
	switch {
	case errors.Is(err, gobreaker.ErrOpenState):
		return "circuit_open"
	case errors.Is(err, fetch.ErrInvalidFeedFormat):
		return "parse"
	case errors.As(err, &httpErr):
		return "http_status"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "network"
	}
}
