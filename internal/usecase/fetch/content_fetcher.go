package fetch

import (
	"context"
	"errors"
	"time"

	"haberozet/internal/domain/entity"
)

// ArticleFetcher downloads a news article and returns its title and cleaned text.
//
// Implementations must reject URLs that resolve to private addresses, bound the
// response size and validate every redirect target.
//
// Errors:
//   - ErrInvalidURL, ErrPrivateIP, ErrTooManyRedirects, ErrBodyTooLarge, ErrTimeout
//   - ErrReadabilityFailed when no article could be extracted
//   - ErrNotEnoughContent when the cleaned text is shorter than the configured minimum
//   - gobreaker.ErrOpenState when the circuit is open
type ArticleFetcher interface {
	Fetch(ctx context.Context, url string) (*entity.Document, error)
}

// FeedReader reads the items of an RSS or Atom feed.
type FeedReader interface {
	Read(ctx context.Context, feedURL string) ([]FeedItem, error)
}

// FeedItem is a single entry of a news feed.
type FeedItem struct {
	Title       string
	URL         string
	Content     string
	PublishedAt time.Time
}

// UserMessage converts an acquisition error into the Turkish message shown
// to callers. Messages of sentinel errors are not exposed verbatim except
// for ErrNotEnoughContent.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotEnoughContent):
		return "Yeterli içerik bulunamadı"
	case errors.Is(err, ErrInvalidURL), errors.Is(err, ErrPrivateIP):
		return "Haber çekilemedi: geçersiz adres"
	case errors.Is(err, ErrTimeout):
		return "Haber çekilemedi: zaman aşımı"
	default:
		return "Haber çekilemedi: " + err.Error()
	}
}
