package digest

import (
	"time"

	"haberozet/internal/domain/entity"
)

// DTO is the JSON form of a stored digest entry.
type DTO struct {
	ID               int64      `json:"id"`
	FeedURL          string     `json:"feed_url,omitempty"`
	URL              string     `json:"url"`
	Title            string     `json:"title"`
	Summary          string     `json:"summary"`
	Method           string     `json:"method"`
	SentenceCount    int        `json:"sentence_count"`
	CompressionRatio float64    `json:"compression_ratio"`
	PublishedAt      *time.Time `json:"published_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func toDTO(d *entity.Digest) DTO {
	out := DTO{
		ID:               d.ID,
		FeedURL:          d.FeedURL,
		URL:              d.URL,
		Title:            d.Title,
		Summary:          d.Summary,
		Method:           string(d.Method),
		SentenceCount:    d.SentenceCount,
		CompressionRatio: d.CompressionRatio,
		CreatedAt:        d.CreatedAt,
	}
	if !d.PublishedAt.IsZero() {
		p := d.PublishedAt
		out.PublishedAt = &p
	}
	return out
}
