// Package entity defines the domain objects shared by the summarization pipeline,
// the acquisition collaborators and the digest store.
package entity

import "time"

// Document is the raw input of a summarization request.
type Document struct {
	Title string
	Text  string
	URL   string
}

// Digest is a stored summary of a feed item.
type Digest struct {
	ID               int64
	FeedURL          string
	URL              string
	Title            string
	Summary          string
	Method           Method
	SentenceCount    int
	CompressionRatio float64
	PublishedAt      time.Time
	CreatedAt        time.Time
}

// Validate checks the fields the digest store requires.
func (d *Digest) Validate() error {
	if d.URL == "" {
		return &ValidationError{Field: "url", Message: "URL is required"}
	}
	if d.Summary == "" {
		return &ValidationError{Field: "summary", Message: "summary is required"}
	}
	if _, ok := LookupMethod(string(d.Method)); !ok {
		return &ValidationError{Field: "method", Message: "unknown method " + string(d.Method)}
	}
	return nil
}
