// Package fetch defines the contracts for acquiring news documents: the
// article fetcher used for single URLs and the feed reader used by the digest.
package fetch

import "errors"

// Sentinel errors for document acquisition.
var (
	// ErrInvalidURL indicates the URL is malformed or uses a scheme other than http/https.
	ErrInvalidURL = errors.New("invalid URL or unsupported scheme")

	// ErrPrivateIP indicates the URL resolves to a loopback, private or link-local address.
	ErrPrivateIP = errors.New("URL resolves to private IP address")

	// ErrTooManyRedirects indicates the redirect chain exceeded the configured maximum.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates the response body exceeded the configured size limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrTimeout indicates the request did not complete within the configured timeout.
	ErrTimeout = errors.New("request timeout")

	// ErrReadabilityFailed indicates article extraction produced nothing usable.
	ErrReadabilityFailed = errors.New("content extraction failed")

	// ErrNotEnoughContent indicates the cleaned article text is too short to summarize.
	ErrNotEnoughContent = errors.New("yeterli içerik bulunamadı")

	// ErrFeedFetchFailed indicates that downloading a news feed failed.
	ErrFeedFetchFailed = errors.New("failed to fetch feed")

	// ErrInvalidFeedFormat indicates the feed is neither RSS nor Atom.
	ErrInvalidFeedFormat = errors.New("invalid feed format")
)
