package entity

import (
	"fmt"
	"net"
	"net/netip"
	"net/url"
)

// maxURLLength bounds the article URLs accepted by the API.
const maxURLLength = 2048

// MaxRequestedSentences is the largest summary length the API accepts.
const MaxRequestedSentences = 10

// ValidateURL checks that rawURL is an absolute http(s) URL whose host does not
// resolve to a private or loopback address.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: "url", Message: "URL is required"}
	}
	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return &ValidationError{Field: "url", Message: "malformed URL"}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "URL must use http or https scheme"}
	}
	if parsed.Hostname() == "" {
		return &ValidationError{Field: "url", Message: "URL must have a valid host"}
	}

	host := parsed.Hostname()
	if addr, err := netip.ParseAddr(host); err == nil {
		if isPrivateAddr(addr) {
			return &ValidationError{Field: "url", Message: "url cannot point to private network"}
		}
		return nil
	}

	// Unresolvable hosts are left to the fetcher, which reports them as network errors.
	ips, err := net.LookupIP(host)
	if err != nil {
		return nil
	}
	for _, ip := range ips {
		if addr, ok := netip.AddrFromSlice(ip); ok && isPrivateAddr(addr.Unmap()) {
			return &ValidationError{Field: "url", Message: "url cannot point to private network"}
		}
	}
	return nil
}

// ValidateSentenceTarget checks the summary length handed to the pipeline.
// Large targets are valid; the pipeline clips them to the usable sentences.
func ValidateSentenceTarget(n int) error {
	if n < 1 {
		return &ValidationError{Field: "sentences", Message: "must be at least 1"}
	}
	return nil
}

// ValidateRequestedSentences applies the API bounds of 1 to MaxRequestedSentences.
func ValidateRequestedSentences(n int) error {
	if err := ValidateSentenceTarget(n); err != nil {
		return err
	}
	if n > MaxRequestedSentences {
		return &ValidationError{
			Field:   "sentences",
			Message: fmt.Sprintf("must not exceed %d", MaxRequestedSentences),
		}
	}
	return nil
}

func isPrivateAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsUnspecified()
}
