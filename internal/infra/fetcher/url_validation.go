// Package fetcher downloads news articles and turns them into clean documents
// ready for summarization.
package fetcher

import (
	"fmt"
	"net"
	"net/netip"
	"net/url"

	"haberozet/internal/usecase/fetch"
)

// validateURL rejects URLs that are malformed, use a scheme other than
// http/https, or (when denyPrivateIPs is set) resolve to an address inside
// the host's network.
//
// Blocked ranges: loopback, RFC 1918 / RFC 4193 private, link-local and the
// unspecified address.
func validateURL(urlStr string, denyPrivateIPs bool) error {
	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%w: parse error: %v", fetch.ErrInvalidURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme '%s' not allowed (only http/https)", fetch.ErrInvalidURL, u.Scheme)
	}

	hostname := u.Hostname()
	if hostname == "" {
		return fmt.Errorf("%w: empty hostname", fetch.ErrInvalidURL)
	}

	if !denyPrivateIPs {
		return nil
	}

	if addr, err := netip.ParseAddr(hostname); err == nil {
		if isPrivateAddr(addr) {
			return fmt.Errorf("%w: %s", fetch.ErrPrivateIP, addr)
		}
		return nil
	}

	ips, err := net.LookupIP(hostname)
	if err != nil {
		return fmt.Errorf("%w: DNS lookup failed for %s: %v", fetch.ErrInvalidURL, hostname, err)
	}
	for _, ip := range ips {
		addr, ok := netip.AddrFromSlice(ip)
		if ok && isPrivateAddr(addr.Unmap()) {
			return fmt.Errorf("%w: hostname '%s' resolves to private IP %s", fetch.ErrPrivateIP, hostname, addr.Unmap())
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
