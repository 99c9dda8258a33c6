package pathutil

import (
	"regexp"
	"strings"
)

type pathPattern struct {
	pattern  *regexp.Regexp
	template string
}

var pathPatterns = []pathPattern{
	{regexp.MustCompile(`^/digests/\d+$`), "/digests/:id"},
	{regexp.MustCompile(`^/digests/[^/]+$`), "/digests/:id"},
}

// NormalizePath maps paths carrying IDs to their route template so that
// metric labels stay bounded. Query strings and a trailing slash are dropped.
func NormalizePath(path string) string {
	if i := strings.IndexByte(path, '?'); i != -1 {
		path = path[:i]
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	for _, p := range pathPatterns {
		if p.pattern.MatchString(path) {
			return p.template
		}
	}
	return path
}
