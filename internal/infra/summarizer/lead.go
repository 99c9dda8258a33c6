package summarizer

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Lead is an offline generator that returns the opening of each chunk, cut at
// the last sentence end within the character limit. It exercises the
// abstractive path without a model.
type Lead struct {
	prefix string
	limit  int
}

// NewLead creates a Lead generator. prefix is stripped from chunk inputs.
func NewLead(prefix string, limit int) *Lead {
	if limit <= 0 {
		limit = 600
	}
	return &Lead{prefix: prefix, limit: limit}
}

// Generate returns the lead of input.
func (l *Lead) Generate(_ context.Context, input string) (string, error) {
	text := strings.TrimSpace(strings.TrimPrefix(input, l.prefix))
	if utf8.RuneCountInString(text) <= l.limit {
		return text, nil
	}

	head, _ := truncateRunes(text, l.limit)
	if i := strings.LastIndexAny(head, ".!?…"); i > 0 {
		_, size := utf8.DecodeRuneInString(head[i:])
		return head[:i+size], nil
	}
	return head + "…", nil
}
